package inductive

import (
	"frkernel/internal/kerr"
	"frkernel/internal/term"
)

// positive checks one constructor argument type for strict positivity and
// reports whether the argument is recursive.
//
// The inductive may occur only as the head of the final codomain of the
// argument, Fn(ys...) -> I params idx, where neither the ys nor idx mention
// it. The check is syntactic: definitions cannot mention an inductive that
// is still being declared, so nothing is hidden behind a name.
func (p *processor) positive(ctor string, pos int, dom term.ID) (bool, error) {
	a := p.a
	if !a.MentionsInductive(dom, p.name) {
		return false, nil
	}
	t := dom
	for {
		n := a.Node(t)
		if n.Kind != term.KindPi {
			break
		}
		if a.MentionsInductive(n.A, p.name) {
			return false, kerr.New(kerr.PositivityViolation,
				"%s occurs to the left of an arrow in argument %d of %s", p.decl.Name, pos, ctor)
		}
		t = n.B
	}
	head, args := a.Spine(t)
	if head != p.self {
		return false, kerr.New(kerr.PositivityViolation,
			"%s occurs in argument %d of %s other than as the result", p.decl.Name, pos, ctor)
	}
	np := len(p.params)
	if len(args) != np+p.nidx {
		return false, kerr.New(kerr.PositivityViolation,
			"%s is partially applied in argument %d of %s", p.decl.Name, pos, ctor)
	}
	for i, param := range p.params {
		if args[i] != param {
			return false, kerr.New(kerr.MalformedIndices,
				"argument %d of %s changes parameter %s", pos, ctor, p.decl.Params[i].Name)
		}
	}
	for _, idx := range args[np:] {
		if a.MentionsInductive(idx, p.name) {
			return false, kerr.New(kerr.PositivityViolation,
				"%s occurs inside an index in argument %d of %s", p.decl.Name, pos, ctor)
		}
	}
	return true, nil
}
