package reduce

import (
	"frkernel/internal/source"
	"frkernel/internal/term"
)

// iota fires an eliminator whose major premise is a constructor form.
//
// The spine of an eliminator is params, motive, one minor per constructor,
// indices and the major premise, possibly followed by extra arguments. The
// minor of constructor c receives c's fields followed by one induction
// hypothesis per recursive field.
func (e *Engine) iota(elim term.ID, ind source.StringID, args []term.ID, delta bool) (term.ID, bool) {
	a := e.arena
	info, ok := e.inductive(ind)
	if !ok {
		return term.NoID, false
	}
	p, c, k := info.NumParams, len(info.Ctors), info.NumIndices
	need := p + 1 + c + k + 1
	if len(args) < need {
		return term.NoID, false
	}
	major := e.reduce(args[need-1], delta)
	if expanded, ok := e.expandNumeral(major, ind); ok {
		major = expanded
	}
	head, margs := a.Spine(major)
	hn := a.Node(head)
	if hn.Kind != term.KindCtor {
		return term.NoID, false
	}
	ctor, ok := e.constructor(hn.Name)
	if !ok || ctor.Inductive != ind || len(margs) != p+ctor.NumFields() {
		return term.NoID, false
	}

	params := args[:p]
	motive := args[p]
	minors := args[p+1 : p+1+c]
	fields := margs[p:]

	var ihs []term.ID
	ty := ctor.Type
	for _, param := range params {
		ty = a.Instantiate(a.Node(ty).B, param)
	}
	for j, field := range ctor.Fields {
		node := a.Node(ty)
		if field.Recursive {
			ihs = append(ihs, e.hypothesis(elim, node.A, params, motive, minors, fields[j]))
		}
		ty = a.Instantiate(node.B, fields[j])
	}

	e.Stats.Iota++
	out := a.Apps(minors[ctor.Ordinal], fields...)
	out = a.Apps(out, ihs...)
	return a.Apps(out, args[need:]...), true
}

// hypothesis builds fn(ys...) => Elim params motive minors idx (field ys...)
// for a recursive field of type Fn(ys...) -> I params idx.
func (e *Engine) hypothesis(elim, dom term.ID, params []term.ID, motive term.ID, minors []term.ID, field term.ID) term.ID {
	a := e.arena
	var doms []term.ID
	t := dom
	for {
		n := a.Node(t)
		if n.Kind != term.KindPi {
			break
		}
		doms = append(doms, n.A)
		t = n.B
	}
	m := uint32(len(doms))
	shift := func(x term.ID) term.ID { return a.Shift(x, int32(m), 0) }

	_, cargs := a.Spine(t)
	body := elim
	for _, param := range params {
		body = a.App(body, shift(param))
	}
	body = a.App(body, shift(motive))
	for _, minor := range minors {
		body = a.App(body, shift(minor))
	}
	body = a.Apps(body, cargs[len(params):]...)
	arg := shift(field)
	for i := int(m) - 1; i >= 0; i-- {
		arg = a.App(arg, a.Var(uint32(i)))
	}
	body = a.App(body, arg)
	for i := len(doms) - 1; i >= 0; i-- {
		body = a.Lam(doms[i], body)
	}
	return body
}

// expandNumeral turns a literal scrutinised by the eliminator of the
// numeral inductive into its constructor form.
func (e *Engine) expandNumeral(t term.ID, ind source.StringID) (term.ID, bool) {
	num, ok := e.env.Numerals()
	if !ok || num.Inductive != ind {
		return t, false
	}
	return e.NumeralStep(t)
}
