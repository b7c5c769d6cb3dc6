package term

import (
	"slices"

	"frkernel/internal/source"
)

// Constants returns the global names t refers to, sorted by id. Eliminators
// contribute their inductive; numerals contribute nothing because the
// numeral binding is environment state rather than a name in the term.
func (a *Arena) Constants(t ID) []source.StringID {
	set := make(map[source.StringID]struct{})
	a.Mentions(t, func(n Node) bool {
		switch n.Kind {
		case KindConst, KindInd, KindCtor, KindElim:
			set[n.Name] = struct{}{}
		}
		return false
	})
	out := make([]source.StringID, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// UsesNumerals reports whether t contains a numeral literal.
func (a *Arena) UsesNumerals(t ID) bool {
	return a.Mentions(t, func(n Node) bool { return n.Kind == KindNat })
}

// MentionsInductive reports whether t refers to the inductive ind, either
// directly or through its eliminator.
func (a *Arena) MentionsInductive(t ID, ind source.StringID) bool {
	return a.Mentions(t, func(n Node) bool {
		return (n.Kind == KindInd || n.Kind == KindElim) && n.Name == ind
	})
}
