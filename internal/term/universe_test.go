package term

import "testing"

func TestUniverseSucc(t *testing.T) {
	if Prop.Succ() != Set {
		t.Fatalf("Prop must inhabit Set")
	}
	if Set.Succ() != Type(0) {
		t.Fatalf("Set must inhabit Type 0")
	}
	if Type(3).Succ() != Type(4) {
		t.Fatalf("Type 3 must inhabit Type 4")
	}
}

func TestUniverseString(t *testing.T) {
	for u, want := range map[Universe]string{Prop: "Prop", Set: "Set", Type(0): "Type 0", Type(7): "Type 7"} {
		if got := u.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", uint32(u), got, want)
		}
	}
}

func TestPiUniverse(t *testing.T) {
	cases := []struct {
		dom, cod, want Universe
	}{
		{Set, Prop, Prop},
		{Type(2), Prop, Prop},
		{Prop, Set, Set},
		{Prop, Prop, Prop},
		{Set, Set, Set},
		{Type(1), Set, Type(1)},
		{Set, Type(0), Type(0)},
	}
	for _, tc := range cases {
		if got := PiUniverse(tc.dom, tc.cod); got != tc.want {
			t.Fatalf("PiUniverse(%s, %s) = %s, want %s", tc.dom, tc.cod, got, tc.want)
		}
	}
}

func TestDominates(t *testing.T) {
	cases := []struct {
		target, arg Universe
		want        bool
	}{
		{Set, Set, true},
		{Set, Prop, true},
		{Set, Type(0), false},
		{Type(0), Set, true},
		{Prop, Prop, true},
		{Prop, Set, false},
		{Prop, Type(3), false},
	}
	for _, tc := range cases {
		if got := Dominates(tc.target, tc.arg); got != tc.want {
			t.Fatalf("Dominates(%s, %s) = %v, want %v", tc.target, tc.arg, got, tc.want)
		}
	}
}
