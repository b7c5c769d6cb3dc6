package term

import "testing"

func TestSnapshotRestoreKeepsIDs(t *testing.T) {
	a := NewArena()
	b := NewBuilder(a)
	nat := a.IndNamed("Nat")
	id := b.Lam("n", nat, func(n ID) ID { return a.App(a.CtorNamed("Nat::succ"), n) })
	local := a.FreshLocal()

	restored, err := Restore(a.Snapshot())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Len() != a.Len() {
		t.Fatalf("restored %d nodes, want %d", restored.Len(), a.Len())
	}
	if restored.Node(id) != a.Node(id) {
		t.Fatalf("node %d differs after restore", id)
	}
	if restored.IndNamed("Nat") != nat {
		t.Fatalf("re-interning an existing term must return its old id")
	}
	if fresh := restored.FreshLocal(); fresh == local {
		t.Fatalf("restored arena must continue the local counter")
	}
}

func TestRestoreRejectsForwardReferences(t *testing.T) {
	s := Snapshot{
		Names: []string{""},
		Nodes: []Node{{}, {Kind: KindApp, A: 2, B: 2}, {Kind: KindSort, Index: uint32(Set)}},
	}
	if _, err := Restore(s); err == nil {
		t.Fatalf("forward child reference must be rejected")
	}
}

func TestRestoreRejectsTopUniverse(t *testing.T) {
	cases := map[string]Snapshot{
		"sort": {
			Names: []string{""},
			Nodes: []Node{{}, {Kind: KindSort, Index: uint32(Top)}},
		},
		"eliminator": {
			Names: []string{"", "Nat"},
			Nodes: []Node{{}, {Kind: KindElim, Name: 1, Index: uint32(Top)}},
		},
	}
	for name, s := range cases {
		if _, err := Restore(s); err == nil {
			t.Fatalf("%s: top universe must be rejected", name)
		}
	}
}

func TestRestoreRejectsUnknownNames(t *testing.T) {
	s := Snapshot{
		Names: []string{""},
		Nodes: []Node{{}, {Kind: KindConst, Name: 5}},
	}
	if _, err := Restore(s); err == nil {
		t.Fatalf("dangling name must be rejected")
	}
}
