package workflow

import "testing"

func TestBuildRejectsUnknownPredecessor(t *testing.T) {
	_, err := Build([]Node{
		{ID: "b", Predecessors: []string{"a"}},
	})
	if err == nil {
		t.Fatal("expected an error for a missing predecessor")
	}
}

func TestBuildRejectsDuplicateID(t *testing.T) {
	_, err := Build([]Node{
		{ID: "a"},
		{ID: "a"},
	})
	if err == nil {
		t.Fatal("expected an error for a duplicate node id")
	}
}

func TestBuildRejectsCycle(t *testing.T) {
	_, err := Build([]Node{
		{ID: "a", Predecessors: []string{"b"}},
		{ID: "b", Predecessors: []string{"a"}},
	})
	if err == nil {
		t.Fatal("expected an error for a cyclic graph")
	}
}

func TestBuildOrderIsDeterministic(t *testing.T) {
	g, err := Build([]Node{
		{ID: "z"},
		{ID: "a"},
		{ID: "m", Predecessors: []string{"z", "a"}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	order := g.Order()
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	if pos["m"] < pos["z"] || pos["m"] < pos["a"] {
		t.Fatalf("order = %v, want m after both its predecessors", order)
	}
	if pos["a"] > pos["z"] {
		t.Fatalf("order = %v, want alphabetical tie-break among roots", order)
	}
}

func TestEntryNodesAreInDegreeZero(t *testing.T) {
	g, err := Build([]Node{
		{ID: "a"},
		{ID: "b"},
		{ID: "c", Predecessors: []string{"a", "b"}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	entries := g.EntryNodes()
	if len(entries) != 2 || entries[0] != "a" || entries[1] != "b" {
		t.Fatalf("EntryNodes() = %v, want [a b]", entries)
	}
}

func TestSuccessorsFollowsDeclaredEdges(t *testing.T) {
	g, err := Build([]Node{
		{ID: "a"},
		{ID: "b", Predecessors: []string{"a"}},
		{ID: "c", Predecessors: []string{"a"}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	succ := g.Successors("a")
	if len(succ) != 2 || succ[0] != "b" || succ[1] != "c" {
		t.Fatalf("Successors(a) = %v, want [b c]", succ)
	}
}
