package resource

import "testing"

func TestDepGraphInitializationOrder(t *testing.T) {
	g := newDepGraph()
	must(t, g.addNode("db", nil))
	must(t, g.addNode("cache", nil))
	must(t, g.addNode("api", []string{"db", "cache"}))

	order, err := g.initializationOrder()
	if err != nil {
		t.Fatalf("initializationOrder: %v", err)
	}
	pos := indexOf(order)
	if pos["api"] < pos["db"] || pos["api"] < pos["cache"] {
		t.Fatalf("api must come after its dependencies, got order %v", order)
	}
}

func TestDepGraphDeterministicTieBreak(t *testing.T) {
	g := newDepGraph()
	must(t, g.addNode("z", nil))
	must(t, g.addNode("a", nil))
	must(t, g.addNode("m", nil))

	order, err := g.initializationOrder()
	if err != nil {
		t.Fatalf("initializationOrder: %v", err)
	}
	want := []string{"a", "m", "z"}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("order = %v, want alphabetical %v", order, want)
		}
	}
}

func TestDepGraphRejectsMissingDependency(t *testing.T) {
	g := newDepGraph()
	if err := g.addNode("api", []string{"db"}); err != ErrMissingDependency {
		t.Fatalf("expected ErrMissingDependency, got %v", err)
	}
}

func TestDepGraphRejectsCycle(t *testing.T) {
	g := newDepGraph()
	must(t, g.addNode("a", nil))
	must(t, g.addNode("b", []string{"a"}))

	// Attempting to make "a" depend on "b" would create a -> b -> a.
	g.removeNode("a")
	if err := g.addNode("a", []string{"b"}); err != ErrCycle {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestDepGraphRejectsDuplicateRegistration(t *testing.T) {
	g := newDepGraph()
	must(t, g.addNode("a", nil))
	if err := g.addNode("a", nil); err != ErrAlreadyRegistered {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestDepGraphDependents(t *testing.T) {
	g := newDepGraph()
	must(t, g.addNode("db", nil))
	must(t, g.addNode("api", []string{"db"}))
	must(t, g.addNode("worker", []string{"db"}))

	deps := g.dependents("db")
	if len(deps) != 2 || deps[0] != "api" || deps[1] != "worker" {
		t.Fatalf("dependents(db) = %v, want [api worker]", deps)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func indexOf(order []string) map[string]int {
	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	return pos
}
