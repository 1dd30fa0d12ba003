package transform

import (
	"slices"
	"testing"

	"github.com/matzehuels/cmakegraph/pkg/graph"
)

// scenarioGraph is app -> core <- test_core.
func scenarioGraph(t *testing.T) *graph.Graph {
	t.Helper()
	return build(t,
		[]graph.Node{
			{ID: "A", Name: "A", Kind: graph.KindExecutable},
			{ID: "B", Name: "B", Kind: graph.KindStaticLibrary},
			{ID: "test_B", Name: "test_B", Kind: graph.KindExecutable},
		},
		[]graph.Edge{{From: "A", To: "B"}, {From: "test_B", To: "B"}},
	)
}

func build(t *testing.T, nodes []graph.Node, edges []graph.Edge) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder("GG")
	for _, n := range nodes {
		if err := b.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	for _, e := range edges {
		if err := b.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s->%s): %v", e.From, e.To, err)
		}
	}
	return b.Build()
}

func nodeIDs(g *graph.Graph) []string {
	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestFilter_ScenarioA(t *testing.T) {
	g := scenarioGraph(t)
	out := Filter(g, Rules{SkipNames: []string{"test_"}})

	if got := nodeIDs(out); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("nodes = %v, want [A B]", got)
	}
	want := []graph.Edge{{From: "A", To: "B"}}
	if got := out.Edges(); !slices.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Error("Filter modified its input")
	}
}

func TestFilter_ByKind(t *testing.T) {
	g := build(t,
		[]graph.Node{
			{ID: "a", Name: "app", Kind: graph.KindExecutable},
			{ID: "d", Name: "docs", Kind: graph.KindUtility},
			{ID: "c", Name: "core", Kind: graph.KindStaticLibrary},
			{ID: "i", Name: "headers", Kind: graph.KindInterfaceLibrary},
		},
		[]graph.Edge{
			{From: "a", To: "c"},
			{From: "d", To: "a"},
			{From: "c", To: "i", Link: graph.LinkInterface},
		},
	)

	out := Filter(g, Rules{SkipKinds: []graph.Kind{graph.KindUtility, graph.KindInterfaceLibrary}})
	if got := nodeIDs(out); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("nodes = %v, want [a c]", got)
	}
	if out.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", out.EdgeCount())
	}
}

func TestFilter_KindOrName(t *testing.T) {
	g := build(t,
		[]graph.Node{
			{ID: "1", Name: "app", Kind: graph.KindExecutable},
			{ID: "2", Name: "core_test", Kind: graph.KindExecutable},
			{ID: "3", Name: "gen", Kind: graph.KindUtility},
			{ID: "4", Name: "core", Kind: graph.KindStaticLibrary},
		},
		nil,
	)
	out, stats := FilterWithStats(g, Rules{
		SkipKinds: []graph.Kind{graph.KindUtility},
		SkipNames: []string{"_test"},
	})
	if got := nodeIDs(out); !slices.Equal(got, []string{"1", "4"}) {
		t.Errorf("nodes = %v, want [1 4]", got)
	}
	if stats.NodesRemoved != 2 || !slices.Equal(stats.Removed, []string{"core_test", "gen"}) {
		t.Errorf("stats = %+v", stats)
	}
}

func TestFilter_NamePatterns(t *testing.T) {
	g := build(t,
		[]graph.Node{
			{ID: "1", Name: "Test_B"},
			{ID: "2", Name: "gtest_main"},
			{ID: "3", Name: "latest"},
			{ID: "4", Name: "core"},
		},
		nil,
	)

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{"case sensitive", []string{"Test"}, []string{"2", "3", "4"}},
		{"plain substring", []string{"test"}, []string{"1", "4"}},
		{"not a glob", []string{"*test*"}, []string{"1", "2", "3", "4"}},
		{"empty pattern ignored", []string{""}, []string{"1", "2", "3", "4"}},
		{"any pattern", []string{"core", "gtest"}, []string{"1", "3"}},
		{"no patterns", nil, []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nodeIDs(Filter(g, Rules{SkipNames: tt.patterns}))
			if !slices.Equal(got, tt.want) {
				t.Errorf("nodes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_NoDanglingEdges(t *testing.T) {
	g := build(t,
		[]graph.Node{{ID: "a", Name: "a"}, {ID: "b", Name: "b"}, {ID: "c", Name: "c"}, {ID: "d", Name: "d"}},
		[]graph.Edge{
			{From: "a", To: "b"}, {From: "b", To: "c"}, {From: "c", To: "a"},
			{From: "d", To: "b"}, {From: "b", To: "b"}, {From: "a", To: "d"},
		},
	)

	for _, skip := range []string{"a", "b", "c", "d"} {
		out, stats := FilterWithStats(g, Rules{SkipNames: []string{skip}})
		if err := out.Validate(); err != nil {
			t.Errorf("skip %s: %v", skip, err)
		}
		for _, e := range out.Edges() {
			if e.From == skip || e.To == skip {
				t.Errorf("skip %s: edge %s->%s survived", skip, e.From, e.To)
			}
		}
		want := g.InDegree(skip) + g.OutDegree(skip)
		if skip == "b" {
			want-- // self-loop counted twice
		}
		if stats.EdgesRemoved != want {
			t.Errorf("skip %s: EdgesRemoved = %d, want %d", skip, stats.EdgesRemoved, want)
		}
	}
}

func TestFilter_Idempotent(t *testing.T) {
	g := scenarioGraph(t)
	r := Rules{SkipNames: []string{"test_"}, SkipKinds: []graph.Kind{graph.KindUtility}}

	once := Filter(g, r)
	twice := Filter(once, r)
	if !slices.Equal(nodeIDs(once), nodeIDs(twice)) || !slices.Equal(once.Edges(), twice.Edges()) {
		t.Error("Filter(Filter(g)) != Filter(g)")
	}
}

func TestFilter_OrderIndependent(t *testing.T) {
	g := build(t,
		[]graph.Node{
			{ID: "1", Name: "app", Kind: graph.KindExecutable},
			{ID: "2", Name: "bench_core", Kind: graph.KindExecutable},
			{ID: "3", Name: "test_core", Kind: graph.KindExecutable},
			{ID: "4", Name: "core", Kind: graph.KindStaticLibrary},
			{ID: "5", Name: "docs", Kind: graph.KindUtility},
		},
		[]graph.Edge{{From: "1", To: "4"}, {From: "2", To: "4"}, {From: "3", To: "4"}},
	)

	a := Filter(g, Rules{
		SkipNames: []string{"test_", "bench_"},
		SkipKinds: []graph.Kind{graph.KindUtility, graph.KindSharedLibrary},
	})
	b := Filter(g, Rules{
		SkipNames: []string{"bench_", "test_"},
		SkipKinds: []graph.Kind{graph.KindSharedLibrary, graph.KindUtility},
	})
	if !slices.Equal(nodeIDs(a), nodeIDs(b)) || !slices.Equal(a.Edges(), b.Edges()) {
		t.Errorf("results differ: %v vs %v", nodeIDs(a), nodeIDs(b))
	}

	// Applying the rules one after another gives the same result as at once.
	seq := Filter(Filter(g, Rules{SkipNames: []string{"bench_"}}), Rules{SkipNames: []string{"test_"}})
	seq = Filter(seq, Rules{SkipKinds: []graph.Kind{graph.KindUtility}})
	if !slices.Equal(nodeIDs(a), nodeIDs(seq)) {
		t.Errorf("sequential = %v, combined = %v", nodeIDs(seq), nodeIDs(a))
	}
}

func TestFilter_PreservesOrderAndLinks(t *testing.T) {
	g := build(t,
		[]graph.Node{{ID: "z", Name: "z"}, {ID: "x", Name: "x_test"}, {ID: "a", Name: "a"}, {ID: "m", Name: "m"}},
		[]graph.Edge{
			{From: "m", To: "a", Link: graph.LinkPrivate},
			{From: "z", To: "x"},
			{From: "z", To: "a", Link: graph.LinkInterface},
		},
	)
	out := Filter(g, Rules{SkipNames: []string{"_test"}})

	if got := nodeIDs(out); !slices.Equal(got, []string{"z", "a", "m"}) {
		t.Errorf("nodes = %v, want [z a m]", got)
	}
	want := []graph.Edge{
		{From: "m", To: "a", Link: graph.LinkPrivate},
		{From: "z", To: "a", Link: graph.LinkInterface},
	}
	if got := out.Edges(); !slices.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestRules_Empty(t *testing.T) {
	tests := []struct {
		rules Rules
		want  bool
	}{
		{Rules{}, true},
		{Rules{SkipNames: []string{"", ""}}, true},
		{Rules{SkipNames: []string{"x"}}, false},
		{Rules{SkipKinds: []graph.Kind{graph.KindUtility}}, false},
	}
	for _, tt := range tests {
		if got := tt.rules.Empty(); got != tt.want {
			t.Errorf("%+v.Empty() = %v, want %v", tt.rules, got, tt.want)
		}
	}
}
