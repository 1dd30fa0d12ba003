package dot

import (
	"os"
	"strings"
	"testing"

	"github.com/matzehuels/cmakegraph/pkg/errors"
	"github.com/matzehuels/cmakegraph/pkg/graph"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(data)
}

func mustParse(t *testing.T, src string) *ParseResult {
	t.Helper()
	res, err := ParseWithDiagnostics(src)
	if err != nil {
		t.Fatalf("ParseWithDiagnostics() error = %v", err)
	}
	return res
}

func nodeByName(t *testing.T, g *graph.Graph, name string) graph.Node {
	t.Helper()
	for _, n := range g.Nodes() {
		if n.Name == name {
			return n
		}
	}
	t.Fatalf("no node named %q", name)
	return graph.Node{}
}

func TestParseCMakeFixture(t *testing.T) {
	res := mustParse(t, readFixture(t, "cmake.dot"))
	g := res.Graph

	if res.Name != "GG" || !res.Directed {
		t.Errorf("header = %q directed=%v, want GG directed", res.Name, res.Directed)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if g.NodeCount() != 9 {
		t.Errorf("NodeCount() = %d, want 9 (legend must be skipped)", g.NodeCount())
	}
	if g.EdgeCount() != 7 {
		t.Errorf("EdgeCount() = %d, want 7", g.EdgeCount())
	}

	kinds := map[string]graph.Kind{
		"app":              graph.KindExecutable,
		"core":             graph.KindStaticLibrary,
		"fmt::fmt":         graph.KindSharedLibrary,
		"headers":          graph.KindInterfaceLibrary,
		"objs":             graph.KindObjectLibrary,
		"plugin":           graph.KindModuleLibrary,
		"Threads::Threads": graph.KindUnknownLibrary,
		"docs":             graph.KindUtility,
		"test_core":        graph.KindExecutable,
	}
	for name, want := range kinds {
		if got := nodeByName(t, g, name).Kind; got != want {
			t.Errorf("kind of %s = %v, want %v", name, got, want)
		}
	}

	for i, n := range g.Nodes() {
		if want := "node" + string(rune('0'+i)); n.ID != want {
			t.Errorf("Nodes()[%d].ID = %q, want %q (declaration order)", i, n.ID, want)
		}
	}

	links := map[[2]string]graph.LinkKind{
		{"node0", "node1"}: graph.LinkPrivate,
		{"node1", "node2"}: graph.LinkDirect,
		{"node1", "node3"}: graph.LinkInterface,
	}
	for _, e := range g.Edges() {
		if want, ok := links[[2]string{e.From, e.To}]; ok && e.Link != want {
			t.Errorf("link %s->%s = %v, want %v", e.From, e.To, e.Link, want)
		}
	}
	if got := g.InDegree("node1"); got != 3 {
		t.Errorf("InDegree(core) = %d, want 3", got)
	}
}

func TestParseNameFallsBackToID(t *testing.T) {
	g := mustParse(t, `digraph { a [shape=egg]; b [label="\N", shape=box]; }`).Graph
	if n, _ := g.Node("a"); n.Name != "a" {
		t.Errorf("Name = %q, want a", n.Name)
	}
	if n, _ := g.Node("b"); n.Name != "b" {
		t.Errorf(`Name for \N label = %q, want b`, n.Name)
	}
}

func TestParseComments(t *testing.T) {
	src := `# generated by cmake
// line comment
digraph "GG" { /* block
  comment spanning lines */
  "a" [ label = "app", shape = egg ]; // trailing
  # preprocessor-style line
  "b" [ label = "lib // not a comment", shape = octagon ];
  "a" -> "b" /* inline */ [ style = solid ]
}
`
	res := mustParse(t, src)
	if res.Graph.NodeCount() != 2 || res.Graph.EdgeCount() != 1 {
		t.Fatalf("got %d nodes, %d edges", res.Graph.NodeCount(), res.Graph.EdgeCount())
	}
	if n, _ := res.Graph.Node("b"); n.Name != "lib // not a comment" {
		t.Errorf("Name = %q", n.Name)
	}
}

func TestParseQuotedStrings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"escaped quote", `digraph { a [label="say \"hi\""]; }`, `say "hi"`},
		{"escaped backslash kept", `digraph { a [label="C:\\lib"]; }`, `C:\\lib`},
		{"escaped backslash before quote", `digraph { a [label="x\\\"y"]; }`, `x\\"y`},
		{"renderer escape kept", `digraph { a [label="two\nlines"]; }`, `two\nlines`},
		{"line continuation", "digraph { a [label=\"long\\\nname\"]; }", "longname"},
		{"concatenation", `digraph { a [label="foo" + "bar"]; }`, "foobar"},
		{"html", `digraph { a [label=<<b>core</b>>]; }`, "<b>core</b>"},
		{"unicode", `digraph { a [label="bibliothèque"]; }`, "bibliothèque"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustParse(t, tt.src).Graph
			n, _ := g.Node("a")
			if n.Name != tt.want {
				t.Errorf("Name = %q, want %q", n.Name, tt.want)
			}
			if n.HTMLLabel != (tt.name == "html") {
				t.Errorf("HTMLLabel = %v", n.HTMLLabel)
			}
		})
	}
}

func TestParseSubgraphsFlattened(t *testing.T) {
	src := `digraph G {
  subgraph cluster_core {
    node [shape=octagon];
    a;
    subgraph cluster_inner { b [label="inner"]; }
  }
  { c [shape=egg] }
  d;
  c -> a; c -> b;
}`
	res := mustParse(t, src)
	g := res.Graph
	if g.NodeCount() != 4 || g.EdgeCount() != 2 {
		t.Fatalf("got %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	if n, _ := g.Node("b"); n.Kind != graph.KindStaticLibrary {
		t.Errorf("nested default shape not inherited: %v", n.Kind)
	}
	if n, _ := g.Node("d"); n.Kind != graph.KindUnknown {
		t.Errorf("subgraph defaults leaked out: %v", n.Kind)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("warnings = %d, want 1 (for d)", len(res.Warnings))
	}
}

func TestParseEdgeChainsAndSubgraphOperands(t *testing.T) {
	src := `digraph { a; b; c; d;
  a -> b -> c [style=dashed];
  d -> {a c};
}`
	g := mustParse(t, src).Graph
	want := []graph.Edge{
		{From: "a", To: "b", Link: graph.LinkInterface},
		{From: "b", To: "c", Link: graph.LinkInterface},
		{From: "d", To: "a"},
		{From: "d", To: "c"},
	}
	got := g.Edges()
	if len(got) != len(want) {
		t.Fatalf("Edges() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Edges()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParseEdgeDefaults(t *testing.T) {
	src := `digraph { a; b; c;
  edge [style=dotted];
  a -> b;
  a -> c [style=solid];
}`
	edges := mustParse(t, src).Graph.Edges()
	if edges[0].Link != graph.LinkPrivate || edges[1].Link != graph.LinkDirect {
		t.Errorf("links = %v, %v", edges[0].Link, edges[1].Link)
	}
}

func TestParsePortsAndGraphAttributes(t *testing.T) {
	src := `digraph {
  graph [rankdir=LR];
  rankdir = TB;
  a [shape=record]; b [shape=box];
  a:p1:n -> b:s;
}`
	g := mustParse(t, src).Graph
	if g.EdgeCount() != 1 || g.NodeCount() != 2 {
		t.Fatalf("got %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	if g.Has("rankdir") {
		t.Error("graph attribute assignment parsed as node")
	}
}

func TestParseForwardReference(t *testing.T) {
	g := mustParse(t, `digraph { a -> b; a [shape=egg]; b [shape=octagon]; }`).Graph
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if g.Nodes()[0].ID != "a" {
		t.Errorf("first node = %q, want a", g.Nodes()[0].ID)
	}
}

func TestParseDuplicateNodeMerges(t *testing.T) {
	g := mustParse(t, `digraph { a [label="x"]; b; a [shape=hexagon]; }`).Graph
	if g.NodeCount() != 2 {
		t.Fatalf("NodeCount() = %d, want 2", g.NodeCount())
	}
	n := g.Nodes()[0]
	if n.ID != "a" || n.Name != "x" || n.Kind != graph.KindObjectLibrary {
		t.Errorf("merged node = %+v", n)
	}
}

func TestParseCyclic(t *testing.T) {
	g := mustParse(t, `digraph { a [shape=octagon]; b [shape=octagon]; a -> b; b -> a; a -> a; }`).Graph
	if g.EdgeCount() != 3 || g.InDegree("a") != 2 {
		t.Errorf("cyclic graph: %d edges, in(a)=%d", g.EdgeCount(), g.InDegree("a"))
	}
}

func TestParseUndirected(t *testing.T) {
	res := mustParse(t, `strict graph deps { a; b; a -- b; }`)
	if res.Directed || res.Graph.EdgeCount() != 1 || res.Name != "deps" {
		t.Errorf("undirected parse: directed=%v edges=%d name=%q", res.Directed, res.Graph.EdgeCount(), res.Name)
	}
}

func TestParseUnrecognizedShape(t *testing.T) {
	res := mustParse(t, `digraph { a [label="weird", shape=cylinder]; b [label="plain"]; }`)
	for _, n := range res.Graph.Nodes() {
		if n.Kind != graph.KindUnknown {
			t.Errorf("%s kind = %v, want unknown", n.Name, n.Kind)
		}
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("warnings = %d, want 2", len(res.Warnings))
	}
	for _, w := range res.Warnings {
		if w.Code != errors.ErrCodeUnrecognizedAttribute {
			t.Errorf("warning code = %v", w.Code)
		}
	}
}

func TestParseUnrecognizedEdgeStyle(t *testing.T) {
	res := mustParse(t, `digraph { a; b; c; a -> b [style=wavy]; a -> c [style=bold]; }`)
	edges := res.Graph.Edges()
	if edges[0].Link != graph.LinkDirect || edges[1].Link != graph.LinkDirect {
		t.Errorf("links = %v", edges)
	}
	// 3 shapeless nodes + 1 unknown style; "bold" is a modifier, not a mismatch
	if len(res.Warnings) != 4 {
		t.Errorf("warnings = %d, want 4: %v", len(res.Warnings), res.Warnings)
	}
}

func TestParseUnknownNodeReference(t *testing.T) {
	tests := []string{
		`digraph { "a" [shape=egg]; "a" -> "b"; }`,
		`digraph { b; a -> b; }`,
		`digraph { a; a -> c -> a; }`,
		`digraph { subgraph clusterLegend { x; } a; a -> x; }`,
	}
	for _, src := range tests {
		_, err := Parse(src)
		if !errors.Is(err, errors.ErrCodeUnknownNodeReference) {
			t.Errorf("Parse(%q) error = %v, want UNKNOWN_NODE_REFERENCE", src, err)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty input", ""},
		{"missing header", `G { a; }`},
		{"missing body", `digraph G`},
		{"unterminated string", `digraph G { "a [label="x"]; }`},
		{"unterminated comment", `digraph G { a; /* never closed }`},
		{"unterminated html", `digraph G { a [label=<b]; }`},
		{"missing closing brace", `digraph G { a; subgraph s { b; }`},
		{"extra closing brace", `digraph G { a; } }`},
		{"unterminated attribute list", `digraph G { a [label = "x" ; }`},
		{"missing attribute value", `digraph G { a [label = ]; }`},
		{"missing equals", `digraph G { a [label "x"]; }`},
		{"wrong edge operator", `digraph G { a; b; a -- b; }`},
		{"directed operator in graph", `graph G { a; b; a -> b; }`},
		{"dangling edge operator", `digraph G { a -> ; }`},
		{"subgraph without body", `digraph G { subgraph x a }`},
		{"stray bracket", `digraph G { ] }`},
		{"bad character", `digraph G { a @ b }`},
		{"bad numeral", `digraph G { - }`},
		{"empty node id", `digraph G { "" [shape=egg]; }`},
		{"node keyword without list", `digraph G { node; }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			if err == nil {
				t.Fatal("Parse() error = nil, want MALFORMED_DESCRIPTION")
			}
			if !errors.Is(err, errors.ErrCodeMalformedDescription) {
				t.Errorf("Parse() error = %v, want MALFORMED_DESCRIPTION", err)
			}
		})
	}
}

func TestParseErrorLineNumber(t *testing.T) {
	_, err := Parse("digraph G {\n  a;\n  b [label=\"x\"\n}\n")
	if err == nil {
		t.Fatal("expected error")
	}
	if msg := errors.UserMessage(err); !strings.HasPrefix(msg, "line 3:") {
		t.Errorf("message = %q, want prefix %q", msg, "line 3:")
	}
}

func TestParseReader(t *testing.T) {
	f, err := os.Open("testdata/cmake.dot")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	res, err := ParseReader(f)
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	if res.Graph.NodeCount() != 9 {
		t.Errorf("NodeCount() = %d, want 9", res.Graph.NodeCount())
	}
}
