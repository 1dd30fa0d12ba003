package dot_test

import (
	"fmt"

	"github.com/matzehuels/cmakegraph/pkg/dot"
	"github.com/matzehuels/cmakegraph/pkg/graph"
)

func ExampleParse() {
	src := `digraph "GG" {
    "node0" [ label = "app", shape = egg ];
    "node1" [ label = "core", shape = octagon ];
    "node0" -> "node1" [ style = dotted ] // app -> core
}`
	g, err := dot.Parse(src)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, n := range g.Nodes() {
		fmt.Printf("%s: %s\n", n.Name, n.Kind)
	}
	for _, e := range g.Edges() {
		fmt.Printf("%s -> %s (%s)\n", e.From, e.To, e.Link)
	}
	// Output:
	// app: executable
	// core: static_library
	// node0 -> node1 (private)
}

func ExampleEmit() {
	b := graph.NewBuilder("GG")
	_ = b.AddNode(graph.Node{ID: "node0", Name: "app", Kind: graph.KindExecutable})
	_ = b.AddNode(graph.Node{ID: "node1", Name: "fmt", Kind: graph.KindSharedLibrary})
	_ = b.AddEdge(graph.Edge{From: "node0", To: "node1"})

	fmt.Print(dot.Emit(graph.Plain(b.Build()), dot.EmitOptions{}))
	// Output:
	// digraph "GG" {
	// node [
	//   fontsize = "12"
	// ];
	//     "node0" [ label = "app", shape = egg ];
	//     "node1" [ label = "fmt", shape = doubleoctagon ];
	//     "node0" -> "node1" [ style = solid ] // app -> fmt
	// }
}
