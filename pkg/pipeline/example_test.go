package pipeline_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/cmakegraph/pkg/pipeline"
)

func ExampleRun() {
	src := `digraph "GG" {
    "node0" [ label = "app", shape = egg ];
    "node1" [ label = "core", shape = octagon ];
    "node2" [ label = "test_core", shape = egg ];
    "node0" -> "node1" [ style = dotted ] // app -> core
    "node2" -> "node1" [ style = dotted ] // test_core -> core
}`
	res, err := pipeline.Run(context.Background(), src, pipeline.Options{
		SkipNames:         []string{"test_"},
		FrequentThreshold: 1,
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Print(res.DOT)
	// Output:
	// digraph "GG" {
	// node [
	//   fontsize = "12"
	// ];
	//     "node0" [ label = "app", shape = egg ];
	//     "node1" [ label = "core", shape = octagon, style = "bold,filled", fillcolor = "#ffe082", penwidth = 2, tooltip = "1 dependers" ];
	//     "node0" -> "node1" [ style = dotted ] // app -> core
	// }
}
