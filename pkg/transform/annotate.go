package transform

import "github.com/matzehuels/cmakegraph/pkg/graph"

// Annotate marks every node of g whose incoming degree is at least threshold
// as frequent. Parallel edges each count. A threshold of zero or less
// disables annotation. The node and edge sets are left untouched.
func Annotate(g *graph.Graph, threshold int) *graph.Annotated {
	if threshold <= 0 {
		return graph.NewAnnotated(g, 0, nil, nil)
	}

	frequent := make(map[string]bool)
	dependers := make(map[string]int, g.NodeCount())
	for _, n := range g.Nodes() {
		in := g.InDegree(n.ID)
		dependers[n.ID] = in
		if in >= threshold {
			frequent[n.ID] = true
		}
	}
	return graph.NewAnnotated(g, threshold, frequent, dependers)
}
