package transform

import (
	"strings"

	"github.com/matzehuels/cmakegraph/pkg/graph"
)

// Rules selects the nodes [Filter] removes.
type Rules struct {
	// SkipKinds removes every node of one of these kinds.
	SkipKinds []graph.Kind
	// SkipNames removes every node whose name contains one of these
	// substrings (case-sensitive). Empty patterns are ignored.
	SkipNames []string
}

// Empty reports whether r removes nothing.
func (r Rules) Empty() bool {
	if len(r.SkipKinds) > 0 {
		return false
	}
	for _, p := range r.SkipNames {
		if p != "" {
			return false
		}
	}
	return true
}

// Skips reports whether r removes n.
func (r Rules) Skips(n graph.Node) bool {
	for _, k := range r.SkipKinds {
		if n.Kind == k {
			return true
		}
	}
	for _, p := range r.SkipNames {
		if p != "" && strings.Contains(n.Name, p) {
			return true
		}
	}
	return false
}

// FilterStats counts what a filter pass removed.
type FilterStats struct {
	NodesRemoved int
	EdgesRemoved int
	// Removed lists the names of removed nodes in declaration order.
	Removed []string
}

// Filter returns the subgraph of g induced by the nodes r does not skip.
// Surviving nodes keep their declaration order and surviving edges their
// original order. g is not modified.
func Filter(g *graph.Graph, r Rules) *graph.Graph {
	out, _ := FilterWithStats(g, r)
	return out
}

// FilterWithStats is [Filter] that also reports what was removed.
func FilterWithStats(g *graph.Graph, r Rules) (*graph.Graph, FilterStats) {
	var stats FilterStats
	out := g.Induced(func(n graph.Node) bool {
		if r.Skips(n) {
			stats.Removed = append(stats.Removed, n.DisplayName())
			return false
		}
		return true
	})
	stats.NodesRemoved = g.NodeCount() - out.NodeCount()
	stats.EdgesRemoved = g.EdgeCount() - out.EdgeCount()
	return out, stats
}
