package graph

import "maps"

// Annotated pairs a Graph with per-node frequency annotations.
//
// The embedded Graph is shared, not copied: annotation never changes the
// node or edge sets.
type Annotated struct {
	*Graph
	threshold int
	frequent  map[string]bool
	dependers map[string]int
}

// NewAnnotated wraps g with the given annotations. frequent holds the IDs of
// nodes marked frequent; dependers holds the measured incoming degree per node.
// Both maps are copied. Either may be nil.
func NewAnnotated(g *Graph, threshold int, frequent map[string]bool, dependers map[string]int) *Annotated {
	a := &Annotated{
		Graph:     g,
		threshold: threshold,
		frequent:  make(map[string]bool, len(frequent)),
		dependers: maps.Clone(dependers),
	}
	for id, f := range frequent {
		if f {
			a.frequent[id] = true
		}
	}
	return a
}

// Plain wraps g without any annotations.
func Plain(g *Graph) *Annotated { return NewAnnotated(g, 0, nil, nil) }

// Threshold returns the threshold the annotations were computed with.
// Zero means annotation was disabled.
func (a *Annotated) Threshold() int { return a.threshold }

// Frequent reports whether the node is marked as a frequent dependency.
func (a *Annotated) Frequent(id string) bool { return a.frequent[id] }

// Dependers returns the incoming degree measured for the node when the
// annotations were computed, falling back to the graph's in-degree.
func (a *Annotated) Dependers(id string) int {
	if n, ok := a.dependers[id]; ok {
		return n
	}
	return a.InDegree(id)
}

// FrequentNodes returns the frequent nodes in declaration order.
func (a *Annotated) FrequentNodes() []Node {
	var out []Node
	for _, n := range a.Nodes() {
		if a.frequent[n.ID] {
			out = append(out, n)
		}
	}
	return out
}
