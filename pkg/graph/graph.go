package graph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Builder.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Builder.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Builder.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Builder.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrBuilderDone is returned by [Builder] methods after [Builder.Build].
	ErrBuilderDone = errors.New("builder already built")
)

// Node is a build target.
type Node struct {
	ID   string // Identifier used in the source graph (e.g. "node3")
	Name string // Target name shown to users (e.g. "fmt")
	Kind Kind   // Target category

	// HTMLLabel marks Name as an HTML-like label (<b>fmt</b>), which is
	// written back in angle brackets instead of quotes.
	HTMLLabel bool

	// Project and Directory place the target in the source tree, and Tooltip
	// holds plain-text details about it. Only the file-API reader fills them.
	Project   string
	Directory string // source directory relative to the top-level source dir
	Tooltip   string
}

// DisplayName returns Name, or ID when the node has no name.
func (n Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// Edge is a directed dependency: From links against To.
type Edge struct {
	From string
	To   string
	Link LinkKind
}

// Graph is an immutable directed graph of build targets.
//
// The zero value is an empty graph. Use [Builder] to construct a populated one.
// Graph is safe for concurrent reads.
type Graph struct {
	name     string
	order    []string
	nodes    map[string]Node
	edges    []Edge
	outgoing map[string][]int // nodeID -> indices into edges
	incoming map[string][]int
}

// Name returns the graph name (CMake uses "GG").
func (g *Graph) Name() string { return g.name }

// Node returns the node with the given ID and true, or the zero Node and
// false if not found.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether the graph contains a node with the given ID.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes in declaration order.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// Edges returns a copy of all edges in their original order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// OutEdges returns the edges originating at id, in original order.
// Returns nil if the node has no outgoing edges or doesn't exist.
func (g *Graph) OutEdges(id string) []Edge { return g.collect(g.outgoing[id]) }

// InEdges returns the edges terminating at id, in original order.
// Returns nil if the node has no incoming edges or doesn't exist.
func (g *Graph) InEdges(id string) []Edge { return g.collect(g.incoming[id]) }

func (g *Graph) collect(idx []int) []Edge {
	if len(idx) == 0 {
		return nil
	}
	out := make([]Edge, len(idx))
	for i, j := range idx {
		out[i] = g.edges[j]
	}
	return out
}

// InDegree returns the number of edges terminating at id (its dependers).
// Parallel edges each count. Returns 0 if the node doesn't exist.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// OutDegree returns the number of edges originating at id.
// Returns 0 if the node doesn't exist.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// Induced returns a new graph containing the nodes for which keep returns
// true and every edge whose endpoints were both kept. Node declaration order
// and edge order are preserved. g is not modified.
func (g *Graph) Induced(keep func(Node) bool) *Graph {
	b := NewBuilder(g.name)
	for _, id := range g.order {
		if n := g.nodes[id]; keep(n) {
			b.mustAddNode(n)
		}
	}
	for _, e := range g.edges {
		if b.g.Has(e.From) && b.g.Has(e.To) {
			b.mustAddEdge(e)
		}
	}
	return b.Build()
}

// Validate checks that every edge connects nodes present in the graph.
// Returns an error wrapping [ErrInvalidEdgeEndpoint] naming the first
// offending edge, or nil.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if !g.Has(e.From) || !g.Has(e.To) {
			return fmt.Errorf("edge %s->%s: %w", e.From, e.To, ErrInvalidEdgeEndpoint)
		}
	}
	return nil
}

// Builder assembles a [Graph]. It is not safe for concurrent use and must not
// be used after [Builder.Build].
type Builder struct {
	g    *Graph
	done bool
}

// NewBuilder returns a Builder for a graph with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{g: &Graph{
		name:     name,
		nodes:    make(map[string]Node),
		outgoing: make(map[string][]int),
		incoming: make(map[string][]int),
	}}
}

// AddNode appends a node. Returns ErrInvalidNodeID if the ID is empty or
// ErrDuplicateNodeID if a node with the same ID was already added.
func (b *Builder) AddNode(n Node) error {
	if b.done {
		return ErrBuilderDone
	}
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if b.g.Has(n.ID) {
		return ErrDuplicateNodeID
	}
	b.g.nodes[n.ID] = n
	b.g.order = append(b.g.order, n.ID)
	return nil
}

// AddEdge appends a directed edge between two nodes that were already added.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if an endpoint is
// missing. Self-loops and parallel edges are allowed.
func (b *Builder) AddEdge(e Edge) error {
	if b.done {
		return ErrBuilderDone
	}
	if !b.g.Has(e.From) {
		return ErrUnknownSourceNode
	}
	if !b.g.Has(e.To) {
		return ErrUnknownTargetNode
	}
	i := len(b.g.edges)
	b.g.edges = append(b.g.edges, e)
	b.g.outgoing[e.From] = append(b.g.outgoing[e.From], i)
	b.g.incoming[e.To] = append(b.g.incoming[e.To], i)
	return nil
}

func (b *Builder) mustAddNode(n Node) {
	if err := b.AddNode(n); err != nil {
		panic(fmt.Sprintf("graph: add node %q: %v", n.ID, err))
	}
}

func (b *Builder) mustAddEdge(e Edge) {
	if err := b.AddEdge(e); err != nil {
		panic(fmt.Sprintf("graph: add edge %s->%s: %v", e.From, e.To, err))
	}
}

// Build returns the assembled graph. Further calls to AddNode or AddEdge
// return ErrBuilderDone.
func (b *Builder) Build() *Graph {
	b.done = true
	return b.g
}
