// Package graph provides the target-dependency graph model used by every
// cmakegraph pipeline stage.
//
// # Overview
//
// CMake's graphviz export describes build targets (executables, libraries,
// custom targets) and the link dependencies between them. This package holds
// that structure as a general directed graph: a set of [Node] values keyed by
// ID, remembered in declaration order, and an ordered slice of [Edge] values.
// Cycles are allowed; nothing here assumes acyclicity.
//
// # Immutability
//
// A [Graph] is assembled once through a [Builder] and is read-only afterwards.
// Accessors return copies, so pipeline stages never share mutable state:
//
//	b := graph.NewBuilder("GG")
//	_ = b.AddNode(graph.Node{ID: "node0", Name: "app", Kind: graph.KindExecutable})
//	_ = b.AddNode(graph.Node{ID: "node1", Name: "core", Kind: graph.KindStaticLibrary})
//	_ = b.AddEdge(graph.Edge{From: "node0", To: "node1"})
//	g := b.Build()
//
// Transformations (see pkg/transform) build a new Graph instead of editing one.
// [Graph.Induced] is the primitive they use to drop nodes together with every
// edge that touches them.
//
// # Invariants
//
// Node IDs are unique and non-empty, and every edge endpoint exists in the
// same graph. [Builder.AddEdge] rejects edges with unknown endpoints and
// [Graph.Validate] rechecks the invariant.
//
// # Kinds
//
// [Kind] is a closed enumeration of CMake target types with [KindUnknown] as
// the fallback for attributes that match no known category. [LinkKind]
// distinguishes direct, interface and private link dependencies.
//
// # Annotations
//
// [Annotated] pairs a Graph with the per-node "frequent" flag computed by the
// frequency annotator. Annotation is metadata only and never alters the graph.
package graph
