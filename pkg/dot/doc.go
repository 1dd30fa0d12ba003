// Package dot reads and writes the graphviz DOT dialect produced by
// `cmake --graphviz`.
//
// # Parsing
//
// [Parse] accepts the DOT grammar (strict/graph/digraph headers, node, edge
// and attribute statements, subgraphs, comments, quoted and HTML strings) and
// decodes the CMake conventions into a [graph.Graph]:
//
//   - the node ID is the quoted identifier ("node0")
//   - the target name is the label attribute, falling back to the ID
//   - the target kind is decoded from the shape attribute
//   - the link kind is decoded from the edge style attribute
//
// Subgraphs are flattened. The legend cluster CMake adds to its output
// (subgraph "clusterLegend") is skipped entirely.
//
// # Emitting
//
// [Emit] is the inverse: it writes an annotated graph back in the same
// dialect, with frequent dependencies visually emphasized. Parsing emitted
// output yields the same nodes, kinds and edges.
//
// # Shape conventions
//
//	egg            executable
//	octagon        static library
//	doubleoctagon  shared library
//	tripleoctagon  module library
//	pentagon       interface library
//	hexagon        object library
//	septagon       unknown (imported) library
//	box            custom target
//
// Edges are solid for direct links, dashed for interface links and dotted
// for private links.
package dot
