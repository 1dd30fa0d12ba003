// Package transform provides the pure graph stages of the cmakegraph
// pipeline.
//
// # Filter
//
// [Filter] removes nodes whose kind is in a skip set or whose name contains
// one of a list of substrings, together with every edge touching them. The
// result is the subgraph induced by the surviving nodes, so it never holds a
// dangling edge. Filtering is idempotent and the order of the rules is
// irrelevant.
//
// # Annotate
//
// [Annotate] measures every node's incoming degree on the graph it is given
// and marks nodes whose degree reaches a threshold as frequent. The pipeline
// always filters first, so a library used only by skipped test targets is not
// emphasized:
//
//	filtered := transform.Filter(g, transform.Rules{SkipNames: []string{"test_"}})
//	annotated := transform.Annotate(filtered, 2)
//
// Both stages return new values and never modify their input.
package transform
