// Package io reads and writes cmakegraph inputs and outputs.
//
// # DOT files
//
// [ImportDOT] reads a DOT description written by `cmake --graphviz=FILE`.
// Besides FILE, CMake writes one fragment per target: FILE.<target> holds the
// target's dependencies and FILE.<target>.dependers the targets depending on
// it. [Fragments] lists them:
//
//	frags, err := io.Fragments("build/graph.dot")
//	for _, f := range frags {
//	    fmt.Println(f.Target, f.Dependers, f.Path)
//	}
//
// [ExportDOT] writes output atomically: the text goes to a uniquely named
// temporary file in the destination directory which is then renamed over the
// destination. A failed write never leaves a partial file behind.
//
// # JSON
//
// [WriteJSON] exports an annotated graph for tools that do not read DOT:
//
//	{
//	  "name": "GG",
//	  "threshold": 2,
//	  "nodes": [
//	    {"id": "node0", "name": "app", "kind": "executable", "dependers": 0},
//	    {"id": "node1", "name": "core", "kind": "static_library", "dependers": 2, "frequent": true}
//	  ],
//	  "edges": [
//	    {"from": "node0", "to": "node1", "link": "private"}
//	  ]
//	}
//
// [ReadJSON] decodes the same format, so exports can be re-imported.
package io
