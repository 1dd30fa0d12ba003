// Package pkg holds the cmakegraph libraries.
//
// # Overview
//
// cmakegraph post-processes the target graphs CMake writes with
// `cmake --graphviz`. The data flow is a fixed pipeline:
//
//	DOT text (cmake --graphviz) or file-API reply
//	         ↓
//	    [dot] / [fileapi] (parse into a graph)
//	         ↓
//	    [transform] (filter skipped targets, annotate frequent dependencies)
//	         ↓
//	    [dot] (emit DOT), [io] (JSON), [render] (SVG/PNG)
//
// [pipeline] runs these stages with validation, logging and timing; the CLI
// and the HTTP server both call it.
//
// # Main Packages
//
// [graph] - immutable target graph: nodes with a kind, edges with a link
// visibility, and the annotated view produced by [transform].
//
// [dot] - lexer, parser and emitter for the subset of DOT CMake produces,
// including its shape and line-style conventions.
//
// [transform] - Filter (by kind and name substring) and Annotate (frequent
// dependencies by in-degree on the filtered graph).
//
// [fileapi] - reads the codemodel-v2 reply of CMake's file API.
//
// [io] - file import/export with atomic writes and JSON encoding.
//
// [render] - in-process Graphviz rendering with a content-addressed [cache].
//
// [config] - the .cmakegraph.toml configuration file.
//
// [errors] - coded errors shared by all packages.
//
// [observability] - hooks for stage, render, cache and HTTP events.
package pkg
