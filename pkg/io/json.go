package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	cgerrors "github.com/matzehuels/cmakegraph/pkg/errors"
	"github.com/matzehuels/cmakegraph/pkg/graph"
)

type jsonGraph struct {
	Name      string     `json:"name,omitempty"`
	Threshold int        `json:"threshold,omitempty"`
	Nodes     []jsonNode `json:"nodes"`
	Edges     []jsonEdge `json:"edges"`
}

type jsonNode struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Kind      string `json:"kind"`
	Dependers int    `json:"dependers"`
	Frequent  bool   `json:"frequent,omitempty"`
	HTML      bool   `json:"html,omitempty"`
	Project   string `json:"project,omitempty"`
	Directory string `json:"directory,omitempty"`
	Tooltip   string `json:"tooltip,omitempty"`
}

type jsonEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Link string `json:"link"`
}

// WriteJSON encodes an annotated graph as JSON and writes it to w.
// Nodes keep declaration order and edges their original order.
func WriteJSON(a *graph.Annotated, w io.Writer) error {
	out := jsonGraph{
		Name:      a.Name(),
		Threshold: a.Threshold(),
		Nodes:     make([]jsonNode, 0, a.NodeCount()),
		Edges:     make([]jsonEdge, 0, a.EdgeCount()),
	}
	for _, n := range a.Nodes() {
		out.Nodes = append(out.Nodes, jsonNode{
			ID:        n.ID,
			Name:      n.Name,
			Kind:      n.Kind.String(),
			Dependers: a.Dependers(n.ID),
			Frequent:  a.Frequent(n.ID),
			HTML:      n.HTMLLabel,
			Project:   n.Project,
			Directory: n.Directory,
			Tooltip:   n.Tooltip,
		})
	}
	for _, e := range a.Edges() {
		out.Edges = append(out.Edges, jsonEdge{From: e.From, To: e.To, Link: e.Link.String()})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalJSON returns the output of [WriteJSON] as bytes.
func MarshalJSON(a *graph.Annotated) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(a, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadJSON decodes a graph written by [WriteJSON].
//
// Unknown kind or link names, duplicate IDs and edges naming missing nodes
// are reported as MALFORMED_DESCRIPTION and UNKNOWN_NODE_REFERENCE errors.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*graph.Annotated, error) {
	var data jsonGraph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeMalformedDescription, err, "decode")
	}

	b := graph.NewBuilder(data.Name)
	frequent := make(map[string]bool)
	dependers := make(map[string]int)
	for _, n := range data.Nodes {
		kind, ok := graph.ParseKind(n.Kind)
		if !ok {
			return nil, cgerrors.New(cgerrors.ErrCodeMalformedDescription, "node %s: unknown kind %q", n.ID, n.Kind)
		}
		node := graph.Node{
			ID:        n.ID,
			Name:      n.Name,
			Kind:      kind,
			HTMLLabel: n.HTML,
			Project:   n.Project,
			Directory: n.Directory,
			Tooltip:   n.Tooltip,
		}
		if err := b.AddNode(node); err != nil {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeMalformedDescription, err, "node %s", n.ID)
		}
		frequent[n.ID] = n.Frequent
		dependers[n.ID] = n.Dependers
	}
	for _, e := range data.Edges {
		link, ok := graph.ParseLinkKind(e.Link)
		if !ok {
			return nil, cgerrors.New(cgerrors.ErrCodeMalformedDescription, "edge %s->%s: unknown link %q", e.From, e.To, e.Link)
		}
		if err := b.AddEdge(graph.Edge{From: e.From, To: e.To, Link: link}); err != nil {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeUnknownNodeReference, err, "edge %s->%s", e.From, e.To)
		}
	}

	return graph.NewAnnotated(b.Build(), data.Threshold, frequent, dependers), nil
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
func ImportJSON(path string) (*graph.Annotated, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeMissingInputFile, err, "input file %s does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// ExportJSON writes the JSON encoding of a to path atomically. Parent
// directories are created as needed.
func ExportJSON(a *graph.Annotated, path string) error {
	data, err := MarshalJSON(a)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "create %s", dir)
		}
	}
	return WriteFileAtomic(path, data, 0o644)
}
