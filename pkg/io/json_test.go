package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/cmakegraph/pkg/errors"
	"github.com/matzehuels/cmakegraph/pkg/graph"
)

func sampleAnnotated(t *testing.T) *graph.Annotated {
	t.Helper()
	b := graph.NewBuilder("GG")
	for _, n := range []graph.Node{
		{ID: "node0", Name: "app", Kind: graph.KindExecutable},
		{ID: "node1", Name: "core", Kind: graph.KindStaticLibrary,
			Project: "demo", Directory: "src", Tooltip: "type=STATIC_LIBRARY\nlen(depends)=0"},
		{ID: "node2", Name: "test_core", Kind: graph.KindExecutable},
	} {
		if err := b.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []graph.Edge{
		{From: "node0", To: "node1", Link: graph.LinkPrivate},
		{From: "node2", To: "node1", Link: graph.LinkInterface},
	} {
		if err := b.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	g := b.Build()
	return graph.NewAnnotated(g, 2, map[string]bool{"node1": true}, map[string]int{"node0": 0, "node1": 2, "node2": 0})
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleAnnotated(t), &buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`"name": "GG"`,
		`"threshold": 2`,
		`"kind": "static_library"`,
		`"frequent": true`,
		`"link": "private"`,
		`"link": "interface"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
	if strings.Count(out, `"frequent"`) != 1 {
		t.Error("only frequent nodes should carry the flag")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	a := sampleAnnotated(t)
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := ExportJSON(a, path); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}

	if got.Name() != "GG" || got.Threshold() != 2 {
		t.Errorf("header = %q/%d", got.Name(), got.Threshold())
	}
	wantNodes, gotNodes := a.Nodes(), got.Nodes()
	if len(gotNodes) != len(wantNodes) {
		t.Fatalf("nodes = %v", gotNodes)
	}
	for i := range wantNodes {
		if gotNodes[i] != wantNodes[i] {
			t.Errorf("node %d = %+v, want %+v", i, gotNodes[i], wantNodes[i])
		}
	}
	wantEdges, gotEdges := a.Edges(), got.Edges()
	for i := range wantEdges {
		if gotEdges[i] != wantEdges[i] {
			t.Errorf("edge %d = %+v, want %+v", i, gotEdges[i], wantEdges[i])
		}
	}
	if !got.Frequent("node1") || got.Frequent("node0") || got.Dependers("node1") != 2 {
		t.Error("annotations lost in round trip")
	}
}

func TestReadJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"not json", `{nodes:`, errors.ErrCodeMalformedDescription},
		{"unknown kind", `{"nodes":[{"id":"a","kind":"rocket"}],"edges":[]}`, errors.ErrCodeMalformedDescription},
		{"duplicate id", `{"nodes":[{"id":"a","kind":"utility"},{"id":"a","kind":"utility"}],"edges":[]}`, errors.ErrCodeMalformedDescription},
		{"unknown link", `{"nodes":[{"id":"a","kind":"utility"}],"edges":[{"from":"a","to":"a","link":"weak"}]}`, errors.ErrCodeMalformedDescription},
		{"dangling edge", `{"nodes":[{"id":"a","kind":"utility"}],"edges":[{"from":"a","to":"b","link":"direct"}]}`, errors.ErrCodeUnknownNodeReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.in))
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadJSON() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestImportJSON_Missing(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "none.json"))
	if !errors.Is(err, errors.ErrCodeMissingInputFile) {
		t.Errorf("ImportJSON() error = %v, want MISSING_INPUT_FILE", err)
	}
}
