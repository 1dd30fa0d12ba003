// Package fileapi reads target graphs through CMake's file-based API.
//
// Instead of parsing `cmake --graphviz` output, a build tree can be asked for
// its code model directly. [SetupQuery] writes a stateless query file; the
// next `cmake` run answers it with JSON reply files, which [LoadReply]
// decodes:
//
//	if err := fileapi.SetupQuery("build"); err != nil { ... }
//	// cmake -S . -B build
//	cfgs, err := fileapi.LoadReply("build")
//	for _, cfg := range cfgs {
//	    g, err := cfg.Graph()
//	    ...
//	}
//
// The resulting graph uses target IDs as node IDs and the target type as the
// node kind, so it runs through the same filter and annotate stages as a
// parsed DOT description. Each node also records its project and source
// directory, which the emitter turns into nested clusters, and a tooltip
// summarizing where and how the target is built.
package fileapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	cgerrors "github.com/matzehuels/cmakegraph/pkg/errors"
	"github.com/matzehuels/cmakegraph/pkg/graph"
)

// ClientName identifies this tool's queries and replies.
const ClientName = "cmakegraph"

const (
	apiDir        = ".cmake/api/v1"
	codemodelKind = "codemodel-v2"
)

func clientKey() string { return "client-" + ClientName }

// QueryDir returns the directory holding this tool's query files.
func QueryDir(buildDir string) string {
	return filepath.Join(buildDir, apiDir, "query", clientKey())
}

// ReplyDir returns the directory CMake writes replies to.
func ReplyDir(buildDir string) string {
	return filepath.Join(buildDir, apiDir, "reply")
}

// SetupQuery requests the codemodel-v2 object for the next CMake run by
// creating an empty query file. It is idempotent.
func SetupQuery(buildDir string) error {
	if err := cgerrors.ValidatePath(buildDir); err != nil {
		return err
	}
	dir := QueryDir(buildDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "create %s", dir)
	}
	path := filepath.Join(dir, codemodelKind)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// Configuration is one build configuration (e.g. Debug) of the code model.
type Configuration struct {
	Name    string
	Project string // top-level project name
	Targets []Target
}

// Target is a build target and the IDs of the targets it depends on.
type Target struct {
	ID           string
	Name         string
	Type         string // e.g. "EXECUTABLE", "STATIC_LIBRARY", "UTILITY"
	Dependencies []string

	Project    string      // name of the project that defines the target
	Directory  string      // source directory, relative to the top-level one
	Definition *Definition // nil when no add_executable/add_library is recorded
	Installs   []string    // install destinations joined with the prefix
	// CompileGroups lists the sources compiled with the same settings.
	CompileGroups []CompileGroup
}

// Definition is the command that created a target and where it was called.
type Definition struct {
	Command string // add_executable or add_library
	File    string // CMakeLists.txt path relative to the top-level source dir
	Line    int
}

func (d Definition) String() string {
	return fmt.Sprintf("%s @ %s:%d", d.Command, d.File, d.Line)
}

// CompileGroup is one set of sources sharing include paths and defines.
type CompileGroup struct {
	Language string
	Includes []string
	Defines  []string
	Sources  []string
}

type replyIndex struct {
	Reply map[string]json.RawMessage `json:"reply"`
}

type replyObject struct {
	JSONFile string `json:"jsonFile"`
	Error    string `json:"error"`
}

type codemodel struct {
	Configurations []struct {
		Name     string `json:"name"`
		Projects []struct {
			Name string `json:"name"`
		} `json:"projects"`
		Directories []struct {
			Source string `json:"source"`
		} `json:"directories"`
		Targets []struct {
			Name           string `json:"name"`
			ID             string `json:"id"`
			JSONFile       string `json:"jsonFile"`
			ProjectIndex   int    `json:"projectIndex"`
			DirectoryIndex int    `json:"directoryIndex"`
		} `json:"targets"`
	} `json:"configurations"`
}

type targetFile struct {
	Name         string `json:"name"`
	ID           string `json:"id"`
	Type         string `json:"type"`
	Dependencies []struct {
		ID string `json:"id"`
	} `json:"dependencies"`
	BacktraceGraph *struct {
		Commands []string `json:"commands"`
		Files    []string `json:"files"`
		Nodes    []struct {
			File    int  `json:"file"`
			Line    int  `json:"line"`
			Command *int `json:"command"`
		} `json:"nodes"`
	} `json:"backtraceGraph"`
	Install *struct {
		Prefix struct {
			Path string `json:"path"`
		} `json:"prefix"`
		Destinations []struct {
			Path string `json:"path"`
		} `json:"destinations"`
	} `json:"install"`
	Sources []struct {
		Path string `json:"path"`
	} `json:"sources"`
	CompileGroups []struct {
		Language      string `json:"language"`
		SourceIndexes []int  `json:"sourceIndexes"`
		Includes      []struct {
			Path string `json:"path"`
		} `json:"includes"`
		Defines []struct {
			Define string `json:"define"`
		} `json:"defines"`
	} `json:"compileGroups"`
}

// definition finds the add_executable or add_library call in the target's
// backtrace graph.
func (tf *targetFile) definition() *Definition {
	bg := tf.BacktraceGraph
	if bg == nil {
		return nil
	}
	for _, n := range bg.Nodes {
		if n.Command == nil || *n.Command < 0 || *n.Command >= len(bg.Commands) {
			continue
		}
		cmd := bg.Commands[*n.Command]
		if cmd != "add_executable" && cmd != "add_library" {
			continue
		}
		d := &Definition{Command: cmd, Line: n.Line}
		if n.File >= 0 && n.File < len(bg.Files) {
			d.File = bg.Files[n.File]
		}
		return d
	}
	return nil
}

func (tf *targetFile) installs() []string {
	if tf.Install == nil {
		return nil
	}
	var out []string
	for _, d := range tf.Install.Destinations {
		if path.IsAbs(d.Path) || tf.Install.Prefix.Path == "" {
			out = append(out, d.Path)
			continue
		}
		out = append(out, path.Join(tf.Install.Prefix.Path, d.Path))
	}
	return out
}

func (tf *targetFile) compileGroups() ([]CompileGroup, error) {
	var out []CompileGroup
	for i, cg := range tf.CompileGroups {
		g := CompileGroup{Language: cg.Language}
		for _, inc := range cg.Includes {
			g.Includes = append(g.Includes, inc.Path)
		}
		for _, def := range cg.Defines {
			g.Defines = append(g.Defines, def.Define)
		}
		for _, si := range cg.SourceIndexes {
			if si < 0 || si >= len(tf.Sources) {
				return nil, cgerrors.New(cgerrors.ErrCodeMalformedDescription,
					"target %q: compile group %d names source %d of %d", tf.Name, i, si, len(tf.Sources))
			}
			g.Sources = append(g.Sources, tf.Sources[si].Path)
		}
		out = append(out, g)
	}
	return out, nil
}

// LoadReply decodes the newest codemodel-v2 reply for this client.
//
// A missing reply directory, index or reply entry is MISSING_INPUT_FILE (the
// query was not set up, or CMake has not run since). Invalid JSON or an
// error reported by CMake is MALFORMED_DESCRIPTION.
func LoadReply(buildDir string) ([]Configuration, error) {
	replyDir := ReplyDir(buildDir)
	indexPath, err := latestIndex(replyDir)
	if err != nil {
		return nil, err
	}

	var index replyIndex
	if err := readJSON(indexPath, &index); err != nil {
		return nil, err
	}
	var client map[string]replyObject
	raw, ok := index.Reply[clientKey()]
	if !ok {
		return nil, cgerrors.New(cgerrors.ErrCodeMissingInputFile,
			"%s has no reply for %s: run `cmakegraph fileapi setup` and re-run cmake", indexPath, clientKey())
	}
	if err := json.Unmarshal(raw, &client); err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeMalformedDescription, err, "%s: reply for %s", indexPath, clientKey())
	}
	obj, ok := client[codemodelKind]
	if !ok {
		return nil, cgerrors.New(cgerrors.ErrCodeMissingInputFile, "%s: no %s reply", indexPath, codemodelKind)
	}
	if obj.Error != "" {
		return nil, cgerrors.New(cgerrors.ErrCodeMalformedDescription, "cmake rejected the %s query: %s", codemodelKind, obj.Error)
	}

	var cm codemodel
	if err := readJSON(filepath.Join(replyDir, obj.JSONFile), &cm); err != nil {
		return nil, err
	}

	cfgs := make([]Configuration, 0, len(cm.Configurations))
	for _, c := range cm.Configurations {
		cfg := Configuration{Name: c.Name}
		if len(c.Projects) > 0 {
			cfg.Project = c.Projects[0].Name
		}
		for _, ref := range c.Targets {
			var tf targetFile
			if err := readJSON(filepath.Join(replyDir, ref.JSONFile), &tf); err != nil {
				return nil, err
			}
			t := Target{ID: ref.ID, Name: ref.Name, Type: tf.Type}
			if t.ID == "" {
				t.ID = tf.ID
			}
			if i := ref.ProjectIndex; i >= 0 && i < len(c.Projects) {
				t.Project = c.Projects[i].Name
			}
			if i := ref.DirectoryIndex; i >= 0 && i < len(c.Directories) {
				t.Directory = c.Directories[i].Source
			}
			for _, d := range tf.Dependencies {
				t.Dependencies = append(t.Dependencies, d.ID)
			}
			t.Definition = tf.definition()
			t.Installs = tf.installs()
			if t.CompileGroups, err = tf.compileGroups(); err != nil {
				return nil, err
			}
			cfg.Targets = append(cfg.Targets, t)
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

// latestIndex returns the newest index file. CMake names them
// index-<timestamp>.json, so the lexicographically last one is the newest.
func latestIndex(replyDir string) (string, error) {
	info, err := os.Stat(replyDir)
	if errors.Is(err, fs.ErrNotExist) || err == nil && !info.IsDir() {
		return "", cgerrors.New(cgerrors.ErrCodeMissingInputFile,
			"no file-API reply in %s: run `cmakegraph fileapi setup` and re-run cmake", replyDir)
	}
	if err != nil {
		return "", cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "stat %s", replyDir)
	}

	matches, err := filepath.Glob(filepath.Join(replyDir, "index-*.json"))
	if err != nil {
		return "", cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "list %s", replyDir)
	}
	sort.Strings(matches)
	for i := len(matches) - 1; i >= 0; i-- {
		if fi, err := os.Stat(matches[i]); err == nil && fi.Mode().IsRegular() {
			return matches[i], nil
		}
	}
	return "", cgerrors.New(cgerrors.ErrCodeMissingInputFile, "no index file in %s", replyDir)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cgerrors.Wrap(cgerrors.ErrCodeMissingInputFile, err, "reply file %s does not exist", path)
	}
	if err != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeMalformedDescription, err, "decode %s", path)
	}
	return nil
}

// Graph builds the target graph of the configuration. Every dependency
// becomes a direct link; the code model does not record link visibility.
// Nodes carry the target's project, directory and [Configuration.Tooltip].
// A dependency on an ID that is not a target of the configuration is an
// UNKNOWN_NODE_REFERENCE error.
func (c Configuration) Graph() (*graph.Graph, error) {
	name := c.Project
	if name == "" {
		name = c.Name
	}
	b := graph.NewBuilder(name)
	for _, t := range c.Targets {
		kind, _ := graph.ParseKind(t.Type)
		node := graph.Node{
			ID:        t.ID,
			Name:      t.Name,
			Kind:      kind,
			Project:   t.Project,
			Directory: t.Directory,
			Tooltip:   c.Tooltip(t),
		}
		if err := b.AddNode(node); err != nil {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeMalformedDescription, err, "target %q", t.Name)
		}
	}
	for _, t := range c.Targets {
		for _, dep := range t.Dependencies {
			if err := b.AddEdge(graph.Edge{From: t.ID, To: dep}); err != nil {
				return nil, cgerrors.Wrap(cgerrors.ErrCodeUnknownNodeReference, err,
					"target %q depends on unknown target id %q", t.Name, dep)
			}
		}
	}
	return b.Build(), nil
}

// Tooltip summarizes t in plain text, one item per line:
//
//	type=STATIC_LIBRARY
//	add_library @ src/CMakeLists.txt:4
//	len(depends)=1
//	deps:
//	demo: headers
//	installs:
//	/usr/local/lib
//	compile_groups:
//	includes:
//	/src/demo/include
//	defines:
//	CORE_STATIC
//	sources:
//	src/core.cpp
//
// Dependencies are listed as "project: name", sorted.
func (c Configuration) Tooltip(t Target) string {
	byID := make(map[string]Target, len(c.Targets))
	for _, other := range c.Targets {
		byID[other.ID] = other
	}

	lines := []string{"type=" + t.Type}
	if t.Definition != nil {
		lines = append(lines, t.Definition.String())
	}
	lines = append(lines, fmt.Sprintf("len(depends)=%d", len(t.Dependencies)), "deps:")
	deps := make([]string, 0, len(t.Dependencies))
	for _, id := range t.Dependencies {
		if dep, ok := byID[id]; ok {
			deps = append(deps, dep.Project+": "+dep.Name)
		} else {
			deps = append(deps, id)
		}
	}
	sort.Strings(deps)
	lines = append(lines, deps...)
	if len(t.Installs) > 0 {
		lines = append(lines, "installs:")
		lines = append(lines, t.Installs...)
	}
	if len(t.CompileGroups) > 0 {
		lines = append(lines, "compile_groups:")
	}
	for _, g := range t.CompileGroups {
		lines = append(lines, "includes:")
		lines = append(lines, g.Includes...)
		lines = append(lines, "defines:")
		lines = append(lines, g.Defines...)
		lines = append(lines, "sources:")
		lines = append(lines, g.Sources...)
	}
	return strings.Join(lines, "\n")
}

// FileName returns a file name for the configuration's output, e.g.
// "Debug.dot". Single-configuration builds without a name use "default".
func (c Configuration) FileName(ext string) string {
	name := c.Name
	if name == "" {
		name = "default"
	}
	return fmt.Sprintf("%s%s", name, ext)
}
