package dot

import (
	"strings"

	"github.com/matzehuels/cmakegraph/pkg/graph"
)

// Shapes written by CMake's graphviz export (cmGraphVizWriter) per target type.
var kindShapes = map[graph.Kind]string{
	graph.KindExecutable:       "egg",
	graph.KindStaticLibrary:    "octagon",
	graph.KindSharedLibrary:    "doubleoctagon",
	graph.KindModuleLibrary:    "tripleoctagon",
	graph.KindInterfaceLibrary: "pentagon",
	graph.KindObjectLibrary:    "hexagon",
	graph.KindUnknownLibrary:   "septagon",
	graph.KindUtility:          "box",
}

var shapeKinds = func() map[string]graph.Kind {
	m := make(map[string]graph.Kind, len(kindShapes))
	for k, s := range kindShapes {
		m[s] = k
	}
	return m
}()

// KindForShape maps a node shape attribute to a target kind. It returns
// KindUnknown and false when the shape is missing or matches no category.
func KindForShape(shape string) (graph.Kind, bool) {
	k, ok := shapeKinds[strings.ToLower(strings.TrimSpace(shape))]
	return k, ok
}

// ShapeForKind returns the shape CMake uses for k, or "" for KindUnknown.
func ShapeForKind(k graph.Kind) string { return kindShapes[k] }

// Edge line styles: PUBLIC links are solid, INTERFACE dashed, PRIVATE dotted.
const (
	styleSolid  = "solid"
	styleDashed = "dashed"
	styleDotted = "dotted"
)

// styleModifiers don't describe the link kind and are ignored when decoding.
var styleModifiers = map[string]bool{"bold": true, "invis": true, "tapered": true}

// LinkForStyle maps an edge style attribute (possibly a comma-separated list)
// to a link kind. A missing style means a direct link. Unrecognized styles
// fall back to LinkDirect and return false.
func LinkForStyle(style string) (graph.LinkKind, bool) {
	recognized := true
	for _, tok := range strings.Split(style, ",") {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case styleSolid:
			return graph.LinkDirect, true
		case styleDashed:
			return graph.LinkInterface, true
		case styleDotted:
			return graph.LinkPrivate, true
		case "":
		default:
			if !styleModifiers[strings.ToLower(strings.TrimSpace(tok))] {
				recognized = false
			}
		}
	}
	return graph.LinkDirect, recognized
}

// StyleForLink returns the edge style CMake uses for l.
func StyleForLink(l graph.LinkKind) string {
	switch l {
	case graph.LinkInterface:
		return styleDashed
	case graph.LinkPrivate:
		return styleDotted
	default:
		return styleSolid
	}
}
