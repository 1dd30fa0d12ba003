package dot

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/cmakegraph/pkg/graph"
)

// DefaultGraphName is used when the graph has no name. CMake writes "GG".
const DefaultGraphName = "GG"

// Emphasis applied to frequent dependencies, on top of the kind shape.
const (
	frequentStyle     = "bold,filled"
	frequentFillColor = "#ffe082"
	frequentPenWidth  = "2"
)

// EmitOptions configures DOT emission.
type EmitOptions struct {
	// Legend writes a legend cluster describing shapes and line styles,
	// like the one CMake adds to its own output.
	Legend bool
}

// Emit serializes an annotated graph to DOT.
//
// The output follows CMake's conventions: one shape per target kind, solid
// lines for direct links, dashed for interface and dotted for private ones.
// Frequent nodes keep their shape and additionally get a bold filled style.
// Nodes are written in declaration order and edges in their original order,
// so emitting the same graph twice yields identical bytes.
//
// Nodes that carry a project (graphs read through the file API) are grouped
// into one cluster per project, nested by source directory, and their
// tooltips are written out. Within a cluster nodes keep declaration order.
func Emit(a *graph.Annotated, opts EmitOptions) string {
	var buf bytes.Buffer
	_ = WriteDOT(&buf, a, opts)
	return buf.String()
}

// WriteDOT writes the output of [Emit] to w.
func WriteDOT(w io.Writer, a *graph.Annotated, opts EmitOptions) error {
	var buf bytes.Buffer

	name := a.Name()
	if name == "" {
		name = DefaultGraphName
	}
	fmt.Fprintf(&buf, "digraph %s {\n", quote(name))
	buf.WriteString("node [\n  fontsize = \"12\"\n];\n")
	if opts.Legend {
		writeLegend(&buf, a.Threshold())
	}

	nodes := a.Nodes()
	if hasProjects(nodes) {
		writeClusters(&buf, a, nodes)
	} else {
		for _, n := range nodes {
			writeNode(&buf, a, n, "    ")
		}
	}

	for _, e := range a.Edges() {
		fmt.Fprintf(&buf, "    %s -> %s [ style = %s ] // %s -> %s\n",
			quote(e.From), quote(e.To), StyleForLink(e.Link),
			commentSafe(displayName(a.Graph, e.From)), commentSafe(displayName(a.Graph, e.To)))
	}
	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())
	return err
}

func writeNode(buf *bytes.Buffer, a *graph.Annotated, n graph.Node, indent string) {
	fmt.Fprintf(buf, "%s%s [ %s ];\n", indent, quote(n.ID), strings.Join(nodeAttrs(a, n), ", "))
}

func nodeAttrs(a *graph.Annotated, n graph.Node) []string {
	label := quote(n.DisplayName())
	if n.HTMLLabel {
		label = "<" + n.Name + ">"
	}
	attrs := []string{"label = " + label}
	if shape := ShapeForKind(n.Kind); shape != "" {
		attrs = append(attrs, "shape = "+shape)
	}
	tooltip := n.Tooltip
	if a.Frequent(n.ID) {
		attrs = append(attrs,
			"style = "+quote(frequentStyle),
			"fillcolor = "+quote(frequentFillColor),
			"penwidth = "+frequentPenWidth,
		)
		tooltip = strings.TrimSuffix(fmt.Sprintf("%d dependers\n%s", a.Dependers(n.ID), tooltip), "\n")
	}
	if tooltip != "" {
		attrs = append(attrs, "tooltip = "+quoteText(tooltip))
	}
	return attrs
}

func hasProjects(nodes []graph.Node) bool {
	for _, n := range nodes {
		if n.Project != "" {
			return true
		}
	}
	return false
}

// writeClusters writes nodes without a project first, then one cluster per
// project in order of first appearance, with a nested cluster per directory.
func writeClusters(buf *bytes.Buffer, a *graph.Annotated, nodes []graph.Node) {
	var projects []string
	dirs := map[string][]string{}
	members := map[[2]string][]graph.Node{}
	for _, n := range nodes {
		if n.Project == "" {
			writeNode(buf, a, n, "    ")
			continue
		}
		if _, ok := dirs[n.Project]; !ok {
			projects = append(projects, n.Project)
			dirs[n.Project] = nil
		}
		key := [2]string{n.Project, n.Directory}
		if _, ok := members[key]; !ok {
			dirs[n.Project] = append(dirs[n.Project], n.Directory)
		}
		members[key] = append(members[key], n)
	}

	for _, p := range projects {
		fmt.Fprintf(buf, "    subgraph %s {\n", quoteText("cluster_"+p))
		fmt.Fprintf(buf, "        label = %s;\n        style = dotted;\n", quoteText(p))
		var sources []string
		for _, d := range dirs[p] {
			if d != "" {
				sources = append(sources, d)
			}
		}
		if len(sources) > 0 {
			fmt.Fprintf(buf, "        tooltip = %s;\n", quoteText(strings.Join(sources, "\n")))
		}
		for _, d := range dirs[p] {
			in := members[[2]string{p, d}]
			if d == "" {
				for _, n := range in {
					writeNode(buf, a, n, "        ")
				}
				continue
			}
			fmt.Fprintf(buf, "        subgraph %s {\n", quoteText("cluster_"+p+"/"+d))
			fmt.Fprintf(buf, "            label = %s;\n            labeljust = l;\n            style = dotted;\n", quoteText("📁 "+d))
			for _, n := range in {
				writeNode(buf, a, n, "            ")
			}
			buf.WriteString("        }\n")
		}
		buf.WriteString("    }\n")
	}
}

func displayName(g *graph.Graph, id string) string {
	if n, ok := g.Node(id); ok {
		return n.DisplayName()
	}
	return id
}

var legendEntries = []struct {
	label string
	kind  graph.Kind
}{
	{"Executable", graph.KindExecutable},
	{"Static Library", graph.KindStaticLibrary},
	{"Shared Library", graph.KindSharedLibrary},
	{"Module Library", graph.KindModuleLibrary},
	{"Interface Library", graph.KindInterfaceLibrary},
	{"Object Library", graph.KindObjectLibrary},
	{"Unknown Library", graph.KindUnknownLibrary},
	{"Custom Target", graph.KindUtility},
}

func writeLegend(buf *bytes.Buffer, threshold int) {
	fmt.Fprintf(buf, "subgraph %s {\n", LegendCluster)
	buf.WriteString("  label = \"Legend\";\n  color = black;\n  edge [ style = invis ];\n")
	for i, entry := range legendEntries {
		fmt.Fprintf(buf, "  legendNode%d [ label = %s, shape = %s ];\n", i, quote(entry.label), ShapeForKind(entry.kind))
	}
	if threshold > 0 {
		fmt.Fprintf(buf, "  legendFrequent [ label = %s, shape = box, style = %s, fillcolor = %s, penwidth = %s ];\n",
			quote(fmt.Sprintf("Frequent (>= %d dependers)", threshold)), quote(frequentStyle), quote(frequentFillColor), frequentPenWidth)
	}
	buf.WriteString("  legendNode0 -> legendNode1 [ style = solid ];\n")
	buf.WriteString("  legendNode0 -> legendNode2 [ style = solid ];\n")
	buf.WriteString("  legendNode0 -> legendNode3;\n")
	buf.WriteString("  legendNode1 -> legendNode4 [ label = \"Interface\", style = dashed ];\n")
	buf.WriteString("  legendNode2 -> legendNode5 [ label = \"Private\", style = dotted ];\n")
	buf.WriteString("  legendNode3 -> legendNode6 [ style = solid ];\n")
	buf.WriteString("  legendNode0 -> legendNode7;\n")
	buf.WriteString("}\n")
}

// quote returns an escString value, as the parser keeps it, as a DOT
// double-quoted string. Only quotes are escaped: backslash sequences such as
// \n or \\ are written as they are. A quote or the end of the string after an
// odd run of backslashes gets one more backslash so the string stays closed.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	run := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			if run%2 == 1 {
				b.WriteByte('\\')
			}
			b.WriteString(`\"`)
			run = 0
			continue
		case '\\':
			run++
		default:
			run = 0
		}
		b.WriteByte(c)
	}
	if run%2 == 1 {
		b.WriteByte('\\')
	}
	b.WriteByte('"')
	return b.String()
}

var textReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", `\n`, "\n", `\n`)

// quoteText returns plain text (tooltips, file-API names) as a DOT
// double-quoted string whose rendering shows exactly that text.
func quoteText(s string) string { return `"` + textReplacer.Replace(s) + `"` }

var commentReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func commentSafe(s string) string { return commentReplacer.Replace(s) }
