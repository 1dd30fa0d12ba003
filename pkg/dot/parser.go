package dot

import (
	"fmt"
	"io"
	"maps"

	"github.com/matzehuels/cmakegraph/pkg/errors"
	"github.com/matzehuels/cmakegraph/pkg/graph"
)

// LegendCluster is the name of the legend subgraph CMake writes. Its nodes
// describe the shape conventions and are not targets.
const LegendCluster = "clusterLegend"

// ParseResult holds a parsed graph together with recoverable diagnostics.
type ParseResult struct {
	Graph    *graph.Graph
	Name     string // Graph name after "digraph" (CMake writes "GG")
	Directed bool
	// Warnings lists UNRECOGNIZED_ATTRIBUTE_MAPPING diagnostics for nodes that
	// fell back to graph.KindUnknown and edges with an unknown line style.
	Warnings []*errors.Error
}

// Parse parses a DOT description into a Graph, discarding warnings.
// See [ParseWithDiagnostics].
func Parse(text string) (*graph.Graph, error) {
	res, err := ParseWithDiagnostics(text)
	if err != nil {
		return nil, err
	}
	return res.Graph, nil
}

// ParseReader reads all of r and parses it with [ParseWithDiagnostics].
func ParseReader(r io.Reader) (*ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read description")
	}
	return ParseWithDiagnostics(string(data))
}

// ParseWithDiagnostics parses a DOT description as written by
// `cmake --graphviz`.
//
// Subgraphs and clusters are flattened into one graph, except the legend
// cluster which is skipped. Node kinds are decoded from the shape attribute
// and edge link kinds from the style attribute (see [KindForShape] and
// [LinkForStyle]).
//
// It returns an error with code MALFORMED_DESCRIPTION for syntax errors and
// UNKNOWN_NODE_REFERENCE when an edge names a node that no node statement
// declares. Unrecognized shapes never fail the parse; they are reported in
// [ParseResult.Warnings].
func ParseWithDiagnostics(text string) (*ParseResult, error) {
	toks, err := newLexer(text).tokens()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, nodes: make(map[string]*nodeDecl)}
	if err := p.parseGraph(); err != nil {
		return nil, err
	}
	return p.result()
}

// attrValue is an attribute value; html marks an HTML string <...>.
type attrValue struct {
	text string
	html bool
}

type attrMap map[string]attrValue

// get returns the text of key, empty when unset.
func (m attrMap) get(key string) string { return m[key].text }

type nodeDecl struct {
	id    string
	attrs attrMap
	line  int
}

type edgeDecl struct {
	from, to string
	attrs    attrMap
	line     int
}

// scope carries the attribute defaults of a block. Nested blocks start with
// a copy, so defaults set inside a subgraph end with it.
type scope struct {
	nodeAttrs attrMap
	edgeAttrs attrMap
	legend    bool
}

func (s *scope) child() *scope {
	return &scope{
		nodeAttrs: maps.Clone(s.nodeAttrs),
		edgeAttrs: maps.Clone(s.edgeAttrs),
		legend:    s.legend,
	}
}

type parser struct {
	toks     []token
	pos      int
	name     string
	directed bool
	nodes    map[string]*nodeDecl
	order    []string
	edges    []edgeDecl
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokenKind, context string) (token, error) {
	t := p.peek()
	if t.kind != k {
		return t, malformed(t.line, "expected %s %s, got %s", k, context, t.describe())
	}
	return p.next(), nil
}

func (p *parser) parseGraph() error {
	if p.peek().keyword("strict") {
		p.next()
	}
	t := p.next()
	switch {
	case t.keyword("digraph"):
		p.directed = true
	case t.keyword("graph"):
	default:
		return malformed(t.line, "expected 'digraph' or 'graph', got %s", t.describe())
	}
	if p.peek().kind == tokID {
		p.name = p.next().text
	}
	open, err := p.expect(tokLBrace, "to open the graph body")
	if err != nil {
		return err
	}
	root := &scope{nodeAttrs: attrMap{}, edgeAttrs: attrMap{}}
	if _, err := p.block(root, open); err != nil {
		return err
	}
	if t := p.peek(); t.kind != tokEOF {
		return malformed(t.line, "unexpected %s after the graph body", t.describe())
	}
	return nil
}

// block parses statements up to and including the closing brace matching
// open. It returns the IDs of the nodes mentioned inside.
func (p *parser) block(sc *scope, open token) ([]string, error) {
	var ids []string
	for {
		switch t := p.peek(); t.kind {
		case tokRBrace:
			p.next()
			return ids, nil
		case tokEOF:
			return nil, malformed(open.line, "unbalanced braces: '{' is never closed")
		case tokSemi:
			p.next()
		default:
			got, err := p.stmt(sc)
			if err != nil {
				return nil, err
			}
			ids = append(ids, got...)
		}
	}
}

func (p *parser) stmt(sc *scope) ([]string, error) {
	t := p.peek()
	switch {
	case t.keyword("graph"):
		p.next()
		_, err := p.attrLists(true)
		return nil, err
	case t.keyword("node"):
		p.next()
		attrs, err := p.attrLists(true)
		maps.Copy(sc.nodeAttrs, attrs)
		return nil, err
	case t.keyword("edge"):
		p.next()
		attrs, err := p.attrLists(true)
		maps.Copy(sc.edgeAttrs, attrs)
		return nil, err
	case t.kind == tokRBracket || t.kind == tokLBracket || t.kind == tokEqual ||
		t.kind == tokComma || t.kind == tokColon || t.kind == tokEdgeOp:
		return nil, malformed(t.line, "unexpected %s", t.describe())
	}

	ids, isNode, err := p.operand(sc)
	if err != nil {
		return nil, err
	}

	if isNode && p.peek().kind == tokEqual {
		p.next()
		if _, err := p.expect(tokID, "after '='"); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if p.peek().kind == tokEdgeOp {
		return p.edgeStmt(sc, ids, t.line)
	}
	if isNode {
		attrs, err := p.attrLists(false)
		if err != nil {
			return nil, err
		}
		p.declareNode(sc, ids[0], attrs, t.line)
	}
	return ids, nil
}

// operand parses a node ID (with optional port) or a subgraph.
func (p *parser) operand(sc *scope) (ids []string, isNode bool, err error) {
	t := p.peek()
	if t.keyword("subgraph") || t.kind == tokLBrace {
		ids, err := p.subgraph(sc)
		return ids, false, err
	}
	if t.kind != tokID {
		return nil, false, malformed(t.line, "expected node ID or subgraph, got %s", t.describe())
	}
	p.next()
	for i := 0; i < 2 && p.peek().kind == tokColon; i++ {
		p.next()
		if _, err := p.expect(tokID, "as port"); err != nil {
			return nil, false, err
		}
	}
	return []string{t.text}, true, nil
}

func (p *parser) subgraph(sc *scope) ([]string, error) {
	child := sc.child()
	if p.peek().keyword("subgraph") {
		p.next()
		if p.peek().kind == tokID {
			if p.next().text == LegendCluster {
				child.legend = true
			}
		}
	}
	open, err := p.expect(tokLBrace, "to open the subgraph body")
	if err != nil {
		return nil, err
	}
	return p.block(child, open)
}

func (p *parser) edgeStmt(sc *scope, first []string, line int) ([]string, error) {
	operands := [][]string{first}
	all := append([]string(nil), first...)
	for p.peek().kind == tokEdgeOp {
		op := p.next()
		if p.directed && op.text != "->" || !p.directed && op.text != "--" {
			kind := "undirected graph"
			if p.directed {
				kind = "digraph"
			}
			return nil, malformed(op.line, "edge operator %q not allowed in a %s", op.text, kind)
		}
		ids, _, err := p.operand(sc)
		if err != nil {
			return nil, err
		}
		operands = append(operands, ids)
		all = append(all, ids...)
	}

	attrs, err := p.attrLists(false)
	if err != nil {
		return nil, err
	}
	if sc.legend {
		return all, nil
	}
	merged := maps.Clone(sc.edgeAttrs)
	maps.Copy(merged, attrs)
	for i := 0; i+1 < len(operands); i++ {
		for _, from := range operands[i] {
			for _, to := range operands[i+1] {
				p.edges = append(p.edges, edgeDecl{from: from, to: to, attrs: merged, line: line})
			}
		}
	}
	return all, nil
}

// attrLists parses zero or more [ k = v, ... ] lists. When required is set,
// at least one list must be present.
func (p *parser) attrLists(required bool) (attrMap, error) {
	attrs := attrMap{}
	if required && p.peek().kind != tokLBracket {
		t := p.peek()
		return nil, malformed(t.line, "expected %s, got %s", tokLBracket, t.describe())
	}
	for p.peek().kind == tokLBracket {
		open := p.next()
		for {
			t := p.peek()
			switch t.kind {
			case tokRBracket:
				p.next()
			case tokEOF, tokRBrace, tokLBrace, tokLBracket:
				return nil, malformed(open.line, "unterminated attribute list")
			case tokComma, tokSemi:
				p.next()
				continue
			case tokID:
				key := p.next().text
				if _, err := p.expect(tokEqual, fmt.Sprintf("after attribute %q", key)); err != nil {
					return nil, err
				}
				v, err := p.expect(tokID, fmt.Sprintf("as value of attribute %q", key))
				if err != nil {
					return nil, err
				}
				attrs[key] = attrValue{text: v.text, html: v.html}
				continue
			default:
				return nil, malformed(t.line, "expected attribute name, got %s", t.describe())
			}
			break
		}
	}
	return attrs, nil
}

func (p *parser) declareNode(sc *scope, id string, attrs attrMap, line int) {
	if sc.legend {
		return
	}
	d, ok := p.nodes[id]
	if !ok {
		d = &nodeDecl{id: id, attrs: maps.Clone(sc.nodeAttrs), line: line}
		p.nodes[id] = d
		p.order = append(p.order, id)
	}
	maps.Copy(d.attrs, attrs)
}

func (p *parser) result() (*ParseResult, error) {
	res := &ParseResult{Name: p.name, Directed: p.directed}
	b := graph.NewBuilder(p.name)

	for _, id := range p.order {
		d := p.nodes[id]
		label := d.attrs["label"]
		name, html := label.text, label.html
		if name == "" || name == `\N` && !html {
			name, html = id, false
		}
		kind, ok := KindForShape(d.attrs.get("shape"))
		if !ok {
			res.Warnings = append(res.Warnings, errors.New(errors.ErrCodeUnrecognizedAttribute,
				"line %d: node %q: shape %q matches no target kind, using %s", d.line, name, d.attrs.get("shape"), graph.KindUnknown))
		}
		if err := b.AddNode(graph.Node{ID: id, Name: name, Kind: kind, HTMLLabel: html}); err != nil {
			return nil, malformed(d.line, "node %q: %v", id, err)
		}
	}

	for _, e := range p.edges {
		for _, end := range []string{e.from, e.to} {
			if _, ok := p.nodes[end]; !ok {
				return nil, errors.New(errors.ErrCodeUnknownNodeReference,
					"line %d: edge %s -> %s references undeclared node %q", e.line, e.from, e.to, end)
			}
		}
		link, ok := LinkForStyle(e.attrs.get("style"))
		if !ok {
			res.Warnings = append(res.Warnings, errors.New(errors.ErrCodeUnrecognizedAttribute,
				"line %d: edge %s -> %s: style %q matches no link kind, using %s", e.line, e.from, e.to, e.attrs.get("style"), link))
		}
		if err := b.AddEdge(graph.Edge{From: e.from, To: e.to, Link: link}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "edge %s -> %s", e.from, e.to)
		}
	}

	res.Graph = b.Build()
	return res, nil
}
