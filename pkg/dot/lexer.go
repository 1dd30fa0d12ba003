package dot

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/cmakegraph/pkg/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokID
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokSemi
	tokComma
	tokEqual
	tokColon
	tokEdgeOp
)

var tokenNames = [...]string{
	tokEOF:      "end of input",
	tokID:       "identifier",
	tokLBrace:   "'{'",
	tokRBrace:   "'}'",
	tokLBracket: "'['",
	tokRBracket: "']'",
	tokSemi:     "';'",
	tokComma:    "','",
	tokEqual:    "'='",
	tokColon:    "':'",
	tokEdgeOp:   "edge operator",
}

var punctuation = map[byte]tokenKind{
	'{': tokLBrace, '}': tokRBrace, '[': tokLBracket, ']': tokRBracket,
	';': tokSemi, ',': tokComma, '=': tokEqual, ':': tokColon,
}

func (k tokenKind) String() string { return tokenNames[k] }

type token struct {
	kind   tokenKind
	text   string
	quoted bool // quoted or HTML string; never a keyword
	html   bool // HTML string <...>; text excludes the outer brackets
	line   int
}

// keyword reports whether t is the unquoted keyword kw (case-insensitive).
func (t token) keyword(kw string) bool {
	return t.kind == tokID && !t.quoted && strings.EqualFold(t.text, kw)
}

func (t token) describe() string {
	if t.kind == tokID || t.kind == tokEdgeOp {
		return "\"" + t.text + "\""
	}
	return t.kind.String()
}

// lexer splits DOT source into tokens. Comments ("//", "/* */" and "#" lines)
// and whitespace are skipped.
type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func malformed(line int, format string, args ...any) *errors.Error {
	return errors.New(errors.ErrCodeMalformedDescription, "line %d: %s", line, fmt.Sprintf(format, args...))
}

// tokens lexes the whole input.
func (l *lexer) tokens() ([]token, error) {
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) peekByte(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

func (l *lexer) atLineStart() bool {
	for i := l.pos - 1; i >= 0; i-- {
		switch l.src[i] {
		case '\n':
			return true
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return true
}

func (l *lexer) skipSpaceAndComments() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			l.pos++
		case c == '/' && l.peekByte(1) == '/':
			l.skipLine()
		case c == '#' && l.atLineStart():
			l.skipLine()
		case c == '/' && l.peekByte(1) == '*':
			start := l.line
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				return malformed(start, "unterminated block comment")
			}
			comment := l.src[l.pos : l.pos+2+end+2]
			l.line += strings.Count(comment, "\n")
			l.pos += len(comment)
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) skipLine() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
}

func (l *lexer) next() (token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return token{}, err
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}

	line := l.line
	c := l.src[l.pos]
	if k, ok := punctuation[c]; ok {
		l.pos++
		return token{kind: k, text: string(c), line: line}, nil
	}

	switch {
	case c == '-' && (l.peekByte(1) == '>' || l.peekByte(1) == '-'):
		op := l.src[l.pos : l.pos+2]
		l.pos += 2
		return token{kind: tokEdgeOp, text: op, line: line}, nil
	case c == '"':
		return l.quotedConcat()
	case c == '<':
		return l.html()
	case c == '-' || c == '.' || isDigit(c):
		return l.numeral()
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	if isIDStart(r) {
		start := l.pos
		l.pos += size
		for l.pos < len(l.src) {
			r, size = utf8.DecodeRuneInString(l.src[l.pos:])
			if !isIDStart(r) && !unicode.IsDigit(r) {
				break
			}
			l.pos += size
		}
		return token{kind: tokID, text: l.src[start:l.pos], line: line}, nil
	}
	return token{}, malformed(line, "unexpected character %q", r)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIDStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || r >= 0x80 && r != utf8.RuneError
}

func (l *lexer) numeral() (token, error) {
	line := l.line
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	digits := 0
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
		digits++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
			digits++
		}
	}
	if digits == 0 {
		return token{}, malformed(line, "invalid numeral %q", l.src[start:l.pos])
	}
	return token{kind: tokID, text: l.src[start:l.pos], line: line}, nil
}

// quotedConcat reads a double-quoted string, joining "a" + "b" sequences.
func (l *lexer) quotedConcat() (token, error) {
	line := l.line
	s, err := l.quoted()
	if err != nil {
		return token{}, err
	}
	for {
		save, saveLine := l.pos, l.line
		if err := l.skipSpaceAndComments(); err != nil {
			return token{}, err
		}
		if l.peekByte(0) != '+' {
			l.pos, l.line = save, saveLine
			break
		}
		l.pos++
		if err := l.skipSpaceAndComments(); err != nil {
			return token{}, err
		}
		if l.peekByte(0) != '"' {
			return token{}, malformed(l.line, "expected quoted string after '+'")
		}
		more, err := l.quoted()
		if err != nil {
			return token{}, err
		}
		s += more
	}
	return token{kind: tokID, text: s, quoted: true, line: line}, nil
}

// quoted reads one double-quoted string. Only \" is unescaped and a
// backslash-newline is a line continuation. Every other escape, \\ included,
// is kept verbatim as Graphviz's escString: \n and \l stay line breaks when
// the value is written back.
func (l *lexer) quoted() (string, error) {
	line := l.line
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return b.String(), nil
		case '\\':
			switch next := l.peekByte(1); next {
			case '"':
				b.WriteByte('"')
				l.pos += 2
			case '\\':
				b.WriteString(`\\`)
				l.pos += 2
			case '\n':
				l.line++
				l.pos += 2
			case '\r':
				l.pos += 2
				if l.peekByte(0) == '\n' {
					l.pos++
				}
				l.line++
			default:
				b.WriteByte(c)
				l.pos++
			}
		default:
			if c == '\n' {
				l.line++
			}
			b.WriteByte(c)
			l.pos++
		}
	}
	return "", malformed(line, "unterminated quoted string")
}

// html reads an HTML string <...> with balanced angle brackets. The outer
// brackets are dropped.
func (l *lexer) html() (token, error) {
	line := l.line
	start := l.pos
	depth := 0
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				l.pos++
				return token{kind: tokID, text: l.src[start+1 : l.pos-1], quoted: true, html: true, line: line}, nil
			}
		case '\n':
			l.line++
		}
		l.pos++
	}
	return token{}, malformed(line, "unterminated HTML string")
}
