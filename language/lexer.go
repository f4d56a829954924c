package language

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseError is returned for any malformed directive. The message is written
// to be surfaced back to the model on the next turn.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

func parseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokEquals
	tokComma
)

type token struct {
	kind tokenKind
	text string
}

// lex tokenizes one directive chunk. Chunks may span several source lines
// when a triple-quoted string is open.
func lex(input string) ([]token, *ParseError) {
	var toks []token
	i := 0
	n := len(input)

	for i < n {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ","})
			i++
		case c == '=':
			toks = append(toks, token{kind: tokEquals, text: "="})
			i++
		case c == '"':
			text, next, err := lexString(input, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: text})
			i = next
		case isIdentByte(c):
			start := i
			for i < n && isIdentByte(input[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: input[start:i]})
		default:
			return nil, parseErrorf("Unexpected character %q in directive", rune(c))
		}
	}

	return toks, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '-' || c == '.' ||
		unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))
}

// lexString reads a double-quoted or triple-double-quoted string starting at
// input[start] (which must be '"'). Triple-quoted contents pass through
// verbatim; double-quoted contents are unescaped.
func lexString(input string, start int) (string, int, *ParseError) {
	if strings.HasPrefix(input[start:], `"""`) {
		end := strings.Index(input[start+3:], `"""`)
		if end < 0 {
			return "", 0, &ParseError{Msg: "Unterminated triple-quoted string"}
		}
		return input[start+3 : start+3+end], start + 3 + end + 3, nil
	}

	var b strings.Builder
	i := start + 1
	for i < len(input) {
		c := input[i]
		if c == '"' {
			return b.String(), i + 1, nil
		}
		if c == '\\' && i+1 < len(input) {
			b.WriteString(unescapePair(input[i+1]))
			i += 2
			continue
		}
		b.WriteByte(c)
		i++
	}
	return "", 0, &ParseError{Msg: "Unterminated string literal"}
}

// unescapePair resolves a backslash escape. Unknown escapes are preserved as
// the two original characters rather than dropped.
func unescapePair(c byte) string {
	switch c {
	case '\\':
		return `\`
	case '"':
		return `"`
	case '\'':
		return `'`
	case '/':
		return `/`
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'n':
		return "\n"
	case 'r':
		return "\r"
	case 't':
		return "\t"
	case 'v':
		return "\v"
	default:
		return `\` + string(c)
	}
}

// parser is a small cursor over the token stream shared by all four languages
type parser struct {
	toks []token
	pos  int
}

func (p *parser) done() bool {
	return p.pos >= len(p.toks)
}

func (p *parser) peek() (token, bool) {
	if p.done() {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *parser) expectString(what string) (string, *ParseError) {
	t, ok := p.next()
	if !ok || t.kind != tokString {
		return "", parseErrorf("Expected a quoted %s", what)
	}
	return t.text, nil
}

// expectField consumes KEY="value" and returns the value
func (p *parser) expectField(key string) (string, *ParseError) {
	t, ok := p.next()
	if !ok || t.kind != tokIdent || !strings.EqualFold(t.text, key) {
		return "", parseErrorf("Expected %s=\"...\"", key)
	}
	if t, ok = p.next(); !ok || t.kind != tokEquals {
		return "", parseErrorf("Expected '=' after %s", key)
	}
	if t, ok = p.next(); !ok || t.kind != tokString {
		return "", parseErrorf("Expected a quoted value for %s", key)
	}
	return t.text, nil
}

func (p *parser) expectComma() bool {
	t, ok := p.peek()
	if ok && t.kind == tokComma {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectTargetRef(op string) (TargetRef, *ParseError) {
	t, ok := p.next()
	if !ok || t.kind != tokIdent {
		return TargetRef{}, parseErrorf("%s requires a target kind: file or folder", op)
	}
	var kind TargetKind
	switch strings.ToLower(t.text) {
	case "file":
		kind = TargetFile
	case "folder":
		kind = TargetFolder
	default:
		return TargetRef{}, parseErrorf("%s target kind must be file or folder, got %q", op, t.text)
	}
	name, err := p.expectString("target name")
	if err != nil {
		return TargetRef{}, err
	}
	return TargetRef{Kind: kind, Name: name}, nil
}

// finish verifies the whole chunk was consumed. Leftover tokens mean the
// model packed more than one directive onto a single line.
func (p *parser) finish(keyword string) *ParseError {
	if p.done() {
		return nil
	}
	t, _ := p.peek()
	return parseErrorf("Unexpected input after %s directive (starting at %q): one directive per line", keyword, t.text)
}

// keyword pulls the leading directive keyword off the chunk
func (p *parser) keyword() (string, *ParseError) {
	t, ok := p.next()
	if !ok || t.kind != tokIdent {
		return "", &ParseError{Msg: "Directive must start with an uppercase keyword"}
	}
	return strings.ToUpper(t.text), nil
}
