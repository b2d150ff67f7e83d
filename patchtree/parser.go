// SPDX-License-Identifier: GPL-3.0-or-later

package patchtree

import (
	"strings"
)

type parser struct {
	s   string
	pos int
}

// Parse parses s as a single textual tree node, ignoring leading and
// trailing whitespace. It fails if s contains anything beyond one
// well-formed node.
func Parse(s string) (*Node, error) {
	p := &parser{s: s}
	p.skipWS()
	if p.pos >= len(p.s) {
		return nil, &ParseError{Offset: p.pos, Err: ErrUnbalancedBrackets}
	}
	if p.s[p.pos] != '[' {
		return nil, &ParseError{Offset: p.pos, Err: ErrUnbalancedBrackets}
	}
	node, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	p.skipWS()
	if p.pos != len(p.s) {
		return nil, &ParseError{Offset: p.pos, Err: ErrUnbalancedBrackets}
	}
	return node, nil
}

func isWS(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isStructural(b byte) bool {
	switch b {
	case '[', ']', '"', '=':
		return true
	}
	return isWS(b)
}

func isIdentStart(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_'
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9') || b == '-'
}

func (p *parser) skipWS() {
	for p.pos < len(p.s) && isWS(p.s[p.pos]) {
		p.pos++
	}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.s) {
		return 0, false
	}
	return p.s[p.pos], true
}

// parseNode parses a "[" IDENT (WS ELEMENT)* "]" production. The caller
// must have already verified that the current byte is "[".
func (p *parser) parseNode() (*Node, error) {
	start := p.pos
	p.pos++ // consume '['

	nameStart := p.pos
	for p.pos < len(p.s) && isIdentCont(p.s[p.pos]) {
		p.pos++
	}
	name := p.s[nameStart:p.pos]
	if name == "" || !isIdentStart(name[0]) {
		return nil, &ParseError{Offset: start, Err: ErrEmptyNodeName}
	}

	var elements []Element
	for {
		p.skipWS()
		b, ok := p.peek()
		if !ok {
			return nil, &ParseError{Offset: p.pos, Err: ErrUnbalancedBrackets}
		}
		if b == ']' {
			p.pos++
			break
		}
		el, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}

	return &Node{Name: name, Elements: elements}, nil
}

// parseElement parses an ELEMENT production: IDENT "=" VALUE, or a bare
// VALUE.
func (p *parser) parseElement() (Element, error) {
	b, _ := p.peek()
	if b == '"' {
		s, err := p.parseQuotedString()
		if err != nil {
			return Element{}, err
		}
		return Element{Value: ElementValue{Str: s}}, nil
	}
	if b == '[' {
		node, err := p.parseNode()
		if err != nil {
			return Element{}, err
		}
		return Element{Value: ElementValue{IsNode: true, Node: node}}, nil
	}

	tokStart := p.pos
	tok := p.scanUnquotedToken()

	if next, ok := p.peek(); ok && next == '=' {
		if tok == "" || !isValidIdent(tok) {
			return Element{}, &ParseError{Offset: tokStart, Err: ErrUnexpectedEquals}
		}
		p.pos++ // consume '='
		value, err := p.parseValue()
		if err != nil {
			return Element{}, err
		}
		return Element{Key: tok, Value: value}, nil
	}

	return Element{Value: ElementValue{Str: tok}}, nil
}

// parseValue parses the VALUE on the right-hand side of "=".
func (p *parser) parseValue() (ElementValue, error) {
	b, ok := p.peek()
	if !ok {
		return ElementValue{}, &ParseError{Offset: p.pos, Err: ErrUnbalancedBrackets}
	}
	switch b {
	case '"':
		s, err := p.parseQuotedString()
		if err != nil {
			return ElementValue{}, err
		}
		return ElementValue{Str: s}, nil
	case '[':
		node, err := p.parseNode()
		if err != nil {
			return ElementValue{}, err
		}
		return ElementValue{IsNode: true, Node: node}, nil
	case '=':
		return ElementValue{}, &ParseError{Offset: p.pos, Err: ErrUnexpectedEquals}
	default:
		tok := p.scanUnquotedToken()
		return ElementValue{Str: tok}, nil
	}
}

// scanUnquotedToken consumes and returns the longest run of bytes that are
// not whitespace and not structural ('[', ']', '"', '=').
func (p *parser) scanUnquotedToken() string {
	start := p.pos
	for p.pos < len(p.s) && !isStructural(p.s[p.pos]) {
		p.pos++
	}
	return p.s[start:p.pos]
}

func isValidIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentCont(s[i]) {
			return false
		}
	}
	return true
}

const hexDigits = "0123456789abcdefABCDEF"

func hexValue(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}

// parseQuotedString parses a '"' (ESC | NON_STRUCTURAL)* '"' production.
// The caller must have already verified the current byte is '"'.
func (p *parser) parseQuotedString() (string, error) {
	start := p.pos
	p.pos++ // consume opening quote

	var b strings.Builder
	for {
		if p.pos >= len(p.s) {
			return "", &ParseError{Offset: start, Err: ErrUnterminatedString}
		}
		c := p.s[p.pos]
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' {
			escStart := p.pos
			p.pos++
			if p.pos >= len(p.s) {
				return "", &ParseError{Offset: escStart, Err: ErrUnterminatedString}
			}
			esc := p.s[p.pos]
			switch esc {
			case 'n':
				b.WriteByte('\n')
				p.pos++
			case 'r':
				b.WriteByte('\r')
				p.pos++
			case 't':
				b.WriteByte('\t')
				p.pos++
			case '0':
				b.WriteByte(0)
				p.pos++
			case '\\':
				b.WriteByte('\\')
				p.pos++
			case '"':
				b.WriteByte('"')
				p.pos++
			case 'x':
				p.pos++
				if p.pos+2 > len(p.s) {
					return "", &ParseError{Offset: escStart, Err: ErrBadEscape}
				}
				hi, ok1 := hexValue(p.s[p.pos])
				lo, ok2 := hexValue(p.s[p.pos+1])
				if !ok1 || !ok2 {
					return "", &ParseError{Offset: escStart, Err: ErrBadEscape}
				}
				b.WriteByte(hi<<4 | lo)
				p.pos += 2
			default:
				b.WriteByte(esc)
				p.pos++
			}
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
}
