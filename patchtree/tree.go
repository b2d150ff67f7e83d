// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/websocat-api/src/stringy.rs and
// websocat-api/src/stringy/tests.rs
//

// Package patchtree implements the S-expression-like textual tree grammar
// used to describe a node graph on the command line:
//
//	[name k=v k2=[sub] positional]
//
// Parsing and printing are a round-trip pair: Parse(String(tree)) always
// reproduces tree, and String always produces text that Parse accepts.
package patchtree

import "strings"

// Node is one parsed `[name ...]` syntax node.
//
// Elements preserves the original ordering of properties (key=value) and
// positional values exactly as they appeared in the source text; the
// builder is responsible for separating the two kinds when it consumes a
// Node.
type Node struct {
	Name     string
	Elements []Element
}

// Element is one element inside a node: either a property (Key non-empty)
// or a positional value (Key empty).
type Element struct {
	Key   string
	Value ElementValue
}

// ElementValue is either a string (quoted or unquoted in the source) or a
// nested [Node].
type ElementValue struct {
	IsNode bool
	Str    string
	Node   *Node
}

// String implements [fmt.Stringer] by printing n back into the canonical
// textual tree syntax.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	b.WriteByte('[')
	b.WriteString(n.Name)
	for _, el := range n.Elements {
		b.WriteByte(' ')
		if el.Key != "" {
			b.WriteString(el.Key)
			b.WriteByte('=')
		}
		el.Value.write(b)
	}
	b.WriteByte(']')
}

func (v ElementValue) write(b *strings.Builder) {
	if v.IsNode {
		v.Node.write(b)
		return
	}
	writeQuotedOrBare(b, v.Str)
}

// needsQuoting reports whether s must be printed as a quoted string: it is
// empty, contains a structural byte ('[', ']', '"', '=', or whitespace),
// or contains a byte that requires backslash escaping.
func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		switch r {
		case '[', ']', '"', '=', ' ', '\t', '\n', '\r', '\\':
			return true
		}
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}

func writeQuotedOrBare(b *strings.Builder, s string) {
	if !needsQuoting(s) {
		b.WriteString(s)
		return
	}
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			if r < 0x20 || r == 0x7f {
				b.WriteString("\\x")
				const hex = "0123456789abcdef"
				b.WriteByte(hex[(r>>4)&0xf])
				b.WriteByte(hex[r&0xf])
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

// PositionalValues returns the values of every positional (non-keyed)
// element, in source order.
func (n *Node) PositionalValues() []ElementValue {
	var out []ElementValue
	for _, el := range n.Elements {
		if el.Key == "" {
			out = append(out, el.Value)
		}
	}
	return out
}

// PropertyValues returns every keyed element with key k, in source order.
// A class-level validation decides whether more than one is an error; the
// tree itself places no such restriction.
func (n *Node) PropertyValues(k string) []ElementValue {
	var out []ElementValue
	for _, el := range n.Elements {
		if el.Key == k {
			out = append(out, el.Value)
		}
	}
	return out
}
