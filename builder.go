// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/websocat-api/src/classes.rs (the
// builder/finish dance) and running.rs
//

package patchbay

import (
	"fmt"

	"github.com/bassosimone/patchbay/patchtree"
)

// Build turns a parsed textual tree into a [*Circuit], depth-first,
// post-order: a node's children are built and inserted into the arena
// before the node itself, so every ChildNode value a node carries already
// refers to a live arena entry by the time the node is finished.
//
// cliOpts carries raw CLI-supplied values, keyed by long option name; for
// every node whose class contributes a matching long option, the value is
// applied as though it were a textual property or array push, following
// the tie-breaking rule in [applyCLIOptions].
func Build(tree *patchtree.Node, reg *Registry, cliOpts CLIOpts) (*Circuit, error) {
	arena := newArena()
	root, err := buildNode(tree, reg, cliOpts, arena)
	if err != nil {
		return nil, err
	}
	return &Circuit{Nodes: arena, Root: root}, nil
}

func findProperty(class NodeClass, name string) (PropertyInfo, bool) {
	for _, p := range class.Properties() {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyInfo{}, false
}

func buildNode(node *patchtree.Node, reg *Registry, cliOpts CLIOpts, arena *Arena) (NodeID, error) {
	class, ok := reg.LookupClass(node.Name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNodeClass, node.Name)
	}
	builder := class.NewBuilder()
	textualValues := make(map[string]Value)

	for _, el := range node.Elements {
		if el.Key == "" {
			continue
		}
		pi, ok := findProperty(class, el.Key)
		if !ok {
			return 0, &SchemaError{Class: node.Name, Property: el.Key, Reason: "unknown property"}
		}
		v, err := resolveElementValue(el.Value, pi.Type, reg, cliOpts, arena)
		if err != nil {
			return 0, err
		}
		if err := builder.SetProperty(el.Key, v); err != nil {
			return 0, err
		}
		textualValues[el.Key] = v
	}

	arrayInfo := class.Array()
	for _, el := range node.Elements {
		if el.Key != "" {
			continue
		}
		if arrayInfo == nil {
			return 0, &SchemaError{Class: node.Name, Reason: "class does not accept positional array elements"}
		}
		v, err := resolveElementValue(el.Value, arrayInfo.Type, reg, cliOpts, arena)
		if err != nil {
			return 0, err
		}
		if err := builder.PushArrayElement(v); err != nil {
			return 0, err
		}
	}

	if err := applyCLIOptions(node.Name, class, cliOpts, reg, builder, textualValues); err != nil {
		return 0, err
	}

	if err := builder.Validate(); err != nil {
		return 0, err
	}

	dataNode, err := builder.Finish()
	if err != nil {
		return 0, err
	}
	return arena.insert(dataNode), nil
}

// resolveElementValue turns one textual tree element into a [Value],
// recursively building a child node when the element is itself a sub-node.
func resolveElementValue(ev patchtree.ElementValue, t ValueType, reg *Registry, cliOpts CLIOpts, arena *Arena) (Value, error) {
	if ev.IsNode {
		childID, err := buildNode(ev.Node, reg, cliOpts, arena)
		if err != nil {
			return Value{}, err
		}
		return NewChildNodeValue(childID), nil
	}
	return ParseValue(t, ev.Str)
}

// applyCLIOptions applies every CLI long option bound to class, following
// the builder's tie-breaking rule: array options always append; scalar
// options overwrite only if the textual tree did not already set the same
// property, and fail with [ConflictingValueSources] if both set it to
// different values.
func applyCLIOptions(
	className string,
	class NodeClass,
	cliOpts CLIOpts,
	reg *Registry,
	builder NodeBuilder,
	textualValues map[string]Value,
) error {
	opts, err := reg.CLIOptions()
	if err != nil {
		return err
	}
	for _, opt := range opts {
		if opt.Class != className {
			continue
		}
		raw, ok := cliOpts[opt.LongOption]
		if !ok || len(raw) == 0 {
			continue
		}
		if opt.IsArray {
			for _, r := range raw {
				v, err := ParseValue(opt.Type, r)
				if err != nil {
					return err
				}
				if err := builder.PushArrayElement(v); err != nil {
					return err
				}
			}
			continue
		}
		v, err := ParseValue(opt.Type, raw[0])
		if err != nil {
			return err
		}
		existing, textuallySet := textualValues[opt.Property]
		if !textuallySet {
			if err := builder.SetProperty(opt.Property, v); err != nil {
				return err
			}
			continue
		}
		if existing.String() != v.String() {
			return &ConflictingValueSources{
				Class:     className,
				Property:  opt.Property,
				CLIValue:  v.String(),
				TreeValue: existing.String(),
			}
		}
	}
	return nil
}
