// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/websocat-api/src/classes.rs (the
// builder/finish dance, generalized into one reusable skeleton every
// concrete class in this package plugs into).
//

// Package nodes implements the concrete node classes this module ships:
// leaf endpoints (mock, tcp, udp, file, http) and overlays (tls, ws,
// lengthprefixed, line, reuser, broadcast, tee) plus the "session" class
// the session engine expects as its root.
package nodes

import (
	"context"
	"fmt"

	"github.com/bassosimone/patchbay"
)

// runFunc is the behavior a concrete class contributes to [baseDataNode.Run].
type runFunc func(ctx context.Context, node *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error)

// validateFunc is the class-specific validation hook, run after every
// property and array element has been set.
type validateFunc func(b *baseBuilder) error

// baseClass is a reusable [patchbay.NodeClass] implementation: every
// concrete class in this package is one baseClass value with a name,
// property/array schema, a validate hook, and a run hook.
type baseClass struct {
	name       string
	help       string
	properties []patchbay.PropertyInfo
	array      *patchbay.ArrayInfo
	validate   validateFunc
	run        runFunc
}

var _ patchbay.NodeClass = (*baseClass)(nil)

func (c *baseClass) Name() string                        { return c.name }
func (c *baseClass) Properties() []patchbay.PropertyInfo { return c.properties }
func (c *baseClass) Array() *patchbay.ArrayInfo           { return c.array }

func (c *baseClass) NewBuilder() patchbay.NodeBuilder {
	return &baseBuilder{class: c, scalars: make(map[string]patchbay.Value)}
}

func (c *baseClass) property(name string) (patchbay.PropertyInfo, bool) {
	for _, p := range c.properties {
		if p.Name == name {
			return p, true
		}
	}
	return patchbay.PropertyInfo{}, false
}

// baseBuilder is the [patchbay.NodeBuilder] shared by every class built on
// [baseClass].
type baseBuilder struct {
	class   *baseClass
	scalars map[string]patchbay.Value
	array   []patchbay.Value
}

var _ patchbay.NodeBuilder = (*baseBuilder)(nil)

func (b *baseBuilder) SetProperty(name string, value patchbay.Value) error {
	pi, ok := b.class.property(name)
	if !ok {
		return &patchbay.SchemaError{Class: b.class.name, Property: name, Reason: "unknown property"}
	}
	if value.Type() != pi.Type {
		return &patchbay.SchemaError{
			Class: b.class.name, Property: name,
			Reason: fmt.Sprintf("expected %s, got %s", pi.Type, value.Type()),
		}
	}
	b.scalars[name] = value
	return nil
}

func (b *baseBuilder) PushArrayElement(value patchbay.Value) error {
	if b.class.array == nil {
		return &patchbay.SchemaError{Class: b.class.name, Reason: "class does not accept an array"}
	}
	if value.Type() != b.class.array.Type {
		return &patchbay.SchemaError{
			Class: b.class.name,
			Reason: fmt.Sprintf("array element expected %s, got %s", b.class.array.Type, value.Type()),
		}
	}
	b.array = append(b.array, value)
	return nil
}

// Get returns the scalar value set for name, if any, for use by a
// validate hook that wants to inspect or default fields before Finish.
func (b *baseBuilder) Get(name string) (patchbay.Value, bool) {
	v, ok := b.scalars[name]
	return v, ok
}

// Set assigns value under name directly, bypassing class-registered type
// checking. Intended for use by a class's own validate hook to fill in a
// defaulted field.
func (b *baseBuilder) Set(name string, value patchbay.Value) {
	b.scalars[name] = value
}

func (b *baseBuilder) Validate() error {
	if b.class.validate == nil {
		return nil
	}
	return b.class.validate(b)
}

func (b *baseBuilder) Finish() (patchbay.DataNode, error) {
	for _, pi := range b.class.properties {
		if pi.Required {
			if _, ok := b.scalars[pi.Name]; !ok {
				return nil, &patchbay.SchemaError{Class: b.class.name, Property: pi.Name, Reason: "missing required field"}
			}
		}
	}
	return &baseDataNode{
		class:   b.class,
		scalars: b.scalars,
		array:   b.array,
	}, nil
}

// baseDataNode is the [patchbay.DataNode] (and, when class.run is set,
// [patchbay.RunnableNode]) produced by [baseBuilder.Finish].
type baseDataNode struct {
	class   *baseClass
	scalars map[string]patchbay.Value
	array   []patchbay.Value
}

var _ patchbay.DataNode = (*baseDataNode)(nil)

func (n *baseDataNode) Class() string { return n.class.name }

func (n *baseDataNode) Property(name string) (patchbay.Value, bool) {
	v, ok := n.scalars[name]
	return v, ok
}

func (n *baseDataNode) ArrayElements() []patchbay.Value { return n.array }

func (n *baseDataNode) AsRunnable() (patchbay.RunnableNode, bool) {
	if n.class.run == nil {
		return nil, false
	}
	return n, true
}

func (n *baseDataNode) Run(ctx context.Context, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
	return n.class.run(ctx, n, rc, multiconn)
}

// requireChild resolves a ChildNode property into its runnable node without
// running it. This is the shared entry point every overlay class uses to
// look up its inner child, which the caller then runs before wrapping its
// Bipipe.
func requireChild(n *baseDataNode, nodes *patchbay.Arena, propertyName string) (patchbay.RunnableNode, error) {
	v, ok := n.Property(propertyName)
	if !ok {
		return nil, &patchbay.SchemaError{Class: n.Class(), Property: propertyName, Reason: "missing required field"}
	}
	childID, ok := v.AsChildNode()
	if !ok {
		return nil, &patchbay.SchemaError{Class: n.Class(), Property: propertyName, Reason: "expected a child node"}
	}
	child := nodes.Get(childID)
	runnable, ok := child.AsRunnable()
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", patchbay.ErrPurelyDataNode, n.Class(), propertyName)
	}
	return runnable, nil
}
