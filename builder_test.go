// SPDX-License-Identifier: GPL-3.0-or-later

package patchbay

import (
	"testing"

	"github.com/bassosimone/patchbay/patchtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClass is a minimal [NodeClass] used only to exercise [Build] without
// depending on the nodes package (which imports this one).
type stubClass struct {
	name       string
	properties []PropertyInfo
	array      *ArrayInfo
}

func (c *stubClass) Name() string              { return c.name }
func (c *stubClass) Properties() []PropertyInfo { return c.properties }
func (c *stubClass) Array() *ArrayInfo           { return c.array }
func (c *stubClass) NewBuilder() NodeBuilder     { return &stubBuilder{class: c, scalars: map[string]Value{}} }

type stubBuilder struct {
	class   *stubClass
	scalars map[string]Value
	array   []Value
}

func (b *stubBuilder) SetProperty(name string, value Value) error {
	b.scalars[name] = value
	return nil
}
func (b *stubBuilder) PushArrayElement(value Value) error {
	b.array = append(b.array, value)
	return nil
}
func (b *stubBuilder) Validate() error { return nil }
func (b *stubBuilder) Finish() (DataNode, error) {
	return &stubDataNode{class: b.class, scalars: b.scalars, array: b.array}, nil
}

type stubDataNode struct {
	class   *stubClass
	scalars map[string]Value
	array   []Value
}

func (n *stubDataNode) Class() string { return n.class.name }
func (n *stubDataNode) Property(name string) (Value, bool) {
	v, ok := n.scalars[name]
	return v, ok
}
func (n *stubDataNode) ArrayElements() []Value { return n.array }
func (n *stubDataNode) AsRunnable() (RunnableNode, bool) { return nil, false }

func newTestRegistry() *Registry {
	reg := NewRegistry(DefaultSLogger())
	reg.RegisterClass(&stubClass{
		name: "leaf",
		properties: []PropertyInfo{
			{Name: "text", Type: ValueStringy, CLILongOption: "leaf-text"},
		},
	})
	reg.RegisterClass(&stubClass{
		name: "wrap",
		properties: []PropertyInfo{
			{Name: "inner", Type: ValueChildNode, Required: true},
		},
	})
	reg.RegisterClass(&stubClass{
		name:  "multi",
		array: &ArrayInfo{Type: ValueNumbery},
	})
	return reg
}

func TestBuildSimpleTree(t *testing.T) {
	tree, err := patchtree.Parse(`[leaf text="hello"]`)
	require.NoError(t, err)

	circuit, err := Build(tree, newTestRegistry(), CLIOpts{})
	require.NoError(t, err)
	require.Equal(t, 1, circuit.Nodes.Len())

	root := circuit.RootNode()
	assert.Equal(t, "leaf", root.Class())
	v, ok := root.Property("text")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "hello", s)
}

func TestBuildNestedTreeClosure(t *testing.T) {
	tree, err := patchtree.Parse(`[wrap inner=[leaf text="x"]]`)
	require.NoError(t, err)

	circuit, err := Build(tree, newTestRegistry(), CLIOpts{})
	require.NoError(t, err)

	// TestArenaClosure: every ChildNode value must resolve to an arena
	// entry with an index strictly less than its parent's, since children
	// are always inserted before the parent that references them.
	require.Equal(t, 2, circuit.Nodes.Len())
	root := circuit.RootNode()
	v, ok := root.Property("inner")
	require.True(t, ok)
	childID, ok := v.AsChildNode()
	require.True(t, ok)
	assert.Less(t, int(childID), int(circuit.Root))

	child := circuit.Nodes.Get(childID)
	assert.Equal(t, "leaf", child.Class())
}

func TestBuildPositionalArray(t *testing.T) {
	tree, err := patchtree.Parse(`[multi 1 2 3]`)
	require.NoError(t, err)

	circuit, err := Build(tree, newTestRegistry(), CLIOpts{})
	require.NoError(t, err)

	root := circuit.RootNode()
	elems := root.ArrayElements()
	require.Len(t, elems, 3)
	n0, _ := elems[0].AsNumber()
	n2, _ := elems[2].AsNumber()
	assert.Equal(t, int64(1), n0)
	assert.Equal(t, int64(3), n2)
}

func TestBuildUnknownClass(t *testing.T) {
	tree, err := patchtree.Parse(`[nope]`)
	require.NoError(t, err)

	_, err = Build(tree, newTestRegistry(), CLIOpts{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownNodeClass)
}

func TestBuildDeterminism(t *testing.T) {
	tree, err := patchtree.Parse(`[wrap inner=[leaf text="same"]]`)
	require.NoError(t, err)
	reg := newTestRegistry()

	c1, err := Build(tree, reg, CLIOpts{})
	require.NoError(t, err)
	tree2, err := patchtree.Parse(`[wrap inner=[leaf text="same"]]`)
	require.NoError(t, err)
	c2, err := Build(tree2, reg, CLIOpts{})
	require.NoError(t, err)

	assert.Equal(t, c1.Nodes.Len(), c2.Nodes.Len())
	assert.Equal(t, c1.RootNode().Class(), c2.RootNode().Class())
}

func TestBuildCLIOverrideAndConflict(t *testing.T) {
	reg := newTestRegistry()

	tree, err := patchtree.Parse(`[leaf]`)
	require.NoError(t, err)
	circuit, err := Build(tree, reg, CLIOpts{"leaf-text": {"from-cli"}})
	require.NoError(t, err)
	v, ok := circuit.RootNode().Property("text")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "from-cli", s)

	tree2, err := patchtree.Parse(`[leaf text="from-tree"]`)
	require.NoError(t, err)
	_, err = Build(tree2, reg, CLIOpts{"leaf-text": {"from-cli"}})
	require.Error(t, err)
	var conflict *ConflictingValueSources
	require.ErrorAs(t, err, &conflict)
}
