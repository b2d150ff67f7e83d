// SPDX-License-Identifier: GPL-3.0-or-later

package patchbay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaInsertAndGet(t *testing.T) {
	arena := newArena()
	assert.Equal(t, 0, arena.Len())

	id := arena.insert(&stubDataNode{class: &stubClass{name: "leaf"}})
	assert.Equal(t, NodeID(0), id)
	assert.Equal(t, 1, arena.Len())
	assert.Equal(t, "leaf", arena.Get(id).Class())
}

func TestArenaAppendOnlyOrdering(t *testing.T) {
	arena := newArena()
	first := arena.insert(&stubDataNode{class: &stubClass{name: "a"}})
	second := arena.insert(&stubDataNode{class: &stubClass{name: "b"}})
	third := arena.insert(&stubDataNode{class: &stubClass{name: "c"}})

	assert.Less(t, int(first), int(second))
	assert.Less(t, int(second), int(third))
	assert.Equal(t, "a", arena.Get(first).Class())
	assert.Equal(t, "b", arena.Get(second).Class())
	assert.Equal(t, "c", arena.Get(third).Class())
}

func TestNodeIDString(t *testing.T) {
	assert.Equal(t, "#5", NodeID(5).String())
}

func TestCircuitRootNode(t *testing.T) {
	arena := newArena()
	leaf := arena.insert(&stubDataNode{class: &stubClass{name: "leaf"}})
	circuit := &Circuit{Nodes: arena, Root: leaf}

	require.Equal(t, "leaf", circuit.RootNode().Class())
}
