// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/websocat-api/src/lib.rs (Tree /
// NodeId slab) and running.rs
//

package patchbay

import "fmt"

// NodeID is a stable integer handle into an [Arena].
//
// Node properties that reference another node store a NodeID rather than
// a language-level pointer, so that child nodes are inserted into the
// arena before their parents (post-order construction) and cycles are
// impossible by construction: a node can only ever reference a sibling
// already present in the arena when it is built.
type NodeID int

// String implements [fmt.Stringer].
func (id NodeID) String() string {
	return fmt.Sprintf("#%d", int(id))
}

// Arena owns every [DataNode] belonging to one [Circuit].
//
// An Arena is immutable once [Build] returns: many goroutines may read it
// concurrently through a shared pointer without synchronization. Runs may
// allocate ephemeral children through methods on nodes themselves, but
// nothing mutates existing entries.
type Arena struct {
	nodes []DataNode
}

// newArena returns an empty arena.
func newArena() *Arena {
	return &Arena{}
}

// insert appends node to the arena and returns its freshly allocated
// [NodeID].
func (a *Arena) insert(node DataNode) NodeID {
	id := NodeID(len(a.nodes))
	a.nodes = append(a.nodes, node)
	return id
}

// Get returns the node at id. It panics if id is out of range, which can
// only happen if a caller fabricates a NodeID that did not come from this
// arena: every NodeID produced by [Build] is guaranteed valid by
// construction.
func (a *Arena) Get(id NodeID) DataNode {
	return a.nodes[id]
}

// Len returns the number of nodes in the arena.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Circuit pairs an [Arena] with the root node of the tree it was built
// from.
type Circuit struct {
	Nodes *Arena
	Root  NodeID
}

// RootNode returns the circuit's root [DataNode].
func (c *Circuit) RootNode() DataNode {
	return c.Nodes.Get(c.Root)
}
