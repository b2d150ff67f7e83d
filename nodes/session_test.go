// SPDX-License-Identifier: GPL-3.0-or-later

package nodes

import (
	"testing"

	"github.com/bassosimone/patchbay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionTestRegistry() *patchbay.Registry {
	reg := patchbay.NewRegistry(nil)
	reg.RegisterClass(mockReadClass)
	reg.RegisterClass(mockWriteClass)
	reg.RegisterClass(newSessionClass())
	return reg
}

func TestSessionOptsFromRootDefaults(t *testing.T) {
	reg := sessionTestRegistry()
	circuit := buildCircuitHelper(t, reg, `[session left=[mock-read buf=""] right=[mock-write expect=""]]`)

	opts := SessionOptsFromRoot(circuit.RootNode())
	assert.True(t, opts.EnableForward)
	assert.True(t, opts.EnableBackward)
	assert.True(t, opts.EnableMultipleConnections)
	assert.False(t, opts.ExitOnEOF)
	assert.Equal(t, 0, opts.MaxParallel)
}

func TestSessionOptsFromRootOneshotDisablesMultipleConnections(t *testing.T) {
	reg := sessionTestRegistry()
	circuit := buildCircuitHelper(t, reg, `[session left=[mock-read buf=""] right=[mock-write expect=""] oneshot=true]`)

	opts := SessionOptsFromRoot(circuit.RootNode())
	assert.False(t, opts.EnableMultipleConnections)
}

func TestSessionOptsFromRootExplicitOverrides(t *testing.T) {
	reg := sessionTestRegistry()
	circuit := buildCircuitHelper(t, reg, `[session left=[mock-read buf=""] right=[mock-write expect=""] exit-on-eof=true max-parallel=4 buffer-size=8192]`)

	opts := SessionOptsFromRoot(circuit.RootNode())
	require.True(t, opts.ExitOnEOF)
	assert.Equal(t, 4, opts.MaxParallel)
	assert.Equal(t, 8192, opts.BufferSize)
}
