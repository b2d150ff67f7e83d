// SPDX-License-Identifier: GPL-3.0-or-later

package nodes

import (
	"context"
	"testing"
	"time"

	"github.com/bassosimone/patchbay"
	"github.com/bassosimone/patchbay/patchtree"
	"github.com/stretchr/testify/require"
)

const (
	assertEventuallyTimeout = 2 * time.Second
	assertEventuallyTick    = 10 * time.Millisecond
)

// testLeafClass returns a runnable class with no properties whose Run
// always invokes make, for wiring a fixed Bipipe into an overlay class
// under test without going through a real transport.
func testLeafClass(name string, make_ func() patchbay.Bipipe) *baseClass {
	return &baseClass{
		name: name,
		run: func(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
			return make_(), nil
		},
	}
}

// buildAndRun parses expr against reg, builds it, runs the resulting root
// node, and returns the Bipipe it produced.
func buildAndRun(t *testing.T, reg *patchbay.Registry, expr string) patchbay.Bipipe {
	t.Helper()
	tree, err := patchtree.Parse(expr)
	require.NoError(t, err)
	circuit, err := patchbay.Build(tree, reg, patchbay.CLIOpts{})
	require.NoError(t, err)
	runnable, ok := circuit.RootNode().AsRunnable()
	require.True(t, ok)
	rc := patchbay.NewFillInRunContext(circuit.Nodes, nil)
	bp, err := runnable.Run(context.Background(), rc, nil)
	require.NoError(t, err)
	return bp
}

// assertBuildFails parses expr against reg, builds it, and requires that
// either the parse or the build step fails.
func assertBuildFails(t *testing.T, reg *patchbay.Registry, expr string) {
	t.Helper()
	tree, err := patchtree.Parse(expr)
	require.NoError(t, err)
	_, err = patchbay.Build(tree, reg, patchbay.CLIOpts{})
	require.Error(t, err)
}

// buildCircuitHelper parses and builds expr against reg without running it.
func buildCircuitHelper(t *testing.T, reg *patchbay.Registry, expr string) *patchbay.Circuit {
	t.Helper()
	tree, err := patchtree.Parse(expr)
	require.NoError(t, err)
	circuit, err := patchbay.Build(tree, reg, patchbay.CLIOpts{})
	require.NoError(t, err)
	return circuit
}

// assertRunFails parses and builds expr, which must succeed, then runs the
// root node and requires that Run itself fails.
func assertRunFails(t *testing.T, reg *patchbay.Registry, expr string) {
	t.Helper()
	tree, err := patchtree.Parse(expr)
	require.NoError(t, err)
	circuit, err := patchbay.Build(tree, reg, patchbay.CLIOpts{})
	require.NoError(t, err)
	runnable, ok := circuit.RootNode().AsRunnable()
	require.True(t, ok)
	rc := patchbay.NewFillInRunContext(circuit.Nodes, nil)
	_, err = runnable.Run(context.Background(), rc, nil)
	require.Error(t, err)
}
