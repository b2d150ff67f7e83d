// SPDX-License-Identifier: GPL-3.0-or-later

package patchbay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FuncAdapter lets a plain function stand in for one stage of a node's run
// pipeline (the same interface tcp-connect, tls-connect, and http-connect
// build their pipelines from).
func TestFuncAdapter(t *testing.T) {
	called := false
	adapter := FuncAdapter[int, string](func(ctx context.Context, input int) (string, error) {
		called = true
		return "result", nil
	})

	output, err := adapter.Call(context.Background(), 42)

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "result", output)
}
