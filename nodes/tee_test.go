// SPDX-License-Identifier: GPL-3.0-or-later

package nodes

import (
	"testing"

	"github.com/bassosimone/patchbay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teeTestRegistry() *patchbay.Registry {
	reg := patchbay.NewRegistry(nil)
	reg.RegisterClass(mockReadClass)
	reg.RegisterClass(mockWriteClass)
	reg.RegisterClass(literalClass)
	reg.RegisterClass(newTeeClass())
	return reg
}

func TestTeeDuplicatesWritesToEverySink(t *testing.T) {
	reg := teeTestRegistry()
	bp := buildAndRun(t, reg, `[tee [mock-write expect="hi"] [mock-write expect="hi"]]`)

	require.Equal(t, patchbay.ShapeDatagram, bp.W.Shape)
	bp.W.Datagrams <- patchbay.Message{Bytes: []byte("hi")}
	close(bp.W.Datagrams)
}

func TestTeeReadsFromFirstSourcefulChild(t *testing.T) {
	reg := teeTestRegistry()
	bp := buildAndRun(t, reg, `[tee [mock-write expect=""] [literal text="ping"]]`)

	require.Equal(t, patchbay.ShapeDatagram, bp.R.Shape)
	msg, ok := <-bp.R.Datagrams
	require.True(t, ok)
	assert.Equal(t, "ping", string(msg.Bytes))
}

func TestTeeRequiresAtLeastOneChild(t *testing.T) {
	reg := teeTestRegistry()
	assertRunFails(t, reg, `[tee]`)
}
