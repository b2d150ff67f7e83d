// SPDX-License-Identifier: GPL-3.0-or-later

package nodes

import (
	"context"
	"testing"
	"time"

	"github.com/bassosimone/patchbay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastDuplicatesInnerRepliesToEverySubscriber(t *testing.T) {
	innerR := make(chan patchbay.Message, 1)
	innerW := make(chan patchbay.Message, 4)

	reg := patchbay.NewRegistry(nil)
	reg.RegisterClass(testLeafClass("raw", func() patchbay.Bipipe {
		return patchbay.Bipipe{
			R: patchbay.Source{Shape: patchbay.ShapeDatagram, Datagrams: innerR},
			W: patchbay.Sink{Shape: patchbay.ShapeDatagram, Datagrams: innerW},
		}
	}))
	reg.RegisterClass(newBroadcastReuserClass())

	circuit := buildCircuitHelper(t, reg, `[broadcast inner=[raw]]`)
	runnable, ok := circuit.RootNode().AsRunnable()
	require.True(t, ok)
	rc := patchbay.NewFillInRunContext(circuit.Nodes, nil)

	var resumeToken patchbay.Opaque
	multiconn1 := patchbay.NewServerModeContext(nil, func(token patchbay.Opaque) { resumeToken = token })
	bp1, err := runnable.Run(context.Background(), rc, multiconn1)
	require.NoError(t, err)

	multiconn2 := patchbay.NewServerModeContext(resumeToken, func(patchbay.Opaque) {})
	bp2, err := runnable.Run(context.Background(), rc, multiconn2)
	require.NoError(t, err)

	innerR <- patchbay.Message{Bytes: []byte("hello")}

	msg1 := <-bp1.R.Datagrams
	msg2 := <-bp2.R.Datagrams
	assert.Equal(t, "hello", string(msg1.Bytes))
	assert.Equal(t, "hello", string(msg2.Bytes))

	bp1.W.Datagrams <- patchbay.Message{Bytes: []byte("outbound")}
	select {
	case got := <-innerW:
		assert.Equal(t, "outbound", string(got.Bytes))
	case <-time.After(assertEventuallyTimeout):
		t.Fatal("timed out waiting for inbound message to reach the shared inner connection")
	}
}
