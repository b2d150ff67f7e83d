// SPDX-License-Identifier: GPL-3.0-or-later

package nodes

import (
	"context"
	"testing"

	"github.com/bassosimone/patchbay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReuserSharesInnerAcrossReentrantSessions(t *testing.T) {
	dst := &closeableBuffer{}
	var runs int
	reg := patchbay.NewRegistry(nil)
	reg.RegisterClass(testLeafClass("raw", func() patchbay.Bipipe {
		runs++
		return patchbay.Bipipe{
			R: patchbay.Source{Shape: patchbay.ShapeNone},
			W: patchbay.Sink{Shape: patchbay.ShapeByteStream, Bytes: dst},
		}
	}))
	reg.RegisterClass(newReuserClass())

	circuit := buildCircuitHelper(t, reg, `[reuse inner=[raw]]`)
	runnable, ok := circuit.RootNode().AsRunnable()
	require.True(t, ok)

	rc := patchbay.NewFillInRunContext(circuit.Nodes, nil)

	var resumeToken patchbay.Opaque
	multiconn := patchbay.NewServerModeContext(nil, func(token patchbay.Opaque) {
		resumeToken = token
	})

	bp1, err := runnable.Run(context.Background(), rc, multiconn)
	require.NoError(t, err)
	bp1.W.Bytes.Write([]byte("a"))

	multiconn2 := patchbay.NewServerModeContext(resumeToken, func(patchbay.Opaque) {})
	bp2, err := runnable.Run(context.Background(), rc, multiconn2)
	require.NoError(t, err)
	bp2.W.Bytes.Write([]byte("b"))

	assert.Equal(t, 1, runs)
	assert.Equal(t, "ab", dst.String())
}
