// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/src/trivial_peer.rs (Literal,
// Assert) and netstub.FuncConn's mock-conn idiom.
//

package nodes

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bassosimone/patchbay"
)

// mockWriteSink accumulates written bytes and, once the writer side is
// closed, compares them against the expected content. A mismatch surfaces
// as the error returned from CloseWrite, which the splice kernel treats
// as a fatal write error for that direction.
type mockWriteSink struct {
	expect []byte
	buf    bytes.Buffer
}

func (s *mockWriteSink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

func (s *mockWriteSink) CloseWrite() error {
	if !bytes.Equal(s.buf.Bytes(), s.expect) {
		return fmt.Errorf("mock-write: expected %q, got %q", s.expect, s.buf.Bytes())
	}
	return nil
}

var mockReadClass = &baseClass{
	name: "mock-read",
	help: "in-memory byte-stream source for deterministic tests",
	properties: []patchbay.PropertyInfo{
		{Name: "buf", Help: "bytes to emit", Type: patchbay.ValueBytesBuffer, Required: true},
	},
	run: func(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
		v, _ := n.Property("buf")
		data, _ := v.AsBytes()
		return patchbay.Bipipe{
			R: patchbay.Source{Shape: patchbay.ShapeByteStream, Bytes: bytes.NewReader(data)},
			W: patchbay.Sink{Shape: patchbay.ShapeNone},
		}, nil
	},
}

var mockWriteClass = &baseClass{
	name: "mock-write",
	help: "in-memory byte-stream sink asserting its received content for deterministic tests",
	properties: []patchbay.PropertyInfo{
		{Name: "expect", Help: "bytes expected to be received", Type: patchbay.ValueBytesBuffer, Required: true},
	},
	run: func(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
		v, _ := n.Property("expect")
		expect, _ := v.AsBytes()
		return patchbay.Bipipe{
			R: patchbay.Source{Shape: patchbay.ShapeNone},
			W: patchbay.Sink{Shape: patchbay.ShapeByteStream, Bytes: &mockWriteSink{expect: expect}},
		}, nil
	},
}

var literalClass = &baseClass{
	name: "literal",
	help: "emit a fixed text message, discard anything received",
	properties: []patchbay.PropertyInfo{
		{Name: "text", Help: "text to emit as a single datagram", Type: patchbay.ValueStringy, Required: true},
	},
	run: func(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
		v, _ := n.Property("text")
		text, _ := v.AsString()

		out := make(chan patchbay.Message, 1)
		out <- patchbay.Message{Bytes: []byte(text), Binary: false}
		close(out)

		in := make(chan patchbay.Message)
		go func() {
			for range in {
				// discard anything received
			}
		}()

		return patchbay.Bipipe{
			R: patchbay.Source{Shape: patchbay.ShapeDatagram, Datagrams: out},
			W: patchbay.Sink{Shape: patchbay.ShapeDatagram, Datagrams: in},
		}, nil
	},
}
