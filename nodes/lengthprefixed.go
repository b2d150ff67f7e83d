// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/src/lengthprefixed_peer.rs (a
// fixed-width big- or little-endian length prefix framing messages over a
// byte stream, with a configurable maximum message size).
//

package nodes

import (
	"context"
	"encoding/binary"
	"io"

	"github.com/bassosimone/patchbay"
)

const defaultMaxMessageSize = 1 << 24

func newLengthPrefixedClass() *baseClass {
	return &baseClass{
		name: "length-prefixed",
		help: "frame an inner byte stream into messages carrying an N-byte length prefix",
		properties: []patchbay.PropertyInfo{
			{Name: "inner", Help: "inner byte-stream node", Type: patchbay.ValueChildNode, Required: true},
			{Name: "prefix-bytes", Help: "length prefix width in bytes, 1-8 (default 4)", Type: patchbay.ValueNumbery},
			{Name: "little-endian", Help: "use little-endian byte order for the prefix", Type: patchbay.ValueBooly},
			{Name: "max-message-size", Help: "reject messages larger than this many bytes", Type: patchbay.ValueNumbery},
		},
		validate: func(b *baseBuilder) error {
			if v, ok := b.Get("prefix-bytes"); ok {
				n, _ := v.AsNumber()
				if n < 1 || n > 8 {
					return &patchbay.ValidationError{Class: "length-prefixed", Reason: "prefix-bytes must be between 1 and 8"}
				}
			}
			return nil
		},
		run: func(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
			child, err := requireChild(n, rc.Nodes, "inner")
			if err != nil {
				return patchbay.Bipipe{}, err
			}
			inner, err := child.Run(ctx, rc, multiconn)
			if err != nil {
				return patchbay.Bipipe{}, err
			}

			width := 4
			if v, ok := n.Property("prefix-bytes"); ok {
				w, _ := v.AsNumber()
				width = int(w)
			}
			little := false
			if v, ok := n.Property("little-endian"); ok {
				little, _ = v.AsBool()
			}
			maxSize := defaultMaxMessageSize
			if v, ok := n.Property("max-message-size"); ok {
				m, _ := v.AsNumber()
				maxSize = int(m)
			}
			order := byteOrder(width, little)

			var r patchbay.Source
			if inner.R.Shape == patchbay.ShapeByteStream {
				r = patchbay.Source{Shape: patchbay.ShapeDatagram, Datagrams: lengthPrefixedReader(inner.R.Bytes, width, order, maxSize)}
			} else {
				r = inner.R
			}
			var w patchbay.Sink
			if inner.W.Shape == patchbay.ShapeByteStream {
				w = patchbay.Sink{Shape: patchbay.ShapeDatagram, Datagrams: lengthPrefixedWriter(inner.W.Bytes, width, order)}
			} else {
				w = inner.W
			}
			return patchbay.Bipipe{R: r, W: w, Hangup: inner.Hangup}, nil
		},
	}
}

// prefixOrder encodes/decodes an N-byte unsigned length prefix.
type prefixOrder struct {
	width int
	le    bool
}

func byteOrder(width int, little bool) prefixOrder {
	return prefixOrder{width: width, le: little}
}

func (o prefixOrder) put(buf []byte, n uint64) {
	full := make([]byte, 8)
	if o.le {
		binary.LittleEndian.PutUint64(full, n)
		copy(buf, full[:o.width])
	} else {
		binary.BigEndian.PutUint64(full, n)
		copy(buf, full[8-o.width:])
	}
}

func (o prefixOrder) get(buf []byte) uint64 {
	full := make([]byte, 8)
	if o.le {
		copy(full, buf)
		return binary.LittleEndian.Uint64(full)
	}
	copy(full[8-o.width:], buf)
	return binary.BigEndian.Uint64(full)
}

func lengthPrefixedReader(src io.Reader, width int, order prefixOrder, maxSize int) <-chan patchbay.Message {
	out := make(chan patchbay.Message)
	go func() {
		defer close(out)
		prefix := make([]byte, width)
		for {
			if _, err := io.ReadFull(src, prefix); err != nil {
				return
			}
			size := order.get(prefix)
			if size > uint64(maxSize) {
				// drop the oversized message and keep reading
				if int64(size) < 0 {
					return
				}
				if _, err := io.CopyN(io.Discard, src, int64(size)); err != nil {
					return
				}
				continue
			}
			payload := make([]byte, size)
			if _, err := io.ReadFull(src, payload); err != nil {
				return
			}
			out <- patchbay.Message{Bytes: payload}
		}
	}()
	return out
}

func lengthPrefixedWriter(dst io.Writer, width int, order prefixOrder) chan<- patchbay.Message {
	in := make(chan patchbay.Message)
	go func() {
		for msg := range in {
			prefix := make([]byte, width)
			order.put(prefix, uint64(len(msg.Bytes)))
			if _, err := dst.Write(prefix); err != nil {
				return
			}
			if _, err := dst.Write(msg.Bytes); err != nil {
				return
			}
		}
	}()
	return in
}
