// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/src/line_peer.rs (Line2Message,
// Message2Line): a byte-stream <-> datagram framing overlay keyed off a
// separator byte, with newline/carriage-return substitution unless
// zero-terminated mode is requested.
//

package nodes

import (
	"bufio"
	"bytes"
	"context"

	"github.com/bassosimone/patchbay"
)

func newLineClass() *baseClass {
	return &baseClass{
		name: "line",
		help: "frame an inner byte stream into newline- or NUL-delimited datagram messages",
		properties: []patchbay.PropertyInfo{
			{Name: "inner", Help: "inner byte-stream node", Type: patchbay.ValueChildNode, Required: true},
			{Name: "zero-terminated", Help: "use NUL instead of newline as the separator", Type: patchbay.ValueBooly, CLILongOption: "null-terminated"},
			{Name: "strip-newlines", Help: "drop the trailing separator from received lines", Type: patchbay.ValueBooly},
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

			sep := byte('\n')
			if v, ok := n.Property("zero-terminated"); ok {
				if zt, _ := v.AsBool(); zt {
					sep = 0
				}
			}
			strip := true
			if v, ok := n.Property("strip-newlines"); ok {
				strip, _ = v.AsBool()
			}

			var r patchbay.Source
			if inner.R.Shape == patchbay.ShapeByteStream {
				r = patchbay.Source{Shape: patchbay.ShapeDatagram, Datagrams: lineReader(inner.R.Bytes, sep, strip)}
			} else {
				r = inner.R
			}

			var w patchbay.Sink
			if inner.W.Shape == patchbay.ShapeByteStream {
				w = patchbay.Sink{Shape: patchbay.ShapeDatagram, Datagrams: lineWriter(inner.W.Bytes, sep)}
			} else {
				w = inner.W
			}

			return patchbay.Bipipe{R: r, W: w, Hangup: inner.Hangup}, nil
		},
	}
}

// lineReader splits src into separator-delimited messages, emitting one
// [patchbay.Message] per line and closing the channel on EOF or error.
func lineReader(src interface{ Read([]byte) (int, error) }, sep byte, strip bool) <-chan patchbay.Message {
	out := make(chan patchbay.Message)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(&readerAdapter{src})
		scanner.Buffer(make([]byte, 4096), 1<<20)
		scanner.Split(splitFunc(sep))
		for scanner.Scan() {
			line := scanner.Bytes()
			if !strip {
				line = append(append([]byte(nil), line...), sep)
			}
			out <- patchbay.Message{Bytes: append([]byte(nil), line...)}
		}
	}()
	return out
}

// lineWriter appends sep after every message's bytes (after substituting
// any embedded separator or newline/carriage-return byte with a space) and
// writes the result to dst.
func lineWriter(dst interface{ Write([]byte) (int, error) }, sep byte) chan<- patchbay.Message {
	in := make(chan patchbay.Message)
	go func() {
		for msg := range in {
			b := bytes.Map(func(r rune) rune {
				if byte(r) == sep || r == '\n' || r == '\r' {
					return ' '
				}
				return r
			}, msg.Bytes)
			b = append(b, sep)
			dst.Write(b)
		}
	}()
	return in
}

// readerAdapter satisfies io.Reader for the minimal Read-only interface
// used by lineReader, avoiding an import of io purely for the interface.
type readerAdapter struct {
	r interface{ Read([]byte) (int, error) }
}

func (a *readerAdapter) Read(p []byte) (int, error) { return a.r.Read(p) }

func splitFunc(sep byte) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.IndexByte(data, sep); i >= 0 {
			return i + 1, data[:i], nil
		}
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}
}
