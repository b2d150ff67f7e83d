// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/src/file_peer.rs (ReadFile,
// WriteFile: synchronous, single-connect, one direction is always
// discarded).
//

package nodes

import (
	"context"
	"os"

	"github.com/bassosimone/patchbay"
)

func newReadFileClass(cfg *patchbay.Config) *baseClass {
	return &baseClass{
		name: "readfile",
		help: "synchronously read a file and discard anything written back",
		properties: []patchbay.PropertyInfo{
			{Name: "path", Help: "file path to read", Type: patchbay.ValuePath, CLILongOption: "readfile", Required: true},
		},
		run: func(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
			v, _ := n.Property("path")
			path, _ := v.AsString()
			f, err := os.Open(path)
			if err != nil {
				return patchbay.Bipipe{}, err
			}
			return patchbay.Bipipe{
				R: patchbay.Source{Shape: patchbay.ShapeByteStream, Bytes: f},
				W: patchbay.Sink{Shape: patchbay.ShapeByteStream, Bytes: &devNullWriter{}},
			}, nil
		},
	}
}

func newWriteFileClass(cfg *patchbay.Config) *baseClass {
	return &baseClass{
		name: "writefile",
		help: "synchronously truncate and write a file, emitting nothing",
		properties: []patchbay.PropertyInfo{
			{Name: "path", Help: "file path to write", Type: patchbay.ValuePath, CLILongOption: "writefile", Required: true},
		},
		run: func(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
			v, _ := n.Property("path")
			path, _ := v.AsString()
			f, err := os.Create(path)
			if err != nil {
				return patchbay.Bipipe{}, err
			}
			return patchbay.Bipipe{
				R: patchbay.Source{Shape: patchbay.ShapeNone},
				W: patchbay.Sink{Shape: patchbay.ShapeByteStream, Bytes: &fileWriteCloser{f}},
			}, nil
		},
	}
}

// devNullWriter discards everything written to it, mirroring the
// original's DevNull peer plugged opposite a read-only file.
type devNullWriter struct{}

func (devNullWriter) Write(p []byte) (int, error) { return len(p), nil }
func (devNullWriter) CloseWrite() error            { return nil }

// fileWriteCloser closes the underlying file on half-close, since a
// regular file has no half-close semantics of its own.
type fileWriteCloser struct {
	f *os.File
}

func (w *fileWriteCloser) Write(p []byte) (int, error) { return w.f.Write(p) }
func (w *fileWriteCloser) CloseWrite() error            { return w.f.Close() }
