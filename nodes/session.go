// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/src/sessionserve.rs
// (ServeMultipleTimes's CLI-facing knobs: oneshot, exit-on-eof,
// max-parallel) wired onto [patchbay.Serve]'s root-node contract.
//

package nodes

import "github.com/bassosimone/patchbay"

// newSessionClass returns the root "session" class [patchbay.Serve] expects:
// a purely-data node exposing "left"/"right" sub-trees plus the session
// engine's tunables. It contributes no Run behavior of its own; the session
// engine reads its properties directly.
func newSessionClass() *baseClass {
	return &baseClass{
		name: "session",
		help: "top-level session: splice a left sub-tree against a right sub-tree",
		properties: []patchbay.PropertyInfo{
			{Name: "left", Help: "left-hand sub-tree", Type: patchbay.ValueChildNode, Required: true},
			{Name: "right", Help: "right-hand sub-tree", Type: patchbay.ValueChildNode, Required: true},
			{Name: "oneshot", Help: "serve exactly one connection instead of accepting repeatedly", Type: patchbay.ValueBooly, CLILongOption: "oneshot"},
			{Name: "enable-forward", Help: "enable the left-to-right copy direction (default true)", Type: patchbay.ValueBooly},
			{Name: "enable-backward", Help: "enable the right-to-left copy direction (default true)", Type: patchbay.ValueBooly},
			{Name: "exit-on-eof", Help: "end a session as soon as either direction completes", Type: patchbay.ValueBooly, CLILongOption: "exit-on-eof"},
			{Name: "max-parallel", Help: "cap the number of in-flight sessions (0 = unlimited)", Type: patchbay.ValueNumbery, CLILongOption: "max-parallel"},
			{Name: "buffer-size", Help: "per-direction byte-stream copy buffer size", Type: patchbay.ValueNumbery, CLILongOption: "buffer-size"},
		},
	}
}

// SessionOptsFromRoot derives [patchbay.SessionOpts] from the root
// "session" node's properties, applying the documented defaults for any
// property left unset.
func SessionOptsFromRoot(root patchbay.DataNode) patchbay.SessionOpts {
	opts := patchbay.SessionOpts{
		EnableForward:             true,
		EnableBackward:            true,
		EnableMultipleConnections: true,
	}
	if v, ok := root.Property("oneshot"); ok {
		if oneshot, _ := v.AsBool(); oneshot {
			opts.EnableMultipleConnections = false
		}
	}
	if v, ok := root.Property("enable-forward"); ok {
		opts.EnableForward, _ = v.AsBool()
	}
	if v, ok := root.Property("enable-backward"); ok {
		opts.EnableBackward, _ = v.AsBool()
	}
	if v, ok := root.Property("exit-on-eof"); ok {
		opts.ExitOnEOF, _ = v.AsBool()
	}
	if v, ok := root.Property("max-parallel"); ok {
		n, _ := v.AsNumber()
		opts.MaxParallel = int(n)
	}
	if v, ok := root.Property("buffer-size"); ok {
		n, _ := v.AsNumber()
		opts.BufferSize = int(n)
	}
	return opts
}
