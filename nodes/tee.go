// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/src/scenario_executor/tee.rs
// (TeeWriter): one outer write is duplicated to every inner sink; reads
// come from the first inner node that offers a non-[patchbay.ShapeNone]
// source.
//

package nodes

import (
	"context"

	"github.com/bassosimone/patchbay"
)

func newTeeClass() *baseClass {
	return &baseClass{
		name: "tee",
		help: "duplicate everything written to every listed inner node; read from the first one that offers a source",
		array: &patchbay.ArrayInfo{
			Type: patchbay.ValueChildNode,
			Help: "inner nodes receiving a copy of every write",
		},
		run: func(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
			elems := n.ArrayElements()
			if len(elems) == 0 {
				return patchbay.Bipipe{}, &patchbay.ValidationError{Class: "tee", Reason: "requires at least one inner node"}
			}

			var sinks []patchbay.Sink
			var source patchbay.Source
			haveSource := false

			for _, v := range elems {
				childID, ok := v.AsChildNode()
				if !ok {
					return patchbay.Bipipe{}, &patchbay.SchemaError{Class: "tee", Reason: "array element must be a child node"}
				}
				child := rc.Nodes.Get(childID)
				runnable, ok := child.AsRunnable()
				if !ok {
					return patchbay.Bipipe{}, &patchbay.SchemaError{Class: "tee", Reason: "array element must be runnable"}
				}
				inner, err := runnable.Run(ctx, rc, multiconn)
				if err != nil {
					return patchbay.Bipipe{}, err
				}
				sinks = append(sinks, inner.W)
				if !haveSource && inner.R.Shape != patchbay.ShapeNone {
					source = inner.R
					haveSource = true
				}
			}

			in := make(chan patchbay.Message)
			go func() {
				for msg := range in {
					for _, s := range sinks {
						switch s.Shape {
						case patchbay.ShapeDatagram:
							s.Datagrams <- msg
						case patchbay.ShapeByteStream:
							s.Bytes.Write(msg.Bytes)
						}
					}
				}
				for _, s := range sinks {
					switch s.Shape {
					case patchbay.ShapeDatagram:
						close(s.Datagrams)
					case patchbay.ShapeByteStream:
						if wc, ok := s.Bytes.(patchbay.WriteCloser); ok {
							wc.CloseWrite()
						}
					}
				}
			}()

			if !haveSource {
				source = patchbay.Source{Shape: patchbay.ShapeNone}
			}
			return patchbay.Bipipe{
				R: source,
				W: patchbay.Sink{Shape: patchbay.ShapeDatagram, Datagrams: in},
			}, nil
		},
	}
}
