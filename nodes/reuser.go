// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/src/primitive_reuse_peer.rs (a
// single shared inner connection reused across sessions, serialized so
// concurrent sessions never interleave their writes) and tcp-listen's
// resumption-token idiom for stashing a shared resource across re-entrant
// [patchbay.RunnableNode.Run] calls.
//

package nodes

import (
	"context"
	"io"
	"sync"

	"github.com/bassosimone/patchbay"
)

func newReuserClass() *baseClass {
	return &baseClass{
		name: "reuse",
		help: "serialize concurrent sessions onto a single shared inner connection",
		properties: []patchbay.PropertyInfo{
			{Name: "inner", Help: "inner node shared across sessions", Type: patchbay.ValueChildNode, Required: true},
		},
		run: func(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
			shared, err := resumeOrRunShared(ctx, n, rc, multiconn)
			if err != nil {
				return patchbay.Bipipe{}, err
			}
			if multiconn != nil {
				multiconn.RequestAnotherSession(shared)
			}
			return patchbay.Bipipe{
				R: shared.inner.R,
				W: patchbay.Sink{Shape: shared.inner.W.Shape, Bytes: &serializedWriter{mu: shared.mu, w: shared.inner.W.Bytes}, Datagrams: shared.inner.W.Datagrams, HTTP: shared.inner.W.HTTP},
				Hangup: shared.inner.Hangup,
			}, nil
		},
	}
}

// sharedInner is the resumption token a reuser stashes across re-entrant
// calls: the inner Bipipe, run exactly once, plus the mutex serializing
// concurrent writers onto it.
type sharedInner struct {
	inner patchbay.Bipipe
	mu    *sync.Mutex
}

func resumeOrRunShared(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (*sharedInner, error) {
	if multiconn != nil {
		if s, ok := multiconn.ResumptionToken.(*sharedInner); ok {
			return s, nil
		}
	}
	child, err := requireChild(n, rc.Nodes, "inner")
	if err != nil {
		return nil, err
	}
	inner, err := child.Run(ctx, rc, multiconn)
	if err != nil {
		return nil, err
	}
	return &sharedInner{inner: inner, mu: &sync.Mutex{}}, nil
}

// serializedWriter guards concurrent Write/CloseWrite calls from multiple
// sessions onto one shared byte-stream sink with a mutex, so two sessions'
// bytes never interleave on the wire.
type serializedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (s *serializedWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *serializedWriter) CloseWrite() error {
	if wc, ok := s.w.(patchbay.WriteCloser); ok {
		s.mu.Lock()
		defer s.mu.Unlock()
		return wc.CloseWrite()
	}
	return nil
}
