// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/src/broadcast_reuse_peer.rs
// (BroadcastReuser): messages written by any subscriber go to the single
// inner connection; messages read from the inner connection are
// duplicated to every subscriber's own bounded queue, dropped if a
// subscriber's queue is full rather than blocking the inner read loop.
//

package nodes

import (
	"context"
	"sync"

	"github.com/bassosimone/patchbay"
)

const defaultBroadcastQueueLen = 64

func newBroadcastReuserClass() *baseClass {
	return &baseClass{
		name: "broadcast",
		help: "reuse one inner connection across many sessions, duplicating inner replies to every session",
		properties: []patchbay.PropertyInfo{
			{Name: "inner", Help: "inner datagram node shared across sessions", Type: patchbay.ValueChildNode, Required: true},
			{Name: "queue-len", Help: "per-subscriber bounded queue length (default 64)", Type: patchbay.ValueNumbery},
		},
		run: func(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
			queueLen := defaultBroadcastQueueLen
			if v, ok := n.Property("queue-len"); ok {
				if q, _ := v.AsNumber(); q > 0 {
					queueLen = int(q)
				}
			}
			hub, err := resumeOrRunHub(ctx, n, rc, multiconn, queueLen)
			if err != nil {
				return patchbay.Bipipe{}, err
			}
			if multiconn != nil {
				multiconn.RequestAnotherSession(hub)
			}
			sub := hub.subscribe()
			return patchbay.Bipipe{
				R: patchbay.Source{Shape: patchbay.ShapeDatagram, Datagrams: sub},
				W: patchbay.Sink{Shape: patchbay.ShapeDatagram, Datagrams: hub.inbound},
			}, nil
		},
	}
}

// broadcastHub is the resumption token stashed across re-entrant calls: it
// owns the single inner Bipipe and fans its reads out to every subscriber.
type broadcastHub struct {
	inbound chan patchbay.Message

	mu          sync.Mutex
	subscribers []chan patchbay.Message
	queueLen    int
}

func resumeOrRunHub(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext, queueLen int) (*broadcastHub, error) {
	if multiconn != nil {
		if h, ok := multiconn.ResumptionToken.(*broadcastHub); ok {
			return h, nil
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

	h := &broadcastHub{inbound: make(chan patchbay.Message, queueLen), queueLen: queueLen}
	go func() {
		for msg := range h.inbound {
			inner.W.Datagrams <- msg
		}
		close(inner.W.Datagrams)
	}()
	go func() {
		for msg := range inner.R.Datagrams {
			h.broadcast(msg)
		}
		h.closeAll()
	}()
	return h, nil
}

func (h *broadcastHub) subscribe() chan patchbay.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan patchbay.Message, h.queueLen)
	h.subscribers = append(h.subscribers, ch)
	return ch
}

// broadcast duplicates msg to every subscriber, dropping it for any
// subscriber whose queue is currently full rather than blocking.
func (h *broadcastHub) broadcast(msg patchbay.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *broadcastHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		close(ch)
	}
}
