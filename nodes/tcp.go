// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: connect.go (ConnectFunc/Dialer) for tcp-connect, and
// golang.org/x/net/netutil.LimitListener for tcp-listen's bound on
// simultaneously open accepted connections (max-conns).
//

package nodes

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/bassosimone/patchbay"
	"golang.org/x/net/netutil"
)

func newTCPConnectClass(cfg *patchbay.Config) *baseClass {
	return &baseClass{
		name: "tcp-connect",
		help: "dial an outbound TCP connection",
		properties: []patchbay.PropertyInfo{
			{Name: "addr", Help: "remote address", Type: patchbay.ValueSockAddr, CLILongOption: "tcp-connect", Required: true},
		},
		run: func(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
			v, _ := n.Property("addr")
			addr, _ := v.AsSockAddr()
			ap, err := netip.ParseAddrPort(addr.String())
			if err != nil {
				return patchbay.Bipipe{}, fmt.Errorf("tcp-connect: %w", err)
			}
			span := patchbay.NewSpanID()
			connectFn := patchbay.NewConnectFunc(cfg, "tcp", cfg.Logger)
			connectFn.Span = span
			observeFn := patchbay.NewObserveConnFunc(cfg, cfg.Logger)
			observeFn.Span = span
			pipeline := patchbay.Compose2[patchbay.Unit, netip.AddrPort, net.Conn](
				patchbay.NewEndpointFunc(ap),
				patchbay.Compose2[netip.AddrPort, net.Conn, net.Conn](
					connectFn,
					patchbay.Compose2[net.Conn, net.Conn, net.Conn](
						patchbay.NewCancelWatchFunc(),
						observeFn,
					),
				),
			)
			conn, err := pipeline.Call(ctx, patchbay.Unit{})
			if err != nil {
				return patchbay.Bipipe{}, err
			}
			return tcpConnBipipe(conn), nil
		},
	}
}

func newTCPListenClass(cfg *patchbay.Config) *baseClass {
	return &baseClass{
		name: "tcp-listen",
		help: "accept inbound TCP connections",
		properties: []patchbay.PropertyInfo{
			{Name: "addr", Help: "local address to bind", Type: patchbay.ValueSockAddr, CLILongOption: "tcp-listen", Required: true},
			{Name: "max-conns", Help: "maximum simultaneously accepted connections (0 = unbounded)", Type: patchbay.ValueNumbery},
		},
		run: func(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
			ln, err := resumeOrListen(ctx, multiconn, func() (net.Listener, error) {
				v, _ := n.Property("addr")
				addr, _ := v.AsSockAddr()
				var lc net.ListenConfig
				ln, err := lc.Listen(ctx, "tcp", addr.String())
				if err != nil {
					return nil, err
				}
				if mv, ok := n.Property("max-conns"); ok {
					if max, _ := mv.AsNumber(); max > 0 {
						ln = netutil.LimitListener(ln, int(max))
					}
				}
				return ln, nil
			})
			if err != nil {
				return patchbay.Bipipe{}, err
			}
			return acceptLoopBipipe(ctx, cfg, ln, multiconn), nil
		},
	}
}

// tcpConnBipipe wraps a dialed [net.Conn] into a byte-stream [patchbay.Bipipe]
// that propagates half-close via [net.TCPConn.CloseWrite] when available.
func tcpConnBipipe(conn net.Conn) patchbay.Bipipe {
	return patchbay.Bipipe{
		R: patchbay.Source{Shape: patchbay.ShapeByteStream, Bytes: conn},
		W: patchbay.Sink{Shape: patchbay.ShapeByteStream, Bytes: &tcpWriteCloser{conn}},
	}
}

// tcpWriteCloser adapts a [net.Conn] to [patchbay.WriteCloser], falling
// back to a full Close when the connection does not support half-close.
type tcpWriteCloser struct {
	net.Conn
}

func (w *tcpWriteCloser) CloseWrite() error {
	if cw, ok := w.Conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return w.Conn.Close()
}

// resumeOrListen recovers a previously bound [net.Listener] from multiconn's
// resumption token, or calls listen to bind a fresh one on the first call.
func resumeOrListen(ctx context.Context, multiconn *patchbay.ServerModeContext, listen func() (net.Listener, error)) (net.Listener, error) {
	if multiconn != nil {
		if ln, ok := multiconn.ResumptionToken.(net.Listener); ok {
			return ln, nil
		}
	}
	return listen()
}

// acceptLoopBipipe accepts one connection synchronously and, while multiconn
// is non-nil, requests another session carrying the same listener back so
// the next re-entrant call keeps accepting on it instead of rebinding. Each
// accepted connection is tagged with a fresh span ID for log correlation
// and wrapped with cancellation-watching and I/O observation, matching the
// treatment tcp-connect gives an outbound dial.
func acceptLoopBipipe(ctx context.Context, cfg *patchbay.Config, ln net.Listener, multiconn *patchbay.ServerModeContext) patchbay.Bipipe {
	conn, err := ln.Accept()
	if multiconn != nil {
		multiconn.RequestAnotherSession(ln)
	} else {
		ln.Close()
	}
	if err != nil {
		return patchbay.Bipipe{
			R: patchbay.Source{Shape: patchbay.ShapeByteStream, Bytes: errReader{err}},
			W: patchbay.Sink{Shape: patchbay.ShapeNone},
		}
	}
	span := patchbay.NewSpanID()
	cfg.Logger.Info("tcpAccept", "span", span, "remoteAddr", conn.RemoteAddr().String())
	watched, err := patchbay.NewCancelWatchFunc().Call(ctx, conn)
	if err != nil {
		return patchbay.Bipipe{
			R: patchbay.Source{Shape: patchbay.ShapeByteStream, Bytes: errReader{err}},
			W: patchbay.Sink{Shape: patchbay.ShapeNone},
		}
	}
	observeFn := patchbay.NewObserveConnFunc(cfg, cfg.Logger)
	observeFn.Span = span
	observed, err := observeFn.Call(ctx, watched)
	if err != nil {
		return patchbay.Bipipe{
			R: patchbay.Source{Shape: patchbay.ShapeByteStream, Bytes: errReader{err}},
			W: patchbay.Sink{Shape: patchbay.ShapeNone},
		}
	}
	return tcpConnBipipe(observed)
}

// errReader is a [patchbay.Bipipe] source stub that always fails with err,
// used to surface an Accept failure through the ordinary splice error path.
type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
