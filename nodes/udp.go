// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/src/scenario_executor/udp.rs
// (an unconnected UDP socket speaks the Datagram shape directly, each
// Read/WriteTo call carrying one packet) and connect.go's Dialer
// abstraction for udp-connect.
//

package nodes

import (
	"context"
	"net"

	"github.com/bassosimone/patchbay"
)

const udpDatagramBufferSize = 65536

func newUDPConnectClass(cfg *patchbay.Config) *baseClass {
	return &baseClass{
		name: "udp-connect",
		help: "send and receive datagrams on a connected UDP socket",
		properties: []patchbay.PropertyInfo{
			{Name: "addr", Help: "remote address", Type: patchbay.ValueSockAddr, CLILongOption: "udp-connect", Required: true},
		},
		run: func(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
			v, _ := n.Property("addr")
			addr, _ := v.AsSockAddr()

			conn, err := cfg.Dialer.DialContext(ctx, "udp", addr.String())
			if err != nil {
				return patchbay.Bipipe{}, err
			}
			watch := patchbay.NewCancelWatchFunc()
			watched, err := watch.Call(ctx, conn)
			if err != nil {
				return patchbay.Bipipe{}, err
			}
			observeFn := patchbay.NewObserveConnFunc(cfg, cfg.Logger)
			observeFn.Span = patchbay.NewSpanID()
			observed, err := observeFn.Call(ctx, watched)
			if err != nil {
				return patchbay.Bipipe{}, err
			}
			return udpConnBipipe(observed), nil
		},
	}
}

func newUDPListenClass(cfg *patchbay.Config) *baseClass {
	return &baseClass{
		name: "udp-listen",
		help: "receive and reply to datagrams on a bound UDP socket",
		properties: []patchbay.PropertyInfo{
			{Name: "addr", Help: "local address to bind", Type: patchbay.ValueSockAddr, CLILongOption: "udp-listen", Required: true},
		},
		run: func(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
			v, _ := n.Property("addr")
			addr, _ := v.AsSockAddr()

			pc, err := net.ListenPacket("udp", addr.String())
			if err != nil {
				return patchbay.Bipipe{}, err
			}

			out := make(chan patchbay.Message, 1)
			buf := make([]byte, udpDatagramBufferSize)
			n2, peer, err := pc.ReadFrom(buf)
			if multiconn != nil {
				multiconn.RequestAnotherSession(nil)
			}
			if err != nil {
				pc.Close()
				close(out)
				return patchbay.Bipipe{
					R: patchbay.Source{Shape: patchbay.ShapeDatagram, Datagrams: out},
					W: patchbay.Sink{Shape: patchbay.ShapeNone},
				}, nil
			}
			out <- patchbay.Message{Bytes: append([]byte(nil), buf[:n2]...)}
			close(out)

			in := make(chan patchbay.Message)
			go func() {
				defer pc.Close()
				for msg := range in {
					pc.WriteTo(msg.Bytes, peer)
				}
			}()

			return patchbay.Bipipe{
				R: patchbay.Source{Shape: patchbay.ShapeDatagram, Datagrams: out},
				W: patchbay.Sink{Shape: patchbay.ShapeDatagram, Datagrams: in},
			}, nil
		},
	}
}

// udpConnBipipe wraps a connected UDP [net.Conn] into a Datagram
// [patchbay.Bipipe]: one goroutine per direction translates between the
// channel shape and the connection's Read/Write calls.
func udpConnBipipe(conn net.Conn) patchbay.Bipipe {
	out := make(chan patchbay.Message)
	go func() {
		defer close(out)
		buf := make([]byte, udpDatagramBufferSize)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				out <- patchbay.Message{Bytes: append([]byte(nil), buf[:n]...)}
			}
			if err != nil {
				return
			}
		}
	}()

	in := make(chan patchbay.Message)
	go func() {
		defer conn.Close()
		for msg := range in {
			if _, err := conn.Write(msg.Bytes); err != nil {
				return
			}
		}
	}()

	return patchbay.Bipipe{
		R: patchbay.Source{Shape: patchbay.ShapeDatagram, Datagrams: out},
		W: patchbay.Sink{Shape: patchbay.ShapeDatagram, Datagrams: in},
	}
}
