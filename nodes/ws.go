// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: gorilla/websocket's server (Upgrader) and client (Dialer)
// APIs, wired so a WebSocket connection presents as a Datagram-shaped
// [patchbay.Bipipe] whose messages carry the binary/text frame flag.
//

package nodes

import (
	"bufio"
	"context"
	"net"
	"net/http"

	"github.com/bassosimone/patchbay"
	"github.com/gorilla/websocket"
)

func newWSConnectClass(cfg *patchbay.Config) *baseClass {
	return &baseClass{
		name: "ws-connect",
		help: "dial an outbound WebSocket connection",
		properties: []patchbay.PropertyInfo{
			{Name: "url", Help: "ws:// or wss:// URL to dial", Type: patchbay.ValueUri, CLILongOption: "ws-connect", Required: true},
		},
		run: func(ctx context.Context, n *baseDataNode, rc *patchbay.RunContext, multiconn *patchbay.ServerModeContext) (patchbay.Bipipe, error) {
			v, _ := n.Property("url")
			u, _ := v.AsURI()
			dialer := &websocket.Dialer{}
			conn, _, err := dialer.DialContext(ctx, u.String(), nil)
			if err != nil {
				return patchbay.Bipipe{}, err
			}
			return wsConnBipipe(conn), nil
		},
	}
}

func newWSUpgradeClass(cfg *patchbay.Config) *baseClass {
	return &baseClass{
		name: "ws-upgrade",
		help: "read an HTTP upgrade request off an inner byte-stream node and complete a WebSocket handshake",
		properties: []patchbay.PropertyInfo{
			{Name: "inner", Help: "inner byte-stream node carrying the raw accepted connection", Type: patchbay.ValueChildNode, Required: true},
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
			if inner.R.Shape != patchbay.ShapeByteStream || inner.W.Shape != patchbay.ShapeByteStream {
				return patchbay.Bipipe{}, patchbay.ErrShapeMismatch
			}

			br := bufio.NewReader(inner.R.Bytes)
			req, err := http.ReadRequest(br)
			if err != nil {
				return patchbay.Bipipe{}, err
			}

			fw := &hijackResponseWriter{
				conn: &byteStreamConn{r: inner.R.Bytes, w: inner.W.Bytes},
				br:   br,
				w:    inner.W.Bytes,
			}
			upgrader := websocket.Upgrader{}
			conn, err := upgrader.Upgrade(fw, req, nil)
			if err != nil {
				return patchbay.Bipipe{}, err
			}
			return wsConnBipipe(conn), nil
		},
	}
}

// hijackResponseWriter is the minimal [http.ResponseWriter]/[http.Hijacker]
// gorilla/websocket's [websocket.Upgrader] needs to complete the handshake
// directly over an already-accepted connection instead of a real
// net/http server request.
type hijackResponseWriter struct {
	conn net.Conn
	br   *bufio.Reader
	w    interface {
		Write([]byte) (int, error)
	}
	header http.Header
}

func (w *hijackResponseWriter) Header() http.Header {
	if w.header == nil {
		w.header = http.Header{}
	}
	return w.header
}

func (w *hijackResponseWriter) Write(p []byte) (int, error) { return w.w.Write(p) }
func (w *hijackResponseWriter) WriteHeader(statusCode int)  {}

func (w *hijackResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	bw := bufio.NewWriter(w.conn)
	return w.conn, bufio.NewReadWriter(w.br, bw), nil
}

// wsConnBipipe wraps a *websocket.Conn into a Datagram-shaped
// [patchbay.Bipipe]; each message's Binary flag reflects whether gorilla
// reported it as a binary or text frame.
func wsConnBipipe(conn *websocket.Conn) patchbay.Bipipe {
	out := make(chan patchbay.Message)
	go func() {
		defer close(out)
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			out <- patchbay.Message{Bytes: data, Binary: mt == websocket.BinaryMessage}
		}
	}()

	in := make(chan patchbay.Message)
	go func() {
		defer conn.Close()
		for msg := range in {
			mt := websocket.TextMessage
			if msg.Binary {
				mt = websocket.BinaryMessage
			}
			if err := conn.WriteMessage(mt, msg.Bytes); err != nil {
				return
			}
		}
	}()

	return patchbay.Bipipe{
		R: patchbay.Source{Shape: patchbay.ShapeDatagram, Datagrams: out},
		W: patchbay.Sink{Shape: patchbay.ShapeDatagram, Datagrams: in},
	}
}
