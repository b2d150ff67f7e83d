// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/crates/websocat-http/src/server.rs
// (HttpServer: reads one HTTP request off an inner byte-stream connection
// and hands it to the rest of the graph, then writes back whatever
// response comes back) and httpconn.go's single-use-transport idiom for
// the opposite (client) direction.
//

package nodes

import (
	"bufio"
	"context"
	"net/http"

	"github.com/bassosimone/patchbay"
)

// newHTTPConnectClass returns the client-side counterpart to http-serve:
// it performs round trips over an inner connection using a single-use
// [patchbay.HTTPConn] transport, dispatching each [patchbay.HTTPExchange]
// offered on its sink side and replying on the exchange's own Reply channel.
func newHTTPConnectClass(cfg *patchbay.Config) *baseClass {
	return &baseClass{
		name: "http-connect",
		help: "perform HTTP round trips over an inner byte-stream or TLS node",
		properties: []patchbay.PropertyInfo{
			{Name: "inner", Help: "inner connected node (plain or TLS)", Type: patchbay.ValueChildNode, Required: true},
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

			conn := &byteStreamConn{r: inner.R.Bytes, w: inner.W.Bytes}
			httpConnFn := patchbay.NewHTTPConnFuncPlain(cfg, cfg.Logger)
			httpConnFn.Span = patchbay.NewSpanID()
			hc, err := httpConnFn.Call(ctx, conn)
			if err != nil {
				return patchbay.Bipipe{}, err
			}

			in := make(chan patchbay.HTTPExchange)
			go func() {
				defer hc.Close()
				for exchange := range in {
					resp, err := hc.RoundTrip(exchange.Request)
					if err != nil {
						close(exchange.Reply)
						continue
					}
					exchange.Reply <- resp
				}
			}()

			return patchbay.Bipipe{
				R: patchbay.Source{Shape: patchbay.ShapeNone},
				W: patchbay.Sink{Shape: patchbay.ShapeHTTP, HTTP: in},
			}, nil
		},
	}
}

func newHTTPServeClass(cfg *patchbay.Config) *baseClass {
	return &baseClass{
		name: "http-serve",
		help: "read one HTTP request off an inner byte-stream connection and exchange it with the rest of the graph",
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
			req.Body.Close()

			replies := make(chan *http.Response, 1)
			out := make(chan patchbay.HTTPExchange, 1)
			out <- patchbay.HTTPExchange{Request: req, Reply: replies}
			close(out)

			in := make(chan patchbay.HTTPExchange)
			go func() {
				for range in {
					// http-serve exchanges exactly one request per
					// connection; a second exchange offered on the sink
					// side has nowhere to go.
				}
			}()

			go func() {
				resp, ok := <-replies
				if !ok {
					inner.W.Bytes.Write([]byte("HTTP/1.1 502 Bad Gateway\r\nContent-Length: 0\r\n\r\n"))
				} else {
					resp.Write(inner.W.Bytes)
				}
				if wc, ok := inner.W.Bytes.(patchbay.WriteCloser); ok {
					wc.CloseWrite()
				}
			}()

			return patchbay.Bipipe{
				R: patchbay.Source{Shape: patchbay.ShapeHTTP, HTTP: out},
				W: patchbay.Sink{Shape: patchbay.ShapeHTTP, HTTP: in},
			}, nil
		},
	}
}
