// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: tls.go ([patchbay.TLSHandshakeFunc], [patchbay.TLSEngine])
// wired as an overlay over a byte-stream child node.
//

package nodes

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/bassosimone/patchbay"
)

func newTLSClientClass(cfg *patchbay.Config) *baseClass {
	return &baseClass{
		name: "tls-connect",
		help: "perform a TLS client handshake over an inner byte-stream node",
		properties: []patchbay.PropertyInfo{
			{Name: "inner", Help: "inner byte-stream node carrying the plaintext TCP connection", Type: patchbay.ValueChildNode, Required: true},
			{Name: "sni", Help: "server name to present in the TLS handshake", Type: patchbay.ValueStringy},
			{Name: "insecure", Help: "skip certificate verification", Type: patchbay.ValueBooly},
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

			tlsConfig := &tls.Config{}
			if v, ok := n.Property("sni"); ok {
				tlsConfig.ServerName, _ = v.AsString()
			}
			if v, ok := n.Property("insecure"); ok {
				tlsConfig.InsecureSkipVerify, _ = v.AsBool()
			}

			plain := &byteStreamConn{r: inner.R.Bytes, w: inner.W.Bytes}
			handshake := patchbay.NewTLSHandshakeFunc(cfg, tlsConfig, cfg.Logger)
			handshake.Span = patchbay.NewSpanID()
			tconn, err := handshake.Call(ctx, plain)
			if err != nil {
				return patchbay.Bipipe{}, err
			}
			return tcpConnBipipe(tconn), nil
		},
	}
}

// byteStreamConn adapts a paired byte-stream [patchbay.Source]/[patchbay.Sink]
// into a minimal [net.Conn] so it can be handed to
// [patchbay.TLSHandshakeFunc.Call], which operates on [net.Conn].
type byteStreamConn struct {
	r interface {
		Read([]byte) (int, error)
	}
	w interface {
		Write([]byte) (int, error)
	}
}

func (c *byteStreamConn) Read(p []byte) (int, error)  { return c.r.Read(p) }
func (c *byteStreamConn) Write(p []byte) (int, error) { return c.w.Write(p) }
func (c *byteStreamConn) Close() error {
	if wc, ok := c.w.(patchbay.WriteCloser); ok {
		return wc.CloseWrite()
	}
	return nil
}
func (c *byteStreamConn) LocalAddr() net.Addr                { return nil }
func (c *byteStreamConn) RemoteAddr() net.Addr               { return nil }
func (c *byteStreamConn) SetDeadline(t time.Time) error      { return nil }
func (c *byteStreamConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *byteStreamConn) SetWriteDeadline(t time.Time) error { return nil }
