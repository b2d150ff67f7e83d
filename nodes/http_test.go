// SPDX-License-Identifier: GPL-3.0-or-later

package nodes

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bassosimone/patchbay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPServeReadsRequestAndWritesReply(t *testing.T) {
	clientConn, serverConn := net.Pipe()

	go func() {
		clientConn.Write([]byte("GET /hello HTTP/1.1\r\nHost: example.test\r\n\r\n"))
	}()

	reg := patchbay.NewRegistry(nil)
	reg.RegisterClass(testLeafClass("raw", func() patchbay.Bipipe {
		return patchbay.Bipipe{
			R: patchbay.Source{Shape: patchbay.ShapeByteStream, Bytes: serverConn},
			W: patchbay.Sink{Shape: patchbay.ShapeByteStream, Bytes: serverConn},
		}
	}))
	reg.RegisterClass(newHTTPServeClass(patchbay.NewConfig()))

	bp := buildAndRun(t, reg, `[http-serve inner=[raw]]`)

	exchange, ok := <-bp.R.HTTP
	require.True(t, ok)
	assert.Equal(t, "/hello", exchange.Request.URL.Path)

	exchange.Reply <- &http.Response{
		StatusCode: 200,
		Status:     "200 OK",
		Proto:      "HTTP/1.1", ProtoMajor: 1, ProtoMinor: 1,
		Header: http.Header{},
		Body:   io.NopCloser(strings.NewReader("hi there")),
	}
	close(bp.W.HTTP)

	resp, err := http.ReadResponse(bufio.NewReader(clientConn), nil)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hi there", string(body))
}

func TestHTTPConnectRoundTripsOverRealListener(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("served: " + r.URL.Path))
	}))
	defer srv.Close()

	addr := strings.TrimPrefix(srv.URL, "http://")

	reg := patchbay.NewRegistry(nil)
	reg.RegisterClass(newTCPConnectClass(patchbay.NewConfig()))
	reg.RegisterClass(newHTTPConnectClass(patchbay.NewConfig()))

	bp := buildAndRun(t, reg, `[http-connect inner=[tcp-connect addr=`+addr+`]]`)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/ping", nil)
	require.NoError(t, err)
	replies := make(chan *http.Response, 1)
	bp.W.HTTP <- patchbay.HTTPExchange{Request: req, Reply: replies}

	resp, ok := <-replies
	require.True(t, ok)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "served: /ping", string(body))

	close(bp.W.HTTP)
}
