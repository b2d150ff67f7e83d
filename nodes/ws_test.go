// SPDX-License-Identifier: GPL-3.0-or-later

package nodes

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bassosimone/patchbay"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWSConnectDialsRealServer(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		mt, data, err := conn.ReadMessage()
		require.NoError(t, err)
		conn.WriteMessage(mt, append([]byte("echo:"), data...))
	}))
	defer srv.Close()

	wsURL := "ws" + srv.URL[len("http"):]

	reg := patchbay.NewRegistry(nil)
	reg.RegisterClass(newWSConnectClass(patchbay.NewConfig()))

	bp := buildAndRun(t, reg, `[ws-connect url=`+wsURL+`]`)

	bp.W.Datagrams <- patchbay.Message{Bytes: []byte("hi")}
	msg, ok := <-bp.R.Datagrams
	require.True(t, ok)
	assert.Equal(t, "echo:hi", string(msg.Bytes))
	close(bp.W.Datagrams)
}

func TestWSUpgradeCompletesHandshakeOverRawTCP(t *testing.T) {
	addr := reserveFreeTCPAddr(t)

	reg := patchbay.NewRegistry(nil)
	reg.RegisterClass(newTCPListenClass(patchbay.NewConfig()))
	reg.RegisterClass(newWSUpgradeClass(patchbay.NewConfig()))

	circuit := buildCircuitHelper(t, reg, `[ws-upgrade inner=[tcp-listen addr=`+addr+`]]`)
	runnable, ok := circuit.RootNode().AsRunnable()
	require.True(t, ok)

	type result struct {
		bp  patchbay.Bipipe
		err error
	}
	done := make(chan result, 1)
	go func() {
		rc := patchbay.NewFillInRunContext(circuit.Nodes, nil)
		bp, err := runnable.Run(context.Background(), rc, nil)
		done <- result{bp, err}
	}()

	client := dialWithRetry(t, addr)
	defer client.Close()

	dialer := websocket.Dialer{NetDial: func(network, dialAddr string) (net.Conn, error) {
		return client, nil
	}}
	wsConn, _, err := dialer.Dial("ws://"+addr+"/", nil)
	require.NoError(t, err)
	defer wsConn.Close()

	r := <-done
	require.NoError(t, r.err)

	wsConn.WriteMessage(websocket.TextMessage, []byte("ping"))
	msg, ok := <-r.bp.R.Datagrams
	require.True(t, ok)
	assert.Equal(t, "ping", string(msg.Bytes))
}
