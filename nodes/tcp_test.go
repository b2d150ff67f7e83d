// SPDX-License-Identifier: GPL-3.0-or-later

package nodes

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/bassosimone/patchbay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPConnectDialsRealListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		require.NoError(t, err)
		accepted <- conn
	}()

	reg := patchbay.NewRegistry(nil)
	reg.RegisterClass(newTCPConnectClass(patchbay.NewConfig()))

	bp := buildAndRun(t, reg, `[tcp-connect addr=`+ln.Addr().String()+`]`)
	server := <-accepted
	defer server.Close()

	_, err = bp.W.Bytes.Write([]byte("ping"))
	require.NoError(t, err)

	buf := make([]byte, 4)
	server.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = io.ReadFull(server, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))

	server.Write([]byte("pong"))
	buf2 := make([]byte, 4)
	_, err = io.ReadFull(bp.R.Bytes, buf2)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(buf2))
}

// reserveFreeTCPAddr binds a loopback port, closes the listener, and
// returns its address for the caller to rebind in a subsequent step.
func reserveFreeTCPAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func dialWithRetry(t *testing.T, addr string) net.Conn {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var lastErr error
	for time.Now().Before(deadline) {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			return conn
		}
		lastErr = err
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("failed to dial %s: %v", addr, lastErr)
	return nil
}

func TestTCPListenAcceptsOneConnection(t *testing.T) {
	addr := reserveFreeTCPAddr(t)
	sockAddr, err := patchbay.ParseValue(patchbay.ValueSockAddr, addr)
	require.NoError(t, err)

	cls := newTCPListenClass(patchbay.NewConfig())
	node := &baseDataNode{class: cls, scalars: map[string]patchbay.Value{"addr": sockAddr}}

	var resumeToken patchbay.Opaque
	var requested bool
	multiconn := patchbay.NewServerModeContext(nil, func(token patchbay.Opaque) {
		requested = true
		resumeToken = token
	})

	type result struct {
		bp  patchbay.Bipipe
		err error
	}
	done := make(chan result, 1)
	go func() {
		bp, err := cls.run(context.Background(), node, patchbay.NewFillInRunContext(nil, nil), multiconn)
		done <- result{bp, err}
	}()

	client := dialWithRetry(t, addr)
	defer client.Close()

	r := <-done
	require.NoError(t, r.err)
	assert.True(t, requested)
	assert.NotNil(t, resumeToken)

	client.Write([]byte("hi"))
	buf := make([]byte, 2)
	_, err = io.ReadFull(r.bp.R.Bytes, buf)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(buf))
}
