// SPDX-License-Identifier: GPL-3.0-or-later

package nodes

import (
	"net"
	"testing"
	"time"

	"github.com/bassosimone/patchbay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUDPConnectRoundTripsWithRealSocket(t *testing.T) {
	server, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer server.Close()

	reg := patchbay.NewRegistry(nil)
	reg.RegisterClass(newUDPConnectClass(patchbay.NewConfig()))

	bp := buildAndRun(t, reg, `[udp-connect addr=`+server.LocalAddr().String()+`]`)

	bp.W.Datagrams <- patchbay.Message{Bytes: []byte("ping")}

	buf := make([]byte, 64)
	server.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, peer, err := server.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))

	server.WriteTo([]byte("pong"), peer)
	msg, ok := <-bp.R.Datagrams
	require.True(t, ok)
	assert.Equal(t, "pong", string(msg.Bytes))

	close(bp.W.Datagrams)
}
