package patchbay

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 representing a span.
//
// A span is a sequence of operations that can fail in a single, specific
// way: one TCP accept and everything it leads to (TLS handshake, WebSocket
// upgrade, HTTP exchange), or one outbound dial. Leaf node classes mint a
// span ID per connection and thread it into [ConnectFunc], [ObserveConnFunc],
// and [TLSHandshakeFunc] so every log line for that connection can be
// correlated, even across a tcp-listen node's re-entrant sessions.
//
// The span terminology is borrowed from OTel.
//
// This function panics if the system random number generator fails,
// which should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
