// SPDX-License-Identifier: GPL-3.0-or-later

package patchbay

import "context"

// Func is a generic operation that accepts an input and returns a result.
//
// Concrete node classes (tcp-connect, tls-connect, http-connect, ...) build
// their run logic out of a handful of these: [NewEndpointFunc] injects an
// address, [NewConnectFunc] dials it, [NewCancelWatchFunc] and
// [NewObserveConnFunc] wrap the resulting [net.Conn], and [Compose2] (etc.)
// chain them into the single pipeline a class's run hook calls once.
//
// Resource cleanup contract: when a Func receives a closeable resource as
// input and returns an error, it is responsible for closing that resource
// before returning, so a failed stage never leaks a half-open connection
// further down a node's pipeline. See [TLSHandshakeFunc] for an example.
type Func[A, B any] interface {
	Call(ctx context.Context, input A) (B, error)
}

// FuncAdapter wraps a function as a [Func] implementation.
//
// Use this to fold a one-off closure into a node's pipeline without
// defining a dedicated Func type for it.
type FuncAdapter[A, B any] func(ctx context.Context, input A) (B, error)

// Call implements [Func].
func (f FuncAdapter[A, B]) Call(ctx context.Context, input A) (B, error) {
	return f(ctx, input)
}
