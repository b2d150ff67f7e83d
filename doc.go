// SPDX-License-Identifier: GPL-3.0-or-later

// Package patchbay provides the connection-graph runtime behind a
// general-purpose protocol interconnector: given two endpoint descriptions,
// build a bidirectional pipe between them, optionally inserting overlays
// (TLS, WebSocket framing, length-prefix framing, line framing, reusers,
// tees) along the way.
//
// # Core Abstraction
//
// A textual tree such as
//
//	[session left=[tcp-listen addr=127.0.0.1:8080] right=[ws-connect url=ws://h/p]]
//
// is parsed (package [patchbay/patchtree]), expanded through any registered
// [Macro]s, and built into a [Circuit]: an [Arena] of immutable [DataNode]s
// plus a root [NodeID]. Nodes that additionally implement [RunnableNode]
// can be run to produce a [Bipipe] — a uniform duplex channel abstracting
// over byte streams, datagrams, and HTTP request/response pairs. The
// [Serve] session engine runs a circuit's left and right subtrees and
// splices their two Bipipes together.
//
// # Node/Class Model
//
// A [NodeClass] is a schema: a list of [PropertyInfo], an optional array
// element type, and a factory returning a [NodeBuilder]. Builders accept
// typed [Value]s via SetProperty/PushArrayElement and, once Finish'd,
// produce an immutable [DataNode] inserted into the [Arena]. Child node
// references are [NodeID]s into the same arena, never language-level
// pointers — this makes reference cycles impossible by construction, since
// children are always inserted before the parents that reference them.
//
// # Bipipe and the Session Engine
//
// Every [RunnableNode] implements:
//
//	Run(ctx context.Context, rc *RunContext, multiconn *ServerModeContext) (Bipipe, error)
//
// Overlay nodes evaluate their inner child with the same ctx and the
// received multiconn, inspect the child's Bipipe shape, and wrap it
// (framer, encryptor, chunker). Listener leaves that accept one connection
// per call use [ServerModeContext] to stash their listening resource across
// re-entries, so a single socket can serve many sessions without being
// reopened; [Serve] drives this multi-accept loop, capping concurrency at
// SessionOpts.MaxParallel and tracking quiescence via an in-flight counter
// plus a one-shot "vigilance" token held by the first session.
//
// # Observability
//
// All primitives support structured logging via [SLogger] (compatible with
// [log/slog]). By default, logging is disabled; set Logger to a custom
// [*slog.Logger] to enable it. Error classification is configurable via
// [ErrClassifier]; the package ships a real classifier (see
// [patchbay/errclass]) rather than a no-op default, because the session
// engine's per-session failure telemetry depends on categorical error
// strings (ETIMEDOUT, ECONNRESET, ...) out of the box.
//
// Primitives emit two kinds of structured log events:
//
//   - Span events (*Start/*Done pairs): record operation lifecycle
//     including timing and success/failure.
//   - Wire observations: capture protocol-level messages for debugging.
//
// All events share a common set of fields: localAddr, remoteAddr, protocol,
// and t (timestamp). Completion events additionally include t0 (start time),
// err, and errClass. Per-I/O events are emitted at [slog.LevelDebug]; all
// other events use [slog.LevelInfo].
//
// Nodes use [NewSpanID] to generate a unique, time-ordered identifier for
// each connection they dial or accept and set it as the Span field of the
// primitives they compose. All log entries for that connection carry the
// same "span" attribute, enabling correlation of its dial/accept, I/O, TLS
// handshake and HTTP round trip events.
//
// # Context and Cancellation
//
// This package is context-transparent: operations never modify the context
// they receive. The caller controls timeouts externally via
// [context.WithTimeout], [context.WithDeadline], or [signal.NotifyContext].
// Leaf endpoints that hold a closeable OS resource bind it to the context's
// lifetime so that cancellation closes the resource immediately rather than
// waiting for in-flight I/O to time out on its own.
//
// # Design Boundaries
//
// This package specifies the node/class model, the bipipe abstraction, and
// the session engine. Concrete endpoint and overlay implementations
// (TCP/UDP/WebSocket/TLS/file overlays, a session-class CLI) live in
// [patchbay/nodes] and [patchbay/cmd/patchbay] as collaborators exercising
// this core; they are not part of the core contract itself.
package patchbay
