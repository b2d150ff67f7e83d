// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/src/sessionserve.rs (the
// forward/backward copy kernel) and observeconn.go's I/O accounting style.
//

package patchbay

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/bassosimone/patchbay/errclass"
)

// DefaultBufferSize is the default byte-stream copy buffer size.
const DefaultBufferSize = 65536

// SpliceOpts configures [Splice].
type SpliceOpts struct {
	// EnableForward enables the L.R -> R.W copy direction.
	EnableForward bool

	// EnableBackward enables the R.R -> L.W copy direction.
	EnableBackward bool

	// ExitOnEOF, if true, ends the session as soon as either direction
	// completes rather than waiting for both.
	ExitOnEOF bool

	// BufferSize is the byte-stream copy buffer size. Zero selects
	// [DefaultBufferSize].
	BufferSize int
}

// DefaultSpliceOpts returns the splicer's default configuration: both
// directions enabled, exit-on-EOF disabled, the default buffer size.
func DefaultSpliceOpts() SpliceOpts {
	return SpliceOpts{EnableForward: true, EnableBackward: true, BufferSize: DefaultBufferSize}
}

// directionResult carries one copy direction's outcome back to [Splice].
type directionResult struct {
	name string
	err  error
}

// Splice starts the forward (l.R -> r.W) and backward (r.R -> l.W) copy
// directions according to opts and waits for the session to end.
//
// Mixed, incompatible shapes (anything other than matching shapes or one
// side being [ShapeNone]) fail immediately with [ErrShapeMismatch]. A
// direction's own I/O failure ends that direction only; sibling directions
// are unaffected until the termination policy (ExitOnEOF, or both
// directions done) ends the whole splice. Splice returns the first
// non-nil error observed, if any.
//
// ctx is not polled inside the copy loops: cancellation is expected to
// reach the underlying endpoints directly (see [CancelWatchFunc]), which
// unblocks the pending Read/Write and lets the copy loop observe the
// resulting error. Splice only consults ctx up front, to avoid starting a
// session that is already cancelled.
func Splice(ctx context.Context, l, r Bipipe, opts SpliceOpts) error {
	if err := ctx.Err(); err != nil {
		return classifyCancellation(err)
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if !shapesCompatible(l.R.Shape, r.W.Shape) {
		return newShapeMismatchError(l.R.Shape, r.W.Shape)
	}
	if !shapesCompatible(r.R.Shape, l.W.Shape) {
		return newShapeMismatchError(r.R.Shape, l.W.Shape)
	}

	results := make(chan directionResult, 2)
	var wg sync.WaitGroup
	active := 0

	if opts.EnableForward {
		active++
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- directionResult{name: "forward", err: copyOne(l.R, r.W, opts.BufferSize)}
		}()
	}
	if opts.EnableBackward {
		active++
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- directionResult{name: "backward", err: copyOne(r.R, l.W, opts.BufferSize)}
		}()
	}
	if active == 0 {
		return nil
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	done := 0
	for res := range results {
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
		done++
		if opts.ExitOnEOF || done == active {
			break
		}
	}
	return firstErr
}

func newShapeMismatchError(a, b Shape) error {
	return &shapeMismatchError{a: a, b: b}
}

type shapeMismatchError struct {
	a, b Shape
}

func (e *shapeMismatchError) Error() string {
	return "patchbay: shape mismatch: " + e.a.String() + " vs " + e.b.String()
}

func (e *shapeMismatchError) Unwrap() error { return ErrShapeMismatch }

// copyOne copies from src to dst according to their shared shape. A
// [ShapeNone] source or sink makes the direction a trivial success (a
// dummy session leg).
func copyOne(src Source, dst Sink, bufSize int) error {
	switch {
	case src.Shape == ShapeNone || dst.Shape == ShapeNone:
		return nil
	case src.Shape == ShapeByteStream:
		return copyBytes(src.Bytes, dst.Bytes, bufSize)
	case src.Shape == ShapeDatagram:
		return copyDatagrams(src.Datagrams, dst.Datagrams)
	case src.Shape == ShapeHTTP:
		return copyHTTP(src.HTTP, dst.HTTP)
	default:
		return nil
	}
}

// copyBytes implements the ByteStream -> ByteStream copy: reads into a
// buffer and writes (flushing after each write when dst has a
// Flush() error method), treating a broken-pipe read as EOF, and shutting down
// the destination's write side on a clean EOF if it supports half-close.
func copyBytes(src io.Reader, dst io.Writer, bufSize int) error {
	buf := make([]byte, bufSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
			if f, ok := dst.(interface{ Flush() error }); ok {
				if ferr := f.Flush(); ferr != nil {
					return ferr
				}
			}
		}
		if rerr != nil {
			if rerr == io.EOF || errclass.New(rerr) == errclass.EPIPE {
				if wc, ok := dst.(WriteCloser); ok {
					return ignoreClosed(wc.CloseWrite())
				}
				return nil
			}
			return rerr
		}
	}
}

func ignoreClosed(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// copyDatagrams implements the Datagram -> Datagram copy, forwarding
// messages while preserving their boundaries and the binary/text flag. It
// closes dst once src is exhausted, mirroring the half-close a byte-stream
// copy performs via [WriteCloser.CloseWrite], so a node reading its own
// sink channel can detect completion with a plain range loop.
func copyDatagrams(src <-chan Message, dst chan<- Message) error {
	for msg := range src {
		dst <- msg
	}
	close(dst)
	return nil
}

// copyHTTP implements the Http -> Http copy, forwarding (request,
// reply-slot) pairs end-to-end.
func copyHTTP(src <-chan HTTPExchange, dst chan<- HTTPExchange) error {
	for exchange := range src {
		dst <- exchange
	}
	close(dst)
	return nil
}
