// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/websocat-api/src/specparse.rs,
// classes.rs, running.rs (error enums), and
// _examples/original_source/src/sessionserve.rs (EndpointError path tracking).
//

package patchbay

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownNodeClass is returned by [Build] when a textual tree node names
// a class not present in the [Registry].
var ErrUnknownNodeClass = errors.New("patchbay: unknown node class")

// ErrUnknownMacro reports a reference to a macro not present in the
// [Registry]. [ExpandMacros] does not return it: a node whose name matches
// no macro is left unchanged, for [Build] to resolve as a class name.
var ErrUnknownMacro = errors.New("patchbay: unknown macro")

// ErrMacroExpansionLoop is returned by [ExpandMacros] when expansion does
// not reach a fixed point within [MaxMacroExpansions] rounds.
var ErrMacroExpansionLoop = errors.New("patchbay: macro expansion did not converge")

// ErrShapeMismatch is returned by [Splice] when the two [Bipipe] values
// being spliced expose incompatible shapes (for example, one is
// [ShapeByteStream] and the other is [ShapeDatagram]).
var ErrShapeMismatch = errors.New("patchbay: incompatible bipipe shapes")

// ErrPurelyDataNode is returned at run time, by [Serve] and by overlay
// nodes resolving their inner child, when a node whose class never produces
// a [RunnableNode] (a purely data-carrying class) appears where a runnable
// child is required.
var ErrPurelyDataNode = errors.New("patchbay: node class does not produce a runnable endpoint")

// ErrMulticonnInternal reports that a listener could not be restored for
// re-entry after serving a connection in multiple-connection mode. No code
// in this module currently returns it.
var ErrMulticonnInternal = errors.New("patchbay: failed to restore listening resource for re-entry")

// ErrCancelled wraps context cancellation observed inside the session
// engine or splice kernel, so that callers can match it without having to
// know whether the source was [context.Canceled] or
// [context.DeadlineExceeded].
var ErrCancelled = errors.New("patchbay: task cancelled")

// ParseError reports a textual tree syntax error together with the byte
// offset at which it was detected.
//
// The underlying failure modes are defined in the patchtree subpackage
// (UnbalancedBrackets, UnterminatedString, BadEscape, UnexpectedEquals,
// EmptyNodeName). [patchtree.Parse] reports them as its own
// patchtree.ParseError; nothing in this package constructs this type.
type ParseError struct {
	Offset int
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %v", e.Offset, e.Err)
}

// Unwrap supports [errors.Is] and [errors.As].
func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports a property schema violation: a type mismatch, an
// unknown property name, an array value where a scalar was declared, or a
// missing required field.
type SchemaError struct {
	// Class is the node class in which the violation was found, when known.
	Class string

	// Property is the offending property name, when known.
	Property string

	// Reason describes the violation.
	Reason string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema error")
	if e.Class != "" {
		fmt.Fprintf(&b, " in class %q", e.Class)
	}
	if e.Property != "" {
		fmt.Fprintf(&b, " on property %q", e.Property)
	}
	fmt.Fprintf(&b, ": %s", e.Reason)
	return b.String()
}

// ValidationError reports a class-specific refusal raised by a
// [NodeBuilder]'s Validate method after all properties have been set.
type ValidationError struct {
	Class  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in class %q: %s", e.Class, e.Reason)
}

// ConflictingValueSources is returned by [Build] when a CLI flag and a
// textual tree property both set the same scalar property with different
// values.
type ConflictingValueSources struct {
	Class     string
	Property  string
	CLIValue  string
	TreeValue string
}

// Error implements the error interface.
func (e *ConflictingValueSources) Error() string {
	return fmt.Sprintf(
		"conflicting value sources for %s.%s: cli=%q tree=%q",
		e.Class, e.Property, e.CLIValue, e.TreeValue,
	)
}

// EndpointError wraps a failure raised by a leaf [RunnableNode] (network,
// filesystem, or exec failure) with the path of node names leading to the
// failing leaf, so that diagnostics can point at exactly which branch of
// the tree failed.
type EndpointError struct {
	// Path is the breadcrumb of node names from the tree root down to the
	// failing leaf, root first.
	Path []string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface. It renders as a chain of "while
// doing X" clauses ending in the underlying cause, e.g.
// "while running tcp-listen: while running ws: connection reset by peer".
func (e *EndpointError) Error() string {
	if len(e.Path) == 0 {
		return e.Err.Error()
	}
	var b strings.Builder
	for _, name := range e.Path {
		fmt.Fprintf(&b, "while running %s: ", name)
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

// Unwrap supports [errors.Is] and [errors.As].
func (e *EndpointError) Unwrap() error { return e.Err }

// WithPath returns a copy of e with name prepended to the path, for use as
// an endpoint's caller rewraps an error on its way back up the node tree.
func (e *EndpointError) WithPath(name string) *EndpointError {
	path := make([]string, 0, len(e.Path)+1)
	path = append(path, name)
	path = append(path, e.Path...)
	return &EndpointError{Path: path, Err: e.Err}
}

// NewEndpointError wraps err as an [EndpointError] rooted at name. If err
// is already an [*EndpointError], name is prepended to its existing path
// instead of nesting a second wrapper.
func NewEndpointError(name string, err error) error {
	if err == nil {
		return nil
	}
	var ee *EndpointError
	if errors.As(err, &ee) {
		return ee.WithPath(name)
	}
	return &EndpointError{Path: []string{name}, Err: err}
}

// classifyCancellation turns context.Canceled and context.DeadlineExceeded
// into [ErrCancelled], leaving every other error untouched.
func classifyCancellation(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return err
}
