// SPDX-License-Identifier: GPL-3.0-or-later

package patchtree

import (
	"errors"
	"fmt"
)

// The grammar's closed set of failure modes.
var (
	ErrUnbalancedBrackets = errors.New("patchtree: unbalanced brackets")
	ErrUnterminatedString = errors.New("patchtree: unterminated quoted string")
	ErrBadEscape          = errors.New("patchtree: invalid escape sequence")
	ErrUnexpectedEquals   = errors.New("patchtree: unexpected '='")
	ErrEmptyNodeName      = errors.New("patchtree: empty node name")
)

// ParseError reports a syntax error together with the byte offset in the
// input at which it was detected.
type ParseError struct {
	Offset int
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("patchtree: at offset %d: %v", e.Offset, e.Err)
}

// Unwrap supports [errors.Is] and [errors.As] against the sentinel errors
// above.
func (e *ParseError) Unwrap() error { return e.Err }
