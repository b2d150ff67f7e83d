// SPDX-License-Identifier: GPL-3.0-or-later

// Package errclass classifies network errors into short, categorical
// strings (e.g., "ETIMEDOUT", "ECONNRESET") suitable for structured
// logging and systematic analysis of session failures.
//
// The platform-specific error-number constants (errEADDRINUSE, ...) are
// defined in unix.go and windows.go; this file holds the shared
// classification logic built on top of them.
package errclass

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
)

// Known classification labels.
const (
	EADDRNOTAVAIL   = "EADDRNOTAVAIL"
	EADDRINUSE      = "EADDRINUSE"
	ECONNABORTED    = "ECONNABORTED"
	ECONNREFUSED    = "ECONNREFUSED"
	ECONNRESET      = "ECONNRESET"
	EEOF            = "EOF"
	EHOSTUNREACH    = "EHOSTUNREACH"
	EINVAL          = "EINVAL"
	EINTR           = "EINTR"
	ENETDOWN        = "ENETDOWN"
	ENETUNREACH     = "ENETUNREACH"
	ENOBUFS         = "ENOBUFS"
	ENOTCONN        = "ENOTCONN"
	EPIPE           = "EPIPE"
	EPROTONOSUPPORT = "EPROTONOSUPPORT"
	ETIMEDOUT       = "ETIMEDOUT"
	ECLOSED         = "ECLOSED"
	ECANCELED       = "ECANCELED"
	EGENERIC        = "EGENERIC"
)

// New classifies err into one of the labels above, or "" if err is nil.
//
// Classification proceeds from the most specific cause outward: context
// cancellation and deadline errors first (since [context.Context] wraps the
// underlying network error), then well-known sentinel errors from os, net
// and io, then [net.Error] timeouts, then platform errno values, finally
// falling back to EGENERIC for anything unrecognized.
func New(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, context.Canceled):
		return ECANCELED
	case errors.Is(err, context.DeadlineExceeded):
		return ETIMEDOUT
	case errors.Is(err, os.ErrDeadlineExceeded):
		return ETIMEDOUT
	case errors.Is(err, net.ErrClosed):
		return ECLOSED
	case errors.Is(err, io.EOF):
		return EEOF
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ETIMEDOUT
	}

	if label, ok := classifyErrno(err); ok {
		return label
	}

	return EGENERIC
}

func classifyErrno(err error) (string, bool) {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return "", false
	}
	switch errno {
	case errEADDRNOTAVAIL:
		return EADDRNOTAVAIL, true
	case errEADDRINUSE:
		return EADDRINUSE, true
	case errECONNABORTED:
		return ECONNABORTED, true
	case errECONNREFUSED:
		return ECONNREFUSED, true
	case errECONNRESET:
		return ECONNRESET, true
	case errEHOSTUNREACH:
		return EHOSTUNREACH, true
	case errEINVAL:
		return EINVAL, true
	case errEINTR:
		return EINTR, true
	case errENETDOWN:
		return ENETDOWN, true
	case errENETUNREACH:
		return ENETUNREACH, true
	case errENOBUFS:
		return ENOBUFS, true
	case errENOTCONN:
		return ENOTCONN, true
	case errEPIPE:
		return EPIPE, true
	case errEPROTONOSUPPORT:
		return EPROTONOSUPPORT, true
	case errETIMEDOUT:
		return ETIMEDOUT, true
	default:
		return "", false
	}
}
