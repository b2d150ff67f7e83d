// SPDX-License-Identifier: GPL-3.0-or-later

package patchbay

import "github.com/bassosimone/patchbay/errclass"

// ErrClassifier classifies errors into categorical strings for analysis.
//
// Implementations map errors to short, descriptive labels (e.g., "ETIMEDOUT",
// "ECONNRESET") that facilitate systematic analysis of session failures.
type ErrClassifier interface {
	Classify(err error) string
}

// ErrClassifierFunc adapts a function to the [ErrClassifier] interface.
//
// This allows using simple functions as classifiers:
//
//	op.ErrClassifier = ErrClassifierFunc(errclass.New)
type ErrClassifierFunc func(error) string

var _ ErrClassifier = ErrClassifierFunc(nil)

// Classify implements [ErrClassifier].
func (f ErrClassifierFunc) Classify(err error) string {
	return f(err)
}

// DefaultErrClassifier classifies errors using [errclass.New].
//
// Unlike a no-op default, this package ships a real classifier because the
// session engine's per-session failure telemetry (EndpointError, splice
// failures) is most useful when every log line already carries a
// categorical errClass field. Set ErrClassifier to
// ErrClassifierFunc(func(error) string { return "" }) to opt back out.
var DefaultErrClassifier = ErrClassifierFunc(errclass.New)
