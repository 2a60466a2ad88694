// Package errors defines the typed errors shared across the service.
package errors

import stderr "errors"

// New returns an error that formats as the given text.
// Each call to New returns a distinct error value even if the text is identical.
func New(msg string) error {
	return stderr.New(msg)
}

var (
	// NoSessionStartedError reports that no session handle has ever been constructed.
	NoSessionStartedError = New("no session has been started")
)
