package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrRejected is returned when the form still fails validation after
	// every answerable field was prompted, e.g. a required choice field that
	// declares no options.
	ErrRejected = errors.New("tui: submission rejected")
)
