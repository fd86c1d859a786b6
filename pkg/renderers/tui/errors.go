package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrInvalidSubmission is returned when the checkout still fails
	// validation after the allowed number of correction rounds.
	ErrInvalidSubmission = errors.New("tui: submission still invalid")
)
