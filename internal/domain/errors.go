package domain

import "errors"

var (
	// ErrInvalidInput is returned when a request fails validation (missing
	// title, empty question or answer lists). Never retried.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates no active quiz exists for the event.
	ErrNotFound = errors.New("quiz not found")
	// ErrConflict indicates a quiz id mismatch on submit or a concurrent
	// create racing on the same event id.
	ErrConflict = errors.New("quiz conflict")
	// ErrUnavailable indicates the backing store could not be reached.
	ErrUnavailable = errors.New("store unavailable")
)
