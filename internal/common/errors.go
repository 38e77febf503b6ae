// Package common defines shared constants and sentinel errors used across
// the story app core. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrStoreUnavailable marks local storage failures (open error, broken
	// transaction, unsupported environment). Operations wrapping it degrade
	// to remote-only reads or empty result sets instead of aborting.
	ErrStoreUnavailable = errors.New("local store unavailable")

	// Remote API errors.
	//
	// ErrUnavailable covers connectivity failures: no network, transport
	// error, timed-out attempt. ErrRejected covers server-side rejections;
	// the wrapping error carries the server's message verbatim.
	ErrUnavailable  = errors.New("server unavailable")
	ErrRejected     = errors.New("rejected by server")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSubmitInProgress is returned when a submission is already in
	// flight for the same logical operation from the same context.
	ErrSubmitInProgress = errors.New("submission already in progress")

	// Push subscription errors.
	ErrPermissionDenied = errors.New("notification permission denied")

	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)
