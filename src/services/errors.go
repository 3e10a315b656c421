package services

import (
	"errors"

	"github.com/username/portview/src/session"
)

// Define common service errors. Every fetch failure maps to exactly one of
// these kinds so consuming views can decide between the error state, the
// empty state, and waiting for identity resolution.
var (
	// ErrNetwork covers transport failures and deadline expiry.
	ErrNetwork = errors.New("network failure")

	// ErrApplication marks an upstream status-0 response, HTTP success
	// included. Use errors.As with *ApplicationError for the upstream
	// message.
	ErrApplication = errors.New("application failure")

	// ErrMalformedResponse marks a payload missing required fields or
	// failing to decode.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrIdentityUnresolved re-exports the session precondition: no usable
	// identity yet, so fetches must wait rather than fail.
	ErrIdentityUnresolved = session.ErrIdentityUnresolved

	// ErrStaleResponse marks a fetch whose view generation was superseded
	// while it was in flight; its result must be discarded, never rendered.
	ErrStaleResponse = errors.New("stale response discarded")
)

// ApplicationError carries the upstream's human-readable failure reason
// alongside the ErrApplication kind.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return "application failure"
	}
	return "application failure: " + e.Message
}

func (e *ApplicationError) Unwrap() error { return ErrApplication }
