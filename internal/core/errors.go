package core

import "errors"

// Error class messages.
const (
	errMsgInvalidInput  = "invalid input"
	errMsgAuthFailed    = "authentication failed"
	errMsgRateLimited   = "rate limited by synthesis provider"
	errMsgQuotaExceeded = "synthesis quota exceeded"
	errMsgEmptyPayload  = "empty audio payload"
)

// The synthesis error taxonomy. Every provider failure wraps exactly one of these
// sentinels so callers can classify with errors.Is.
var (
	// ErrInvalidInput marks malformed caller input. Never retried; aborts the
	// whole pipeline.
	ErrInvalidInput = errors.New(errMsgInvalidInput)
	// ErrAuthentication marks a rejected credential. Never retried; aborts the
	// whole pipeline.
	ErrAuthentication = errors.New(errMsgAuthFailed)
	// ErrRateLimited marks a provider rate-limit response. Retried with the
	// longer backoff class.
	ErrRateLimited = errors.New(errMsgRateLimited)
	// ErrQuotaExceeded marks an exhausted provider quota. Never retried; aborts
	// the whole pipeline.
	ErrQuotaExceeded = errors.New(errMsgQuotaExceeded)
	// ErrEmptyPayload marks a response with no audio bytes. Retried with the
	// shorter backoff class.
	ErrEmptyPayload = errors.New(errMsgEmptyPayload)
)

// IsFatal reports whether the error belongs to a class that no retry or
// per-segment fallback can fix. Fatal errors abort the whole pipeline.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrAuthentication) ||
		errors.Is(err, ErrQuotaExceeded)
}

// IsRateLimited reports whether the error is a provider rate-limit signal, which
// earns the longer backoff class before a retry.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
