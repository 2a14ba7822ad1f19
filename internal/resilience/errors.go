package resilience

import (
	"errors"
	"strings"
)

// TransientError marks a collaborator overload/unavailable signal. These are
// safe to retry: the service is saturated, not rejecting the request.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps err as retryable with an optional status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// QuotaError marks a rate/quota-limit rejection. Retrying one only wastes
// the retry budget and delays correct user feedback, so it is never retried
// and surfaces its own user-facing message.
type QuotaError struct {
	Err        error
	StatusCode int
}

func (e *QuotaError) Error() string { return e.Err.Error() }

func (e *QuotaError) Unwrap() error { return e.Err }

// NewQuotaError wraps err as a non-retryable quota rejection.
func NewQuotaError(err error, statusCode int) *QuotaError {
	return &QuotaError{Err: err, StatusCode: statusCode}
}

// IsTransient reports whether err (or anything in its chain) is a
// TransientError or matches a known overload message.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	// A typed quota rejection stays non-retryable even when the provider's
	// message carries an overload phrase ("quota exceeded, try again later").
	if IsQuota(err) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{"overloaded", "unavailable", "server is busy", "try again later"} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsQuota reports whether err is a quota/rate-limit rejection.
func IsQuota(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}

// ClassifyStatus wraps err according to its HTTP/gRPC-mapped status code:
// 429 is quota exhaustion, 500/503/504 are transient overload, anything else
// passes through unchanged.
func ClassifyStatus(err error, statusCode int) error {
	if err == nil {
		return nil
	}
	switch statusCode {
	case 429:
		return NewQuotaError(err, statusCode)
	case 500, 503, 504:
		return NewTransientError(err, statusCode)
	default:
		return err
	}
}
