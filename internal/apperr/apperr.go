// Package apperr carries an operation name and an error kind alongside a
// wrapped cause. Kinds map one-to-one onto API error responses.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

type Kind uint8

const (
	Unknown Kind = iota
	Validation
	NotFound
	Conflict
	RateLimited
	Unauthorized
	Internal
)

var ErrRateLimited = errors.New("rate limit exceeded")

type Error struct {
	Op   string
	Kind Kind
	Err  error

	// RetryAfter is only set for RateLimited errors.
	RetryAfter time.Duration
}

// E wraps err with op and kind. A nil err yields nil.
func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// RateLimit builds a RateLimited error that tells the caller when to retry.
func RateLimit(op string, retryAfter time.Duration) error {
	return &Error{
		Op:         op,
		Kind:       RateLimited,
		Err:        ErrRateLimited,
		RetryAfter: retryAfter,
	}
}

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "Unknown"
	case Validation:
		return "Validation"
	case NotFound:
		return "NotFound"
	case Conflict:
		return "Conflict"
	case RateLimited:
		return "RateLimited"
	case Unauthorized:
		return "Unauthorized"
	case Internal:
		return "Internal"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func OpOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// RetryAfterOf returns the retry hint of a RateLimited error, or zero.
func RetryAfterOf(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.Kind == RateLimited {
		return e.RetryAfter
	}
	return 0
}
