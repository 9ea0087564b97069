package organizer

import (
	"fmt"
	"strconv"
	"time"

	"acordex/internal/domain"
)

// RateLimitError indicates an organizer provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// UnavailableError wraps any failure of an organizer call: timeout,
// transport error, provider error or an unusable response.
type UnavailableError struct {
	Provider string
	Err      error
}

// NewUnavailableError wraps err, leaving an existing UnavailableError as is.
func NewUnavailableError(provider string, err error) *UnavailableError {
	if ue, ok := err.(*UnavailableError); ok {
		return ue
	}
	return &UnavailableError{Provider: provider, Err: err}
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("organizer %s unavailable: %v", e.Provider, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == domain.ErrOrganizerUnavailable }
