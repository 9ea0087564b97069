package organizer_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"acordex/internal/domain"
	"acordex/internal/organizer"
)

func TestNewRateLimitError_DefaultsRetryAfter(t *testing.T) {
	err := organizer.NewRateLimitError("openai", errors.New("429"), 0)
	assert.Equal(t, 60*time.Second, err.RetryAfter)

	err = organizer.NewRateLimitError("openai", errors.New("429"), 5)
	assert.Equal(t, 5*time.Second, err.RetryAfter)
	assert.Contains(t, err.Error(), "openai rate limited")
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, organizer.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, organizer.ParseRetryAfterHeader("soon"))
	assert.Equal(t, 30, organizer.ParseRetryAfterHeader("30"))
}

func TestUnavailableError(t *testing.T) {
	cause := errors.New("connection refused")
	err := organizer.NewUnavailableError("openai", cause)

	assert.True(t, errors.Is(err, domain.ErrOrganizerUnavailable))
	assert.True(t, errors.Is(err, cause))

	// wrapping twice keeps the original
	again := organizer.NewUnavailableError("claude", err)
	assert.Same(t, err, again)

	wrapped := fmt.Errorf("extract: %w", err)
	var ue *organizer.UnavailableError
	assert.True(t, errors.As(wrapped, &ue))
	assert.Equal(t, "openai", ue.Provider)
}
