package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go"
)

var (
	// ErrNotConfigured indicates no usable model credential is available.
	// Fatal for the whole model-backed capability; never retried.
	ErrNotConfigured = errors.New("model client not configured")

	// ErrAllModelsFailed aggregates the failures of every candidate model
	// in the fallback chain.
	ErrAllModelsFailed = errors.New("all candidate models failed")

	// ErrEmptyCompletion indicates the model returned no usable choice.
	ErrEmptyCompletion = errors.New("model returned an empty completion")
)

// IsNotConfigured checks if an error indicates a missing model credential.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// IsAllModelsFailed checks if an error indicates chain exhaustion.
func IsAllModelsFailed(err error) bool {
	return errors.Is(err, ErrAllModelsFailed)
}

// IsRetryable classifies a model failure. Capacity and rate-limit class
// failures advance the fallback chain; everything else aborts immediately.
func IsRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			return true
		}
	}

	return false
}
