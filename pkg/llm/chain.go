package llm

import (
	"context"
	"fmt"
	"strings"
)

// AttemptFunc issues one generation attempt against a single model id.
type AttemptFunc func(ctx context.Context, model string) (string, error)

// TryInOrder runs attempt against each candidate model in order. A
// retryable failure advances to the next candidate; any other failure
// aborts immediately. When every candidate fails, the result is a single
// aggregated ErrAllModelsFailed.
func TryInOrder(ctx context.Context, candidates []string, attempt AttemptFunc) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNotConfigured
	}

	failures := make([]string, 0, len(candidates))

	for _, model := range candidates {
		text, err := attempt(ctx, model)
		if err == nil {
			return text, nil
		}

		if !IsRetryable(err) {
			return "", fmt.Errorf("model %s failed: %w", model, err)
		}

		failures = append(failures, fmt.Sprintf("%s: %v", model, err))
	}

	return "", fmt.Errorf("%w: %s", ErrAllModelsFailed, strings.Join(failures, "; "))
}
