package ai

import (
	"context"
)

// Outcome is the tagged result of a bounded retry: either OK with a Value, or not OK
// with the Reason taken from the last failure.
type Outcome[T any] struct {
	OK       bool
	Value    T
	Reason   string
	Attempts int
}

// Retry calls fn up to attempts times with no delay in between and stops at the first
// success. It never returns an error: exhaustion is reported through Outcome.OK.
// A cancelled context stops further attempts.
func Retry[T any](ctx context.Context, attempts int, fn func(ctx context.Context, attempt int) (T, error)) Outcome[T] {
	if attempts < 1 {
		attempts = 1
	}

	var out Outcome[T]
	for attempt := 1; attempt <= attempts; attempt++ {
		out.Attempts = attempt
		v, err := fn(ctx, attempt)
		if err == nil {
			out.OK = true
			out.Value = v
			out.Reason = ""
			return out
		}
		out.Reason = err.Error()
		if ctx.Err() != nil {
			break
		}
	}
	return out
}
