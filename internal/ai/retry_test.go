package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetry(t *testing.T) {
	t.Run("stops at first success", func(t *testing.T) {
		calls := 0
		out := Retry(context.Background(), 3, func(ctx context.Context, attempt int) (int, error) {
			calls++
			if attempt < 2 {
				return 0, errors.New("fail")
			}
			return 42, nil
		})

		assert.True(t, out.OK)
		assert.Equal(t, 42, out.Value)
		assert.Equal(t, 2, out.Attempts)
		assert.Equal(t, 2, calls)
	})

	t.Run("reports last reason on exhaustion", func(t *testing.T) {
		out := Retry(context.Background(), 3, func(ctx context.Context, attempt int) (string, error) {
			return "", errors.New("fail " + string(rune('0'+attempt)))
		})

		assert.False(t, out.OK)
		assert.Equal(t, 3, out.Attempts)
		assert.Equal(t, "fail 3", out.Reason)
	})

	t.Run("cancelled context stops early", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		out := Retry(ctx, 3, func(ctx context.Context, attempt int) (int, error) {
			calls++
			cancel()
			return 0, ctx.Err()
		})

		assert.False(t, out.OK)
		assert.Equal(t, 1, calls)
	})
}
