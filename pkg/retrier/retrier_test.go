package retrier

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func fastRetrier(retries int) *Retrier {
	return New(
		WithInitialInterval(time.Millisecond),
		WithMaxInterval(5*time.Millisecond),
		WithMaxRetries(retries),
	)
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := fastRetrier(3).Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestDoReturnsLastErrorWhenExhausted(t *testing.T) {
	attempts := 0
	err := fastRetrier(2).Do(context.Background(), func(context.Context) error {
		attempts++
		return errors.Errorf("attempt %d", attempts)
	})

	require.Error(t, err)
	require.Equal(t, 3, attempts, "initial try plus two retries")
	require.Contains(t, err.Error(), "attempt 3")
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := New(WithInitialInterval(time.Hour), WithMaxRetries(5)).Do(ctx, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("fail")
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, attempts)
}

func TestDoWithData(t *testing.T) {
	attempts := 0
	result, err := DoWithData(fastRetrier(3), context.Background(), func(context.Context) (int, error) {
		attempts++
		if attempts < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	require.NoError(t, err)
	require.Equal(t, 42, result)
}
