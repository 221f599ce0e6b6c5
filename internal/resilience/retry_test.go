package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amorsize/amorsize/internal/amerrors"
	"github.com/amorsize/amorsize/internal/resilience"
	"github.com/stretchr/testify/assert"
)

func TestRetrier_SucceedsAfterTransientFailures(t *testing.T) {
	policy := resilience.RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  1 * time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
		Factor:     2.0,
		Jitter:     false,
	}
	retrier := resilience.NewRetrier(policy)

	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		if attempts <= 2 {
			return amerrors.New(amerrors.ComponentCache, "distributed-load", amerrors.ErrorTypeTransient, errors.New("connection reset"))
		}
		return nil
	}

	err := retrier.Execute(context.Background(), op)

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetrier_StopsOnNonRetryableError(t *testing.T) {
	retrier := resilience.NewRetrier(resilience.DefaultRetryPolicy)

	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		return amerrors.New(amerrors.ComponentCache, "distributed-load", amerrors.ErrorTypeValidation, errors.New("bad cache key"))
	}

	err := retrier.Execute(context.Background(), op)

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetrier_ExhaustsMaxRetries(t *testing.T) {
	policy := resilience.RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  1 * time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Factor:     2.0,
		Jitter:     false,
	}
	retrier := resilience.NewRetrier(policy)

	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		return amerrors.New(amerrors.ComponentCache, "distributed-load", amerrors.ErrorTypeTransient, errors.New("always flaky"))
	}

	err := retrier.Execute(context.Background(), op)

	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
}
