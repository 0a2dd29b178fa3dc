package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/recall/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var conflict = fmt.Errorf("commit: %w", storage.ErrConflict)

func TestRetryWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), nil, 3, time.Millisecond, func() error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), nil, 5, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return conflict
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestRetryWithBackoff_AllAttemptsFail(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), nil, 3, time.Millisecond, func() error {
		attempts++
		return conflict
	})
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.Equal(t, 3, attempts, "should attempt exactly maxAttempts times")
}

func TestRetryWithBackoff_NonConflictNotRetried(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	err := RetryWithBackoff(context.Background(), nil, 5, time.Millisecond, func() error {
		attempts++
		return expectedErr
	})
	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RetryWithBackoff(ctx, nil, 10, time.Millisecond, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return conflict
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, attempts, 2, "should stop when context is canceled")
}

func TestRetryWithBackoff_ExponentialBackoff(t *testing.T) {
	attempts := 0
	var delays []time.Duration
	lastTime := time.Now()

	err := RetryWithBackoff(context.Background(), nil, 5, 10*time.Millisecond, func() error {
		attempts++
		if attempts > 1 {
			delays = append(delays, time.Since(lastTime))
		}
		lastTime = time.Now()
		if attempts < 4 {
			return conflict
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, delays, 3)

	assert.GreaterOrEqual(t, delays[0], 10*time.Millisecond)
	assert.GreaterOrEqual(t, delays[1], 20*time.Millisecond)
	assert.GreaterOrEqual(t, delays[2], 40*time.Millisecond)
}

func TestRetryWithBackoff_InvalidMaxAttempts(t *testing.T) {
	for _, maxAttempts := range []int{0, -1} {
		attempts := 0
		err := RetryWithBackoff(context.Background(), nil, maxAttempts, time.Millisecond, func() error {
			attempts++
			return nil
		})
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
		assert.Equal(t, 0, attempts, "should not attempt with maxAttempts=%d", maxAttempts)
	}
}
