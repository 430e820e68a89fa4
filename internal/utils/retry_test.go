package utils

import (
	"assignmentgateway/internal/errdefs"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transportErr() error {
	return &errdefs.TransportError{Op: "list courses", Err: errors.New("connection refused")}
}

func TestRetryWithBackoff_Success(t *testing.T) {
	result, err := RetryWithBackoff(context.Background(), 3, 10*time.Millisecond, func() (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestRetryWithBackoff_NonRetriableError(t *testing.T) {
	calls := 0
	_, err := RetryWithBackoff(context.Background(), 3, 10*time.Millisecond, func() (string, error) {
		calls++
		return "", &errdefs.RequestError{StatusCode: 404, Message: "Not found"}
	})
	assert.ErrorIs(t, err, errdefs.ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_RetriableEventualSuccess(t *testing.T) {
	calls := 0
	result, err := RetryWithBackoff(context.Background(), 5, 10*time.Millisecond, func() (string, error) {
		calls++
		if calls < 3 {
			return "", transportErr()
		}
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_AllRetriesFail(t *testing.T) {
	calls := 0
	_, err := RetryWithBackoff(context.Background(), 3, 10*time.Millisecond, func() (string, error) {
		calls++
		return "", transportErr()
	})
	assert.ErrorIs(t, err, errdefs.ErrTransport)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RetryWithBackoff(ctx, 5, 10*time.Millisecond, func() (string, error) {
		return "", transportErr()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetriable(t *testing.T) {
	assert.True(t, IsRetriable(transportErr()))
	assert.False(t, IsRetriable(ErrCircuitOpen))
	assert.False(t, IsRetriable(&errdefs.ParseError{Op: "get", Err: errors.New("bad json")}))
	assert.False(t, IsRetriable(&errdefs.RequestError{StatusCode: 422}))
	assert.False(t, IsRetriable(errors.New("plain")))
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Second)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return transportErr() })
	}
	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.ErrorIs(t, err, errdefs.ErrTransport)
}

func TestCircuitBreaker_ResetsAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(2, 50*time.Millisecond)

	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return transportErr() })
	}
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(60 * time.Millisecond)

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_NonRetriableErrorDoesNotCount(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Second)

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return &errdefs.RequestError{StatusCode: 404} })
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestRetryWithCircuitBreaker_StopsWhenOpen(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Second)
	calls := 0
	_, err := RetryWithCircuitBreaker(context.Background(), cb, 5, time.Millisecond, func() (string, error) {
		calls++
		return "", transportErr()
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, calls)
}
