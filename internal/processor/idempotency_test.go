package processor

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/paywise/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr := miniredis.RunT(t)
	connName := t.Name() + "-" + mr.Addr()
	adapter, err := redis.NewRedisAdapter(connName, "", &redis.Options{Addrs: []string{mr.Addr()}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redis.Close(connName) })
	return mr, adapter
}

func newTestIdempotency(t *testing.T) (*miniredis.Miniredis, *IdempotencyService) {
	mr, adapter := setupTestRedis(t)
	return mr, NewIdempotencyService(adapter, DefaultIdempotencyConfig())
}

func TestIdempotencyService_AcquireProcessingLock_FirstAttempt(t *testing.T) {
	mr, service := newTestIdempotency(t)

	procCtx, err := service.AcquireProcessingLock(context.Background(), "ev-1")
	require.NoError(t, err)
	require.NotNil(t, procCtx)

	assert.Equal(t, "ev-1", procCtx.EventID)
	assert.Equal(t, 0, procCtx.RetryCount)
	assert.False(t, procCtx.IsRetry)
	assert.True(t, procCtx.lockAcquired)
	assert.True(t, mr.Exists("paywise:event:lock:ev-1"))
}

func TestIdempotencyService_AcquireProcessingLock_Concurrent(t *testing.T) {
	_, service := newTestIdempotency(t)
	ctx := context.Background()

	first, err := service.AcquireProcessingLock(ctx, "ev-2")
	require.NoError(t, err)

	second, err := service.AcquireProcessingLock(ctx, "ev-2")
	assert.ErrorIs(t, err, ErrLockAcquireFailed)
	assert.Nil(t, second)
	assert.True(t, first.lockAcquired)
}

func TestIdempotencyService_MarkSuccess(t *testing.T) {
	mr, service := newTestIdempotency(t)
	ctx := context.Background()

	procCtx, err := service.AcquireProcessingLock(ctx, "ev-3")
	require.NoError(t, err)
	require.NoError(t, service.MarkSuccess(ctx, procCtx))

	processed, err := service.IsProcessed(ctx, "ev-3")
	require.NoError(t, err)
	assert.True(t, processed)
	assert.False(t, mr.Exists("paywise:event:lock:ev-3"))
	assert.False(t, procCtx.lockAcquired)

	again, err := service.AcquireProcessingLock(ctx, "ev-3")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Nil(t, again)
}

func TestIdempotencyService_MarkFailure_WithRetry(t *testing.T) {
	_, service := newTestIdempotency(t)
	ctx := context.Background()

	procCtx, err := service.AcquireProcessingLock(ctx, "ev-4")
	require.NoError(t, err)
	require.NoError(t, service.MarkFailure(ctx, procCtx, assert.AnError))

	count, err := service.GetRetryCount(ctx, "ev-4")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	retry, err := service.AcquireProcessingLock(ctx, "ev-4")
	require.NoError(t, err)
	assert.Equal(t, 1, retry.RetryCount)
	assert.True(t, retry.IsRetry)
}

func TestIdempotencyService_MaxRetriesExceeded(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	cfg := DefaultIdempotencyConfig()
	cfg.MaxRetries = 2
	service := NewIdempotencyService(adapter, cfg)

	require.NoError(t, mr.Set(cfg.RetryKeyPrefix+"ev-5", "2"))

	procCtx, err := service.AcquireProcessingLock(context.Background(), "ev-5")
	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Nil(t, procCtx)
}

func TestIdempotencyService_ReleaseLock(t *testing.T) {
	mr, service := newTestIdempotency(t)
	ctx := context.Background()

	procCtx, err := service.AcquireProcessingLock(ctx, "ev-6")
	require.NoError(t, err)

	require.NoError(t, service.ReleaseLock(ctx, procCtx))
	assert.False(t, mr.Exists("paywise:event:lock:ev-6"))

	// second release is a no-op
	assert.NoError(t, service.ReleaseLock(ctx, procCtx))
	assert.NoError(t, service.ReleaseLock(ctx, nil))
}

func TestIdempotencyService_GetRetryCount(t *testing.T) {
	mr, service := newTestIdempotency(t)
	ctx := context.Background()

	count, err := service.GetRetryCount(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, mr.Set("paywise:event:retry:bad", "x"))
	_, err = service.GetRetryCount(ctx, "bad")
	assert.Error(t, err)
}
