package dispatch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolRejectsBadSizes(t *testing.T) {
	_, err := NewPool(0, 4)
	assert.Error(t, err)

	_, err = NewPool(4, 0)
	assert.Error(t, err)
}

func TestPoolRunsAllSubmittedJobs(t *testing.T) {
	pool, err := NewPool(4, 8)
	require.NoError(t, err)

	var done int32
	for i := 0; i < 20; i++ {
		pool.Submit(func(ctx context.Context) {
			atomic.AddInt32(&done, 1)
		})
	}

	require.NoError(t, pool.Shutdown(context.Background()))
	assert.Equal(t, int32(20), atomic.LoadInt32(&done), "Shutdown должен дорабатывать очередь")
}

func TestPoolShutdownTimeout(t *testing.T) {
	pool, err := NewPool(1, 1)
	require.NoError(t, err)

	release := make(chan struct{})
	pool.Submit(func(ctx context.Context) {
		<-release
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, pool.Shutdown(ctx))

	close(release)
}

func TestPoolSubmitAfterShutdownDoesNotPanic(t *testing.T) {
	pool, err := NewPool(1, 1)
	require.NoError(t, err)
	require.NoError(t, pool.Shutdown(context.Background()))

	assert.NotPanics(t, func() {
		pool.Submit(func(ctx context.Context) {})
	})
}

func TestPoolBlockedSubmitReleasedByShutdown(t *testing.T) {
	pool, err := NewPool(1, 1)
	require.NoError(t, err)

	release := make(chan struct{})
	pool.Submit(func(ctx context.Context) {
		<-release
	})
	pool.Submit(func(ctx context.Context) {})	// очередь заполнена

	submitted := make(chan struct{})
	go func() {
		defer close(submitted)
		pool.Submit(func(ctx context.Context) {})	// блокируется на полной очереди
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = pool.Shutdown(ctx)	// истечёт: воркер занят

	select {
	case <-submitted:
	case <-time.After(time.Second):
		t.Fatal("заблокированный Submit должен завершиться после начала остановки")
	}

	close(release)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	pool, err := NewPool(2, 16)
	require.NoError(t, err)

	var current, peak int32
	for i := 0; i < 10; i++ {
		pool.Submit(func(ctx context.Context) {
			n := atomic.AddInt32(&current, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&current, -1)
		})
	}

	require.NoError(t, pool.Shutdown(context.Background()))
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}
