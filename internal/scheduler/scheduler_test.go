package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEveryRunsImmediatelyAndRepeats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var n atomic.Int32
	done := make(chan struct{})
	go func() {
		err := Every(ctx, 10*time.Millisecond, "test", func(context.Context) error {
			if n.Add(1) == 3 {
				cancel()
			}
			return nil
		})
		assert.NoError(t, err)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Every did not return after cancel")
	}
	assert.GreaterOrEqual(t, n.Load(), int32(3))
}

func TestEveryNeverOverlaps(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var running, maxRunning atomic.Int32
	err := Every(ctx, time.Millisecond, "test", func(context.Context) error {
		cur := running.Add(1)
		if cur > maxRunning.Load() {
			maxRunning.Store(cur)
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, int32(1), maxRunning.Load())
}

func TestEveryStopsOnTaskError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	diskFull := errors.New("save seen set: disk full")
	calls := 0
	err := Every(ctx, 5*time.Millisecond, "run", func(context.Context) error {
		calls++
		if calls == 2 {
			return diskFull
		}
		return nil
	})
	assert.ErrorIs(t, err, diskFull)
	assert.Equal(t, 2, calls)
	assert.NoError(t, ctx.Err(), "returned on the failure, not the deadline")
}
