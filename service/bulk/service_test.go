package bulk

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/contentflow/internal/logger"
	"github.com/viant/contentflow/model"
	"github.com/viant/contentflow/progress"
)

func TestService_RunIsolation(t *testing.T) {
	srv := New(WithWorkers(3), WithLogger(logger.Discard()))
	ctx, tracker := progress.WithNewTracker(context.Background(), "approve", nil)
	boom := errors.New("boom")

	ids := []string{"a", "b", "", "c", "panic", "d"}
	results := srv.Run(ctx, "approve", ids, func(_ context.Context, id string) error {
		switch id {
		case "b":
			return boom
		case "panic":
			panic("bad item")
		}
		return nil
	})

	require.Len(t, results, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, results[i].ID)
	}
	assert.True(t, results[0].OK)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, "boom", results[1].Error)
	assert.ErrorIs(t, results[2].Err, model.ErrValidation)
	assert.Contains(t, results[4].Error, "panic")
	assert.True(t, results[5].OK)

	succeeded, failed := Count(results)
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 3, failed)

	snap := tracker.Snapshot()
	assert.Equal(t, 6, snap.Total)
	assert.Equal(t, 3, snap.Succeeded)
	assert.Equal(t, 3, snap.Failed)
	assert.Equal(t, 0, snap.Running)
}

func TestService_RunBounded(t *testing.T) {
	srv := New(WithWorkers(2), WithLogger(logger.Discard()))
	var running, peak int32
	ids := []string{"1", "2", "3", "4", "5", "6"}
	srv.Run(context.Background(), "assign", ids, func(context.Context, string) error {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	})
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestService_RunCancelled(t *testing.T) {
	srv := New(WithLogger(logger.Discard()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := srv.Run(ctx, "reject", []string{"a", "b"}, func(context.Context, string) error { return nil })
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
	assert.Empty(t, srv.Run(context.Background(), "reject", nil, nil))
}
