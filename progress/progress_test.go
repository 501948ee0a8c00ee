package progress

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	var mu sync.Mutex
	var seen []Progress
	ctx, tr := WithNewTracker(context.Background(), "approve", func(p Progress) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	})

	UpdateCtx(ctx, Delta{Total: 3})
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i == 0 {
				UpdateCtx(ctx, Delta{Failed: 1})
				return
			}
			UpdateCtx(ctx, Delta{Succeeded: 1})
		}(i)
	}
	wg.Wait()

	snap := tr.Snapshot()
	assert.Equal(t, "approve", snap.Operation)
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, 2, snap.Succeeded)
	assert.Equal(t, 1, snap.Failed)
	assert.True(t, snap.Done())
	assert.Len(t, seen, 4)

	UpdateCtx(context.Background(), Delta{Total: 1})
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}
