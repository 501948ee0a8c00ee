package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID    string
	Count int
}

func TestQueue_PublishConsume(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue[payload](DefaultConfig())

	require.NoError(t, queue.Publish(ctx, &payload{ID: "n-1", Count: 1}))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "n-1", message.T().ID)
	assert.Equal(t, 0, queue.Size())

	assert.NoError(t, message.Ack())
	assert.ErrorIs(t, message.Ack(), ErrProcessed)
	assert.ErrorIs(t, message.Nack(nil), ErrProcessed)
}

func TestQueue_RetriesThenDeadLetter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	config := DefaultConfig()
	config.MaxRetries = 2
	config.RetryDelay = 5 * time.Millisecond
	queue := NewQueue[payload](config)
	require.NoError(t, queue.Publish(ctx, &payload{ID: "retry"}))

	var ids []string
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		message, err := queue.Consume(ctx)
		require.NoError(t, err, "attempt %d", attempt)
		ids = append(ids, message.(*Message[payload]).ID())
		require.NoError(t, message.Nack(errors.New("delivery failed")))
	}
	assert.Equal(t, ids[0], ids[2])
	assert.Eventually(t, func() bool { return len(queue.DeadLetters()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "retry", queue.DeadLetters()[0].ID)
	assert.Equal(t, 0, queue.Size())
}

func TestQueue_Concurrency(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue[payload](DefaultConfig())
	const producers, perProducer = 10, 10

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(producer int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				assert.NoError(t, queue.Publish(ctx, &payload{ID: fmt.Sprintf("p%d-%d", producer, j)}))
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < producers*perProducer; i++ {
		message, err := queue.Consume(ctx)
		require.NoError(t, err)
		seen[message.T().ID] = true
		require.NoError(t, message.Ack())
	}
	assert.Len(t, seen, producers*perProducer)
}

func TestQueue_ContextAndCapacity(t *testing.T) {
	queue := NewQueue[payload](Config{QueueBuffer: 1})
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, queue.Publish(cancelled, &payload{}))

	timeout, cancelTimeout := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelTimeout()
	_, err := queue.Consume(timeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, queue.TryPublish(&payload{ID: "a"}))
	assert.ErrorIs(t, queue.TryPublish(&payload{ID: "b"}), ErrFull)
}
