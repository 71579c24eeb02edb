package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, Config{})

	err := q.Enqueue(Job{Kind: "noop"})
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	processed := []string{}
	done := make(chan struct{}, 4)

	q := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		processed = append(processed, job.Kind)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, Config{Workers: 2, BufferSize: 8})

	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 4; i++ {
		require.NoError(t, q.Enqueue(Job{Kind: "mail"}))
	}
	for i := 0; i < 4; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job not processed in time")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, processed, 4)
}

func TestQueueAssignsJobIdentity(t *testing.T) {
	captured := make(chan Job, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		captured <- job
		return nil
	}, Config{})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Kind: "mail"}))
	select {
	case job := <-captured:
		assert.NotEmpty(t, job.ID)
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("job not processed in time")
	}
}

func TestQueueRejectsWhenFull(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		<-block
		return nil
	}, Config{Workers: 1, BufferSize: 1})

	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	// First job occupies the worker, second fills the buffer. Give the
	// worker a moment to pick up the first one.
	require.NoError(t, q.Enqueue(Job{Kind: "mail"}))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, q.Enqueue(Job{Kind: "mail"}))

	err := q.Enqueue(Job{Kind: "mail"})
	require.ErrorIs(t, err, ErrQueueFull)
}

func TestQueueDropsFailedJobs(t *testing.T) {
	calls := make(chan string, 2)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		calls <- job.Kind
		if job.Kind == "bad" {
			return errors.New("handler failure")
		}
		return nil
	}, Config{})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Kind: "bad"}))
	require.NoError(t, q.Enqueue(Job{Kind: "good"}))

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatal("job not processed in time")
		}
	}
	// No retry: nothing further arrives.
	select {
	case kind := <-calls:
		t.Fatalf("unexpected retry of %q", kind)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestQueueReportsDepth(t *testing.T) {
	var mu sync.Mutex
	depths := []int{}
	block := make(chan struct{})

	q := NewQueue("test", func(ctx context.Context, job Job) error {
		<-block
		return nil
	}, Config{
		Workers:    1,
		BufferSize: 2,
		DepthHook: func(depth int) {
			mu.Lock()
			depths = append(depths, depth)
			mu.Unlock()
		},
	})

	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	// First job occupies the worker; two more sit in the buffer.
	require.NoError(t, q.Enqueue(Job{Kind: "mail"}))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, q.Enqueue(Job{Kind: "mail"}))
	require.NoError(t, q.Enqueue(Job{Kind: "mail"}))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, depths)
	assert.Equal(t, 2, depths[len(depths)-1])
}

func TestQueueStopWaitsForWorkers(t *testing.T) {
	started := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		return nil
	}, Config{})

	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{Kind: "mail"}))
	<-started
	q.Stop()
}
