package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrQueueFull is returned when the buffer has no room for another job.
// Producers treat notifications as best-effort and must not block on this.
var ErrQueueFull = errors.New("jobs: queue buffer full")

// ErrNotStarted is returned when enqueueing before Start.
var ErrNotStarted = errors.New("jobs: queue not started")

// Job represents a queued background task.
type Job struct {
	ID       string
	Kind     string
	Payload  interface{}
	Enqueued time.Time
}

// Handler processes a job. Failures are logged by the queue and dropped.
type Handler func(context.Context, Job) error

// Config tunes worker pool behaviour.
type Config struct {
	Workers    int
	BufferSize int
	Logger     *zap.Logger

	// DepthHook, when set, receives the buffered job count after every
	// enqueue and dequeue. Used to feed the queue-depth gauge.
	DepthHook func(depth int)
}

// Queue is a bounded in-memory job dispatcher backed by goroutines. Enqueue
// never blocks the caller; jobs past the buffer capacity are rejected.
type Queue struct {
	name      string
	handler   Handler
	logger    *zap.Logger
	workers   int
	depthHook func(int)

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a queue with the provided handler.
func NewQueue(name string, handler Handler, cfg Config) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 16
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:      name,
		handler:   handler,
		logger:    cfg.Logger,
		workers:   cfg.Workers,
		depthHook: cfg.DepthHook,
		jobs:      make(chan Job, cfg.BufferSize),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels workers and waits for them to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

// Enqueue pushes a job onto the queue without blocking.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	started := q.started
	q.mu.Unlock()

	if !started {
		return ErrNotStarted
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case q.jobs <- job:
		q.reportDepth()
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) reportDepth() {
	if q.depthHook != nil {
		q.depthHook(len(q.jobs))
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.reportDepth()
			if err := q.handler(q.ctx, job); err != nil {
				q.logger.Sugar().Errorw("job failed",
					"queue", q.name, "job_id", job.ID, "kind", job.Kind, "error", err)
			}
		}
	}
}
