package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

var (
	ErrQueueFull   = errors.New("completion queue full")
	ErrQueueClosed = errors.New("completion queue closed")
)

const completionTimeout = 5 * time.Second

// CompletionJob asks for an order to be finalized once DueAt has passed.
type CompletionJob struct {
	OrderID string
	DueAt   time.Time
}

// CompletionResult reports what a worker did with a job. Status is empty when
// the order was left untouched.
type CompletionResult struct {
	OrderID string
	Status  domain.OrderStatus
	Err     error
}

// CompletionQueue finalizes pending orders after their delay. Jobs are held in
// FIFO order by a single delay stage and then finalized by a fixed worker pool.
type CompletionQueue struct {
	orders   port.OrderRepository
	workers  int
	jobs     chan CompletionJob
	onResult func(CompletionResult)
	logger   *slog.Logger
	metrics  orderMetrics

	mu     sync.RWMutex
	closed bool
}

func NewCompletionQueue(orders port.OrderRepository, workers, size int, opts ...Option) *CompletionQueue {
	if workers <= 0 {
		workers = 1
	}
	if size < 0 {
		size = 0
	}
	o := buildOptions(opts)
	return &CompletionQueue{
		orders:  orders,
		workers: workers,
		jobs:    make(chan CompletionJob, size),
		logger:  o.logger,
		metrics: newOrderMetrics(o.meter),
	}
}

// OnResult registers a callback invoked by workers after each job. It must be
// set before Run.
func (q *CompletionQueue) OnResult(fn func(CompletionResult)) {
	q.onResult = fn
}

// Schedule enqueues without blocking.
func (q *CompletionQueue) Schedule(job CompletionJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Len is the number of jobs not yet picked up by the delay stage.
func (q *CompletionQueue) Len() int {
	return len(q.jobs)
}

// Close stops intake. Run keeps going until every queued job is finalized.
func (q *CompletionQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.jobs)
}

// Run blocks until the queue is closed and drained, or ctx is cancelled.
// Cancellation abandons jobs that are not yet due; their orders stay pending.
func (q *CompletionQueue) Run(ctx context.Context) {
	ready := make(chan CompletionJob)

	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			q.workerLoop(ctx, id, ready)
		}(i)
	}
	q.logger.Info("completion workers started", slog.Int("workers", q.workers))

	q.delayLoop(ctx, ready)
	close(ready)
	wg.Wait()
	q.logger.Info("completion workers stopped")
}

func (q *CompletionQueue) delayLoop(ctx context.Context, ready chan<- CompletionJob) {
	for {
		var job CompletionJob
		var ok bool
		select {
		case <-ctx.Done():
			q.abandon(ctx, 0)
			return
		case job, ok = <-q.jobs:
			if !ok {
				return
			}
		}

		timer := time.NewTimer(time.Until(job.DueAt))
		select {
		case <-ctx.Done():
			timer.Stop()
			q.abandon(ctx, 1)
			return
		case <-timer.C:
		}

		select {
		case ready <- job:
		case <-ctx.Done():
			q.abandon(ctx, 1)
			return
		}
	}
}

func (q *CompletionQueue) abandon(ctx context.Context, held int) {
	n := held + len(q.jobs)
	if n == 0 {
		return
	}
	q.metrics.recordAbandoned(context.WithoutCancel(ctx), n)
	q.logger.Warn("abandoning completion jobs, orders stay pending", slog.Int("count", n))
}

func (q *CompletionQueue) workerLoop(ctx context.Context, id int, ready <-chan CompletionJob) {
	for job := range ready {
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), completionTimeout)
		result := q.complete(jobCtx, id, job)
		cancel()

		if q.onResult != nil {
			q.onResult(result)
		}
	}
}

// complete moves the order to completed. When the store rejects that, the
// order is marked failed instead. Missing or already finalized orders are
// skipped.
func (q *CompletionQueue) complete(ctx context.Context, worker int, job CompletionJob) CompletionResult {
	attrs := []slog.Attr{slog.Int("worker", worker), slog.String("order.id", job.OrderID)}

	order, err := q.orders.TransitionOrder(ctx, job.OrderID, domain.OrderStatusCompleted)
	if err == nil {
		q.metrics.recordFinalized(ctx, order.Status)
		q.logger.LogAttrs(ctx, slog.LevelInfo, "order completed", attrs...)
		return CompletionResult{OrderID: job.OrderID, Status: order.Status}
	}

	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidTransition) {
		q.logger.LogAttrs(ctx, slog.LevelWarn, "skipping order completion",
			append(attrs, slog.String("error", err.Error()))...)
		return CompletionResult{OrderID: job.OrderID, Err: err}
	}

	q.logger.LogAttrs(ctx, slog.LevelError, "failed to complete order",
		append(attrs, slog.String("error", err.Error()))...)

	order, failErr := q.orders.TransitionOrder(ctx, job.OrderID, domain.OrderStatusFailed)
	if failErr != nil {
		q.logger.LogAttrs(ctx, slog.LevelError, "CRITICAL failed to mark order failed",
			append(attrs, slog.String("error", failErr.Error()))...)
		return CompletionResult{OrderID: job.OrderID, Err: errors.Join(err, failErr)}
	}
	q.metrics.recordFinalized(ctx, order.Status)
	q.logger.LogAttrs(ctx, slog.LevelWarn, "order marked failed", attrs...)
	return CompletionResult{OrderID: job.OrderID, Status: order.Status, Err: err}
}
