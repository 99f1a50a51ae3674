// Package worker drains the journal queue into a journal sink.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/intervue/internal/adapters/mq/queue"
	"github.com/okian/intervue/pkg/logger"
	"github.com/okian/intervue/pkg/metrics"
)

const (
	defaultWriteTimeout = 5 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Sink persists journal entries.
type Sink interface {
	Append(ctx context.Context, e queue.Entry) error
	Name() string
}

// Queue defines how workers receive entries.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Entry
}

// Worker writes entries from the queue to the sink until the queue is closed
// and drained, ctx ends, or Shutdown is called.
type Worker struct {
	queue        Queue
	sink         Sink
	name         string
	writeTimeout time.Duration
	busy         *atomic.Int64

	shutdown chan struct{}
	once     sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker.
func NewWorker(q Queue, sink Sink, opts ...Option) *Worker {
	w := &Worker{
		queue:        q,
		sink:         sink,
		name:         "journal-worker",
		writeTimeout: defaultWriteTimeout,
		busy:         &atomic.Int64{},
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run blocks until the worker stops.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	entries := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-entries:
			if !ok {
				return
			}
			if err := w.write(ctx, e); err != nil {
				w.logger.Error(ctx, "journal write failed", logger.Error(err))
			}
		}
	}
}

// Done is closed once Run has returned.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Shutdown stops the worker without waiting for the queue to drain.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.once.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *Worker) write(ctx context.Context, e queue.Entry) error { //nolint:gocritic // entries travel by value over the channel
	w.busy.Add(1)
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.busy.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()
	metrics.UpdateWorkerActiveCount(int(w.busy.Load()))

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.writeTimeout)
	defer cancel()

	if err := w.sink.Append(wctx, e); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "journal_write")
		return fmt.Errorf("append entry %s to %s: %w", e.ID, w.sink.Name(), err)
	}
	metrics.RecordJournalWrite(w.sink.Name())
	return nil
}

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one selects
// runtime.NumCPU().
func NewPool(workerCount int, q Queue, sink Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	busy := &atomic.Int64{}
	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   q,
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("journal-worker-" + strconv.Itoa(i))}, opts...)
		wopts = append(wopts, withBusyCounter(busy))
		p.workers[i] = NewWorker(q, sink, wopts...)
	}
	p.logger = p.workers[0].logger

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it. Workers
// still running when ctx or the pool timeout expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-drainCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			_ = w.Shutdown(context.Background())
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("journal drain: %w", drainCtx.Err())
	}
	return nil
}
