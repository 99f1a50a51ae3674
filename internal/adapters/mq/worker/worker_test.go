package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/intervue/internal/adapters/mq/queue"
	"github.com/okian/intervue/internal/adapters/mq/worker"
	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type fakeSink struct {
	mu      sync.Mutex
	entries []queue.Entry
	fail    map[string]error
}

func newFakeSink() *fakeSink { return &fakeSink{fail: map[string]error{}} }

func (s *fakeSink) Append(_ context.Context, e queue.Entry) error { //nolint:gocritic // matches Sink
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.fail[e.ID]; ok {
		return err
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *fakeSink) Name() string { return "fake" }

func (s *fakeSink) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.ID)
	}
	return out
}

func entry(id string) queue.Entry {
	return queue.Entry{ID: id, UserID: "u1", Kind: model.JournalToggle, TargetID: "a1", Outcome: model.OutcomeOK}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a worker over a queue and a sink", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		sink := newFakeSink()
		w := worker.NewWorker(q, sink, worker.WithLogger(logger.Nop()), worker.WithName("w"))

		convey.Convey("When entries are enqueued", func() {
			go w.Run(ctx)
			convey.So(q.Enqueue(ctx, entry("e1")), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, entry("e2")), convey.ShouldBeNil)

			convey.Convey("Then they reach the sink in order", func() {
				convey.So(waitFor(func() bool { return len(sink.ids()) == 2 }), convey.ShouldBeTrue)
				convey.So(sink.ids(), convey.ShouldResemble, []string{"e1", "e2"})
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the sink fails for one entry", func() {
			sink.fail["bad"] = errors.New("disk full")
			go w.Run(ctx)
			convey.So(q.Enqueue(ctx, entry("bad")), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, entry("good")), convey.ShouldBeNil)

			convey.Convey("Then the worker keeps going", func() {
				convey.So(waitFor(func() bool { return len(sink.ids()) == 1 }), convey.ShouldBeTrue)
				convey.So(sink.ids(), convey.ShouldResemble, []string{"good"})
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the queue is closed", func() {
			convey.So(q.Enqueue(ctx, entry("e1")), convey.ShouldBeNil)
			convey.So(q.Close(), convey.ShouldBeNil)
			go w.Run(ctx)

			convey.Convey("Then the worker drains and stops", func() {
				select {
				case <-w.Done():
				case <-time.After(2 * time.Second):
				}
				convey.So(sink.ids(), convey.ShouldResemble, []string{"e1"})
			})
		})

		convey.Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			go w.Run(cctx)
			cancel()

			convey.Convey("Then the worker stops", func() {
				stopped := false
				select {
				case <-w.Done():
					stopped = true
				case <-time.After(2 * time.Second):
				}
				convey.So(stopped, convey.ShouldBeTrue)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of four workers", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(256))
		sink := newFakeSink()
		p := worker.NewPool(4, q, sink, worker.WithLogger(logger.Nop()))

		convey.So(p.Size(), convey.ShouldEqual, 4)

		convey.Convey("When many entries are enqueued and the pool shuts down", func() {
			p.Start(ctx)
			for i := 0; i < 100; i++ {
				convey.So(q.Enqueue(ctx, entry(fmt.Sprintf("e%d", i))), convey.ShouldBeNil)
			}
			err := p.Shutdown(ctx)

			convey.Convey("Then every entry is written before Shutdown returns", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(sink.ids()), convey.ShouldEqual, 100)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When created with a non-positive count", func() {
			convey.So(worker.NewPool(0, q, sink, worker.WithLogger(logger.Nop())).Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
