// Package bootstrap assembles the engine and its adapters from a Config.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/intervue/internal/adapters/interviewsvc"
	"github.com/okian/intervue/internal/adapters/mq/queue"
	"github.com/okian/intervue/internal/adapters/mq/worker"
	"github.com/okian/intervue/internal/adapters/repository"
	service "github.com/okian/intervue/internal/app"
	"github.com/okian/intervue/internal/config"
	"github.com/okian/intervue/pkg/logger"
)

const drainTimeout = 30 * time.Second

// Journal is the sink the workers write to and the engine reads back.
type Journal interface {
	worker.Sink
	service.ActivityReader
}

// Engine is a running engine with its journal pipeline.
type Engine struct {
	Service *service.Service
	Journal Journal

	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	closers []func() error
	logger  logger.Logger
}

// Build connects the configured backends and starts the journal workers.
// On error everything opened so far is closed.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*Engine, error) {
	e := &Engine{logger: log}

	remote, err := interviewsvc.New(cfg.ServiceURL,
		interviewsvc.WithToken(cfg.ServiceToken),
		interviewsvc.WithTimeout(cfg.ServiceTimeout()),
		interviewsvc.WithLogger(log.Named("interviewsvc")),
	)
	if err != nil {
		return nil, fmt.Errorf("interview service client: %w", err)
	}

	sessions, err := e.sessionStore(ctx, cfg)
	if err != nil {
		e.closeAll()
		return nil, err
	}

	if err := e.journal(ctx, cfg); err != nil {
		e.closeAll()
		return nil, err
	}

	e.queue = queue.NewInMemoryQueue(queue.WithCapacity(cfg.JournalQueueSize))
	e.pool = worker.NewPool(cfg.JournalWorkers, e.queue, e.Journal, worker.WithLogger(log.Named("journal")))
	// Workers stop when the queue is closed and drained, not when ctx ends.
	e.pool.Start(context.WithoutCancel(ctx))

	e.Service = service.New(ctx, remote,
		service.WithLogger(log.Named("engine")),
		service.WithSessionStore(sessions),
		service.WithJournal(e.queue, e.Journal),
		service.WithPageLimit(cfg.PageLimit),
		service.WithRemoteTimeout(cfg.ServiceTimeout()),
	)

	log.Info(ctx, "engine ready",
		logger.String("service_url", cfg.ServiceURL),
		logger.String("session_backend", cfg.Backend()),
		logger.String("journal", e.Journal.Name()),
		logger.Int("journal_workers", e.pool.Size()),
	)
	return e, nil
}

func (e *Engine) sessionStore(ctx context.Context, cfg *config.Config) (repository.SessionStore, error) {
	switch cfg.Backend() {
	case config.BackendRedis:
		rdb, err := repository.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		e.closers = append(e.closers, rdb.Close)
		return repository.NewRedisSessionStore(rdb, repository.WithRedisTTL(cfg.SessionTTL())), nil
	default:
		store := repository.NewMemorySessionStore(ctx, repository.WithSessionTTL(cfg.SessionTTL()))
		e.closers = append(e.closers, store.Close)
		return store, nil
	}
}

func (e *Engine) journal(ctx context.Context, cfg *config.Config) error {
	if cfg.JournalDSN == "" {
		e.Journal = repository.NewMemoryJournal()
		return nil
	}
	pg, err := repository.ConnectJournal(ctx, cfg.JournalDSN)
	if err != nil {
		return fmt.Errorf("activity journal: %w", err)
	}
	e.closers = append(e.closers, func() error {
		pg.Close()
		return nil
	})
	e.Journal = pg
	return nil
}

// Close drains the journal queue and releases every backend.
func (e *Engine) Close(ctx context.Context) error {
	var errs []error
	if e.pool != nil {
		drainCtx, cancel := context.WithTimeout(ctx, drainTimeout)
		if err := e.pool.Shutdown(drainCtx); err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	if e.Service != nil {
		if err := e.Service.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.closeAll(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		e.logger.Warn(ctx, "engine shutdown incomplete", logger.Error(errors.Join(errs...)))
	}
	return errors.Join(errs...)
}

func (e *Engine) closeAll() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
