// Package worker hosts the long-running consumer loops: the agent processor,
// the action executor and the batch consumer. Each loop owns exactly one
// consumer bound to a distinct (topic-set, consumer-group) pair, so pipeline
// stages scale and fail independently. There is no shared mutable state
// between loops; all coordination goes through the broker.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/creatorhq/eventpipe/broker"
	"github.com/creatorhq/eventpipe/metrics"
	"github.com/creatorhq/eventpipe/pkg/slogx"
)

const statsEvery = 100

// Loop is the shared poll → dispatch → backoff engine. All three workers are
// a Loop plus topic handlers.
type Loop struct {
	name     string
	consumer *broker.Consumer
	router   *broker.Router
	group    broker.GroupConfig

	// errBackoff is applied after an unexpected poll failure, longer than
	// the idle backoff so a broken broker connection is not hammered.
	errBackoff time.Duration

	metrics *metrics.Registry
	log     *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once

	processed int64
	failed    int64
}

// NewLoop assembles a worker loop. The consumer must already be bound to the
// group's topics; construction failures upstream are the only fatal path.
func NewLoop(name string, consumer *broker.Consumer, router *broker.Router, group broker.GroupConfig, reg *metrics.Registry, log *slog.Logger) *Loop {
	if log == nil {
		log = slog.Default()
	}
	return &Loop{
		name:       name,
		consumer:   consumer,
		router:     router,
		group:      group,
		errBackoff: 5 * time.Second,
		stop:       make(chan struct{}),
		metrics:    reg,
		log:        log.With(slog.String("worker", name), slogx.Group(group.ID)),
	}
}

// Run drives the loop until ctx is cancelled. The consumer is closed on the
// way out no matter how the loop exits, including a panic escaping the
// dispatch path. Poll failures are logged and absorbed with a longer
// backoff; they never terminate the loop.
func (l *Loop) Run(ctx context.Context) {
	defer l.consumer.Close()

	l.log.Info("worker started", slog.Any("topics", l.group.Topics))
	defer func() {
		l.log.Info("worker stopped",
			slog.Int64("processed", l.processed), slog.Int64("failed", l.failed))
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stop:
			return
		default:
		}

		batch, err := l.consumer.Poll(ctx, l.group.PollTimeout, l.group.MaxBatch)
		if err != nil {
			l.log.Error("poll failed, backing off", slogx.Error(err))
			if !l.sleep(ctx, l.errBackoff) {
				return
			}
			continue
		}

		if len(batch) == 0 {
			if !l.sleep(ctx, l.group.IdleBackoff) {
				return
			}
			continue
		}

		l.log.Debug("processing batch", slog.Int("size", len(batch)))
		processed, failed := l.router.Dispatch(ctx, batch)
		l.account(processed, failed)
	}
}

// Stop asks the loop to exit after the current batch. Safe to call more
// than once and from any goroutine; context cancellation has the same
// effect.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// sleep waits for d unless the context ends or Stop is called first.
// Returns false when the loop should exit.
func (l *Loop) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-l.stop:
		return false
	case <-time.After(d):
		return true
	}
}

func (l *Loop) account(processed, failed int) {
	if l.metrics != nil {
		l.metrics.Add("messages_processed_total", int64(processed), l.group.ID)
		l.metrics.Add("messages_failed_total", int64(failed), l.group.ID)
	}

	before := l.processed / statsEvery
	l.processed += int64(processed)
	l.failed += int64(failed)
	if l.processed/statsEvery != before {
		l.log.Info("worker stats",
			slog.Int64("processed", l.processed), slog.Int64("failed", l.failed))
	}
}
