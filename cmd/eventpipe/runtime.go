package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/phsym/zeroslog"

	"github.com/creatorhq/eventpipe/broker"
	"github.com/creatorhq/eventpipe/cache"
	"github.com/creatorhq/eventpipe/config"
	"github.com/creatorhq/eventpipe/metrics"
	"github.com/creatorhq/eventpipe/pkg/natsx"
)

// runtime bundles everything a worker subcommand needs: the broker
// connection, the async producer, metrics and the cache. Built once at
// startup, torn down in reverse order on the way out.
type runtime struct {
	cfg      config.Config
	nc       *nats.Conn
	js       nats.JetStreamContext
	producer *broker.Producer
	metrics  *metrics.Registry
	store    *cache.Memory
	log      *slog.Logger
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: levelFor(cfg.LogLevel)}))
	slog.SetDefault(logger)

	nc, err := natsx.NewClient(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.NATSURL, err)
	}

	js, err := natsx.JetStream(nc, cfg.MaxPending)
	if err != nil {
		nc.Close()
		return nil, err
	}

	producer, err := broker.NewProducer(js,
		broker.WithRetries(cfg.Retries),
		broker.WithRetryWait(cfg.RetryWait),
		broker.WithAckWait(cfg.AckWait),
		broker.WithLogger(logger),
	)
	if err != nil {
		nc.Close()
		return nil, err
	}

	reg := metrics.New()
	return &runtime{
		cfg:      cfg,
		nc:       nc,
		js:       js,
		producer: producer,
		metrics:  reg,
		store:    cache.NewMemory(reg),
		log:      logger,
	}, nil
}

// close flushes the producer before dropping the connection so buffered
// publishes are not lost on shutdown.
func (r *runtime) close() {
	r.producer.Close()
	r.store.Close()
	r.nc.Close()
}

// provision makes sure every canonical topic exists before a worker starts
// polling.
func (r *runtime) provision(ctx context.Context) error {
	return broker.EnsureTopics(ctx, r.js)
}
