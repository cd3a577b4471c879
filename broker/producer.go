package broker

import (
	"context"
	"log/slog"
	"time"

	"github.com/fogfish/opts"
	"github.com/nats-io/nats.go"

	"github.com/creatorhq/eventpipe/messages"
	"github.com/creatorhq/eventpipe/pkg/slogx"
)

// Producer publishes messages onto partitioned topics. Sends are
// asynchronous: Publish fires the dispatch and reports whether the broker
// accepted it for delivery; per-message delivery outcomes arrive on
// callbacks that are logged for observability only. Callers that need a
// durability barrier call Flush before shutdown.
type Producer struct {
	js        nats.JetStreamContext
	retries   int
	retryWait time.Duration
	ackWait   time.Duration
	log       *slog.Logger
}

// Producer construction options.
var (
	// WithRetries sets the transient-failure retry budget per publish.
	WithRetries = opts.ForName[Producer, int]("retries")
	// WithRetryWait sets the fixed backoff between publish retries.
	WithRetryWait = opts.ForName[Producer, time.Duration]("retryWait")
	// WithAckWait bounds how long a delivery confirmation may take before
	// the callback reports it failed.
	WithAckWait = opts.ForName[Producer, time.Duration]("ackWait")
)

// WithLogger routes producer logs through the given logger.
func WithLogger(log *slog.Logger) opts.Option[Producer] {
	return opts.Type[Producer](func(p *Producer) error {
		p.log = log
		return nil
	})
}

// NewProducer creates a producer over an existing JetStream context.
func NewProducer(js nats.JetStreamContext, options ...opts.Option[Producer]) (*Producer, error) {
	p := &Producer{
		js:        js,
		retries:   3,
		retryWait: 100 * time.Millisecond,
		ackWait:   30 * time.Second,
		log:       slog.Default(),
	}
	if err := opts.Apply(p, options); err != nil {
		return nil, err
	}
	return p, nil
}

// Publish places value onto the topic partition selected by key. The send is
// dispatched asynchronously with the configured retry budget; the returned
// bool reports whether the broker accepted the message for delivery. It is
// false when the topic is unknown or the dispatch itself failed, so the
// caller can decide whether to persist a fallback record. It must not be
// used to gate subsequent publishes on delivery confirmation.
func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte) bool {
	tc, ok := Topics[topic]
	if !ok {
		p.log.ErrorContext(ctx, "publish to unknown topic", slogx.Topic(topic))
		return false
	}

	partition := PartitionFor(key, tc.Partitions)
	subject := subjectFor(topic, partition)

	future, err := p.js.PublishAsync(subject, value,
		nats.RetryAttempts(p.retries),
		nats.RetryWait(p.retryWait),
	)
	if err != nil {
		p.log.ErrorContext(ctx, "publish dispatch failed",
			slogx.Topic(topic), slogx.Partition(partition), slogx.Error(err))
		return false
	}

	// Poll the delivery outcome opportunistically. Logging only: callers
	// never see this goroutine's result.
	go p.report(topic, partition, future)

	p.log.DebugContext(ctx, "published message",
		slogx.Topic(topic), slogx.Partition(partition), slog.String("key", key))
	return true
}

func (p *Producer) report(topic string, partition int, future nats.PubAckFuture) {
	select {
	case ack := <-future.Ok():
		p.log.Debug("message delivered",
			slogx.Topic(topic), slogx.Partition(partition), slogx.Offset(ack.Sequence))
	case err := <-future.Err():
		p.log.Error("message delivery failed",
			slogx.Topic(topic), slogx.Partition(partition), slogx.Error(err))
	case <-time.After(p.ackWait):
		p.log.Warn("message delivery unconfirmed",
			slogx.Topic(topic), slogx.Partition(partition))
	}
}

// PublishEvent publishes an event envelope onto the events topic, keyed by
// its idempotency key when present and its event id otherwise.
func (p *Producer) PublishEvent(ctx context.Context, evt messages.Event) bool {
	data, err := messages.Marshal(evt)
	if err != nil {
		p.log.ErrorContext(ctx, "encode event", slogx.UUID("event_id", evt.EventID), slogx.Error(err))
		return false
	}
	return p.Publish(ctx, TopicEvents, evt.PartitionKey(), data)
}

// PublishInvocation publishes an agent invocation, keyed by invocation id.
func (p *Producer) PublishInvocation(ctx context.Context, inv messages.AgentInvocation) bool {
	data, err := messages.Marshal(inv)
	if err != nil {
		p.log.ErrorContext(ctx, "encode invocation",
			slogx.UUID("invocation_id", inv.InvocationID), slogx.Error(err))
		return false
	}
	return p.Publish(ctx, TopicInvocations, inv.InvocationID.String(), data)
}

// PublishAction publishes a planned action, keyed by action id.
func (p *Producer) PublishAction(ctx context.Context, act messages.Action) bool {
	data, err := messages.Marshal(act)
	if err != nil {
		p.log.ErrorContext(ctx, "encode action",
			slogx.UUID("action_id", act.ActionID), slogx.Error(err))
		return false
	}
	return p.Publish(ctx, TopicActions, act.ActionID.String(), data)
}

// Flush waits up to timeout for all in-flight publishes to confirm delivery
// and returns the number of messages still unconfirmed. Zero means every
// pending message was acknowledged in time.
func (p *Producer) Flush(timeout time.Duration) int {
	select {
	case <-p.js.PublishAsyncComplete():
		return 0
	case <-time.After(timeout):
		pending := p.js.PublishAsyncPending()
		if pending > 0 {
			p.log.Warn("messages still pending after flush", slog.Int("pending", pending))
		}
		return pending
	}
}

// Close flushes with a default timeout. The underlying connection belongs to
// the caller and is not closed here.
func (p *Producer) Close() {
	remaining := p.Flush(5 * time.Second)
	if remaining == 0 {
		p.log.Info("producer closed, all messages flushed")
		return
	}
	p.log.Warn("producer closed with unconfirmed messages", slog.Int("pending", remaining))
}
