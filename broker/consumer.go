package broker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/creatorhq/eventpipe/pkg/slogx"
)

// Metadata locates a delivery within the broker: the topic it came from, the
// partition subject it was read off, and its offset (stream sequence). It is
// attached out of band and never merged into the message payload.
type Metadata struct {
	Topic     string
	Partition int
	Offset    uint64
	Timestamp time.Time
	Attempts  uint64
}

// Delivery is one message pulled from the broker together with its metadata.
// Commit acknowledges the message, advancing the group's position past it.
type Delivery struct {
	Data []byte
	Meta Metadata

	msg *nats.Msg
}

// Commit acknowledges this delivery for the owning consumer group.
func (d Delivery) Commit() error {
	if d.msg == nil {
		return nil
	}
	return d.msg.Ack()
}

// Decode unmarshals the message body into the provided envelope pointer.
func (d Delivery) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

// Consumer pulls batches from one or more topics under a single consumer
// group. Each poll resumes from the group's committed position; consumers in
// different groups see every message, consumers sharing a group split them.
type Consumer struct {
	group  string
	topics []string
	subs   []*nats.Subscription
	log    *slog.Logger
}

// NewConsumer binds a durable pull consumer named after the group to every
// topic stream. The streams must already be provisioned (EnsureTopics);
// construction is the only place a broker failure is fatal to the caller.
func NewConsumer(js nats.JetStreamContext, group string, topics []string, log *slog.Logger) (*Consumer, error) {
	if log == nil {
		log = slog.Default()
	}
	c := &Consumer{group: group, topics: topics, log: log}
	for _, topic := range topics {
		sub, err := js.PullSubscribe("", group,
			nats.BindStream(topic),
			nats.AckWait(30*time.Second),
		)
		if err != nil {
			c.Close()
			return nil, &TransportError{Op: "subscribe", Topic: topic, Err: err}
		}
		c.subs = append(c.subs, sub)
	}
	log.Info("consumer bound", slogx.Group(group), slog.Any("topics", topics))
	return c, nil
}

// Poll fetches up to maxBatch messages, waiting at most timeout. It returns
// early on an empty result and never blocks past the timeout. Message bodies
// that are not valid JSON objects are logged, committed and dropped without
// aborting the rest of the batch; they are never retried.
func (c *Consumer) Poll(ctx context.Context, timeout time.Duration, maxBatch int) ([]Delivery, error) {
	if maxBatch <= 0 {
		maxBatch = 1
	}
	wait := timeout
	if len(c.subs) > 1 {
		wait = timeout / time.Duration(len(c.subs))
		if wait <= 0 {
			wait = time.Millisecond
		}
	}

	batch := make([]Delivery, 0, maxBatch)
	for _, sub := range c.subs {
		if len(batch) >= maxBatch {
			break
		}
		msgs, err := sub.Fetch(maxBatch-len(batch), nats.MaxWait(wait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue // end of partition / nothing buffered
			}
			return batch, &TransportError{Op: "poll", Err: err}
		}
		for _, msg := range msgs {
			d, ok := c.delivery(msg)
			if !ok {
				continue
			}
			batch = append(batch, d)
		}
	}
	return batch, nil
}

// delivery decorates a raw message with metadata and screens out bodies that
// do not decode.
func (c *Consumer) delivery(msg *nats.Msg) (Delivery, bool) {
	meta := Metadata{Partition: partitionFromSubject(msg.Subject)}
	if md, err := msg.Metadata(); err == nil {
		meta.Topic = md.Stream
		meta.Offset = md.Sequence.Stream
		meta.Timestamp = md.Timestamp
		meta.Attempts = md.NumDelivered
	}

	if !json.Valid(msg.Data) {
		c.log.Error("dropping undecodable message",
			slogx.Group(c.group), slogx.Topic(meta.Topic),
			slogx.Partition(meta.Partition), slogx.Offset(meta.Offset))
		_ = msg.Ack()
		return Delivery{}, false
	}

	return Delivery{Data: msg.Data, Meta: meta, msg: msg}, true
}

// Group returns the consumer group this consumer is bound to.
func (c *Consumer) Group() string { return c.group }

// Close releases the subscriptions after a best-effort drain so already
// fetched messages get their final acks. Safe to call from deferred cleanup
// regardless of how the owning loop exited.
func (c *Consumer) Close() {
	for _, sub := range c.subs {
		if sub == nil {
			continue
		}
		if err := sub.Drain(); err != nil {
			c.log.Warn("draining subscription", slogx.Group(c.group), slogx.Error(err))
		}
	}
	c.subs = nil
	c.log.Info("consumer closed", slogx.Group(c.group))
}
