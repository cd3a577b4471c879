package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorhq/eventpipe/messages"
	"github.com/creatorhq/eventpipe/pkg/uuidx"
)

func TestProducerPublish(t *testing.T) {
	_, js := startJetStream(t)
	provision(t, js)
	producer := newTestProducer(t, js)
	ctx := context.Background()

	t.Run("delivers to a provisioned topic", func(t *testing.T) {
		delivered := producer.Publish(ctx, TopicEvents, "k1", []byte(`{"hello":"world"}`))
		assert.True(t, delivered)
		assert.Zero(t, producer.Flush(5*time.Second))
	})

	t.Run("unknown topic surfaces failure, not panic", func(t *testing.T) {
		delivered := producer.Publish(ctx, "no-such-topic", "k1", []byte(`{}`))
		assert.False(t, delivered)
	})

	t.Run("typed helpers share keying rules", func(t *testing.T) {
		evt := messages.Event{
			EventID:        uuidx.New(),
			CreatorID:      uuidx.New(),
			ConsumerID:     uuidx.New(),
			EventType:      "booking",
			IdempotencyKey: "booking-7",
		}
		assert.True(t, producer.PublishEvent(ctx, evt))

		act := messages.Action{
			ActionID:     uuidx.New(),
			InvocationID: uuidx.New(),
			CreatorID:    evt.CreatorID,
			ConsumerID:   evt.ConsumerID,
			ActionType:   "send_email",
			Channel:      "email",
		}
		assert.True(t, producer.PublishAction(ctx, act))
		assert.Zero(t, producer.Flush(5*time.Second))
	})
}

func TestProducerSameKeySamePartition(t *testing.T) {
	_, js := startJetStream(t)
	provision(t, js)
	producer := newTestProducer(t, js)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.True(t, producer.Publish(ctx, TopicEvents, "shared-key", []byte(`{"n":1}`)))
	}
	require.Zero(t, producer.Flush(5*time.Second))

	consumer, err := NewConsumer(js, GroupAgentProcessors, []string{TopicEvents}, nil)
	require.NoError(t, err)
	defer consumer.Close()

	batch, err := consumer.Poll(ctx, 2*time.Second, 100)
	require.NoError(t, err)
	require.Len(t, batch, 10)

	first := batch[0].Meta.Partition
	var prev uint64
	for _, d := range batch {
		assert.Equal(t, first, d.Meta.Partition, "same key must land on one partition")
		assert.Greater(t, d.Meta.Offset, prev, "same key preserves publish order")
		prev = d.Meta.Offset
	}
}

func TestProducerFlush(t *testing.T) {
	t.Run("returns zero with nothing pending", func(t *testing.T) {
		_, js := startJetStream(t)
		provision(t, js)
		producer := newTestProducer(t, js)
		assert.Zero(t, producer.Flush(time.Second))
	})

	t.Run("counts messages that cannot confirm in time", func(t *testing.T) {
		srv, _, js := startJetStreamServer(t)
		provision(t, js)
		producer := newTestProducer(t, js)
		ctx := context.Background()

		require.True(t, producer.Publish(ctx, TopicEvents, "k", []byte(`{}`)))
		require.Zero(t, producer.Flush(5*time.Second))

		// With the server down the client buffers the dispatch for
		// reconnect, so delivery can never confirm inside the window.
		srv.Shutdown()
		srv.WaitForShutdown()
		require.True(t, producer.Publish(ctx, TopicEvents, "k", []byte(`{}`)))
		assert.Positive(t, producer.Flush(100*time.Millisecond))
	})
}
