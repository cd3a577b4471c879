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

func TestConsumeEventWithMetadata(t *testing.T) {
	nc, js := startJetStream(t)
	provision(t, js)
	producer := newTestProducer(t, js)
	ctx := context.Background()

	evt := messages.Event{
		EventID:        uuidx.New(),
		CreatorID:      uuidx.New(),
		ConsumerID:     uuidx.New(),
		EventType:      "booking",
		IdempotencyKey: "k1",
	}
	require.True(t, producer.PublishEvent(ctx, evt))
	require.Zero(t, producer.Flush(5*time.Second))
	require.NoError(t, nc.Flush())

	consumer, err := NewConsumer(js, GroupAgentProcessors, []string{TopicEvents}, nil)
	require.NoError(t, err)
	defer consumer.Close()

	batch, err := consumer.Poll(ctx, 2*time.Second, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	var got messages.Event
	require.NoError(t, batch[0].Decode(&got))
	assert.Equal(t, evt.EventID, got.EventID)
	assert.Equal(t, "booking", got.EventType)

	meta := batch[0].Meta
	assert.Equal(t, TopicEvents, meta.Topic)
	assert.Equal(t, PartitionFor("k1", 3), meta.Partition)
	assert.Positive(t, meta.Offset)
	assert.False(t, meta.Timestamp.IsZero(), "broker-assigned timestamp is exposed")
}

func TestPollReturnsEarlyWhenEmpty(t *testing.T) {
	_, js := startJetStream(t)
	provision(t, js)

	consumer, err := NewConsumer(js, GroupAgentProcessors, []string{TopicEvents}, nil)
	require.NoError(t, err)
	defer consumer.Close()

	start := time.Now()
	batch, err := consumer.Poll(context.Background(), 500*time.Millisecond, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
	assert.Less(t, time.Since(start), 2*time.Second, "poll must not block past its timeout")
}

func TestUndecodableMessageIsDropped(t *testing.T) {
	_, js := startJetStream(t)
	provision(t, js)
	producer := newTestProducer(t, js)
	ctx := context.Background()

	require.True(t, producer.Publish(ctx, TopicEvents, "a", []byte("not json {{{")))
	require.True(t, producer.Publish(ctx, TopicEvents, "a", []byte(`{"event_type":"ok"}`)))
	require.Zero(t, producer.Flush(5*time.Second))

	consumer, err := NewConsumer(js, GroupAgentProcessors, []string{TopicEvents}, nil)
	require.NoError(t, err)
	defer consumer.Close()

	batch, err := consumer.Poll(ctx, 2*time.Second, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1, "invalid bodies are dropped, valid ones survive the batch")

	// The dropped message was committed, not retried.
	batch, err = consumer.Poll(ctx, 500*time.Millisecond, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestConsumerGroupSemantics(t *testing.T) {
	_, js := startJetStream(t)
	provision(t, js)
	producer := newTestProducer(t, js)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		evt := messages.Event{
			EventID:    uuidx.New(),
			CreatorID:  uuidx.New(),
			ConsumerID: uuidx.New(),
			EventType:  "page_view",
		}
		require.True(t, producer.PublishEvent(ctx, evt))
	}
	require.Zero(t, producer.Flush(5*time.Second))

	t.Run("distinct groups each see every message", func(t *testing.T) {
		a, err := NewConsumer(js, GroupAgentProcessors, []string{TopicEvents}, nil)
		require.NoError(t, err)
		defer a.Close()
		b, err := NewConsumer(js, "shadow-auditors", []string{TopicEvents}, nil)
		require.NoError(t, err)
		defer b.Close()

		batchA, err := a.Poll(ctx, 2*time.Second, 100)
		require.NoError(t, err)
		batchB, err := b.Poll(ctx, 2*time.Second, 100)
		require.NoError(t, err)

		assert.Len(t, batchA, 6)
		assert.Len(t, batchB, 6)
	})

	t.Run("members of one group split messages", func(t *testing.T) {
		a, err := NewConsumer(js, "splitters", []string{TopicEvents}, nil)
		require.NoError(t, err)
		defer a.Close()
		b, err := NewConsumer(js, "splitters", []string{TopicEvents}, nil)
		require.NoError(t, err)
		defer b.Close()

		batchA, err := a.Poll(ctx, 2*time.Second, 4)
		require.NoError(t, err)
		batchB, err := b.Poll(ctx, 2*time.Second, 4)
		require.NoError(t, err)

		assert.Len(t, batchA, 4)
		assert.Len(t, batchB, 2, "second member picks up what the first left")

		seen := map[uint64]bool{}
		for _, d := range append(batchA, batchB...) {
			assert.False(t, seen[d.Meta.Offset], "no offset delivered to both members")
			seen[d.Meta.Offset] = true
		}
	})
}

func TestConsumerCloseIsIdempotent(t *testing.T) {
	_, js := startJetStream(t)
	provision(t, js)

	consumer, err := NewConsumer(js, GroupAgentProcessors, []string{TopicEvents}, nil)
	require.NoError(t, err)
	consumer.Close()
	consumer.Close()
}

func TestConsumerMultiTopic(t *testing.T) {
	_, js := startJetStream(t)
	provision(t, js)
	producer := newTestProducer(t, js)
	ctx := context.Background()

	require.True(t, producer.Publish(ctx, TopicAnalytics, "c1", []byte(`{"metric":"views"}`)))
	require.True(t, producer.Publish(ctx, TopicAudit, "c1", []byte(`{"actor":"system"}`)))
	require.Zero(t, producer.Flush(5*time.Second))

	consumer, err := NewConsumer(js, GroupBatch, Groups[GroupBatch].Topics, nil)
	require.NoError(t, err)
	defer consumer.Close()

	batch, err := consumer.Poll(ctx, 3*time.Second, 100)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	topics := map[string]bool{}
	for _, d := range batch {
		topics[d.Meta.Topic] = true
	}
	assert.True(t, topics[TopicAnalytics])
	assert.True(t, topics[TopicAudit])
}
