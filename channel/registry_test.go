package channel

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/creatorhq/eventpipe/broker"
	"github.com/creatorhq/eventpipe/gateway"
	"github.com/creatorhq/eventpipe/metrics"
	"github.com/creatorhq/eventpipe/pkg/uuidx"
)

// newTestRegistry wires a registry over fakes plus a producer backed by an
// embedded JetStream server.
func newTestRegistry(t *testing.T) (*Registry, nats.JetStreamContext, *metrics.Registry) {
	t.Helper()

	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1, JetStream: true, StoreDir: t.TempDir()}
	srv, err := natsserver.NewServer(opts)
	require.NoError(t, err)
	srv.Start()
	t.Cleanup(srv.Shutdown)
	require.True(t, srv.ReadyForConnections(5*time.Second))

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	js, err := nc.JetStream(nats.PublishAsyncMaxPending(256))
	require.NoError(t, err)
	require.NoError(t, broker.EnsureTopics(context.Background(), js))

	producer, err := broker.NewProducer(js)
	require.NoError(t, err)

	reg := metrics.New()
	registry := NewRegistry(Deps{
		Mail:           &gateway.FakeMail{},
		Chat:           &gateway.FakeChat{},
		Calls:          &gateway.FakeCalls{},
		Products:       gateway.NewFakeProducts(),
		Producer:       producer,
		PaymentBaseURL: "https://pay.test",
		Metrics:        reg,
	})
	return registry, js, reg
}

func TestRegistryDispatch(t *testing.T) {
	registry, _, reg := newTestRegistry(t)
	ctx := context.Background()
	creator, consumer := uuidx.New(), uuidx.New()

	t.Run("routes to the email tool", func(t *testing.T) {
		result, err := registry.Execute(ctx, Email, creator, consumer, Payload{
			"to_address": "ada@example.com",
			"subject":    "hi",
			"body":       "welcome",
		})
		require.NoError(t, err)
		assert.Equal(t, "mail", result["provider"])
		assert.EqualValues(t, 1, reg.Counter("tool_execution_total", Email, "success"))
	})

	t.Run("unknown channel fails immediately", func(t *testing.T) {
		_, err := registry.Execute(ctx, "telegraph", creator, consumer, Payload{})
		var uerr *UnknownChannelError
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, "telegraph", uerr.Channel)
	})

	t.Run("validation failures count as errors", func(t *testing.T) {
		_, err := registry.Execute(ctx, Chat, creator, consumer, Payload{})
		require.Error(t, err)
		assert.EqualValues(t, 1, reg.Counter("tool_execution_total", Chat, "error"))
	})

	t.Run("all five variants are wired", func(t *testing.T) {
		assert.ElementsMatch(t, []string{Email, Chat, Call, Payment, Publish}, registry.Channels())
	})
}

func TestPublishTool(t *testing.T) {
	registry, js, _ := newTestRegistry(t)
	ctx := context.Background()
	creator, consumer := uuidx.New(), uuidx.New()

	t.Run("re-publishes onto another topic", func(t *testing.T) {
		result, err := registry.Execute(ctx, Publish, creator, consumer, Payload{
			"topic": broker.TopicAnalytics,
			"value": `{"metric":"conversion","value":1}`,
		})
		require.NoError(t, err)
		assert.Equal(t, "success", result["status"])
		assert.Equal(t, consumer.String(), result["key"], "key defaults to consumer_id")
		assert.NotEmpty(t, result["timestamp"])

		redelivered, err := broker.NewConsumer(js, "publish-verify", []string{broker.TopicAnalytics}, nil)
		require.NoError(t, err)
		defer redelivered.Close()

		batch, err := redelivered.Poll(ctx, 2*time.Second, 10)
		require.NoError(t, err)
		require.Len(t, batch, 1)
		assert.Equal(t, "conversion", gjson.GetBytes(batch[0].Data, "metric").String())
	})

	t.Run("missing value fails before any publish", func(t *testing.T) {
		_, err := registry.Execute(ctx, Publish, creator, consumer, Payload{
			"topic": broker.TopicAnalytics,
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("unknown topic surfaces a provider error", func(t *testing.T) {
		_, err := registry.Execute(ctx, Publish, creator, consumer, Payload{
			"topic": "not-a-topic",
			"value": "{}",
		})
		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
	})
}
