package broker

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

// startJetStream runs an embedded NATS server with JetStream enabled and
// returns a connected JetStream context. The server shuts down with the test.
func startJetStream(t *testing.T) (*nats.Conn, nats.JetStreamContext) {
	t.Helper()
	_, nc, js := startJetStreamServer(t)
	return nc, js
}

// startJetStreamServer is startJetStream with the server handle exposed, for
// tests that take the broker away mid-flight.
func startJetStreamServer(t *testing.T) (*natsserver.Server, *nats.Conn, nats.JetStreamContext) {
	t.Helper()

	opts := &natsserver.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}
	srv, err := natsserver.NewServer(opts)
	require.NoError(t, err, "starting embedded NATS")
	srv.Start()
	t.Cleanup(srv.Shutdown)
	require.True(t, srv.ReadyForConnections(5*time.Second), "embedded NATS not ready")

	nc, err := nats.Connect(srv.ClientURL(),
		nats.ReconnectWait(50*time.Millisecond),
		nats.MaxReconnects(-1),
	)
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	js, err := nc.JetStream(nats.PublishAsyncMaxPending(256))
	require.NoError(t, err)
	return srv, nc, js
}

// provision ensures the canonical topics exist on the embedded server.
func provision(t *testing.T, js nats.JetStreamContext) {
	t.Helper()
	require.NoError(t, EnsureTopics(context.Background(), js))
}

// newTestProducer builds a producer with a short ack wait suitable for tests.
func newTestProducer(t *testing.T, js nats.JetStreamContext) *Producer {
	t.Helper()
	p, err := NewProducer(js, WithAckWait(2*time.Second))
	require.NoError(t, err)
	return p
}
