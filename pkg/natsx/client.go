package natsx

import (
	"os"

	"github.com/nats-io/nats.go"
)

// NewClient creates a new connection to a NATS server. The URL is taken from
// the EVENTPIPE_NATS_URL environment variable when no explicit URL has been
// configured. The connection is configured with a client name "eventpipe",
// compression, and unlimited reconnects so long-running workers survive broker
// restarts.
//
// Returns:
//   - *nats.Conn: A pointer to the established NATS connection.
//   - error: An error if the connection could not be established.
func NewClient(url string, opts ...nats.Option) (*nats.Conn, error) {
	if url == "" {
		url = os.Getenv("EVENTPIPE_NATS_URL")
	}
	defaults := []nats.Option{
		nats.Name("eventpipe"),
		nats.Compression(true),
		nats.MaxReconnects(-1),
	}
	return nats.Connect(url, append(defaults, opts...)...)
}

// JetStream returns a JetStream context for the connection, sized for the
// producer's asynchronous publish window.
func JetStream(nc *nats.Conn, maxPending int) (nats.JetStreamContext, error) {
	return nc.JetStream(nats.PublishAsyncMaxPending(maxPending))
}
