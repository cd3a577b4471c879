package channel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/creatorhq/eventpipe/broker"
	"github.com/creatorhq/eventpipe/pkg/slogx"
)

// publishTool re-publishes a value onto another topic through the producer,
// so agents can fan work back into the pipeline as a channel action. The
// message key defaults to the consumer id, keeping one consumer's
// re-published messages ordered.
type publishTool struct {
	producer *broker.Producer
	clock    func() time.Time
	log      *slog.Logger
}

// NewPublish creates the generic re-publish channel tool.
func NewPublish(producer *broker.Producer, log *slog.Logger) Tool {
	if log == nil {
		log = slog.Default()
	}
	return &publishTool{producer: producer, clock: time.Now, log: log}
}

func (t *publishTool) Name() string { return Publish }

func (t *publishTool) Validate(payload Payload) bool {
	return len(missing(payload, "topic", "value")) == 0
}

func (t *publishTool) Execute(ctx context.Context, creatorID, consumerID uuid.UUID, payload Payload) (Result, error) {
	if fields := missing(payload, "topic", "value"); len(fields) > 0 {
		return nil, &ValidationError{Channel: Publish, Missing: fields}
	}

	topic := stringField(payload, "topic")
	key := stringField(payload, "key")
	if key == "" {
		key = consumerID.String()
	}

	var value []byte
	switch v := payload["value"].(type) {
	case string:
		value = []byte(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, &ValidationError{Channel: Publish, Missing: []string{"value"}}
		}
		value = encoded
	}

	t.log.InfoContext(ctx, "re-publishing message",
		slogx.Topic(topic),
		slogx.UUID("consumer_id", consumerID))

	if !t.producer.Publish(ctx, topic, key, value) {
		return nil, &ProviderError{Channel: Publish, Provider: "broker",
			Err: fmt.Errorf("publish to %s was not accepted", topic)}
	}

	if pending := t.producer.Flush(5 * time.Second); pending > 0 {
		t.log.WarnContext(ctx, "messages still pending after flush", slog.Int("pending", pending))
	}

	return Result{
		"status":    "success",
		"topic":     topic,
		"key":       key,
		"timestamp": strfmt.DateTime(t.clock().UTC()).String(),
	}, nil
}
