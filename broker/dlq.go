package broker

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/creatorhq/eventpipe/messages"
	"github.com/creatorhq/eventpipe/pkg/slogx"
)

// Deadletters republishes messages that exhausted their retry budget onto
// the dead-letter topic matching their failure domain: action-execution
// failures go to dlq-actions, everything else to dlq-agents.
type Deadletters struct {
	producer *Producer
	clock    func() time.Time
	log      *slog.Logger
}

// NewDeadletters creates a dead-letter router over the given producer.
func NewDeadletters(producer *Producer, log *slog.Logger) *Deadletters {
	if log == nil {
		log = slog.Default()
	}
	return &Deadletters{producer: producer, clock: time.Now, log: log}
}

// topicFor maps a source topic to its failure domain's dead-letter topic.
func (d *Deadletters) topicFor(source string) string {
	if source == TopicActions {
		return TopicDLQActions
	}
	return TopicDLQAgents
}

// Route wraps the failed delivery with its error description, an explicit
// wall-clock failure timestamp and its source coordinates, then publishes it
// to the matching dead-letter topic keyed by source topic so one topic's
// failures stay ordered. Returns whether the broker accepted the record.
func (d *Deadletters) Route(ctx context.Context, del Delivery, cause error) bool {
	record := messages.DeadLetter{
		Original:        del.Data,
		Error:           cause.Error(),
		FailedAt:        strfmt.DateTime(d.clock().UTC()),
		SourceTopic:     del.Meta.Topic,
		SourcePartition: del.Meta.Partition,
		SourceOffset:    del.Meta.Offset,
	}
	data, err := messages.Marshal(record)
	if err != nil {
		d.log.ErrorContext(ctx, "encode dead letter", slogx.Error(err))
		return false
	}

	target := d.topicFor(del.Meta.Topic)
	delivered := d.producer.Publish(ctx, target, del.Meta.Topic, data)
	if delivered {
		d.log.Warn("message routed to dead letter topic",
			slogx.Topic(del.Meta.Topic), slogx.Partition(del.Meta.Partition),
			slogx.Offset(del.Meta.Offset), slog.String("dlq", target), slogx.Error(cause))
	} else {
		d.log.ErrorContext(ctx, "dead letter publish failed",
			slogx.Topic(del.Meta.Topic), slogx.Offset(del.Meta.Offset), slogx.Error(cause))
	}
	return delivered
}
