package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/creatorhq/eventpipe/api"
	"github.com/creatorhq/eventpipe/broker"
	"github.com/creatorhq/eventpipe/messages"
	"github.com/creatorhq/eventpipe/metrics"
	"github.com/creatorhq/eventpipe/pkg/slogx"
)

// AgentProcessor consumes the events topic under the agent-processors group
// and asks the orchestrator which agents should react. The orchestrator and
// producer between them emit the resulting invocation and action messages.
type AgentProcessor struct {
	loop *Loop
}

// NewAgentProcessor binds a consumer for the events topic and wires the
// event handler. A broker failure here is returned to the caller: a worker
// that cannot subscribe has nothing to do.
func NewAgentProcessor(js nats.JetStreamContext, orch api.Orchestrator, producer *broker.Producer, reg *metrics.Registry, log *slog.Logger) (*AgentProcessor, error) {
	if log == nil {
		log = slog.Default()
	}
	group := broker.Groups[broker.GroupAgentProcessors]

	consumer, err := broker.NewConsumer(js, group.ID, group.Topics, log)
	if err != nil {
		return nil, err
	}

	router := broker.NewRouter(broker.NewDeadletters(producer, log), log)
	router.Register(broker.TopicEvents, &eventHandler{orch: orch, metrics: reg, log: log})

	return &AgentProcessor{
		loop: NewLoop("agent-processor", consumer, router, group, reg, log),
	}, nil
}

// Run drives the worker until ctx is cancelled.
func (w *AgentProcessor) Run(ctx context.Context) { w.loop.Run(ctx) }

// Stop asks the worker to exit after the current batch.
func (w *AgentProcessor) Stop() { w.loop.Stop() }

// eventHandler processes one event message: validate identity, delegate to
// the orchestrator, flush planned actions.
type eventHandler struct {
	orch    api.Orchestrator
	metrics *metrics.Registry
	log     *slog.Logger
}

func (h *eventHandler) HandleMessage(ctx context.Context, d broker.Delivery) error {
	var evt messages.Event
	if err := d.Decode(&evt); err != nil {
		// Malformed envelope: reject and skip, never retried.
		h.log.ErrorContext(ctx, "rejecting malformed event", slogx.Error(err),
			slogx.Offset(d.Meta.Offset))
		return nil
	}
	if err := evt.Validate(); err != nil {
		h.log.ErrorContext(ctx, "rejecting incomplete event", slogx.Error(err),
			slogx.Offset(d.Meta.Offset))
		return nil
	}

	log := h.log.With(
		slogx.UUID("event_id", evt.EventID),
		slogx.UUID("creator_id", evt.CreatorID),
		slogx.UUID("consumer_id", evt.ConsumerID),
		slog.String("event_type", evt.EventType),
	)

	var done func(error)
	if h.metrics != nil {
		done = h.metrics.Track("agent_processing", evt.EventType)
	}

	invocations, err := h.orch.ProcessEventAgents(ctx, evt.CreatorID, evt.ConsumerID, evt.EventID)
	if err == nil && len(invocations) > 0 {
		_, err = h.orch.ExecutePendingActions(ctx)
	}
	if done != nil {
		done(err)
	}
	if err != nil {
		return fmt.Errorf("processing event %s: %w", evt.EventID, err)
	}

	log.InfoContext(ctx, "event processed", slog.Int("invocations", len(invocations)))
	return nil
}
