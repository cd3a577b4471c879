package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/creatorhq/eventpipe/broker"
	"github.com/creatorhq/eventpipe/channel"
	"github.com/creatorhq/eventpipe/messages"
	"github.com/creatorhq/eventpipe/metrics"
	"github.com/creatorhq/eventpipe/pkg/slogx"
)

// ActionExecutor consumes the actions topic under the action-executors
// group and dispatches each action through the channel registry. Failed
// executions are routed to dlq-actions by the loop's router.
type ActionExecutor struct {
	loop *Loop
}

// NewActionExecutor binds a consumer for the actions topic.
func NewActionExecutor(js nats.JetStreamContext, registry *channel.Registry, producer *broker.Producer, reg *metrics.Registry, log *slog.Logger) (*ActionExecutor, error) {
	if log == nil {
		log = slog.Default()
	}
	group := broker.Groups[broker.GroupActionExecutors]

	consumer, err := broker.NewConsumer(js, group.ID, group.Topics, log)
	if err != nil {
		return nil, err
	}

	router := broker.NewRouter(broker.NewDeadletters(producer, log), log)
	router.Register(broker.TopicActions, &actionHandler{registry: registry, metrics: reg, log: log})

	return &ActionExecutor{
		loop: NewLoop("action-executor", consumer, router, group, reg, log),
	}, nil
}

// Run drives the worker until ctx is cancelled.
func (w *ActionExecutor) Run(ctx context.Context) { w.loop.Run(ctx) }

// Stop asks the worker to exit after the current batch.
func (w *ActionExecutor) Stop() { w.loop.Stop() }

type actionHandler struct {
	registry *channel.Registry
	metrics  *metrics.Registry
	log      *slog.Logger
}

func (h *actionHandler) HandleMessage(ctx context.Context, d broker.Delivery) error {
	var act messages.Action
	if err := d.Decode(&act); err != nil {
		h.log.ErrorContext(ctx, "rejecting malformed action", slogx.Error(err),
			slogx.Offset(d.Meta.Offset))
		return nil
	}
	if err := act.Validate(); err != nil {
		h.log.ErrorContext(ctx, "rejecting incomplete action", slogx.Error(err),
			slogx.Offset(d.Meta.Offset))
		return nil
	}

	log := h.log.With(
		slogx.UUID("action_id", act.ActionID),
		slogx.UUID("invocation_id", act.InvocationID),
		slogx.UUID("creator_id", act.CreatorID),
		slogx.UUID("consumer_id", act.ConsumerID),
		slog.String("channel", act.Channel),
	)
	log.InfoContext(ctx, "executing action", slog.String("action_type", act.ActionType))

	if h.metrics != nil {
		h.metrics.Inc("actions_consumed_total", act.Channel)
	}

	_, err := h.registry.Execute(ctx, act.Channel, act.CreatorID, act.ConsumerID, act.Payload)
	if err != nil {
		// Every channel failure is terminal for this action: retry policy
		// lives above the transport, so the router sends it to the DLQ.
		return fmt.Errorf("executing action %s: %w", act.ActionID, err)
	}

	log.InfoContext(ctx, "action executed", slog.String("status", string(messages.ActionExecuted)))
	return nil
}
