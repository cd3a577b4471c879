package channel

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/creatorhq/eventpipe/broker"
	"github.com/creatorhq/eventpipe/gateway"
	"github.com/creatorhq/eventpipe/metrics"
	"github.com/creatorhq/eventpipe/pkg/slogx"
)

// Deps carries everything the registry needs to wire its tools. All fields
// except Metrics and Log are required.
type Deps struct {
	Mail           gateway.Mail
	Chat           gateway.Chat
	Calls          gateway.Calls
	Products       gateway.Products
	Producer       *broker.Producer
	PaymentBaseURL string
	Metrics        *metrics.Registry
	Log            *slog.Logger
}

// Registry resolves channel identifiers to their tools and is the single
// execution entry point for planned actions. It is constructed once with
// every variant wired statically; there is no runtime registration.
type Registry struct {
	tools   map[string]Tool
	metrics *metrics.Registry
	log     *slog.Logger
}

// NewRegistry wires all channel tools.
func NewRegistry(deps Deps) *Registry {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	tools := map[string]Tool{}
	for _, tool := range []Tool{
		NewEmail(deps.Mail, log),
		NewChat(deps.Chat, log),
		NewCall(deps.Calls, log),
		NewPayment(deps.Products, deps.PaymentBaseURL, log),
		NewPublish(deps.Producer, log),
	} {
		tools[tool.Name()] = tool
	}
	return &Registry{tools: tools, metrics: deps.Metrics, log: log}
}

// Tool resolves a channel identifier. Returns *UnknownChannelError for
// identifiers the registry does not recognize.
func (r *Registry) Tool(channel string) (Tool, error) {
	tool, ok := r.tools[channel]
	if !ok {
		return nil, &UnknownChannelError{Channel: channel}
	}
	return tool, nil
}

// Channels returns the identifiers of all wired tools.
func (r *Registry) Channels() []string {
	out := make([]string, 0, len(r.tools))
	for name := range r.tools {
		out = append(out, name)
	}
	return out
}

// Execute dispatches one action to its channel tool. The tool re-validates
// the payload before producing any side effect. Execution duration and
// outcome are tracked per tool.
func (r *Registry) Execute(ctx context.Context, channel string, creatorID, consumerID uuid.UUID, payload Payload) (Result, error) {
	tool, err := r.Tool(channel)
	if err != nil {
		r.log.ErrorContext(ctx, "unknown channel requested", slog.String("channel", channel))
		return nil, err
	}

	var done func(error)
	if r.metrics != nil {
		done = r.metrics.Track("tool_execution", channel)
	}

	result, err := tool.Execute(ctx, creatorID, consumerID, payload)
	if done != nil {
		done(err)
	}
	if err != nil {
		r.log.ErrorContext(ctx, "channel execution failed",
			slog.String("channel", channel),
			slogx.UUID("creator_id", creatorID),
			slogx.UUID("consumer_id", consumerID),
			slogx.Error(err))
		return nil, err
	}
	return result, nil
}
