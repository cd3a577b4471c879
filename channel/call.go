package channel

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/creatorhq/eventpipe/gateway"
	"github.com/creatorhq/eventpipe/pkg/slogx"
)

// callTool schedules a call through the call-scheduling gateway. The gateway
// interface has the same shape as the mail and chat gateways, so a fake
// adapter and a real scheduling integration are interchangeable.
type callTool struct {
	calls gateway.Calls
	log   *slog.Logger
}

// NewCall creates the call channel tool.
func NewCall(calls gateway.Calls, log *slog.Logger) Tool {
	if log == nil {
		log = slog.Default()
	}
	return &callTool{calls: calls, log: log}
}

func (t *callTool) Name() string { return Call }

func (t *callTool) Validate(payload Payload) bool {
	return len(missing(payload, "phone_number", "scheduled_time")) == 0
}

func (t *callTool) Execute(ctx context.Context, creatorID, consumerID uuid.UUID, payload Payload) (Result, error) {
	if fields := missing(payload, "phone_number", "scheduled_time"); len(fields) > 0 {
		return nil, &ValidationError{Channel: Call, Missing: fields}
	}

	phone := stringField(payload, "phone_number")
	at := stringField(payload, "scheduled_time")
	kind := stringField(payload, "type")
	if kind == "" {
		kind = "scheduled"
	}

	t.log.InfoContext(ctx, "scheduling call",
		slog.String("phone", phone),
		slog.String("at", at),
		slogx.UUID("creator_id", creatorID),
		slogx.UUID("consumer_id", consumerID))

	confirmation, err := t.calls.Schedule(ctx, phone, at, kind)
	if err != nil {
		t.log.ErrorContext(ctx, "call scheduling failed", slogx.Error(err))
		return nil, &ProviderError{Channel: Call, Provider: "calls", Err: err}
	}

	return Result{
		"success":        true,
		"confirmation":   confirmation,
		"phone_number":   phone,
		"scheduled_time": at,
		"call_type":      kind,
		"status":         "scheduled",
	}, nil
}
