package channel

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/creatorhq/eventpipe/gateway"
	"github.com/creatorhq/eventpipe/pkg/slogx"
)

// chatTool sends a WhatsApp-style message through the chat gateway.
type chatTool struct {
	chat gateway.Chat
	log  *slog.Logger
}

// NewChat creates the chat channel tool.
func NewChat(chat gateway.Chat, log *slog.Logger) Tool {
	if log == nil {
		log = slog.Default()
	}
	return &chatTool{chat: chat, log: log}
}

func (t *chatTool) Name() string { return Chat }

func (t *chatTool) Validate(payload Payload) bool {
	return len(missing(payload, "to_address", "message")) == 0
}

func (t *chatTool) Execute(ctx context.Context, creatorID, consumerID uuid.UUID, payload Payload) (Result, error) {
	if fields := missing(payload, "to_address", "message"); len(fields) > 0 {
		return nil, &ValidationError{Channel: Chat, Missing: fields}
	}

	to := stringField(payload, "to_address")
	message := stringField(payload, "message")
	template := stringField(payload, "template") // optional business template

	t.log.InfoContext(ctx, "sending chat message",
		slog.String("to", to),
		slogx.UUID("creator_id", creatorID),
		slogx.UUID("consumer_id", consumerID))

	messageID, err := t.chat.Send(ctx, to, message, template)
	if err != nil {
		t.log.ErrorContext(ctx, "chat send failed", slogx.Error(err))
		return nil, &ProviderError{Channel: Chat, Provider: "chat", Err: err}
	}

	return Result{
		"success":    true,
		"message_id": messageID,
		"provider":   "chat",
	}, nil
}
