package channel

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/creatorhq/eventpipe/gateway"
	"github.com/creatorhq/eventpipe/pkg/slogx"
)

// emailTool sends transactional email through the mail gateway.
type emailTool struct {
	mail gateway.Mail
	log  *slog.Logger
}

// NewEmail creates the email channel tool.
func NewEmail(mail gateway.Mail, log *slog.Logger) Tool {
	if log == nil {
		log = slog.Default()
	}
	return &emailTool{mail: mail, log: log}
}

func (t *emailTool) Name() string { return Email }

func (t *emailTool) Validate(payload Payload) bool {
	return len(missing(payload, "to_address", "subject", "body")) == 0
}

func (t *emailTool) Execute(ctx context.Context, creatorID, consumerID uuid.UUID, payload Payload) (Result, error) {
	if fields := missing(payload, "to_address", "subject", "body"); len(fields) > 0 {
		return nil, &ValidationError{Channel: Email, Missing: fields}
	}

	to := stringField(payload, "to_address")
	subject := stringField(payload, "subject")
	body := stringField(payload, "body")
	from := stringField(payload, "from_address") // optional sender override

	t.log.InfoContext(ctx, "sending email",
		slog.String("to", to),
		slogx.UUID("creator_id", creatorID),
		slogx.UUID("consumer_id", consumerID))

	messageID, err := t.mail.Send(ctx, to, subject, body, from)
	if err != nil {
		t.log.ErrorContext(ctx, "email send failed", slogx.Error(err))
		return nil, &ProviderError{Channel: Email, Provider: "mail", Err: err}
	}

	return Result{
		"success":    true,
		"message_id": messageID,
		"provider":   "mail",
	}, nil
}
