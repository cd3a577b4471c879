package channel

import (
	"context"

	"github.com/google/uuid"
)

// Canonical channel identifiers.
const (
	Email   = "email"
	Chat    = "whatsapp"
	Call    = "call"
	Payment = "payment"
	Publish = "publish"
)

// Payload is the action-specific parameter set, decoded straight off the
// action envelope.
type Payload = map[string]any

// Result is the execution outcome returned to the caller, shaped per
// variant (provider message ids, payment links, scheduling confirmations).
type Result = map[string]any

// Tool executes one concrete side-effecting action. Implementations must be
// safe to invoke more than once with the same logical payload: the pipeline
// delivers at least once.
type Tool interface {
	// Name returns the channel identifier this tool serves.
	Name() string
	// Validate reports whether the payload carries every required field.
	// Pure: no side effects, no provider calls.
	Validate(payload Payload) bool
	// Execute performs the side effect. It re-validates the payload and
	// aborts with a *ValidationError before any observable effect when
	// validation fails.
	Execute(ctx context.Context, creatorID, consumerID uuid.UUID, payload Payload) (Result, error)
}

// missing returns the required fields absent from the payload. A field
// present but empty counts as missing: a blank recipient is as undeliverable
// as an absent one.
func missing(payload Payload, required ...string) []string {
	var out []string
	for _, field := range required {
		v, ok := payload[field]
		if !ok || v == nil || v == "" {
			out = append(out, field)
		}
	}
	return out
}

// stringField fetches an optional string field, empty when absent or not a
// string.
func stringField(payload Payload, field string) string {
	s, _ := payload[field].(string)
	return s
}
