package messages

import (
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Event is one real-world consumer occurrence entering the pipeline.
// Published exactly once per occurrence onto the events topic; the
// idempotency key, when present, co-locates related events on one partition.
type Event struct {
	EventID        uuid.UUID      `json:"event_id"`
	CreatorID      uuid.UUID      `json:"creator_id"`
	ConsumerID     uuid.UUID      `json:"consumer_id"`
	EventType      string         `json:"event_type"`
	Payload        map[string]any `json:"payload,omitempty"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
}

// PartitionKey returns the key used for partition placement: the idempotency
// key when the caller supplied one, the event id otherwise.
func (e Event) PartitionKey() string {
	if e.IdempotencyKey != "" {
		return e.IdempotencyKey
	}
	return e.EventID.String()
}

// Validate reports whether the envelope carries every identity field a
// handler needs. Messages failing validation are rejected and skipped, never
// retried.
func (e Event) Validate() error {
	switch {
	case e.EventID == uuid.Nil:
		return fmt.Errorf("event: missing event_id")
	case e.CreatorID == uuid.Nil:
		return fmt.Errorf("event: missing creator_id")
	case e.ConsumerID == uuid.Nil:
		return fmt.Errorf("event: missing consumer_id")
	case e.EventType == "":
		return fmt.Errorf("event: missing event_type")
	}
	return nil
}

// AgentInvocation records one agent being triggered by one event. Created by
// the orchestrator and published for audit and fan-out.
type AgentInvocation struct {
	InvocationID uuid.UUID      `json:"invocation_id"`
	EventID      uuid.UUID      `json:"event_id"`
	CreatorID    uuid.UUID      `json:"creator_id"`
	ConsumerID   uuid.UUID      `json:"consumer_id"`
	AgentID      uuid.UUID      `json:"agent_id"`
	Context      map[string]any `json:"context,omitempty"`
}

// Validate reports whether the invocation envelope is complete.
func (a AgentInvocation) Validate() error {
	switch {
	case a.InvocationID == uuid.Nil:
		return fmt.Errorf("invocation: missing invocation_id")
	case a.EventID == uuid.Nil:
		return fmt.Errorf("invocation: missing event_id")
	case a.CreatorID == uuid.Nil:
		return fmt.Errorf("invocation: missing creator_id")
	case a.ConsumerID == uuid.Nil:
		return fmt.Errorf("invocation: missing consumer_id")
	case a.AgentID == uuid.Nil:
		return fmt.Errorf("invocation: missing agent_id")
	}
	return nil
}

// ActionStatus tracks the lifecycle of a planned side effect.
type ActionStatus string

const (
	ActionPending  ActionStatus = "pending"
	ActionExecuted ActionStatus = "executed"
	ActionFailed   ActionStatus = "failed"
)

// Action is a single planned side effect resulting from an invocation,
// executed against exactly one channel.
type Action struct {
	ActionID     uuid.UUID      `json:"action_id"`
	InvocationID uuid.UUID      `json:"invocation_id"`
	CreatorID    uuid.UUID      `json:"creator_id"`
	ConsumerID   uuid.UUID      `json:"consumer_id"`
	ActionType   string         `json:"action_type"`
	Channel      string         `json:"channel"`
	Payload      map[string]any `json:"payload,omitempty"`
	Status       ActionStatus   `json:"status,omitempty"`
}

// Validate reports whether the action envelope carries everything the
// executor needs to dispatch it.
func (a Action) Validate() error {
	switch {
	case a.ActionID == uuid.Nil:
		return fmt.Errorf("action: missing action_id")
	case a.CreatorID == uuid.Nil:
		return fmt.Errorf("action: missing creator_id")
	case a.ConsumerID == uuid.Nil:
		return fmt.Errorf("action: missing consumer_id")
	case a.ActionType == "":
		return fmt.Errorf("action: missing action_type")
	case a.Channel == "":
		return fmt.Errorf("action: missing channel")
	}
	return nil
}

// DeadLetter wraps a message that exhausted its retry budget together with
// the failure context needed for delayed inspection and replay. FailedAt is
// an explicit wall-clock capture taken at routing time.
type DeadLetter struct {
	Original        json.RawMessage `json:"original"`
	Error           string          `json:"error"`
	FailedAt        strfmt.DateTime `json:"failed_at"`
	SourceTopic     string          `json:"source_topic"`
	SourcePartition int             `json:"source_partition"`
	SourceOffset    uint64          `json:"source_offset"`
}

// Marshal encodes any envelope with the pipeline's canonical codec.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes raw bytes into the provided envelope pointer.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
