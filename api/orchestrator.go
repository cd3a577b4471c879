// Package api declares the collaborator contracts the pipeline consumes but
// does not implement: the agent decision layer lives behind Orchestrator and
// is opaque to the streaming core.
package api

import (
	"context"

	"github.com/google/uuid"
)

// Orchestrator is the agent decision/planning capability. The pipeline hands
// it identity coordinates and relies on it (together with the producer it
// was constructed with) to emit the resulting invocation and action
// messages. Implementations must tolerate duplicate calls for the same
// event: delivery is at-least-once.
type Orchestrator interface {
	// ProcessEventAgents decides which agents should react to an event and
	// returns the ids of the invocations it created.
	ProcessEventAgents(ctx context.Context, creatorID, consumerID, eventID uuid.UUID) ([]uuid.UUID, error)
	// ExecutePendingActions flushes actions the orchestrator has planned
	// but not yet emitted, returning how many were executed.
	ExecutePendingActions(ctx context.Context) (int, error)
}

// NoopOrchestrator ignores every event. Used for wiring smoke tests and as
// a stand-in while the real decision layer is deployed separately.
type NoopOrchestrator struct{}

func (NoopOrchestrator) ProcessEventAgents(ctx context.Context, creatorID, consumerID, eventID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (NoopOrchestrator) ExecutePendingActions(ctx context.Context) (int, error) {
	return 0, nil
}
