package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Canonical topic names.
const (
	TopicEvents         = "events"
	TopicInvocations    = "agent-invocations"
	TopicActions        = "actions"
	TopicDLQAgents      = "dlq-agents"
	TopicDLQActions     = "dlq-actions"
	TopicAnalytics      = "analytics-events"
	TopicScheduledTasks = "scheduled-tasks"
	TopicAudit          = "audit-events"
)

// Canonical consumer-group ids.
const (
	GroupAgentProcessors = "agent-processors"
	GroupActionExecutors = "action-executors"
	GroupBatch           = "batch-processing-group"
	GroupScheduledTasks  = "scheduled-tasks-group"
	GroupAudit           = "audit-consumer-group"
)

// TopicConfig describes a topic's static shape. Not mutated at runtime.
type TopicConfig struct {
	Name       string
	Partitions int
	Replicas   int
	Retention  time.Duration
}

// Topics is the canonical topic table. Dead-letter topics are retained far
// longer than primary topics so failed messages stay inspectable.
var Topics = map[string]TopicConfig{
	TopicEvents:         {Name: TopicEvents, Partitions: 3, Replicas: 1, Retention: 7 * 24 * time.Hour},
	TopicInvocations:    {Name: TopicInvocations, Partitions: 3, Replicas: 1, Retention: 7 * 24 * time.Hour},
	TopicActions:        {Name: TopicActions, Partitions: 3, Replicas: 1, Retention: 7 * 24 * time.Hour},
	TopicDLQAgents:      {Name: TopicDLQAgents, Partitions: 1, Replicas: 1, Retention: 30 * 24 * time.Hour},
	TopicDLQActions:     {Name: TopicDLQActions, Partitions: 1, Replicas: 1, Retention: 30 * 24 * time.Hour},
	TopicAnalytics:      {Name: TopicAnalytics, Partitions: 3, Replicas: 1, Retention: 7 * 24 * time.Hour},
	TopicScheduledTasks: {Name: TopicScheduledTasks, Partitions: 3, Replicas: 1, Retention: 7 * 24 * time.Hour},
	TopicAudit:          {Name: TopicAudit, Partitions: 3, Replicas: 1, Retention: 7 * 24 * time.Hour},
}

// GroupConfig describes one consumer group: the topics it subscribes to and
// its polling profile. Batch-oriented groups use larger batches and longer
// idle backoff so low-priority traffic never competes with the realtime
// pipeline for broker round-trips.
type GroupConfig struct {
	ID          string
	Topics      []string
	MaxBatch    int
	PollTimeout time.Duration
	IdleBackoff time.Duration
}

// Groups is the canonical consumer-group catalog. Only the first three run as
// workers in this repository; the remaining entries document groups operated
// by sibling services against the same broker.
var Groups = map[string]GroupConfig{
	GroupAgentProcessors: {
		ID:          GroupAgentProcessors,
		Topics:      []string{TopicEvents},
		MaxBatch:    100,
		PollTimeout: time.Second,
		IdleBackoff: time.Second,
	},
	GroupActionExecutors: {
		ID:          GroupActionExecutors,
		Topics:      []string{TopicActions},
		MaxBatch:    100,
		PollTimeout: time.Second,
		IdleBackoff: time.Second,
	},
	GroupBatch: {
		ID:          GroupBatch,
		Topics:      []string{TopicAnalytics, TopicScheduledTasks, TopicAudit},
		MaxBatch:    200,
		PollTimeout: 2 * time.Second,
		IdleBackoff: 10 * time.Second,
	},
	GroupScheduledTasks: {
		ID:          GroupScheduledTasks,
		Topics:      []string{TopicScheduledTasks},
		MaxBatch:    10,
		PollTimeout: time.Second,
		IdleBackoff: 5 * time.Second,
	},
	GroupAudit: {
		ID:          GroupAudit,
		Topics:      []string{TopicAudit},
		MaxBatch:    20,
		PollTimeout: 2 * time.Second,
		IdleBackoff: 10 * time.Second,
	},
}

// GroupForID looks up a consumer-group configuration.
func GroupForID(id string) (GroupConfig, error) {
	g, ok := Groups[id]
	if !ok {
		return GroupConfig{}, fmt.Errorf("unknown consumer group %q", id)
	}
	return g, nil
}

// GroupsForTopic returns every catalogued group subscribed to a topic.
func GroupsForTopic(topic string) []GroupConfig {
	var out []GroupConfig
	for _, g := range Groups {
		for _, t := range g.Topics {
			if t == topic {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

// EnsureTopics provisions a JetStream stream for every configured topic,
// updating the configuration of streams that already exist. Run once at
// startup, before any producer or consumer touches the broker.
func EnsureTopics(ctx context.Context, js nats.JetStreamContext) error {
	for _, tc := range Topics {
		cfg := &nats.StreamConfig{
			Name:      tc.Name,
			Subjects:  subjects(tc),
			Replicas:  tc.Replicas,
			MaxAge:    tc.Retention,
			Storage:   nats.FileStorage,
			Retention: nats.LimitsPolicy,
		}
		if _, err := js.AddStream(cfg, nats.Context(ctx)); err != nil {
			if _, uerr := js.UpdateStream(cfg, nats.Context(ctx)); uerr != nil {
				return &TransportError{Op: "provision", Topic: tc.Name, Err: err}
			}
		}
	}
	return nil
}
