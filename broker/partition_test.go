package broker

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionFor(t *testing.T) {
	t.Run("is deterministic", func(t *testing.T) {
		first := PartitionFor("k1", 3)
		for i := 0; i < 100; i++ {
			assert.Equal(t, first, PartitionFor("k1", 3))
		}
	})

	t.Run("stays in range", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			p := PartitionFor(fmt.Sprintf("key-%d", i), 3)
			assert.GreaterOrEqual(t, p, 0)
			assert.Less(t, p, 3)
		}
	})

	t.Run("single partition is always zero", func(t *testing.T) {
		assert.Equal(t, 0, PartitionFor("anything", 1))
		assert.Equal(t, 0, PartitionFor("anything", 0))
	})

	t.Run("spreads distinct keys", func(t *testing.T) {
		seen := map[int]bool{}
		for i := 0; i < 50; i++ {
			seen[PartitionFor(fmt.Sprintf("key-%d", i), 3)] = true
		}
		assert.Len(t, seen, 3, "50 distinct keys should hit every partition of 3")
	})
}

func TestSubjectRoundTrip(t *testing.T) {
	subj := subjectFor(TopicEvents, 2)
	assert.Equal(t, "events.p.2", subj)
	assert.Equal(t, 2, partitionFromSubject(subj))

	t.Run("malformed subject falls back to zero", func(t *testing.T) {
		assert.Equal(t, 0, partitionFromSubject("events"))
		assert.Equal(t, 0, partitionFromSubject("events.p.x"))
	})
}

func TestSubjects(t *testing.T) {
	tc := Topics[TopicEvents]
	assert.Equal(t, []string{"events.p.0", "events.p.1", "events.p.2"}, subjects(tc))

	dlq := Topics[TopicDLQAgents]
	assert.Equal(t, []string{"dlq-agents.p.0"}, subjects(dlq))
}

func TestGroupCatalog(t *testing.T) {
	g, err := GroupForID(GroupBatch)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{TopicAnalytics, TopicScheduledTasks, TopicAudit}, g.Topics)
	assert.Greater(t, g.IdleBackoff, Groups[GroupAgentProcessors].IdleBackoff,
		"batch group backs off longer than realtime groups")

	_, err = GroupForID("nope")
	assert.Error(t, err)

	forScheduled := GroupsForTopic(TopicScheduledTasks)
	ids := make([]string, 0, len(forScheduled))
	for _, g := range forScheduled {
		ids = append(ids, g.ID)
	}
	assert.ElementsMatch(t, []string{GroupBatch, GroupScheduledTasks}, ids)
}
