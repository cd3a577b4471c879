package broker

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// PartitionFor deterministically assigns a partition for a key using FNV-1a.
// Messages sharing a key always land on the same partition for a fixed
// partition count, which is the ordering contract the pipeline relies on.
// An empty key hashes like any other string, so callers must supply the
// event id as fallback key themselves.
func PartitionFor(key string, partitions int) int {
	if partitions <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(partitions))
}

// subjectFor renders the subject carrying one partition of a topic.
func subjectFor(topic string, partition int) string {
	return fmt.Sprintf("%s.p.%d", topic, partition)
}

// subjects lists every partition subject of a topic.
func subjects(tc TopicConfig) []string {
	out := make([]string, tc.Partitions)
	for i := range out {
		out[i] = subjectFor(tc.Name, i)
	}
	return out
}

// partitionFromSubject recovers the partition index from a delivery subject.
// Returns 0 for subjects that do not follow the "<topic>.p.<n>" shape.
func partitionFromSubject(subject string) int {
	idx := strings.LastIndex(subject, ".")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(subject[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
