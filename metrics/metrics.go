// Package metrics provides label-keyed counters and duration tracking for the
// pipeline workers and channel tools. It is an in-process registry: values
// accumulate atomically and are exposed through Snapshot for logging and
// tests. Metric names follow the <subject>_<unit> convention, e.g.
// "tool_executions_total" and "agent_execution_seconds".
package metrics

import (
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alphadose/haxmap"
)

// Registry accumulates counters and duration observations keyed by metric
// name plus ordered label values. Safe for concurrent use by all workers.
type Registry struct {
	counters  *haxmap.Map[string, *atomic.Int64]
	durations *haxmap.Map[string, *durationStats]
	clock     func() time.Time
}

type durationStats struct {
	count atomic.Int64
	total atomic.Int64 // nanoseconds
}

// New creates an empty metrics registry.
func New() *Registry {
	return &Registry{
		counters:  haxmap.New[string, *atomic.Int64](),
		durations: haxmap.New[string, *durationStats](),
		clock:     time.Now,
	}
}

// seriesKey renders "name{a,b,c}" for a metric with ordered label values.
func seriesKey(name string, labels []string) string {
	if len(labels) == 0 {
		return name
	}
	return name + "{" + strings.Join(labels, ",") + "}"
}

// Inc increments the counter identified by name and label values.
func (r *Registry) Inc(name string, labels ...string) {
	c, _ := r.counters.GetOrCompute(seriesKey(name, labels), func() *atomic.Int64 {
		return &atomic.Int64{}
	})
	c.Add(1)
}

// Add increments the counter by n.
func (r *Registry) Add(name string, n int64, labels ...string) {
	c, _ := r.counters.GetOrCompute(seriesKey(name, labels), func() *atomic.Int64 {
		return &atomic.Int64{}
	})
	c.Add(n)
}

// Observe records one duration sample for the series.
func (r *Registry) Observe(name string, d time.Duration, labels ...string) {
	s, _ := r.durations.GetOrCompute(seriesKey(name, labels), func() *durationStats {
		return &durationStats{}
	})
	s.count.Add(1)
	s.total.Add(int64(d))
}

// Track scopes one unit of work. It returns a completion func that records
// the elapsed duration under <name>_seconds and a success/error outcome
// counter under <name>_total with a trailing status label.
//
// Usage:
//
//	done := reg.Track("tool_execution", "email")
//	err := tool.Execute(...)
//	done(err)
func (r *Registry) Track(name string, labels ...string) func(error) {
	start := r.clock()
	return func(err error) {
		r.Observe(name+"_seconds", r.clock().Sub(start), labels...)
		status := "success"
		if err != nil {
			status = "error"
		}
		r.Inc(name+"_total", append(append([]string{}, labels...), status)...)
	}
}

// Counter returns the current value of a counter series, zero when the
// series has never been incremented.
func (r *Registry) Counter(name string, labels ...string) int64 {
	c, ok := r.counters.Get(seriesKey(name, labels))
	if !ok {
		return 0
	}
	return c.Load()
}

// DurationSample reports the observation count and mean duration for a
// series. Mean is zero when nothing has been observed.
func (r *Registry) DurationSample(name string, labels ...string) (int64, time.Duration) {
	s, ok := r.durations.Get(seriesKey(name, labels))
	if !ok {
		return 0, 0
	}
	n := s.count.Load()
	if n == 0 {
		return 0, 0
	}
	return n, time.Duration(s.total.Load() / n)
}

// Snapshot returns all counter series sorted by key, for periodic stats
// logging by the worker loops.
func (r *Registry) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	r.counters.ForEach(func(k string, v *atomic.Int64) bool {
		out[k] = v.Load()
		return true
	})
	return out
}

// Keys returns the sorted counter series names, mainly for deterministic
// logging output.
func (r *Registry) Keys() []string {
	keys := make([]string, 0)
	r.counters.ForEach(func(k string, _ *atomic.Int64) bool {
		keys = append(keys, k)
		return true
	})
	sort.Strings(keys)
	return keys
}
