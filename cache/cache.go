// Package cache provides a namespaced, TTL-based key/value store shared by
// the pipeline components. Entries are ephemeral: they may vanish at any time
// and callers must treat every read as potentially stale within the TTL
// window. The in-memory implementation is backed by haxmap so all workers can
// read and write concurrently without client-side locking.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/alphadose/haxmap"

	"github.com/creatorhq/eventpipe/metrics"
)

// Store is the cache capability consumed by the pipeline. Values are JSON-ish
// dynamic data; there is no durability guarantee.
type Store interface {
	Get(ctx context.Context, namespace, key string) (any, bool)
	Set(ctx context.Context, namespace, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, namespace, key string)
	Exists(ctx context.Context, namespace, key string) bool
	// TTL returns the remaining lifetime of an entry, false when absent.
	TTL(ctx context.Context, namespace, key string) (time.Duration, bool)
}

type entry struct {
	value    any
	deadline time.Time
}

// Memory is the in-process Store implementation. A janitor goroutine sweeps
// expired entries; reads also expire lazily so a stopped janitor never serves
// stale values.
type Memory struct {
	entries *haxmap.Map[string, entry]
	clock   func() time.Time
	reg     *metrics.Registry
	stop    chan struct{}
}

// NewMemory creates a memory cache. The metrics registry is optional; when
// present, hits and misses are counted per namespace.
func NewMemory(reg *metrics.Registry) *Memory {
	m := &Memory{
		entries: haxmap.New[string, entry](),
		clock:   time.Now,
		reg:     reg,
		stop:    make(chan struct{}),
	}
	go m.janitor(30 * time.Second)
	return m
}

// Close stops the janitor. The cache remains usable, entries just expire
// lazily afterwards.
func (m *Memory) Close() {
	select {
	case <-m.stop:
	default:
		close(m.stop)
	}
}

func (m *Memory) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			now := m.clock()
			var expired []string
			m.entries.ForEach(func(k string, e entry) bool {
				if now.After(e.deadline) {
					expired = append(expired, k)
				}
				return true
			})
			for _, k := range expired {
				m.entries.Del(k)
			}
		}
	}
}

func cacheKey(namespace, key string) string {
	return fmt.Sprintf("cache:%s:%s", namespace, key)
}

func (m *Memory) hit(namespace string) {
	if m.reg != nil {
		m.reg.Inc("cache_hits_total", namespace)
	}
}

func (m *Memory) miss(namespace string) {
	if m.reg != nil {
		m.reg.Inc("cache_misses_total", namespace)
	}
}

func (m *Memory) Get(ctx context.Context, namespace, key string) (any, bool) {
	k := cacheKey(namespace, key)
	e, ok := m.entries.Get(k)
	if !ok {
		m.miss(namespace)
		return nil, false
	}
	if m.clock().After(e.deadline) {
		m.entries.Del(k)
		m.miss(namespace)
		return nil, false
	}
	m.hit(namespace)
	return e.value, true
}

func (m *Memory) Set(ctx context.Context, namespace, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	m.entries.Set(cacheKey(namespace, key), entry{
		value:    value,
		deadline: m.clock().Add(ttl),
	})
}

func (m *Memory) Delete(ctx context.Context, namespace, key string) {
	m.entries.Del(cacheKey(namespace, key))
}

func (m *Memory) Exists(ctx context.Context, namespace, key string) bool {
	_, ok := m.Get(ctx, namespace, key)
	return ok
}

func (m *Memory) TTL(ctx context.Context, namespace, key string) (time.Duration, bool) {
	e, ok := m.entries.Get(cacheKey(namespace, key))
	if !ok {
		return 0, false
	}
	remaining := e.deadline.Sub(m.clock())
	if remaining <= 0 {
		m.entries.Del(cacheKey(namespace, key))
		return 0, false
	}
	return remaining, true
}
