package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorhq/eventpipe/metrics"
)

func newTestCache(t *testing.T) (*Memory, *metrics.Registry) {
	t.Helper()
	reg := metrics.New()
	m := NewMemory(reg)
	t.Cleanup(m.Close)
	return m, reg
}

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m, reg := newTestCache(t)

	m.Set(ctx, "creator_profile", "c1", map[string]any{"name": "ada"}, time.Minute)

	got, ok := m.Get(ctx, "creator_profile", "c1")
	require.True(t, ok)
	assert.Equal(t, "ada", got.(map[string]any)["name"])
	assert.EqualValues(t, 1, reg.Counter("cache_hits_total", "creator_profile"))

	_, ok = m.Get(ctx, "creator_profile", "missing")
	assert.False(t, ok)
	assert.EqualValues(t, 1, reg.Counter("cache_misses_total", "creator_profile"))
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestCache(t)

	now := time.Unix(0, 0)
	m.clock = func() time.Time { return now }

	m.Set(ctx, "session", "k", "v", 10*time.Second)
	assert.True(t, m.Exists(ctx, "session", "k"))

	remaining, ok := m.TTL(ctx, "session", "k")
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, remaining)

	now = now.Add(11 * time.Second)
	_, ok = m.Get(ctx, "session", "k")
	assert.False(t, ok, "entry past its deadline must expire lazily")
	_, ok = m.TTL(ctx, "session", "k")
	assert.False(t, ok)
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestCache(t)

	m.Set(ctx, "ns", "k", 42, time.Minute)
	m.Delete(ctx, "ns", "k")
	assert.False(t, m.Exists(ctx, "ns", "k"))
}

func TestNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestCache(t)

	m.Set(ctx, "a", "k", "in-a", time.Minute)
	m.Set(ctx, "b", "k", "in-b", time.Minute)

	got, ok := m.Get(ctx, "a", "k")
	require.True(t, ok)
	assert.Equal(t, "in-a", got)

	m.Delete(ctx, "a", "k")
	assert.True(t, m.Exists(ctx, "b", "k"), "deleting in one namespace must not touch another")
}
