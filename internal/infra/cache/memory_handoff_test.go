package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davronx1/leadgate/internal/handoff"
)

func newTestStore(at time.Time) (*MemoryHandoffStore, *time.Time) {
	clock := at
	s := &MemoryHandoffStore{
		entries: make(map[string]handoffEntry),
		ttl:     handoff.TTL,
		now:     func() time.Time { return clock },
	}
	return s, &clock
}

func TestMemoryHandoffTakeIsOneShot(t *testing.T) {
	s, _ := newTestStore(time.Now())
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "sess-1", []byte(`{"phone":"+998901234567"}`)))

	payload, ok, err := s.Take(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"phone":"+998901234567"}`, string(payload))

	_, ok, err = s.Take(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, ok, "second take finds nothing")
}

func TestMemoryHandoffTakeUnknownKey(t *testing.T) {
	s, _ := newTestStore(time.Now())

	payload, ok, err := s.Take(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, payload)
}

func TestMemoryHandoffExpiry(t *testing.T) {
	s, clock := newTestStore(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "sess-1", []byte("payload")))

	*clock = clock.Add(handoff.TTL + time.Minute)

	_, ok, err := s.Take(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries are never handed out")
}

func TestMemoryHandoffJustWithinTTL(t *testing.T) {
	s, clock := newTestStore(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "sess-1", []byte("payload")))

	*clock = clock.Add(handoff.TTL - time.Second)

	_, ok, err := s.Take(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryHandoffSweepRemovesExpired(t *testing.T) {
	s, clock := newTestStore(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "old", []byte("a")))
	*clock = clock.Add(handoff.TTL + time.Minute)
	require.NoError(t, s.Put(ctx, "fresh", []byte("b")))

	s.sweep()

	s.mu.Lock()
	_, oldExists := s.entries["old"]
	_, freshExists := s.entries["fresh"]
	s.mu.Unlock()
	assert.False(t, oldExists)
	assert.True(t, freshExists)
}
