package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu      sync.Mutex
	got     []Entry
	failIDs map[uuid.UUID]bool
}

func (p *recordingPublisher) Publish(_ context.Context, entries []Entry) ([]uuid.UUID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var acked []uuid.UUID
	var err error
	for _, e := range entries {
		if p.failIDs[e.ID] {
			err = errors.New("broker rejected record")
			continue
		}
		p.got = append(p.got, e)
		acked = append(acked, e.ID)
	}
	return acked, err
}

func (p *recordingPublisher) published() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Entry(nil), p.got...)
}

func enqueue(t *testing.T, store *MemoryStore, n int) []Entry {
	t.Helper()
	var out []Entry
	for i := 0; i < n; i++ {
		e, err := NewEntry("party", uuid.NewString(), "party.v1.PartyCreated", map[string]int{"seq": i}, nil)
		require.NoError(t, err)
		require.NoError(t, store.Enqueue(context.Background(), e))
		out = append(out, e)
	}
	return out
}

func TestNewEntryDefaultsKeyToAggregate(t *testing.T) {
	e, err := NewEntry("party", "p-1", "party.v1.PartyCreated", map[string]string{"a": "b"}, map[string]string{"tenant": "t1"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, "p-1", e.Key)
	assert.JSONEq(t, `{"a":"b"}`, string(e.Payload))
}

func TestMemoryStoreRejectsIncompleteEntry(t *testing.T) {
	store := NewMemoryStore()
	err := store.Enqueue(context.Background(), Entry{Type: "x"})
	require.Error(t, err)
	assert.Zero(t, store.Pending())
}

func TestRelayOncePublishesInOrder(t *testing.T) {
	store := NewMemoryStore()
	entries := enqueue(t, store, 3)
	pub := &recordingPublisher{}
	relay := NewRelay(store, pub, WithBatchSize(10))

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Zero(t, store.Pending())

	got := pub.published()
	require.Len(t, got, 3)
	for i := range entries {
		assert.Equal(t, entries[i].ID, got[i].ID)
	}

	n, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "published entries are not sent twice")
}

func TestRelayOnceRespectsBatchSize(t *testing.T) {
	store := NewMemoryStore()
	enqueue(t, store, 5)
	relay := NewRelay(store, &recordingPublisher{}, WithBatchSize(2))

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, store.Pending())
}

func TestRelayKeepsRejectedEntriesPending(t *testing.T) {
	store := NewMemoryStore()
	entries := enqueue(t, store, 2)
	pub := &recordingPublisher{failIDs: map[uuid.UUID]bool{entries[1].ID: true}}
	relay := NewRelay(store, pub)

	n, err := relay.RelayOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, store.Pending())

	delete(pub.failIDs, entries[1].ID)
	n, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, store.Pending())
}

func TestRelayRunStopsOnCancel(t *testing.T) {
	store := NewMemoryStore()
	enqueue(t, store, 4)
	pub := &recordingPublisher{}
	relay := NewRelay(store, pub, WithBatchSize(2), WithPollInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool { return store.Pending() == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after cancellation")
	}
	assert.Len(t, pub.published(), 4)
}
