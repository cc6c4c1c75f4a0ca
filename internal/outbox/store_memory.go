package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps entries in process. It is used by tests and by the
// server when no database is configured.
type MemoryStore struct {
	mu        sync.Mutex
	entries   []Entry
	published map[uuid.UUID]time.Time
}

// NewMemoryStore creates an empty in-memory outbox.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{published: make(map[uuid.UUID]time.Time)}
}

func (s *MemoryStore) Enqueue(_ context.Context, entry Entry) error {
	if entry.Type == "" || entry.AggregateID == "" {
		return fmt.Errorf("outbox entry requires type and aggregate id")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryStore) Claim(ctx context.Context, limit int, fn func(ctx context.Context, entries []Entry) ([]uuid.UUID, error)) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var batch []Entry
	for _, e := range s.entries {
		if _, done := s.published[e.ID]; done {
			continue
		}
		batch = append(batch, e)
		if len(batch) == limit {
			break
		}
	}
	if len(batch) == 0 {
		return 0, nil
	}

	ids, err := fn(ctx, batch)
	now := time.Now()
	for _, id := range ids {
		s.published[id] = now
	}
	return len(ids), err
}

// Entries returns a copy of everything enqueued so far.
func (s *MemoryStore) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Pending counts entries not yet published.
func (s *MemoryStore) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries) - len(s.published)
}
