package idempotency

import (
	"context"
	"sync"
	"time"
)

type memoryRecord struct {
	Record
	expiresAt time.Time
}

// MemoryStore is an in-process RecordStore. A single mutex makes every
// transition atomic, matching the per-key guarantees of the Redis scripts.
// Expired records are treated as absent and dropped lazily.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*memoryRecord
	now     func() time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithStoreClock overrides the clock used for TTL bookkeeping.
func WithStoreClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty in-memory record store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]*memoryRecord),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// live returns the record for key, evicting it if expired. Caller holds mu.
func (s *MemoryStore) live(key string) (*memoryRecord, bool) {
	rec, ok := s.records[key]
	if !ok {
		return nil, false
	}
	if !s.now().Before(rec.expiresAt) {
		delete(s.records, key)
		return nil, false
	}
	return rec, true
}

func (s *MemoryStore) CreateOrValidate(_ context.Context, key, fingerprint string, pendingTTL time.Duration) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.live(key)
	if !ok {
		now := s.now()
		s.records[key] = &memoryRecord{
			Record: Record{
				Fingerprint: fingerprint,
				Status:      StatusPending,
				CreatedAt:   now,
			},
			expiresAt: now.Add(pendingTTL),
		}
		return OutcomeCreated, nil
	}
	if rec.Fingerprint != fingerprint {
		return OutcomeHashMismatch, nil
	}
	if rec.Status == StatusDone {
		return OutcomeDone, nil
	}
	return OutcomePending, nil
}

func (s *MemoryStore) CompleteSuccess(_ context.Context, key, fingerprint string, payload []byte, doneTTL time.Duration) (CompleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.live(key)
	if !ok {
		return CompleteMissing, nil
	}
	if rec.Fingerprint != fingerprint {
		return CompleteHashMismatch, nil
	}
	if rec.Status == StatusDone {
		return CompleteAlreadyDone, nil
	}
	rec.Status = StatusDone
	rec.Payload = append([]byte(nil), payload...)
	rec.expiresAt = s.now().Add(doneTTL)
	return CompleteOK, nil
}

func (s *MemoryStore) CleanOnFailure(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

func (s *MemoryStore) Status(_ context.Context, key string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.live(key)
	if !ok {
		return StatusAbsent, nil
	}
	return rec.Status, nil
}

func (s *MemoryStore) Fetch(_ context.Context, key string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.live(key)
	if !ok {
		return Record{}, false, nil
	}
	out := rec.Record
	out.Payload = append([]byte(nil), rec.Payload...)
	return out, true, nil
}

// TTL reports the remaining lifetime of a record, or zero when absent.
func (s *MemoryStore) TTL(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.live(key)
	if !ok {
		return 0
	}
	return rec.expiresAt.Sub(s.now())
}
