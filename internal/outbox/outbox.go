// Package outbox implements the transactional outbox: events are written in
// the same database transaction as the business rows and relayed to Kafka
// afterwards.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entry is one pending event.
type Entry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	Type          string
	// Key is the partitioning key; defaults to AggregateID.
	Key       string
	Payload   json.RawMessage
	Headers   map[string]string
	CreatedAt time.Time
}

// Writer enqueues events. Implementations join the transaction carried by ctx.
type Writer interface {
	Enqueue(ctx context.Context, entry Entry) error
}

// Source is what the relay reads from.
type Source interface {
	// Claim runs fn with up to limit unpublished entries, oldest first, and
	// marks the ids fn returns as published in the same unit of work.
	Claim(ctx context.Context, limit int, fn func(ctx context.Context, entries []Entry) ([]uuid.UUID, error)) (int, error)
}

// NewEntry builds an entry with a fresh ID, marshalling payload as JSON.
func NewEntry(aggregateType, aggregateID, eventType string, payload any, headers map[string]string) (Entry, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Type:          eventType,
		Key:           aggregateID,
		Payload:       body,
		Headers:       headers,
	}, nil
}
