package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	txcontext "party360/pkg/platform/tx"
)

// PostgresStore writes entries to the outbox table. Enqueue participates in
// the caller's transaction when one is present in ctx.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a Postgres-backed outbox.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Enqueue(ctx context.Context, entry Entry) error {
	if entry.Type == "" || entry.AggregateID == "" {
		return fmt.Errorf("outbox entry requires type and aggregate id")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.Key == "" {
		entry.Key = entry.AggregateID
	}
	headers, err := json.Marshal(entry.Headers)
	if err != nil {
		return fmt.Errorf("marshal outbox headers: %w", err)
	}
	if entry.Headers == nil {
		headers = []byte(`{}`)
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, event_key, payload, headers, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = txcontext.Exec(ctx, s.db).ExecContext(ctx, query,
		entry.ID,
		entry.AggregateType,
		entry.AggregateID,
		entry.Type,
		entry.Key,
		[]byte(entry.Payload),
		headers,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// Claim locks a batch with FOR UPDATE SKIP LOCKED so several relays can run
// side by side without publishing the same row twice.
func (s *PostgresStore) Claim(ctx context.Context, limit int, fn func(ctx context.Context, entries []Entry) ([]uuid.UUID, error)) (int, error) {
	var published int
	err := txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := txcontext.Exec(ctx, s.db)
		rows, err := exec.QueryContext(ctx, `
			SELECT id, aggregate_type, aggregate_id, event_type, event_key, payload, headers, created_at
			FROM outbox
			WHERE published_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		`, limit)
		if err != nil {
			return fmt.Errorf("select outbox batch: %w", err)
		}
		entries, err := scanEntries(rows)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		ids, fnErr := fn(ctx, entries)
		for _, id := range ids {
			if _, err := exec.ExecContext(ctx, `UPDATE outbox SET published_at = $2 WHERE id = $1`, id, time.Now()); err != nil {
				return fmt.Errorf("mark outbox entry published: %w", err)
			}
		}
		published = len(ids)
		// Partial progress is committed; the failed remainder is retried.
		if fnErr != nil && len(ids) == 0 {
			return fnErr
		}
		return nil
	})
	return published, err
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			payload []byte
			headers []byte
		)
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.Type, &e.Key, &payload, &headers, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		e.Payload = payload
		if len(headers) > 0 {
			if err := json.Unmarshal(headers, &e.Headers); err != nil {
				return nil, fmt.Errorf("decode outbox headers: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
