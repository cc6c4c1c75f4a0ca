package idempotency

import (
	"context"
	"time"
)

// RecordStore is the operation set the coordinator needs from the shared
// store. The three mutating calls must each be indivisible on the store side;
// implementations must not emulate them with client-side read-then-write.
type RecordStore interface {
	// CreateOrValidate creates a PENDING record with pendingTTL when absent,
	// otherwise compares fingerprints and reports the stored state.
	CreateOrValidate(ctx context.Context, key, fingerprint string, pendingTTL time.Duration) (Outcome, error)
	// CompleteSuccess stores payload, marks the record DONE and refreshes its
	// lifetime to doneTTL, provided the fingerprint still matches.
	CompleteSuccess(ctx context.Context, key, fingerprint string, payload []byte, doneTTL time.Duration) (CompleteResult, error)
	// CleanOnFailure deletes the record if present.
	CleanOnFailure(ctx context.Context, key string) error
	// Status reads the status field; StatusAbsent when the record is gone.
	Status(ctx context.Context, key string) (Status, error)
	// Fetch reads fingerprint and payload together. found is false when the
	// record does not exist.
	Fetch(ctx context.Context, key string) (rec Record, found bool, err error)
}
