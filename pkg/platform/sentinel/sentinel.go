package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, the outbox and vendor
// adapters return these (optionally wrapped) so services can translate them
// into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: row or record does not exist in the store
// - ErrConflict: a uniqueness constraint rejected the write
// - ErrUnavailable: store or vendor temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
