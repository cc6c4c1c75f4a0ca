package idempotency

import (
	"encoding/base64"
	"time"

	"github.com/google/uuid"
)

// Status is the stored lifecycle state of a record. Absence of the record is
// reported as StatusAbsent and is never written.
type Status string

const (
	StatusAbsent  Status = ""
	StatusPending Status = "PENDING"
	StatusDone    Status = "DONE"
)

// Outcome is the result of the create-or-validate transition.
type Outcome string

const (
	OutcomeCreated      Outcome = "CREATED"
	OutcomeDone         Outcome = "DONE"
	OutcomePending      Outcome = "PENDING"
	OutcomeHashMismatch Outcome = "HASH_MISMATCH"
)

// CompleteResult is the result of the complete-success transition.
type CompleteResult string

const (
	CompleteOK           CompleteResult = "OK"
	CompleteMissing      CompleteResult = "MISSING"
	CompleteHashMismatch CompleteResult = "HASH_MISMATCH"
	// CompleteAlreadyDone means another leader completed the record first;
	// the stored payload is left untouched.
	CompleteAlreadyDone CompleteResult = "DONE"
)

// Wire field names of a record hash.
const (
	fieldHash    = "hash"
	fieldStatus  = "status"
	fieldPayload = "payload"
	fieldTS      = "ts"
)

const keyPrefix = "idem:"

// RecordKey derives the store key for an (operation code, caller key) pair.
func RecordKey(opcode string, key uuid.UUID) string {
	return keyPrefix + opcode + ":" + key.String()
}

// EncodeFingerprint renders a request digest in its stored form.
func EncodeFingerprint(fingerprint []byte) string {
	return base64.StdEncoding.EncodeToString(fingerprint)
}

// Record is a point-in-time view of a stored record, used by fetch paths and
// tests. Payload is only set once Status is StatusDone.
type Record struct {
	Fingerprint string
	Status      Status
	Payload     []byte
	CreatedAt   time.Time
}
