package idempotency

import (
	"errors"

	dErrors "party360/pkg/domain-errors"
)

// Error kinds surfaced by the coordinator. Each is returned wrapped in a
// domain error, so callers can match with errors.Is or by code.
var (
	ErrConflict        = errors.New("idempotency key reused with a different fingerprint")
	ErrInProgress      = errors.New("idempotent request still in progress")
	ErrPayloadTooLarge = errors.New("idempotent result exceeds payload ceiling")
	ErrProtocol        = errors.New("unexpected idempotency store state")
	ErrInconsistent    = errors.New("idempotency record inconsistent")
)

// Stable reasons exposed to clients.
const (
	ReasonKeyReused       = "IDEMPOTENCY_KEY_REUSED_DIFFERENT_REQUEST"
	ReasonInProgress      = "IDEMPOTENCY_REQUEST_IN_PROGRESS"
	ReasonPayloadTooLarge = "IDEMPOTENCY_PAYLOAD_TOO_LARGE"
	ReasonProtocol        = "IDEMPOTENCY_REDIS_PROTOCOL"
	ReasonMissing         = "IDEMPOTENCY_MISSING"
)

func conflictError() error {
	return dErrors.Wrap(ErrConflict, dErrors.CodeConflict,
		"Idempotency-Key was used with a different request body.").WithReason(ReasonKeyReused)
}

func inProgressError() error {
	return dErrors.Wrap(ErrInProgress, dErrors.CodeConflict,
		"A request with this Idempotency-Key is still being processed.").WithReason(ReasonInProgress)
}

// payloadTooLargeError is a server fault: the client sent nothing oversized.
func payloadTooLargeError() error {
	return dErrors.Wrap(ErrPayloadTooLarge, dErrors.CodeInternal,
		"Response exceeds idempotency cache payload limit.").WithReason(ReasonPayloadTooLarge)
}

func protocolError(state string) error {
	return dErrors.Wrap(ErrProtocol, dErrors.CodeInternal,
		"unexpected idempotency store result "+state).WithReason(ReasonProtocol)
}

func inconsistentError(detail string, cause error) error {
	err := ErrInconsistent
	if cause != nil {
		err = errors.Join(ErrInconsistent, cause)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, detail).WithReason(ReasonMissing)
}
