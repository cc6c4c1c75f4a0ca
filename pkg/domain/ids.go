package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "party360/pkg/domain-errors"
)

// Typed identifiers keep party, actor and request IDs from being swapped at
// call sites. Construct them with the Parse functions at trust boundaries.
type (
	PartyID            uuid.UUID
	ActorID            uuid.UUID
	IdempotencyKey     uuid.UUID
	ScreeningRequestID uuid.UUID
)

func (id PartyID) String() string            { return uuid.UUID(id).String() }
func (id ActorID) String() string            { return uuid.UUID(id).String() }
func (id IdempotencyKey) String() string     { return uuid.UUID(id).String() }
func (id ScreeningRequestID) String() string { return uuid.UUID(id).String() }

func (id PartyID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ActorID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id IdempotencyKey) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewPartyID returns a random party identifier.
func NewPartyID() PartyID { return PartyID(uuid.New()) }

// NewScreeningRequestID returns a random screening request identifier.
func NewScreeningRequestID() ScreeningRequestID { return ScreeningRequestID(uuid.New()) }

// ParsePartyID parses a party identifier.
func ParsePartyID(s string) (PartyID, error) {
	u, err := parseUUID(s, "party id")
	return PartyID(u), err
}

// ParseActorID parses the authenticated subject of a request.
func ParseActorID(s string) (ActorID, error) {
	u, err := parseUUID(s, "actor id")
	return ActorID(u), err
}

// ParseIdempotencyKey parses a caller-supplied Idempotency-Key. Keys must be
// random (version 4) UUIDs; uniqueness is the caller's responsibility.
func ParseIdempotencyKey(s string) (IdempotencyKey, error) {
	u, err := parseUUID(s, "idempotency key")
	if err != nil {
		return IdempotencyKey{}, err
	}
	if u.Version() != 4 || u.Variant() != uuid.RFC4122 {
		return IdempotencyKey{}, dErrors.New(dErrors.CodeInvalidInput, "idempotency key must be a version 4 UUID")
	}
	return IdempotencyKey(u), nil
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	if !utf8.ValidString(s) || len(s) > 45 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" must not be the nil UUID")
	}
	return u, nil
}
