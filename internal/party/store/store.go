// Package store persists parties and their profiles, addresses and contacts.
package store

import (
	"context"
	"time"

	"party360/internal/party/models"
	id "party360/pkg/domain"
	"party360/pkg/platform/sentinel"
)

// Re-exported so callers match on store errors without importing sentinel.
var (
	ErrNotFound = sentinel.ErrNotFound
	ErrConflict = sentinel.ErrConflict
)

// Repository is the unit of work for party onboarding. Writes made inside
// RunInTx commit together or not at all; fn receives the context that
// carries the transaction so other writers (the outbox) can join it.
type Repository interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error

	FindBySSNTokenAndDOB(ctx context.Context, ssnToken string, dob time.Time) (*models.PersonProfile, error)
	InsertParty(ctx context.Context, party *models.Party) error
	InsertPerson(ctx context.Context, person *models.PersonProfile) error
	InsertAddresses(ctx context.Context, addresses []models.Address) error
	InsertContacts(ctx context.Context, contacts []models.Contact) error
	GetParty(ctx context.Context, partyID id.PartyID) (*models.PartySummary, error)
}
