package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"party360/internal/party/models"
	id "party360/pkg/domain"
)

func seedParty(t *testing.T, repo Repository, token string, dob time.Time) id.PartyID {
	t.Helper()
	pid := id.NewPartyID()
	now := time.Now()
	err := repo.RunInTx(context.Background(), func(ctx context.Context, tx Repository) error {
		if err := tx.InsertParty(ctx, &models.Party{ID: pid, Type: models.PartyTypePerson, Status: models.PartyStatusActive, RiskLevel: models.RiskLow, Tenant: "tenant-a", CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		return tx.InsertPerson(ctx, &models.PersonProfile{PartyID: pid, FirstName: "Ada", LastName: "Lovelace", DOB: dob, SSNToken: token, SSNLast4: "6789"})
	})
	require.NoError(t, err)
	return pid
}

func TestInMemoryRoundTrip(t *testing.T) {
	repo := NewInMemory()
	dob := time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC)
	pid := seedParty(t, repo, "tok-1", dob)

	found, err := repo.FindBySSNTokenAndDOB(context.Background(), "tok-1", dob)
	require.NoError(t, err)
	assert.Equal(t, pid, found.PartyID)

	summary, err := repo.GetParty(context.Background(), pid)
	require.NoError(t, err)
	assert.Equal(t, "Ada", summary.FirstName)
	assert.Equal(t, "6789", summary.SSNLast4)
	assert.Equal(t, models.RiskLow, summary.RiskLevel)
}

func TestInMemoryRollsBackFailedTransaction(t *testing.T) {
	repo := NewInMemory()
	boom := errors.New("boom")
	pid := id.NewPartyID()

	err := repo.RunInTx(context.Background(), func(ctx context.Context, tx Repository) error {
		require.NoError(t, tx.InsertParty(ctx, &models.Party{ID: pid, Tenant: "tenant-a"}))
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, repo.Count())

	_, err = repo.GetParty(context.Background(), pid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryRejectsDuplicateIdentity(t *testing.T) {
	repo := NewInMemory()
	dob := time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC)
	seedParty(t, repo, "tok-1", dob)

	pid := id.NewPartyID()
	err := repo.RunInTx(context.Background(), func(ctx context.Context, tx Repository) error {
		require.NoError(t, tx.InsertParty(ctx, &models.Party{ID: pid}))
		return tx.InsertPerson(ctx, &models.PersonProfile{PartyID: pid, DOB: dob, SSNToken: "tok-1"})
	})
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, repo.Count())
}

func TestInMemoryChildRowsNeedParty(t *testing.T) {
	repo := NewInMemory()
	err := repo.InsertContacts(context.Background(), []models.Contact{{PartyID: id.NewPartyID(), Type: models.ContactEmail, Value: "x@example.com"}})
	require.ErrorIs(t, err, ErrNotFound)
}
