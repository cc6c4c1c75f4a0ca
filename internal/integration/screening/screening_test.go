package screening

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"party360/internal/outbox"
	id "party360/pkg/domain"
	dErrors "party360/pkg/domain-errors"
)

func subject() Subject {
	return Subject{PartyID: id.NewPartyID(), FirstName: "Ada", LastName: "Lovelace", ConsentID: "c-1", Tenant: "tenant-a"}
}

func TestEnqueueWritesOutboxEvents(t *testing.T) {
	box := outbox.NewMemoryStore()
	o := NewOrchestrator(MockKYCClient{}, MockSanctionsClient{}, box, nil)
	s := subject()

	kycID, err := o.EnqueueKYC(context.Background(), s, "corr-1")
	require.NoError(t, err)
	ofacID, err := o.EnqueueOFAC(context.Background(), s, "corr-1")
	require.NoError(t, err)
	assert.NotEqual(t, kycID, ofacID)

	entries := box.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, EventKYCRequested, entries[0].Type)
	assert.Equal(t, EventOFACRequested, entries[1].Type)
	assert.Equal(t, s.PartyID.String(), entries[0].AggregateID)
	assert.Equal(t, "tenant-a", entries[0].Headers["tenant"])

	var body requestedEvent
	require.NoError(t, json.Unmarshal(entries[0].Payload, &body))
	assert.Equal(t, kycID.String(), body.RequestID)
	assert.Equal(t, "corr-1", body.CorrelationID)
}

func TestRunSync(t *testing.T) {
	o := NewOrchestrator(MockKYCClient{}, MockSanctionsClient{Listed: []string{"lovelace"}}, outbox.NewMemoryStore(), nil)
	res, err := o.RunSync(context.Background(), subject())
	require.NoError(t, err)
	assert.True(t, res.KYC.Verified)
	assert.True(t, res.Sanctions.Listed)
}

func TestRunSyncFailsWhenEitherCheckFails(t *testing.T) {
	o := NewOrchestrator(MockKYCClient{Err: errors.New("provider down")}, MockSanctionsClient{}, outbox.NewMemoryStore(), nil)
	_, err := o.RunSync(context.Background(), subject())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstream))
}
