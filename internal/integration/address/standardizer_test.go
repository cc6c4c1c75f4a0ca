package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"party360/internal/party/models"
	id "party360/pkg/domain"
	dErrors "party360/pkg/domain-errors"
)

func TestNormalize(t *testing.T) {
	s := NewStandardizer()
	pid := id.NewPartyID()

	addr, err := s.Normalize(pid, models.AddressInput{
		Type: "mailing", Line1: "  1   Main  St ", City: "Springfield", State: "il", PostalCode: "62701-1234",
	})
	require.NoError(t, err)
	assert.Equal(t, pid, addr.PartyID)
	assert.Equal(t, models.AddressMailing, addr.Type)
	assert.Equal(t, "1 Main St", addr.Line1)
	assert.Equal(t, "IL", addr.State)
	assert.Equal(t, "US", addr.Country)
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name string
		in   models.AddressInput
	}{
		{"bad zip", models.AddressInput{Type: "MAILING", Line1: "1 Main", City: "X", State: "IL", PostalCode: "6270"}},
		{"long state", models.AddressInput{Type: "MAILING", Line1: "1 Main", City: "X", State: "Illinois", PostalCode: "62701"}},
		{"missing city", models.AddressInput{Type: "MAILING", Line1: "1 Main", State: "IL", PostalCode: "62701"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStandardizer().Normalize(id.NewPartyID(), tt.in)
			require.Error(t, err)
			assert.Equal(t, models.ReasonInvalidAddress, dErrors.ReasonOf(err))
		})
	}
}

func TestNormalizeAcceptsForeignPostalCodes(t *testing.T) {
	addr, err := NewStandardizer().Normalize(id.NewPartyID(), models.AddressInput{
		Type: "WORK", Line1: "10 Downing St", City: "London", State: "LN", PostalCode: "SW1A 2AA", Country: "gb",
	})
	require.NoError(t, err)
	assert.Equal(t, "GB", addr.Country)
}
