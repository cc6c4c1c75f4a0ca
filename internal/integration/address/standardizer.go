// Package address normalizes postal addresses before they are persisted.
package address

import (
	"regexp"
	"strings"

	"party360/internal/party/models"
	id "party360/pkg/domain"
	dErrors "party360/pkg/domain-errors"
)

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// Standardizer applies US postal conventions. Country defaults to US.
type Standardizer struct {
	defaultCountry string
}

func NewStandardizer() *Standardizer {
	return &Standardizer{defaultCountry: "US"}
}

// NormalizeAll standardizes every input for partyID, failing on the first
// invalid address.
func (s *Standardizer) NormalizeAll(partyID id.PartyID, inputs []models.AddressInput) ([]models.Address, error) {
	out := make([]models.Address, 0, len(inputs))
	for _, in := range inputs {
		addr, err := s.Normalize(partyID, in)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

func (s *Standardizer) Normalize(partyID id.PartyID, in models.AddressInput) (models.Address, error) {
	addr := models.Address{
		PartyID:    partyID,
		Type:       models.AddressType(strings.ToUpper(strings.TrimSpace(in.Type))),
		Line1:      collapse(in.Line1),
		Line2:      collapse(in.Line2),
		City:       collapse(in.City),
		State:      strings.ToUpper(strings.TrimSpace(in.State)),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(in.Country)),
	}
	if addr.Country == "" {
		addr.Country = s.defaultCountry
	}
	if addr.Line1 == "" || addr.City == "" || addr.State == "" {
		return models.Address{}, invalid("line1, city and state are required")
	}
	if !addr.Type.IsValid() {
		return models.Address{}, invalid("address type must be MAILING, PHYSICAL or WORK")
	}
	if addr.Country == "US" {
		if len(addr.State) != 2 {
			return models.Address{}, invalid("state must be a two-letter code")
		}
		if !zipPattern.MatchString(addr.PostalCode) {
			return models.Address{}, invalid("postalCode must be a ZIP or ZIP+4")
		}
	}
	return addr, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func invalid(msg string) error {
	return dErrors.New(dErrors.CodeValidation, msg).WithReason(models.ReasonInvalidAddress)
}
