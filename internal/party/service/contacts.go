package service

import (
	"strings"

	"party360/internal/party/models"
	id "party360/pkg/domain"
)

// normalizeContacts lower-cases emails, reduces phone numbers to digits with
// an optional leading plus, and marks the first contact primary when none is.
func normalizeContacts(partyID id.PartyID, inputs []models.ContactInput) []models.Contact {
	out := make([]models.Contact, 0, len(inputs))
	hasPrimary := false
	for _, in := range inputs {
		c := models.Contact{
			PartyID: partyID,
			Type:    models.ContactType(strings.ToUpper(strings.TrimSpace(in.Type))),
			Value:   strings.TrimSpace(in.Value),
			Primary: in.Primary && !hasPrimary,
		}
		switch c.Type {
		case models.ContactEmail:
			c.Value = strings.ToLower(c.Value)
		case models.ContactPhone, models.ContactMobile:
			c.Value = phoneDigits(c.Value)
		}
		hasPrimary = hasPrimary || c.Primary
		out = append(out, c)
	}
	if !hasPrimary && len(out) > 0 {
		out[0].Primary = true
	}
	return out
}

func phoneDigits(v string) string {
	var b strings.Builder
	for i, r := range v {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
