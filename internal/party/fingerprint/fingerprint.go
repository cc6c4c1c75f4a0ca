// Package fingerprint derives the request digest used to detect reuse of an
// idempotency key with a different body.
package fingerprint

import (
	"cmp"
	"crypto/sha256"
	"encoding/json"
	"slices"
	"strings"

	"party360/internal/party/models"
)

type personMaterial struct {
	Tenant    string                `json:"tenant"`
	FirstName string                `json:"firstName"`
	LastName  string                `json:"lastName"`
	DOB       string                `json:"dob"`
	SSN       string                `json:"ssn"`
	ConsentID string                `json:"consentId"`
	Async     bool                  `json:"async"`
	Addresses []models.AddressInput `json:"addresses"`
	Contacts  []models.ContactInput `json:"contacts"`
}

// CreatePerson hashes the normalized request as the caller's tenant would
// process it. Formatting differences (whitespace, case of type codes, SSN
// separators, list order) do not change the digest; any field that changes
// the onboarded party does. req is not modified.
func CreatePerson(req *models.CreatePersonRequest, tenant string) []byte {
	norm := *req
	norm.Addresses = slices.Clone(req.Addresses)
	norm.Contacts = slices.Clone(req.Contacts)
	norm.Normalize()

	ssn, err := models.SSNDigits(norm.SSN)
	if err != nil {
		ssn = strings.TrimSpace(norm.SSN)
	}
	for i := range norm.Addresses {
		a := &norm.Addresses[i]
		a.Line1 = strings.TrimSpace(a.Line1)
		a.Line2 = strings.TrimSpace(a.Line2)
		a.City = strings.TrimSpace(a.City)
		a.State = strings.ToUpper(strings.TrimSpace(a.State))
		a.PostalCode = strings.TrimSpace(a.PostalCode)
		a.Country = strings.ToUpper(strings.TrimSpace(a.Country))
	}
	slices.SortFunc(norm.Addresses, compareAddress)
	slices.SortFunc(norm.Contacts, compareContact)

	material, err := json.Marshal(personMaterial{
		Tenant:    strings.TrimSpace(tenant),
		FirstName: norm.FirstName,
		LastName:  norm.LastName,
		DOB:       norm.DOB,
		SSN:       ssn,
		ConsentID: norm.ConsentID,
		Async:     norm.Async(),
		Addresses: norm.Addresses,
		Contacts:  norm.Contacts,
	})
	if err != nil {
		// Only strings, bools and slices of them; Marshal cannot fail.
		panic(err)
	}
	sum := sha256.Sum256(material)
	return sum[:]
}

func compareAddress(a, b models.AddressInput) int {
	return cmp.Or(
		cmp.Compare(a.Type, b.Type),
		cmp.Compare(a.Line1, b.Line1),
		cmp.Compare(a.Line2, b.Line2),
		cmp.Compare(a.City, b.City),
		cmp.Compare(a.State, b.State),
		cmp.Compare(a.PostalCode, b.PostalCode),
		cmp.Compare(a.Country, b.Country),
	)
}

func compareContact(a, b models.ContactInput) int {
	return cmp.Or(
		cmp.Compare(a.Type, b.Type),
		cmp.Compare(a.Value, b.Value),
		compareBool(a.Primary, b.Primary),
	)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
