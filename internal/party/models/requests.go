package models

import (
	"strings"
	"time"

	dErrors "party360/pkg/domain-errors"
)

// DOBLayout is the accepted date-of-birth format.
const DOBLayout = "2006-01-02"

// Reasons attached to validation failures.
const (
	ReasonInvalidDOB     = "INVALID_DOB"
	ReasonInvalidSSN     = "INVALID_SSN"
	ReasonInvalidContact = "INVALID_CONTACT"
	ReasonInvalidAddress = "INVALID_ADDRESS"
)

type AddressType string

const (
	AddressMailing  AddressType = "MAILING"
	AddressPhysical AddressType = "PHYSICAL"
	AddressWork     AddressType = "WORK"
)

func (t AddressType) IsValid() bool {
	switch t {
	case AddressMailing, AddressPhysical, AddressWork:
		return true
	}
	return false
}

type ContactType string

const (
	ContactEmail  ContactType = "EMAIL"
	ContactPhone  ContactType = "PHONE"
	ContactMobile ContactType = "MOBILE"
)

func (t ContactType) IsValid() bool {
	switch t {
	case ContactEmail, ContactPhone, ContactMobile:
		return true
	}
	return false
}

type AddressInput struct {
	Type       string `json:"type"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country,omitempty"`
}

type ContactInput struct {
	Type    string `json:"type"`
	Value   string `json:"value"`
	Primary bool   `json:"primary,omitempty"`
}

// CreatePersonRequest is the body of POST /api/parties/person.
type CreatePersonRequest struct {
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	DOB         string         `json:"dob"`
	SSN         string         `json:"ssn"`
	ConsentID   string         `json:"consentId"`
	AsyncScreen *bool          `json:"asyncScreen,omitempty"`
	Tenant      string         `json:"tenant"`
	Addresses   []AddressInput `json:"addresses"`
	Contacts    []ContactInput `json:"contacts"`
}

// Async reports whether screening should be queued. Absent means async.
func (r *CreatePersonRequest) Async() bool {
	return r.AsyncScreen == nil || *r.AsyncScreen
}

func (r *CreatePersonRequest) Normalize() {
	if r == nil {
		return
	}
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.DOB = strings.TrimSpace(r.DOB)
	r.ConsentID = strings.TrimSpace(r.ConsentID)
	r.Tenant = strings.TrimSpace(r.Tenant)
	for i := range r.Contacts {
		r.Contacts[i].Type = strings.ToUpper(strings.TrimSpace(r.Contacts[i].Type))
		r.Contacts[i].Value = strings.TrimSpace(r.Contacts[i].Value)
	}
	for i := range r.Addresses {
		r.Addresses[i].Type = strings.ToUpper(strings.TrimSpace(r.Addresses[i].Type))
	}
}

// Validate follows the order Size -> Required -> Syntax.
func (r *CreatePersonRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	if len(r.FirstName) > 100 || len(r.LastName) > 100 {
		return dErrors.New(dErrors.CodeValidation, "names must be 100 characters or less")
	}
	if len(r.Addresses) > 10 || len(r.Contacts) > 10 {
		return dErrors.New(dErrors.CodeValidation, "at most 10 addresses and 10 contacts are accepted")
	}

	if r.FirstName == "" {
		return dErrors.New(dErrors.CodeValidation, "firstName is required")
	}
	if r.LastName == "" {
		return dErrors.New(dErrors.CodeValidation, "lastName is required")
	}
	if r.DOB == "" {
		return dErrors.New(dErrors.CodeValidation, "dob is required")
	}
	if r.SSN == "" {
		return dErrors.New(dErrors.CodeValidation, "ssn is required")
	}
	if r.ConsentID == "" {
		return dErrors.New(dErrors.CodeValidation, "consentId is required")
	}
	if r.Tenant == "" {
		return dErrors.New(dErrors.CodeValidation, "tenant is required")
	}

	if _, err := r.ParseDOB(); err != nil {
		return err
	}
	if _, err := SSNDigits(r.SSN); err != nil {
		return err
	}
	for _, c := range r.Contacts {
		if !ContactType(c.Type).IsValid() {
			return dErrors.New(dErrors.CodeValidation, "contact type must be EMAIL, PHONE or MOBILE").WithReason(ReasonInvalidContact)
		}
		if c.Value == "" {
			return dErrors.New(dErrors.CodeValidation, "contact value is required").WithReason(ReasonInvalidContact)
		}
	}
	for _, a := range r.Addresses {
		if !AddressType(a.Type).IsValid() {
			return dErrors.New(dErrors.CodeValidation, "address type must be MAILING, PHYSICAL or WORK").WithReason(ReasonInvalidAddress)
		}
	}
	return nil
}

// ParseDOB parses the date of birth, rejecting dates in the future.
func (r *CreatePersonRequest) ParseDOB() (time.Time, error) {
	dob, err := time.Parse(DOBLayout, r.DOB)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "dob must be ISO date (yyyy-MM-dd)").WithReason(ReasonInvalidDOB)
	}
	if dob.After(time.Now()) {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "dob must not be in the future").WithReason(ReasonInvalidDOB)
	}
	return dob, nil
}

// SSNDigits strips separators and requires exactly nine digits.
func SSNDigits(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 9 {
		return "", dErrors.New(dErrors.CodeValidation, "ssn must contain exactly 9 digits").WithReason(ReasonInvalidSSN)
	}
	return digits, nil
}

// SSNLast4 returns the last four digits of a valid SSN.
func SSNLast4(raw string) (string, error) {
	digits, err := SSNDigits(raw)
	if err != nil {
		return "", err
	}
	return digits[5:], nil
}

// MaskSSN renders an SSN safe for logs.
func MaskSSN(raw string) string {
	digits, err := SSNDigits(raw)
	if err != nil {
		return "****"
	}
	return "*****" + digits[5:]
}
