package models

import (
	"time"

	id "party360/pkg/domain"
)

// PartyType distinguishes people from organisations.
type PartyType string

const (
	PartyTypePerson   PartyType = "PERSON"
	PartyTypeBusiness PartyType = "BUSINESS"
)

type PartyStatus string

const (
	PartyStatusActive   PartyStatus = "ACTIVE"
	PartyStatusInactive PartyStatus = "INACTIVE"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

type ScreeningStatus string

const (
	ScreeningQueued    ScreeningStatus = "QUEUED"
	ScreeningPending   ScreeningStatus = "PENDING"
	ScreeningCompleted ScreeningStatus = "COMPLETED"
)

// Party is the aggregate root. Tenant is fixed at creation.
type Party struct {
	ID        id.PartyID
	Type      PartyType
	Status    PartyStatus
	RiskLevel RiskLevel
	Tenant    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PersonProfile holds the identity attributes of a PERSON party. The raw SSN
// is never stored; only the vendor token and the last four digits.
type PersonProfile struct {
	PartyID   id.PartyID
	FirstName string
	LastName  string
	DOB       time.Time
	SSNToken  string
	SSNLast4  string
}

type Address struct {
	PartyID    id.PartyID
	Type       AddressType
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type Contact struct {
	PartyID id.PartyID
	Type    ContactType
	Value   string
	Primary bool
}

// PartySummary is the read model returned by GET /api/parties/{id}.
type PartySummary struct {
	PartyID   string    `json:"partyId"`
	Type      PartyType `json:"type"`
	Status    string    `json:"status"`
	RiskLevel RiskLevel `json:"riskLevel"`
	Tenant    string    `json:"tenant"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	SSNLast4  string    `json:"ssnLast4"`
	CreatedAt time.Time `json:"createdAt"`
}
