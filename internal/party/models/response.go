package models

import "time"

// CreatePartyResponseKind tags cached create responses in the idempotency
// store. Bump the version when the JSON shape changes.
const CreatePartyResponseKind = "party.create_party_response.v1"

type CreatePartyResponse struct {
	PartyID         string          `json:"partyId"`
	Type            PartyType       `json:"type"`
	RiskLevel       RiskLevel       `json:"riskLevel"`
	ScreeningStatus ScreeningStatus `json:"screeningStatus"`
	KYCRequestID    string          `json:"kycRequestId,omitempty"`
	OFACRequestID   string          `json:"ofacRequestId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (CreatePartyResponse) IdempotencyKind() string { return CreatePartyResponseKind }
