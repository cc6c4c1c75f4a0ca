package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"party360/internal/idempotency"
	"party360/internal/integration/screening"
	"party360/internal/outbox"
	"party360/internal/party/fingerprint"
	"party360/internal/party/metrics"
	"party360/internal/party/models"
	"party360/internal/party/store"
	id "party360/pkg/domain"
	dErrors "party360/pkg/domain-errors"
	"party360/pkg/requestcontext"
)

// OpCreatePerson namespaces idempotency records for person creation.
const OpCreatePerson = "party:create:person"

// EventPartyCreated is published once per new party.
const EventPartyCreated = "party.v1.PartyCreated"

// Reasons surfaced to clients.
const (
	ReasonPartyExists        = "PARTY_ALREADY_EXISTS"
	ReasonCreatePersonFailed = "CREATE_PERSON_FAILED"
)

type Tokenizer interface {
	TokenizeSSN(ctx context.Context, ssn, tenant string) (string, error)
}

type AddressStandardizer interface {
	NormalizeAll(partyID id.PartyID, inputs []models.AddressInput) ([]models.Address, error)
}

type Screening interface {
	EnqueueKYC(ctx context.Context, subject screening.Subject, correlationID string) (id.ScreeningRequestID, error)
	EnqueueOFAC(ctx context.Context, subject screening.Subject, correlationID string) (id.ScreeningRequestID, error)
	RunSync(ctx context.Context, subject screening.Subject) (screening.Result, error)
}

type OutboxWriter interface {
	Enqueue(ctx context.Context, entry outbox.Entry) error
}

// Service orchestrates party onboarding.
type Service struct {
	coordinator *idempotency.Coordinator
	repo        store.Repository
	tokenizer   Tokenizer
	addresses   AddressStandardizer
	screening   Screening
	outbox      OutboxWriter
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(
	coordinator *idempotency.Coordinator,
	repo store.Repository,
	tokenizer Tokenizer,
	addresses AddressStandardizer,
	screener Screening,
	events OutboxWriter,
	opts ...Option,
) *Service {
	s := &Service{
		coordinator: coordinator,
		repo:        repo,
		tokenizer:   tokenizer,
		addresses:   addresses,
		screening:   screener,
		outbox:      events,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePerson onboards a person at most once per idempotency key. A retry
// with the same key and body returns the original response; a retry with a
// different body is rejected as a conflict.
func (s *Service) CreatePerson(
	ctx context.Context,
	key uuid.UUID,
	req *models.CreatePersonRequest,
	tenant string,
	actorID id.ActorID,
	correlationID string,
) (*models.CreatePartyResponse, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	start := time.Now()
	mode := "async"
	if !req.Async() {
		mode = "sync"
	}

	resp, err := idempotency.Execute(ctx, s.coordinator, idempotency.Request{
		Opcode:      OpCreatePerson,
		Key:         key,
		Fingerprint: fingerprint.CreatePerson(req, tenant),
		OnCacheHit:  s.metrics.IncrementIdempotencyHit,
	}, func(ctx context.Context) (models.CreatePartyResponse, error) {
		return s.createNewPerson(ctx, *req, tenant, actorID, correlationID)
	})
	if err != nil {
		err = s.translate(ctx, err, tenant, actorID, correlationID)
		code := dErrors.ReasonOf(err)
		if code == "" {
			code = string(dErrors.CodeOf(err))
		}
		s.metrics.IncrementError(code)
		s.metrics.ObserveCreate(start, tenant, mode, code)
		return nil, err
	}
	s.metrics.ObserveCreate(start, tenant, mode, "ok")
	return &resp, nil
}

// translate keeps domain errors as they are and hides everything else behind
// a generic internal error.
func (s *Service) translate(ctx context.Context, err error, tenant string, actorID id.ActorID, correlationID string) error {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	s.logger.ErrorContext(ctx, "create person unexpected failure",
		"correlation_id", correlationID,
		"tenant", tenant,
		"actor_id", actorID.String(),
		"error", err,
	)
	return dErrors.Wrap(err, dErrors.CodeInternal, "unable to create party at this time").WithReason(ReasonCreatePersonFailed)
}

func (s *Service) createNewPerson(
	ctx context.Context,
	req models.CreatePersonRequest,
	tenant string,
	actorID id.ActorID,
	correlationID string,
) (models.CreatePartyResponse, error) {
	req.Addresses = append([]models.AddressInput(nil), req.Addresses...)
	req.Contacts = append([]models.ContactInput(nil), req.Contacts...)
	req.Normalize()
	if err := req.Validate(); err != nil {
		return models.CreatePartyResponse{}, err
	}
	dob, err := req.ParseDOB()
	if err != nil {
		return models.CreatePartyResponse{}, err
	}
	last4, err := models.SSNLast4(req.SSN)
	if err != nil {
		return models.CreatePartyResponse{}, err
	}

	ssnToken, err := s.tokenizeSSN(ctx, req.SSN, tenant)
	if err != nil {
		return models.CreatePartyResponse{}, err
	}

	if _, err := s.repo.FindBySSNTokenAndDOB(ctx, ssnToken, dob); err == nil {
		return models.CreatePartyResponse{}, partyExists()
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.CreatePartyResponse{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing party")
	}

	partyID := id.NewPartyID()
	addresses, err := s.addresses.NormalizeAll(partyID, req.Addresses)
	if err != nil {
		return models.CreatePartyResponse{}, err
	}
	contacts := normalizeContacts(partyID, req.Contacts)

	now := requestcontext.Now(ctx).UTC()
	subject := screening.Subject{
		PartyID:   partyID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		DOB:       dob,
		ConsentID: req.ConsentID,
		Tenant:    tenant,
	}

	resp := models.CreatePartyResponse{
		PartyID:         partyID.String(),
		Type:            models.PartyTypePerson,
		RiskLevel:       models.RiskLow,
		ScreeningStatus: models.ScreeningQueued,
		CreatedAt:       now,
	}

	// Synchronous screening runs before the transaction so no database
	// connection is held across remote calls.
	if !req.Async() {
		result, err := s.screening.RunSync(ctx, subject)
		if err != nil {
			return models.CreatePartyResponse{}, err
		}
		resp.ScreeningStatus = models.ScreeningCompleted
		if result.Sanctions.Listed {
			resp.RiskLevel = models.RiskHigh
		}
	}

	party := &models.Party{
		ID:        partyID,
		Type:      models.PartyTypePerson,
		Status:    models.PartyStatusActive,
		RiskLevel: resp.RiskLevel,
		Tenant:    tenant,
		CreatedAt: now,
		UpdatedAt: now,
	}
	person := &models.PersonProfile{
		PartyID:   partyID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		DOB:       dob,
		SSNToken:  ssnToken,
		SSNLast4:  last4,
	}

	err = s.repo.RunInTx(ctx, func(ctx context.Context, repo store.Repository) error {
		if err := repo.InsertParty(ctx, party); err != nil {
			return err
		}
		if err := repo.InsertPerson(ctx, person); err != nil {
			return err
		}
		if err := repo.InsertAddresses(ctx, addresses); err != nil {
			return err
		}
		if err := repo.InsertContacts(ctx, contacts); err != nil {
			return err
		}
		if err := s.enqueuePartyCreated(ctx, party, tenant, actorID, correlationID); err != nil {
			return err
		}
		if req.Async() {
			kycID, err := s.screening.EnqueueKYC(ctx, subject, correlationID)
			if err != nil {
				return err
			}
			ofacID, err := s.screening.EnqueueOFAC(ctx, subject, correlationID)
			if err != nil {
				return err
			}
			resp.KYCRequestID = kycID.String()
			resp.OFACRequestID = ofacID.String()
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return models.CreatePartyResponse{}, partyExists()
		}
		return models.CreatePartyResponse{}, err
	}

	s.metrics.IncrementPartiesCreated()
	s.logger.InfoContext(ctx, "party created",
		"party_id", resp.PartyID,
		"tenant", tenant,
		"screening", resp.ScreeningStatus,
		"correlation_id", correlationID,
	)
	return resp, nil
}

func (s *Service) tokenizeSSN(ctx context.Context, ssn, tenant string) (string, error) {
	token, err := s.tokenizer.TokenizeSSN(ctx, ssn, tenant)
	if err == nil {
		return token, nil
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return "", err
	}
	s.logger.WarnContext(ctx, "tokenization failed", "masked_ssn", models.MaskSSN(ssn), "tenant", tenant)
	return "", dErrors.Wrap(err, dErrors.CodeUpstream, "unable to tokenize SSN").WithReason("TOKENIZATION_FAILED")
}

type partyCreatedEvent struct {
	PartyID       string    `json:"partyId"`
	Type          string    `json:"type"`
	RiskLevel     string    `json:"riskLevel"`
	CreatedAt     time.Time `json:"createdAt"`
	CorrelationID string    `json:"correlationId"`
}

func (s *Service) enqueuePartyCreated(ctx context.Context, party *models.Party, tenant string, actorID id.ActorID, correlationID string) error {
	entry, err := outbox.NewEntry("party", party.ID.String(), EventPartyCreated, partyCreatedEvent{
		PartyID:       party.ID.String(),
		Type:          string(party.Type),
		RiskLevel:     string(party.RiskLevel),
		CreatedAt:     party.CreatedAt,
		CorrelationID: correlationID,
	}, map[string]string{
		"tenant":        tenant,
		"correlationId": correlationID,
		"actorId":       actorID.String(),
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build party event")
	}
	return s.outbox.Enqueue(ctx, entry)
}

// GetParty returns the party if it belongs to tenant. Parties of other
// tenants are reported as not found.
func (s *Service) GetParty(ctx context.Context, partyID id.PartyID, tenant string) (*models.PartySummary, error) {
	summary, err := s.repo.GetParty(ctx, partyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "party not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load party")
	}
	if summary.Tenant != tenant {
		return nil, dErrors.New(dErrors.CodeNotFound, "party not found")
	}
	return summary, nil
}

func partyExists() error {
	return dErrors.New(dErrors.CodeConflict, "a party with the same SSN and DOB already exists").WithReason(ReasonPartyExists)
}
