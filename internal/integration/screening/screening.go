// Package screening runs KYC and sanctions (OFAC) checks for new parties,
// either queued through the outbox or inline.
package screening

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"party360/internal/outbox"
	id "party360/pkg/domain"
	dErrors "party360/pkg/domain-errors"
)

// Event types for queued screening requests.
const (
	EventKYCRequested  = "screening.v1.KYCRequested"
	EventOFACRequested = "screening.v1.OFACRequested"
)

// Subject identifies who is being screened.
type Subject struct {
	PartyID   id.PartyID
	FirstName string
	LastName  string
	DOB       time.Time
	ConsentID string
	Tenant    string
}

type KYCResult struct {
	Verified bool
	Provider string
}

type SanctionsResult struct {
	Listed bool
	Source string
}

// Result combines both checks of a synchronous run.
type Result struct {
	KYC       KYCResult
	Sanctions SanctionsResult
}

type KYCClient interface {
	Verify(ctx context.Context, subject Subject) (KYCResult, error)
}

type SanctionsClient interface {
	Check(ctx context.Context, subject Subject) (SanctionsResult, error)
}

type requestedEvent struct {
	RequestID     string `json:"requestId"`
	PartyID       string `json:"partyId"`
	ConsentID     string `json:"consentId"`
	CorrelationID string `json:"correlationId"`
	RequestedAt   string `json:"requestedAt"`
}

// Orchestrator dispatches screening work.
type Orchestrator struct {
	kyc       KYCClient
	sanctions SanctionsClient
	outbox    outbox.Writer
	logger    *slog.Logger
}

func NewOrchestrator(kyc KYCClient, sanctions SanctionsClient, writer outbox.Writer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{kyc: kyc, sanctions: sanctions, outbox: writer, logger: logger}
}

// EnqueueKYC writes a KYC request event in the caller's transaction and
// returns the request id.
func (o *Orchestrator) EnqueueKYC(ctx context.Context, subject Subject, correlationID string) (id.ScreeningRequestID, error) {
	return o.enqueue(ctx, EventKYCRequested, subject, correlationID)
}

func (o *Orchestrator) EnqueueOFAC(ctx context.Context, subject Subject, correlationID string) (id.ScreeningRequestID, error) {
	return o.enqueue(ctx, EventOFACRequested, subject, correlationID)
}

func (o *Orchestrator) enqueue(ctx context.Context, eventType string, subject Subject, correlationID string) (id.ScreeningRequestID, error) {
	reqID := id.NewScreeningRequestID()
	entry, err := outbox.NewEntry("party", subject.PartyID.String(), eventType, requestedEvent{
		RequestID:     reqID.String(),
		PartyID:       subject.PartyID.String(),
		ConsentID:     subject.ConsentID,
		CorrelationID: correlationID,
		RequestedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}, map[string]string{"tenant": subject.Tenant, "correlationId": correlationID})
	if err != nil {
		return id.ScreeningRequestID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build screening event")
	}
	if err := o.outbox.Enqueue(ctx, entry); err != nil {
		return id.ScreeningRequestID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to enqueue screening request")
	}
	return reqID, nil
}

// RunSync runs KYC and sanctions concurrently and fails if either fails.
func (o *Orchestrator) RunSync(ctx context.Context, subject Subject) (Result, error) {
	var res Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := o.kyc.Verify(gctx, subject)
		if err != nil {
			return fmt.Errorf("kyc: %w", err)
		}
		res.KYC = r
		return nil
	})
	g.Go(func() error {
		r, err := o.sanctions.Check(gctx, subject)
		if err != nil {
			return fmt.Errorf("sanctions: %w", err)
		}
		res.Sanctions = r
		return nil
	})
	if err := g.Wait(); err != nil {
		o.logger.WarnContext(ctx, "synchronous screening failed", "party_id", subject.PartyID.String(), "error", err)
		return Result{}, dErrors.Wrap(err, dErrors.CodeUpstream, "screening unavailable").WithReason("SCREENING_FAILED")
	}
	return res, nil
}
