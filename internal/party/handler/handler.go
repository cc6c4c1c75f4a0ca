package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"party360/internal/party/models"
	"party360/internal/policy"
	id "party360/pkg/domain"
	dErrors "party360/pkg/domain-errors"
	"party360/pkg/platform/httputil"
	"party360/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

const (
	HeaderIdempotencyKey = "Idempotency-Key"

	maxBodyBytes = 64 << 10
)

// Service is the party use-case surface the handler depends on.
type Service interface {
	CreatePerson(ctx context.Context, key uuid.UUID, req *models.CreatePersonRequest, tenant string, actorID id.ActorID, correlationID string) (*models.CreatePartyResponse, error)
	GetParty(ctx context.Context, partyID id.PartyID, tenant string) (*models.PartySummary, error)
}

type Authorizer interface {
	Allow(ctx context.Context, action policy.Action, res policy.Resource) error
}

type Handler struct {
	service Service
	policy  Authorizer
	logger  *slog.Logger
}

func New(service Service, authorizer Authorizer, logger *slog.Logger) *Handler {
	return &Handler{service: service, policy: authorizer, logger: logger}
}

// Register mounts the party routes. Callers are expected to wrap r with the
// auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/parties/person", h.HandleCreatePerson)
	r.Get("/api/parties/{id}", h.HandleGetParty)
}

// HandleCreatePerson creates a person party. Retries carrying the same
// Idempotency-Key and body receive the original response.
func (h *Handler) HandleCreatePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	key, err := id.ParseIdempotencyKey(r.Header.Get(HeaderIdempotencyKey))
	if err != nil {
		h.logger.WarnContext(ctx, "rejected idempotency key",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "Idempotency-Key header must be a version 4 UUID"))
		return
	}

	var req models.CreatePersonRequest
	if err := httputil.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create person request",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	tenant := strings.TrimSpace(req.Tenant)
	if err := h.policy.Allow(ctx, policy.ActionCreate, policy.TenantResource(tenant)); err != nil {
		h.logger.WarnContext(ctx, "create person denied",
			"request_id", requestID,
			"tenant", tenant,
			"token_tenant", requestcontext.Tenant(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.CreatePerson(ctx, uuid.UUID(key), &req, tenant, requestcontext.ActorID(ctx), requestID)
	if err != nil {
		h.logger.WarnContext(ctx, "create person failed",
			"error", err,
			"request_id", requestID,
			"tenant", tenant,
			"opcode", "party:create:person",
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) HandleGetParty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	partyID, err := id.ParsePartyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	tenant := requestcontext.Tenant(ctx)
	if err := h.policy.Allow(ctx, policy.ActionRead, policy.TenantResource(tenant)); err != nil {
		httputil.WriteError(w, err)
		return
	}

	summary, err := h.service.GetParty(ctx, partyID, tenant)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}
