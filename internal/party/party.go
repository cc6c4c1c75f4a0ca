package party

import (
	"log/slog"

	"party360/internal/idempotency"
	"party360/internal/party/handler"
	"party360/internal/party/service"
	"party360/internal/party/store"
	"party360/internal/policy"
)

// Service exposes person onboarding and party lookup.
type Service = service.Service

// Handler wires HTTP endpoints to the party service.
type Handler = handler.Handler

// NewService constructs the party service with required dependencies.
func NewService(
	coordinator *idempotency.Coordinator,
	repo store.Repository,
	tokenizer service.Tokenizer,
	addresses service.AddressStandardizer,
	screener service.Screening,
	events service.OutboxWriter,
	opts ...service.Option,
) *Service {
	return service.New(coordinator, repo, tokenizer, addresses, screener, events, opts...)
}

// NewHandler constructs the HTTP handler for the party routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, policy.NewEnforcer(), logger)
}
