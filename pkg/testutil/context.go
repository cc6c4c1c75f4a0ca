package testutil

import (
	"net/http"

	id "party360/pkg/domain"
	"party360/pkg/requestcontext"
)

// WithAuth sets the actor and tenant on the request context the way the auth
// middleware does for a valid bearer token.
func WithAuth(req *http.Request, actor id.ActorID, tenant string) *http.Request {
	ctx := requestcontext.WithActorID(req.Context(), actor)
	ctx = requestcontext.WithTenant(ctx, tenant)
	return req.WithContext(ctx)
}

// WithRequestID sets the correlation id normally assigned by the request id
// middleware.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
