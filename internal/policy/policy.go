// Package policy decides whether the authenticated actor may act on a
// resource. Only tenant isolation is enforced today.
package policy

import (
	"context"

	dErrors "party360/pkg/domain-errors"
	"party360/pkg/requestcontext"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionRead   Action = "READ"
)

// Resource names what is being acted on.
type Resource struct {
	Kind string
	ID   string
}

// TenantResource scopes an action to a tenant. A blank tenant maps to
// "default".
func TenantResource(tenant string) Resource {
	if tenant == "" {
		tenant = "default"
	}
	return Resource{Kind: "tenant", ID: tenant}
}

type Enforcer struct{}

func NewEnforcer() *Enforcer {
	return &Enforcer{}
}

// Allow returns a forbidden error when the token's tenant differs from the
// resource tenant.
func (e *Enforcer) Allow(ctx context.Context, action Action, res Resource) error {
	if requestcontext.ActorID(ctx).IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if res.Kind == "tenant" && res.ID != requestcontext.Tenant(ctx) {
		return dErrors.New(dErrors.CodeForbidden, "not allowed to "+string(action)+" in tenant "+res.ID).WithReason("TENANT_MISMATCH")
	}
	return nil
}
