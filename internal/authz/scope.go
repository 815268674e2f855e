package authz

import (
	"github.com/google/uuid"
)

// HasTenant is implemented by entity types that carry a tenant field. Types
// that do not implement it are tenant-agnostic and never filtered.
type HasTenant interface {
	GetTenantID() uuid.UUID
	SetTenantID(uuid.UUID)
}

// TenantScope restricts data access to the rows a principal may see. It is
// passed explicitly into every store call that touches tenant-scoped rows.
type TenantScope struct {
	// All grants unrestricted visibility (superusers).
	All bool
	// TenantID restricts to a single tenant when All is false. Nil with
	// All false means zero rows.
	TenantID *uuid.UUID
}

// ScopeFor computes the tenant scope for a principal. An anonymous principal
// sees nothing.
func ScopeFor(p *Principal) TenantScope {
	if p == nil {
		return TenantScope{}
	}
	if p.IsSuperuser {
		return TenantScope{All: true}
	}
	return TenantScope{TenantID: p.TenantID}
}

// Empty reports whether the scope matches zero rows.
func (s TenantScope) Empty() bool {
	return !s.All && s.TenantID == nil
}

// Allows reports whether a row belonging to tenantID is visible under the
// scope.
func (s TenantScope) Allows(tenantID uuid.UUID) bool {
	if s.All {
		return true
	}
	return s.TenantID != nil && *s.TenantID == tenantID
}

// AssignOnCreate forces the entity's tenant to the principal's tenant unless
// the principal is a superuser, in which case the client-supplied value (or
// its absence) is honored. Non-superusers without a tenant may not create
// tenant-scoped entities.
func AssignOnCreate(p *Principal, e HasTenant) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if p.IsSuperuser {
		return nil
	}
	if p.TenantID == nil {
		return ErrForbidden
	}
	e.SetTenantID(*p.TenantID)
	return nil
}

// AuthorizeObject verifies the principal may operate on the entity. A tenant
// mismatch yields ErrNotFound, deliberately indistinguishable from true
// absence, so cross-tenant probes learn nothing.
func AuthorizeObject(p *Principal, e HasTenant) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if p.IsSuperuser {
		return nil
	}
	if p.TenantID == nil || *p.TenantID != e.GetTenantID() {
		return ErrNotFound
	}
	return nil
}
