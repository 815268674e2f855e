package authz

import (
	"errors"

	"github.com/google/uuid"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

// Errors
var (
	ErrUnauthenticated = errors.New("authz: unauthenticated")
	ErrForbidden       = errors.New("authz: forbidden")
	ErrNotFound        = errors.New("authz: not found")
)

// Principal is the authenticated identity plus its tenant and role context
// for one request. It is built per-request and never persisted.
type Principal struct {
	UserID      uuid.UUID
	TenantID    *uuid.UUID
	IsSuperuser bool
	Roles       []models.RoleAssignment
}

// HasPermission reports whether any of the principal's role assignments
// grants the permission within the principal's tenant. Assignments scoped to
// a different tenant are never honored.
func (p *Principal) HasPermission(perm string) bool {
	if p == nil {
		return false
	}
	if p.IsSuperuser {
		return true
	}
	for _, ra := range p.Roles {
		if p.TenantID != nil && !ra.ScopedTo(*p.TenantID) {
			continue
		}
		if ra.TenantID != nil && p.TenantID == nil {
			continue
		}
		for _, granted := range PermissionsFor(ra.RoleCode) {
			if granted == perm {
				return true
			}
		}
	}
	return false
}

// HasRole reports whether the principal carries the role code, honoring
// tenant scoping.
func (p *Principal) HasRole(code string) bool {
	if p == nil {
		return false
	}
	for _, ra := range p.Roles {
		if ra.RoleCode != code {
			continue
		}
		if ra.TenantID == nil {
			return true
		}
		if p.TenantID != nil && *ra.TenantID == *p.TenantID {
			return true
		}
	}
	return false
}
