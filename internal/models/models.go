package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	TenantID     *uuid.UUID `json:"tenant_id,omitempty"`
	IsSuperuser  bool       `json:"is_superuser"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type TenantStatus string

const (
	TenantStatusTrial     TenantStatus = "trial"
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusCancelled TenantStatus = "cancelled"
)

type Tenant struct {
	ID                 uuid.UUID    `json:"id"`
	Name               string       `json:"name"`
	Subdomain          string       `json:"subdomain"`
	OwnerID            uuid.UUID    `json:"owner_id"`
	PlanType           string       `json:"plan_type"`
	SubscriptionPlanID *uuid.UUID   `json:"subscription_plan_id,omitempty"`
	SubscriptionStatus TenantStatus `json:"subscription_status"`
	MaxEmployees       int          `json:"max_employees"`
	MaxUsers           int          `json:"max_users"`
	IsActive           bool         `json:"is_active"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// PlanTypeFree is the plan type a tenant carries while no subscription plan
// is attached.
const PlanTypeFree = "free"

// SubscriptionPlan is the billing catalogue entry a tenant subscribes to.
// Features maps feature slugs to enablement; absent slugs mean disabled.
type SubscriptionPlan struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	PlanType     string          `json:"plan_type"`
	Price        float64         `json:"price"`
	Currency     string          `json:"currency"`
	Features     map[string]bool `json:"features"`
	MaxEmployees int             `json:"max_employees"`
	MaxUsers     int             `json:"max_users"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusSuspended SubscriptionStatus = "suspended"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// UserSubscription links a user to the plan they paid for.
type UserSubscription struct {
	ID               uuid.UUID          `json:"id"`
	UserID           uuid.UUID          `json:"user_id"`
	PlanID           uuid.UUID          `json:"plan_id"`
	Status           SubscriptionStatus `json:"status"`
	AutoRenew        bool               `json:"auto_renew"`
	CurrentPeriodEnd time.Time          `json:"current_period_end"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// RoleAssignment binds a user to a role, optionally scoped to a tenant.
// TenantID is nil for global roles. The (user, role, tenant) triple is unique.
type RoleAssignment struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	RoleCode  string     `json:"role_code"`
	TenantID  *uuid.UUID `json:"tenant_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ScopedTo reports whether the assignment applies within the given tenant.
// Global assignments apply everywhere; tenant assignments only where the
// tenant matches.
func (ra *RoleAssignment) ScopedTo(tenantID uuid.UUID) bool {
	if ra.TenantID == nil {
		return true
	}
	return *ra.TenantID == tenantID
}
