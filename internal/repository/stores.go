// Package repository persists the domain model. Each aggregate has a store
// interface with a Postgres implementation for production and an in-memory
// implementation for development and tests.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

// Errors
var (
	ErrNotFound         = errors.New("repository: not found")
	ErrEmailTaken       = errors.New("repository: email already taken")
	ErrSubdomainTaken   = errors.New("repository: subdomain already taken")
	ErrDuplicateEvent   = errors.New("repository: webhook event already recorded")
	ErrAlreadyOnboarded = errors.New("repository: payment already onboarded")
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	CountActiveUsers(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type TenantRepository interface {
	Create(ctx context.Context, t *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	Update(ctx context.Context, t *models.Tenant) error
	List(ctx context.Context) ([]models.Tenant, error)
}

type PlanRepository interface {
	Create(ctx context.Context, p *models.SubscriptionPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error)
	List(ctx context.Context) ([]models.SubscriptionPlan, error)
	Update(ctx context.Context, p *models.SubscriptionPlan) error
}

type RoleRepository interface {
	// GetOrCreateAssignment inserts the (user, role, tenant) assignment if
	// absent. Safe to call repeatedly.
	GetOrCreateAssignment(ctx context.Context, ra *models.RoleAssignment) (created bool, err error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RoleAssignment, error)
	CountActiveEmployees(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, s *models.UserSubscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserSubscription, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.UserSubscription, error)
	Update(ctx context.Context, s *models.UserSubscription) error
	ListExpired(ctx context.Context, before time.Time) ([]models.UserSubscription, error)
}

// Onboarding carries the records provisioned for one completed payment. The
// store persists all of it atomically: tenant insert, owner link,
// subscription insert, payment link and the admin role assignment commit or
// roll back together.
type Onboarding struct {
	PaymentID    uuid.UUID
	Tenant       *models.Tenant
	Subscription *models.UserSubscription
	Role         *models.RoleAssignment
}

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByProviderPaymentID(ctx context.Context, provider, providerPaymentID string) (*models.Payment, error)
	Update(ctx context.Context, p *models.Payment) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error)
	// ApplyOnboarding persists the onboarding atomically. It returns
	// ErrAlreadyOnboarded when the payment is no longer completed with a
	// nil subscription, making the operation idempotent under races.
	ApplyOnboarding(ctx context.Context, ob *Onboarding) error
}

type WebhookEventRepository interface {
	// Record stores a first-seen event. ErrDuplicateEvent signals the
	// (provider, event_id) pair was already recorded; callers must treat
	// that as an acknowledged no-op.
	Record(ctx context.Context, e *models.WebhookEvent) error
	MarkProcessed(ctx context.Context, id uuid.UUID, processingError string) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	List(ctx context.Context, scope authz.TenantScope) ([]models.Appointment, error)
	Update(ctx context.Context, a *models.Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SaleRepository interface {
	Create(ctx context.Context, s *models.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, scope authz.TenantScope) ([]models.Sale, error)
}

type EmployeeRepository interface {
	Create(ctx context.Context, e *models.Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	List(ctx context.Context, scope authz.TenantScope) ([]models.Employee, error)
	Update(ctx context.Context, e *models.Employee) error
}

// SeatCounts adapts the user and role repositories to the authorization
// layer's seat counting contract.
type SeatCounts struct {
	Users UserRepository
	Roles RoleRepository
}

func (s SeatCounts) CountActiveUsers(ctx context.Context, tenantID uuid.UUID) (int, error) {
	return s.Users.CountActiveUsers(ctx, tenantID)
}

func (s SeatCounts) CountActiveEmployees(ctx context.Context, tenantID uuid.UUID) (int, error) {
	return s.Roles.CountActiveEmployees(ctx, tenantID)
}

// Catalog adapts the tenant and plan repositories to the feature gate's plan
// source contract.
type Catalog struct {
	Tenants TenantRepository
	Plans   PlanRepository
}

func (c Catalog) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return c.Tenants.GetByID(ctx, id)
}

func (c Catalog) GetPlan(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error) {
	return c.Plans.GetByID(ctx, id)
}

// Identity adapts the user and role repositories to the auth resolver.
type Identity struct {
	Users UserRepository
	Roles RoleRepository
}

func (i Identity) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return i.Users.GetByID(ctx, id)
}

func (i Identity) GetRoleAssignments(ctx context.Context, userID uuid.UUID) ([]models.RoleAssignment, error) {
	return i.Roles.ListByUser(ctx, userID)
}
