package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
)

// FeatureInvalidator drops cached plan feature sets after a plan change.
type FeatureInvalidator interface {
	InvalidateFeatures(ctx context.Context, tenantID uuid.UUID) error
}

// TenantService implements the platform-admin tenant operations.
type TenantService struct {
	tenants repository.TenantRepository
	plans   repository.PlanRepository
	cache   FeatureInvalidator // optional
	logger  *slog.Logger
}

func NewTenantService(tenants repository.TenantRepository, plans repository.PlanRepository, cache FeatureInvalidator, logger *slog.Logger) *TenantService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TenantService{tenants: tenants, plans: plans, cache: cache, logger: logger}
}

func (s *TenantService) Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenants.GetByID(ctx, id)
}

func (s *TenantService) List(ctx context.Context) ([]models.Tenant, error) {
	return s.tenants.List(ctx)
}

// ChangePlan moves a tenant to another subscription plan and refreshes the
// limit columns and cached feature set.
func (s *TenantService) ChangePlan(ctx context.Context, tenantID, planID uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrPlanUnavailable
	}

	tenant.SubscriptionPlanID = &plan.ID
	tenant.PlanType = plan.PlanType
	tenant.MaxEmployees = plan.MaxEmployees
	tenant.MaxUsers = plan.MaxUsers
	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	s.invalidate(ctx, tenant.ID)
	s.logger.Info("tenant plan changed", "tenant_id", tenant.ID, "plan", plan.Name)
	return tenant, nil
}

// SetStatus updates a tenant's subscription status. Suspended and cancelled
// tenants also lose the active flag.
func (s *TenantService) SetStatus(ctx context.Context, tenantID uuid.UUID, status models.TenantStatus) (*models.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	tenant.SubscriptionStatus = status
	tenant.IsActive = status == models.TenantStatusActive || status == models.TenantStatusTrial
	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	s.invalidate(ctx, tenant.ID)
	return tenant, nil
}

func (s *TenantService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFeatures(ctx, tenantID); err != nil {
		s.logger.Error("failed to invalidate feature cache", "tenant_id", tenantID, "error", err)
	}
}

// Slugify lowercases a name into a subdomain-safe slug: letters and digits
// kept, runs of anything else collapsed to single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
