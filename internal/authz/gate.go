package authz

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

// Decision is the outcome of a feature gate check.
type Decision string

const (
	DecisionAllowed            Decision = "allowed"
	DecisionUnauthenticated    Decision = "unauthenticated"
	DecisionNoTenant           Decision = "no_tenant"
	DecisionNoPlan             Decision = "no_plan"
	DecisionFeatureUnavailable Decision = "feature_unavailable"
)

// Allowed reports whether the decision admits the request.
func (d Decision) Allowed() bool { return d == DecisionAllowed }

// PlanSource resolves a tenant and its subscription plan.
type PlanSource interface {
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error)
}

// FeatureCache caches the feature set of a tenant's plan. Implementations
// may lose entries at any time; a miss falls through to the plan source.
type FeatureCache interface {
	GetFeatures(ctx context.Context, tenantID uuid.UUID) (map[string]bool, bool)
	SetFeatures(ctx context.Context, tenantID uuid.UUID, features map[string]bool)
}

// Gate decides whether a tenant's subscription plan permits a feature.
type Gate struct {
	plans PlanSource
	cache FeatureCache // optional
}

// NewGate creates a feature gate. cache may be nil.
func NewGate(plans PlanSource, cache FeatureCache) *Gate {
	return &Gate{plans: plans, cache: cache}
}

// RequireFeature decides whether the principal may use the named feature.
// Absent feature keys are denied: the gate fails closed.
func (g *Gate) RequireFeature(ctx context.Context, p *Principal, feature string) (Decision, error) {
	if p == nil {
		return DecisionUnauthenticated, nil
	}
	if p.IsSuperuser {
		return DecisionAllowed, nil
	}
	if p.TenantID == nil {
		return DecisionNoTenant, nil
	}

	features, err := g.featuresFor(ctx, *p.TenantID)
	if err != nil {
		return "", err
	}
	if features == nil {
		return DecisionNoPlan, nil
	}
	if !features[feature] {
		return DecisionFeatureUnavailable, nil
	}
	return DecisionAllowed, nil
}

// CanUseFeature is the boolean form of RequireFeature. Lookup errors deny.
func (g *Gate) CanUseFeature(ctx context.Context, p *Principal, feature string) bool {
	d, err := g.RequireFeature(ctx, p, feature)
	if err != nil {
		return false
	}
	return d.Allowed()
}

// featuresFor returns the tenant's plan feature map, or nil when the tenant
// has no plan attached.
func (g *Gate) featuresFor(ctx context.Context, tenantID uuid.UUID) (map[string]bool, error) {
	if g.cache != nil {
		if features, ok := g.cache.GetFeatures(ctx, tenantID); ok {
			return features, nil
		}
	}

	tenant, err := g.plans.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	if tenant.SubscriptionPlanID == nil {
		return nil, nil
	}
	plan, err := g.plans.GetPlan(ctx, *tenant.SubscriptionPlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	features := plan.Features
	if features == nil {
		features = map[string]bool{}
	}
	if g.cache != nil {
		g.cache.SetFeatures(ctx, tenantID, features)
	}
	return features, nil
}
