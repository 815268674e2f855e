package authz

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

type stubPlanSource struct {
	tenants map[uuid.UUID]*models.Tenant
	plans   map[uuid.UUID]*models.SubscriptionPlan
	lookups int
}

func (s *stubPlanSource) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	s.lookups++
	t, ok := s.tenants[id]
	if !ok {
		return nil, assert.AnError
	}
	return t, nil
}

func (s *stubPlanSource) GetPlan(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error) {
	p, ok := s.plans[id]
	if !ok {
		return nil, assert.AnError
	}
	return p, nil
}

type mapCache struct {
	entries map[uuid.UUID]map[string]bool
}

func (c *mapCache) GetFeatures(ctx context.Context, tenantID uuid.UUID) (map[string]bool, bool) {
	f, ok := c.entries[tenantID]
	return f, ok
}

func (c *mapCache) SetFeatures(ctx context.Context, tenantID uuid.UUID, features map[string]bool) {
	c.entries[tenantID] = features
}

func gateFixture(t *testing.T) (*Gate, *stubPlanSource, uuid.UUID) {
	t.Helper()

	planID := uuid.New()
	tenantID := uuid.New()
	source := &stubPlanSource{
		tenants: map[uuid.UUID]*models.Tenant{
			tenantID: {ID: tenantID, SubscriptionPlanID: &planID},
		},
		plans: map[uuid.UUID]*models.SubscriptionPlan{
			planID: {ID: planID, Features: map[string]bool{"appointments": true, "reports": false}},
		},
	}
	return NewGate(source, nil), source, tenantID
}

func TestGateRequireFeature(t *testing.T) {
	ctx := context.Background()

	t.Run("enabled feature allowed", func(t *testing.T) {
		gate, _, tenantID := gateFixture(t)
		p := &Principal{UserID: uuid.New(), TenantID: &tenantID}

		d, err := gate.RequireFeature(ctx, p, "appointments")
		require.NoError(t, err)
		assert.Equal(t, DecisionAllowed, d)
	})

	t.Run("absent feature denied", func(t *testing.T) {
		gate, _, tenantID := gateFixture(t)
		p := &Principal{UserID: uuid.New(), TenantID: &tenantID}

		d, err := gate.RequireFeature(ctx, p, "pos")
		require.NoError(t, err)
		assert.Equal(t, DecisionFeatureUnavailable, d)
	})

	t.Run("explicitly disabled feature denied", func(t *testing.T) {
		gate, _, tenantID := gateFixture(t)
		p := &Principal{UserID: uuid.New(), TenantID: &tenantID}

		d, err := gate.RequireFeature(ctx, p, "reports")
		require.NoError(t, err)
		assert.Equal(t, DecisionFeatureUnavailable, d)
	})

	t.Run("anonymous denied", func(t *testing.T) {
		gate, _, _ := gateFixture(t)

		d, err := gate.RequireFeature(ctx, nil, "appointments")
		require.NoError(t, err)
		assert.Equal(t, DecisionUnauthenticated, d)
	})

	t.Run("tenant-less principal denied", func(t *testing.T) {
		gate, _, _ := gateFixture(t)

		d, err := gate.RequireFeature(ctx, &Principal{UserID: uuid.New()}, "appointments")
		require.NoError(t, err)
		assert.Equal(t, DecisionNoTenant, d)
	})

	t.Run("tenant without plan denied", func(t *testing.T) {
		gate, source, _ := gateFixture(t)
		bare := uuid.New()
		source.tenants[bare] = &models.Tenant{ID: bare}

		d, err := gate.RequireFeature(ctx, &Principal{UserID: uuid.New(), TenantID: &bare}, "appointments")
		require.NoError(t, err)
		assert.Equal(t, DecisionNoPlan, d)
	})

	t.Run("superuser bypasses the gate", func(t *testing.T) {
		gate, _, _ := gateFixture(t)

		d, err := gate.RequireFeature(ctx, &Principal{UserID: uuid.New(), IsSuperuser: true}, "anything")
		require.NoError(t, err)
		assert.Equal(t, DecisionAllowed, d)
	})
}

func TestGateUsesCache(t *testing.T) {
	ctx := context.Background()

	planID := uuid.New()
	tenantID := uuid.New()
	source := &stubPlanSource{
		tenants: map[uuid.UUID]*models.Tenant{
			tenantID: {ID: tenantID, SubscriptionPlanID: &planID},
		},
		plans: map[uuid.UUID]*models.SubscriptionPlan{
			planID: {ID: planID, Features: map[string]bool{"appointments": true}},
		},
	}
	cache := &mapCache{entries: make(map[uuid.UUID]map[string]bool)}
	gate := NewGate(source, cache)
	p := &Principal{UserID: uuid.New(), TenantID: &tenantID}

	d, err := gate.RequireFeature(ctx, p, "appointments")
	require.NoError(t, err)
	require.Equal(t, DecisionAllowed, d)
	assert.Equal(t, 1, source.lookups)

	// second check served from cache
	d, err = gate.RequireFeature(ctx, p, "appointments")
	require.NoError(t, err)
	require.Equal(t, DecisionAllowed, d)
	assert.Equal(t, 1, source.lookups)
}
