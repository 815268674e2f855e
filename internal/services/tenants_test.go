package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
)

type captureInvalidator struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (c *captureInvalidator) InvalidateFeatures(ctx context.Context, tenantID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, tenantID)
	return nil
}

func TestChangePlan(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	tenant := &models.Tenant{ID: uuid.New(), Name: "Glow", Subdomain: "glow", OwnerID: uuid.New(), MaxEmployees: 3}
	require.NoError(t, store.Tenants().Create(ctx, tenant))

	plan := &models.SubscriptionPlan{ID: uuid.New(), Name: "Pro", PlanType: "pro", MaxEmployees: 15, MaxUsers: 30, IsActive: true}
	require.NoError(t, store.Plans().Create(ctx, plan))

	cache := &captureInvalidator{}
	svc := NewTenantService(store.Tenants(), store.Plans(), cache, nil)

	updated, err := svc.ChangePlan(ctx, tenant.ID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, *updated.SubscriptionPlanID)
	assert.Equal(t, "pro", updated.PlanType)
	assert.Equal(t, 15, updated.MaxEmployees)
	assert.Equal(t, 30, updated.MaxUsers)
	assert.Equal(t, []uuid.UUID{tenant.ID}, cache.ids)
}

func TestChangePlanInactivePlan(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	tenant := &models.Tenant{ID: uuid.New(), Subdomain: "glow", OwnerID: uuid.New()}
	require.NoError(t, store.Tenants().Create(ctx, tenant))

	plan := &models.SubscriptionPlan{ID: uuid.New(), Name: "Retired", IsActive: false}
	require.NoError(t, store.Plans().Create(ctx, plan))

	svc := NewTenantService(store.Tenants(), store.Plans(), nil, nil)
	_, err := svc.ChangePlan(ctx, tenant.ID, plan.ID)
	assert.ErrorIs(t, err, ErrPlanUnavailable)
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	tenant := &models.Tenant{
		ID:                 uuid.New(),
		Subdomain:          "glow",
		OwnerID:            uuid.New(),
		SubscriptionStatus: models.TenantStatusActive,
		IsActive:           true,
	}
	require.NoError(t, store.Tenants().Create(ctx, tenant))

	cache := &captureInvalidator{}
	svc := NewTenantService(store.Tenants(), store.Plans(), cache, nil)

	updated, err := svc.SetStatus(ctx, tenant.ID, models.TenantStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.TenantStatusSuspended, updated.SubscriptionStatus)
	assert.False(t, updated.IsActive)

	updated, err = svc.SetStatus(ctx, tenant.ID, models.TenantStatusActive)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.Len(t, cache.ids, 2)
}
