package authz

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

type stubSeats struct {
	users     int
	employees int
}

func (s stubSeats) CountActiveUsers(ctx context.Context, tenantID uuid.UUID) (int, error) {
	return s.users, nil
}

func (s stubSeats) CountActiveEmployees(ctx context.Context, tenantID uuid.UUID) (int, error) {
	return s.employees, nil
}

func TestLimits(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		max   int
		count int
		want  bool
	}{
		{"zero max means unlimited", 0, 1000, true},
		{"below limit", 5, 4, true},
		{"at limit", 5, 5, false},
		{"over limit", 5, 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limits := NewLimits(stubSeats{users: tt.count, employees: tt.count})
			tenant := &models.Tenant{ID: uuid.New(), MaxUsers: tt.max, MaxEmployees: tt.max}

			ok, err := limits.CheckUserLimit(ctx, tenant)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)

			ok, err = limits.CheckEmployeeLimit(ctx, tenant)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}
