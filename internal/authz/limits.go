package authz

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

// SeatCounter reports current active seat usage for a tenant. Employee seats
// count only users holding an employee-marked role.
type SeatCounter interface {
	CountActiveUsers(ctx context.Context, tenantID uuid.UUID) (int, error)
	CountActiveEmployees(ctx context.Context, tenantID uuid.UUID) (int, error)
}

// Limits performs advisory seat-limit pre-checks. They read current counts
// and never mutate state; a configured max of 0 means unlimited.
type Limits struct {
	seats SeatCounter
}

func NewLimits(seats SeatCounter) *Limits {
	return &Limits{seats: seats}
}

// CheckUserLimit reports whether the tenant may admit one more active user.
func (l *Limits) CheckUserLimit(ctx context.Context, tenant *models.Tenant) (bool, error) {
	if tenant.MaxUsers == 0 {
		return true, nil
	}
	count, err := l.seats.CountActiveUsers(ctx, tenant.ID)
	if err != nil {
		return false, fmt.Errorf("failed to count active users: %w", err)
	}
	return count < tenant.MaxUsers, nil
}

// CheckEmployeeLimit reports whether the tenant may admit one more active
// employee.
func (l *Limits) CheckEmployeeLimit(ctx context.Context, tenant *models.Tenant) (bool, error) {
	if tenant.MaxEmployees == 0 {
		return true, nil
	}
	count, err := l.seats.CountActiveEmployees(ctx, tenant.ID)
	if err != nil {
		return false, fmt.Errorf("failed to count active employees: %w", err)
	}
	return count < tenant.MaxEmployees, nil
}
