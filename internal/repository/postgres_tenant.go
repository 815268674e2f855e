package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

type PostgresTenantRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTenantRepository(pool *pgxpool.Pool) *PostgresTenantRepository {
	return &PostgresTenantRepository{pool: pool}
}

const tenantColumns = `id, name, subdomain, owner_id, plan_type, subscription_plan_id, subscription_status, max_employees, max_users, is_active, created_at, updated_at`

func (r *PostgresTenantRepository) Create(ctx context.Context, t *models.Tenant) error {
	query := `
		INSERT INTO tenants (` + tenantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.Name, t.Subdomain, t.OwnerID, t.PlanType, t.SubscriptionPlanID,
		t.SubscriptionStatus, t.MaxEmployees, t.MaxUsers, t.IsActive, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSubdomainTaken
		}
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	return nil
}

func (r *PostgresTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return r.getTenant(ctx, `WHERE id = $1`, id)
}

func (r *PostgresTenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	return r.getTenant(ctx, `WHERE subdomain = $1`, subdomain)
}

func (r *PostgresTenantRepository) getTenant(ctx context.Context, where string, arg any) (*models.Tenant, error) {
	tenant := &models.Tenant{}

	query := `SELECT ` + tenantColumns + ` FROM tenants ` + where

	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Subdomain,
		&tenant.OwnerID,
		&tenant.PlanType,
		&tenant.SubscriptionPlanID,
		&tenant.SubscriptionStatus,
		&tenant.MaxEmployees,
		&tenant.MaxUsers,
		&tenant.IsActive,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return tenant, nil
}

func (r *PostgresTenantRepository) Update(ctx context.Context, t *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $2, subdomain = $3, plan_type = $4, subscription_plan_id = $5,
		    subscription_status = $6, max_employees = $7, max_users = $8, is_active = $9, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		t.ID, t.Name, t.Subdomain, t.PlanType, t.SubscriptionPlanID,
		t.SubscriptionStatus, t.MaxEmployees, t.MaxUsers, t.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresTenantRepository) List(ctx context.Context) ([]models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	var tenants []models.Tenant
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Subdomain, &t.OwnerID, &t.PlanType, &t.SubscriptionPlanID,
			&t.SubscriptionStatus, &t.MaxEmployees, &t.MaxUsers, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenants: %w", err)
	}

	return tenants, nil
}

var _ TenantRepository = (*PostgresTenantRepository)(nil)
