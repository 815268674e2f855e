package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

type PostgresPlanRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPlanRepository(pool *pgxpool.Pool) *PostgresPlanRepository {
	return &PostgresPlanRepository{pool: pool}
}

func (r *PostgresPlanRepository) Create(ctx context.Context, p *models.SubscriptionPlan) error {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal plan features: %w", err)
	}

	query := `
		INSERT INTO subscription_plans (id, name, plan_type, price, currency, features, max_employees, max_users, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.pool.Exec(ctx, query,
		p.ID, p.Name, p.PlanType, p.Price, p.Currency, features, p.MaxEmployees, p.MaxUsers, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}

	return nil
}

func (r *PostgresPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error) {
	plan := &models.SubscriptionPlan{}
	var features []byte

	query := `
		SELECT id, name, plan_type, price, currency, features, max_employees, max_users, is_active, created_at, updated_at
		FROM subscription_plans
		WHERE id = $1
	`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&plan.ID,
		&plan.Name,
		&plan.PlanType,
		&plan.Price,
		&plan.Currency,
		&features,
		&plan.MaxEmployees,
		&plan.MaxUsers,
		&plan.IsActive,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	if err := json.Unmarshal(features, &plan.Features); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan features: %w", err)
	}

	return plan, nil
}

func (r *PostgresPlanRepository) List(ctx context.Context) ([]models.SubscriptionPlan, error) {
	query := `
		SELECT id, name, plan_type, price, currency, features, max_employees, max_users, is_active, created_at, updated_at
		FROM subscription_plans
		ORDER BY name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var plans []models.SubscriptionPlan
	for rows.Next() {
		var plan models.SubscriptionPlan
		var features []byte
		if err := rows.Scan(
			&plan.ID, &plan.Name, &plan.PlanType, &plan.Price, &plan.Currency, &features,
			&plan.MaxEmployees, &plan.MaxUsers, &plan.IsActive, &plan.CreatedAt, &plan.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		if err := json.Unmarshal(features, &plan.Features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan features: %w", err)
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plans: %w", err)
	}

	return plans, nil
}

func (r *PostgresPlanRepository) Update(ctx context.Context, p *models.SubscriptionPlan) error {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal plan features: %w", err)
	}

	query := `
		UPDATE subscription_plans
		SET name = $2, plan_type = $3, price = $4, currency = $5, features = $6,
		    max_employees = $7, max_users = $8, is_active = $9, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.PlanType, p.Price, p.Currency, features, p.MaxEmployees, p.MaxUsers, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ PlanRepository = (*PostgresPlanRepository)(nil)
