package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSubscriptionRepository(pool *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

const subscriptionColumns = `id, user_id, plan_id, status, auto_renew, current_period_end, created_at, updated_at`

func (r *PostgresSubscriptionRepository) Create(ctx context.Context, s *models.UserSubscription) error {
	query := `
		INSERT INTO user_subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.UserID, s.PlanID, s.Status, s.AutoRenew, s.CurrentPeriodEnd, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

func (r *PostgresSubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserSubscription, error) {
	return r.getSubscription(ctx, `WHERE id = $1`, id)
}

func (r *PostgresSubscriptionRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*models.UserSubscription, error) {
	return r.getSubscription(ctx, `WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID)
}

func (r *PostgresSubscriptionRepository) getSubscription(ctx context.Context, where string, arg any) (*models.UserSubscription, error) {
	sub := &models.UserSubscription{}

	query := `SELECT ` + subscriptionColumns + ` FROM user_subscriptions ` + where

	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status, &sub.AutoRenew, &sub.CurrentPeriodEnd, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return sub, nil
}

func (r *PostgresSubscriptionRepository) Update(ctx context.Context, s *models.UserSubscription) error {
	query := `
		UPDATE user_subscriptions
		SET status = $2, auto_renew = $3, current_period_end = $4, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, s.ID, s.Status, s.AutoRenew, s.CurrentPeriodEnd)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresSubscriptionRepository) ListExpired(ctx context.Context, before time.Time) ([]models.UserSubscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM user_subscriptions
		WHERE status = $1 AND current_period_end < $2
	`

	rows, err := r.pool.Query(ctx, query, models.SubscriptionStatusActive, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.UserSubscription
	for rows.Next() {
		var s models.UserSubscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.PlanID, &s.Status, &s.AutoRenew, &s.CurrentPeriodEnd, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return subs, nil
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
