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

type PostgresPaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPaymentRepository(pool *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{pool: pool}
}

const paymentColumns = `id, user_id, subscription_id, plan_id, provider, amount, currency, status, provider_payment_id, metadata, completed_at, created_at, updated_at`

func (r *PostgresPaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal payment metadata: %w", err)
	}

	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.pool.Exec(ctx, query,
		p.ID, p.UserID, p.SubscriptionID, p.PlanID, p.Provider, p.Amount, p.Currency,
		p.Status, p.ProviderPaymentID, metadata, p.CompletedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *PostgresPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	return scanPayment(row)
}

func (r *PostgresPaymentRepository) GetByProviderPaymentID(ctx context.Context, provider, providerPaymentID string) (*models.Payment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE provider = $1 AND provider_payment_id = $2`,
		provider, providerPaymentID,
	)
	return scanPayment(row)
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	p := &models.Payment{}
	var metadata []byte

	err := row.Scan(
		&p.ID, &p.UserID, &p.SubscriptionID, &p.PlanID, &p.Provider, &p.Amount, &p.Currency,
		&p.Status, &p.ProviderPaymentID, &metadata, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment metadata: %w", err)
		}
	}

	return p, nil
}

func (r *PostgresPaymentRepository) Update(ctx context.Context, p *models.Payment) error {
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal payment metadata: %w", err)
	}

	query := `
		UPDATE payments
		SET subscription_id = $2, status = $3, provider_payment_id = $4, metadata = $5, completed_at = $6, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		p.ID, p.SubscriptionID, p.Status, p.ProviderPaymentID, metadata, p.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresPaymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

// ApplyOnboarding runs the full provisioning sequence in one transaction.
// The payment link update carries a `subscription_id IS NULL` precondition,
// so a concurrent confirm or webhook racing this call rolls back with
// ErrAlreadyOnboarded instead of provisioning a second tenant.
func (r *PostgresPaymentRepository) ApplyOnboarding(ctx context.Context, ob *Onboarding) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Claim the payment first: completed, not yet linked.
	result, err := tx.Exec(ctx, `
		UPDATE payments
		SET subscription_id = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3 AND subscription_id IS NULL
	`, ob.PaymentID, ob.Subscription.ID, models.PaymentStatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to link payment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAlreadyOnboarded
	}

	t := ob.Tenant
	_, err = tx.Exec(ctx, `
		INSERT INTO tenants (`+tenantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		t.ID, t.Name, t.Subdomain, t.OwnerID, t.PlanType, t.SubscriptionPlanID,
		t.SubscriptionStatus, t.MaxEmployees, t.MaxUsers, t.IsActive, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	result, err = tx.Exec(ctx, `UPDATE users SET tenant_id = $2, updated_at = NOW() WHERE id = $1`, t.OwnerID, t.ID)
	if err != nil {
		return fmt.Errorf("failed to attach tenant to user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	s := ob.Subscription
	_, err = tx.Exec(ctx, `
		INSERT INTO user_subscriptions (`+subscriptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, s.ID, s.UserID, s.PlanID, s.Status, s.AutoRenew, s.CurrentPeriodEnd, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	ra := ob.Role
	_, err = tx.Exec(ctx, `
		INSERT INTO role_assignments (id, user_id, role_code, tenant_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, role_code, tenant_id) DO NOTHING
	`, ra.ID, ra.UserID, ra.RoleCode, ra.TenantID, ra.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create role assignment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit onboarding: %w", err)
	}

	return nil
}

var _ PaymentRepository = (*PostgresPaymentRepository)(nil)
