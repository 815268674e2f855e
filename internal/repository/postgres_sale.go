package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

type PostgresSaleRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSaleRepository(pool *pgxpool.Pool) *PostgresSaleRepository {
	return &PostgresSaleRepository{pool: pool}
}

func (r *PostgresSaleRepository) Create(ctx context.Context, s *models.Sale) error {
	items, err := json.Marshal(s.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal sale items: %w", err)
	}

	query := `
		INSERT INTO sales (id, tenant_id, cashier_id, items, total, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.pool.Exec(ctx, query, s.ID, s.TenantID, s.CashierID, items, s.Total, s.Currency, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	return nil
}

func (r *PostgresSaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	s := &models.Sale{}
	var items []byte

	query := `SELECT id, tenant_id, cashier_id, items, total, currency, created_at FROM sales WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.TenantID, &s.CashierID, &items, &s.Total, &s.Currency, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	if err := json.Unmarshal(items, &s.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sale items: %w", err)
	}

	return s, nil
}

func (r *PostgresSaleRepository) List(ctx context.Context, scope authz.TenantScope) ([]models.Sale, error) {
	if scope.Empty() {
		return []models.Sale{}, nil
	}

	query := `SELECT id, tenant_id, cashier_id, items, total, currency, created_at FROM sales`
	var args []any
	if !scope.All {
		query += ` WHERE tenant_id = $1`
		args = append(args, *scope.TenantID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	sales := []models.Sale{}
	for rows.Next() {
		var s models.Sale
		var items []byte
		if err := rows.Scan(&s.ID, &s.TenantID, &s.CashierID, &items, &s.Total, &s.Currency, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		if err := json.Unmarshal(items, &s.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sale items: %w", err)
		}
		sales = append(sales, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, nil
}

var _ SaleRepository = (*PostgresSaleRepository)(nil)
