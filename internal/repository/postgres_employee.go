package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

type PostgresEmployeeRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresEmployeeRepository(pool *pgxpool.Pool) *PostgresEmployeeRepository {
	return &PostgresEmployeeRepository{pool: pool}
}

const employeeColumns = `id, tenant_id, user_id, full_name, specialty, is_active, created_at, updated_at`

func (r *PostgresEmployeeRepository) Create(ctx context.Context, e *models.Employee) error {
	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.TenantID, e.UserID, e.FullName, e.Specialty, e.IsActive, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}

	return nil
}

func (r *PostgresEmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	e := &models.Employee{}

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.TenantID, &e.UserID, &e.FullName, &e.Specialty, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	return e, nil
}

func (r *PostgresEmployeeRepository) List(ctx context.Context, scope authz.TenantScope) ([]models.Employee, error) {
	if scope.Empty() {
		return []models.Employee{}, nil
	}

	query := `SELECT ` + employeeColumns + ` FROM employees`
	var args []any
	if !scope.All {
		query += ` WHERE tenant_id = $1`
		args = append(args, *scope.TenantID)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	employees := []models.Employee{}
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.TenantID, &e.UserID, &e.FullName, &e.Specialty, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}

	return employees, nil
}

func (r *PostgresEmployeeRepository) Update(ctx context.Context, e *models.Employee) error {
	query := `
		UPDATE employees
		SET full_name = $2, specialty = $3, is_active = $4, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, e.ID, e.FullName, e.Specialty, e.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ EmployeeRepository = (*PostgresEmployeeRepository)(nil)
