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

type PostgresAppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAppointmentRepository(pool *pgxpool.Pool) *PostgresAppointmentRepository {
	return &PostgresAppointmentRepository{pool: pool}
}

const appointmentColumns = `id, tenant_id, client_name, employee_id, service, starts_at, ends_at, status, notes, created_at, updated_at`

func (r *PostgresAppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.TenantID, a.ClientName, a.EmployeeID, a.Service, a.StartsAt, a.EndsAt, a.Status, a.Notes, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	return nil
}

func (r *PostgresAppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	a := &models.Appointment{}

	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.TenantID, &a.ClientName, &a.EmployeeID, &a.Service, &a.StartsAt, &a.EndsAt, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	return a, nil
}

func (r *PostgresAppointmentRepository) List(ctx context.Context, scope authz.TenantScope) ([]models.Appointment, error) {
	if scope.Empty() {
		return []models.Appointment{}, nil
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	var args []any
	if !scope.All {
		query += ` WHERE tenant_id = $1`
		args = append(args, *scope.TenantID)
	}
	query += ` ORDER BY starts_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	appointments := []models.Appointment{}
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(
			&a.ID, &a.TenantID, &a.ClientName, &a.EmployeeID, &a.Service, &a.StartsAt, &a.EndsAt, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointments: %w", err)
	}

	return appointments, nil
}

func (r *PostgresAppointmentRepository) Update(ctx context.Context, a *models.Appointment) error {
	query := `
		UPDATE appointments
		SET client_name = $2, employee_id = $3, service = $4, starts_at = $5, ends_at = $6, status = $7, notes = $8, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		a.ID, a.ClientName, a.EmployeeID, a.Service, a.StartsAt, a.EndsAt, a.Status, a.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresAppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ AppointmentRepository = (*PostgresAppointmentRepository)(nil)
