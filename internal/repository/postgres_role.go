package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

type PostgresRoleRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRoleRepository(pool *pgxpool.Pool) *PostgresRoleRepository {
	return &PostgresRoleRepository{pool: pool}
}

// GetOrCreateAssignment relies on the unique index over
// (user_id, role_code, tenant_id): the insert is a no-op on conflict and the
// existing row is read back, so retries never duplicate the assignment.
func (r *PostgresRoleRepository) GetOrCreateAssignment(ctx context.Context, ra *models.RoleAssignment) (bool, error) {
	insert := `
		INSERT INTO role_assignments (id, user_id, role_code, tenant_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, role_code, tenant_id) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, insert, ra.ID, ra.UserID, ra.RoleCode, ra.TenantID, ra.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create role assignment: %w", err)
	}
	if result.RowsAffected() > 0 {
		return true, nil
	}

	query := `
		SELECT id, user_id, role_code, tenant_id, created_at
		FROM role_assignments
		WHERE user_id = $1 AND role_code = $2 AND tenant_id IS NOT DISTINCT FROM $3
	`

	err = r.pool.QueryRow(ctx, query, ra.UserID, ra.RoleCode, ra.TenantID).Scan(
		&ra.ID, &ra.UserID, &ra.RoleCode, &ra.TenantID, &ra.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to get role assignment: %w", err)
	}

	return false, nil
}

func (r *PostgresRoleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RoleAssignment, error) {
	query := `
		SELECT id, user_id, role_code, tenant_id, created_at
		FROM role_assignments
		WHERE user_id = $1
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query role assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.RoleAssignment
	for rows.Next() {
		var ra models.RoleAssignment
		if err := rows.Scan(&ra.ID, &ra.UserID, &ra.RoleCode, &ra.TenantID, &ra.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role assignment: %w", err)
		}
		assignments = append(assignments, ra)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role assignments: %w", err)
	}

	return assignments, nil
}

func (r *PostgresRoleRepository) CountActiveEmployees(ctx context.Context, tenantID uuid.UUID) (int, error) {
	codes := employeeRoleCodes()
	if len(codes) == 0 {
		return 0, nil
	}

	query := `
		SELECT COUNT(DISTINCT ra.user_id)
		FROM role_assignments ra
		JOIN users u ON u.id = ra.user_id
		WHERE ra.tenant_id = $1 AND u.is_active = true AND ra.role_code = ANY($2)
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, tenantID, codes).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active employees: %w", err)
	}

	return count, nil
}

func employeeRoleCodes() []string {
	var codes []string
	for code, def := range authz.Roles {
		if def.EmployeeSeat {
			codes = append(codes, code)
		}
	}
	return codes
}

var _ RoleRepository = (*PostgresRoleRepository)(nil)
