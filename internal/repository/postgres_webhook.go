package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

type PostgresWebhookEventRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresWebhookEventRepository(pool *pgxpool.Pool) *PostgresWebhookEventRepository {
	return &PostgresWebhookEventRepository{pool: pool}
}

// Record inserts a first-seen event. The unique index over
// (provider, event_id) turns redeliveries into ErrDuplicateEvent.
func (r *PostgresWebhookEventRepository) Record(ctx context.Context, e *models.WebhookEvent) error {
	query := `
		INSERT INTO webhook_events (id, event_id, provider, event_type, processed, payload, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.EventID, e.Provider, e.EventType, e.Processed, e.Payload, e.ReceivedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEvent
		}
		return fmt.Errorf("failed to record webhook event: %w", err)
	}

	return nil
}

func (r *PostgresWebhookEventRepository) MarkProcessed(ctx context.Context, id uuid.UUID, processingError string) error {
	query := `
		UPDATE webhook_events
		SET processed = $2, error = $3, processed_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, processingError == "", processingError)
	if err != nil {
		return fmt.Errorf("failed to mark webhook event processed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ WebhookEventRepository = (*PostgresWebhookEventRepository)(nil)
