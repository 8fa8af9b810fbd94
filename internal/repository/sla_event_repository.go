package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// SLAEventRepository is the append-only dedup ledger. A unique constraint on
// (ticket_id, kind, identifier) turns "has this threshold fired" into an
// indexed insert instead of an array scan, and stays unambiguous under
// concurrent writers.
type SLAEventRepository interface {
	// Record inserts the ledger entry if absent. The returned bool is true
	// when this call created the entry, i.e. the caller won the right to
	// fire the corresponding notification.
	Record(ctx context.Context, event *domain.SLAEvent) (bool, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.SLAEvent, error)
}

type slaEventRepository struct {
	pool *pgxpool.Pool
}

// NewSLAEventRepository instantiates repository.
func NewSLAEventRepository(pool *pgxpool.Pool) SLAEventRepository {
	return &slaEventRepository{pool: pool}
}

func (r *slaEventRepository) Record(ctx context.Context, event *domain.SLAEvent) (bool, error) {
	const query = `
        INSERT INTO sla_events (ticket_id, kind, identifier)
        VALUES ($1,$2,$3)
        ON CONFLICT (ticket_id, kind, identifier) DO NOTHING
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		event.TicketID,
		event.Kind,
		event.Identifier,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		// ON CONFLICT DO NOTHING returns no row when the entry existed.
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *slaEventRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.SLAEvent, error) {
	const query = `
        SELECT id, ticket_id, kind, identifier, created_at
        FROM sla_events WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLAEvent
	for rows.Next() {
		var event domain.SLAEvent
		if err := rows.Scan(&event.ID, &event.TicketID, &event.Kind, &event.Identifier, &event.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
