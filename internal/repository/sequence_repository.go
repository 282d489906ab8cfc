package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-desk/internal/domain"
)

// SequenceRepository hands out monotonically increasing ticket-number
// sequences per (type, channel, year-month).
type SequenceRepository interface {
	Next(ctx context.Context, ticketType domain.TicketType, channelCode, yearMonth string) (int, error)
}

type sequenceRepository struct {
	pool *pgxpool.Pool
}

// NewSequenceRepository instantiates repository.
func NewSequenceRepository(pool *pgxpool.Pool) SequenceRepository {
	return &sequenceRepository{pool: pool}
}

func (r *sequenceRepository) Next(ctx context.Context, ticketType domain.TicketType, channelCode, yearMonth string) (int, error) {
	const query = `
        INSERT INTO ticket_sequences (ticket_type, channel_code, year_month, last_sequence)
        VALUES ($1,$2,$3,1)
        ON CONFLICT (ticket_type, channel_code, year_month)
        DO UPDATE SET last_sequence = ticket_sequences.last_sequence + 1, updated_at = NOW()
        RETURNING last_sequence`
	var seq int
	if err := r.pool.QueryRow(ctx, query, ticketType, channelCode, yearMonth).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}
