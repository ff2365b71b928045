package repository

import (
	"context"

	"github.com/Domenick1991/flightrebooking/internal/domain"
)

type PGDisruptionRepository struct {
	db Querier
}

func NewDisruptionRepository(db Querier) DisruptionRepository {
	return &PGDisruptionRepository{db: db}
}

func (r *PGDisruptionRepository) Insert(ctx context.Context, d *domain.Disruption) error {
	_, err := r.db.Exec(ctx, `INSERT INTO disruptions (id, booking_id, type, reason_code, reason_description, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.BookingID, d.Type, d.ReasonCode, d.ReasonDescription, d.OccurredAt, d.CreatedAt)
	return err
}

var _ DisruptionRepository = (*PGDisruptionRepository)(nil)
