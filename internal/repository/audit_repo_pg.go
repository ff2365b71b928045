package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightrebooking/internal/domain"
	"github.com/Domenick1991/flightrebooking/internal/errs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type PGAuditRepository struct {
	db Querier
}

func NewAuditRepository(db Querier) AuditRepository {
	return &PGAuditRepository{db: db}
}

func (r *PGAuditRepository) GetByIdempotencyKey(ctx context.Context, key uuid.UUID) (*domain.RebookingAudit, error) {
	row := r.db.QueryRow(ctx, `SELECT a.id, a.booking_id, b.reference, a.idempotency_key, a.previous_flight_id, a.new_flight_id, a.outcome, a.response_payload, a.created_at
		FROM rebooking_audit a
		JOIN bookings b ON b.id = a.booking_id
		WHERE a.idempotency_key = $1`, key)
	var a domain.RebookingAudit
	if err := row.Scan(&a.ID, &a.BookingID, &a.BookingReference, &a.IdempotencyKey, &a.PreviousFlightID, &a.NewFlightID, &a.Outcome, &a.ResponsePayload, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGAuditRepository) Insert(ctx context.Context, audit *domain.RebookingAudit) error {
	_, err := r.db.Exec(ctx, `INSERT INTO rebooking_audit (id, booking_id, idempotency_key, previous_flight_id, new_flight_id, outcome, response_payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		audit.ID, audit.BookingID, audit.IdempotencyKey, audit.PreviousFlightID, audit.NewFlightID, audit.Outcome, audit.ResponsePayload, audit.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return errs.Mark(err, domain.ErrIdempotencyKeyReused)
		}
		return err
	}
	return nil
}

var _ AuditRepository = (*PGAuditRepository)(nil)
