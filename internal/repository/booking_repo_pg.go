package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flightrebooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PGBookingRepository struct {
	db Querier
}

func NewBookingRepository(db Querier) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.BookingDetails, error) {
	row := r.db.QueryRow(ctx, `SELECT
			b.id, b.reference, b.status, b.passenger_name, b.original_flight_id, b.rebooked_flight_id, b.version, b.created_at, b.updated_at,
			of.flight_number, of.origin, of.destination, of.scheduled_departure, of.created_at,
			rf.id, rf.flight_number, rf.origin, rf.destination, rf.scheduled_departure, rf.created_at,
			d.id, d.type, d.reason_code, d.reason_description, d.occurred_at, d.created_at
		FROM bookings b
		JOIN flights of ON of.id = b.original_flight_id
		LEFT JOIN flights rf ON rf.id = b.rebooked_flight_id
		LEFT JOIN disruptions d ON d.booking_id = b.id
		WHERE b.reference = $1`, reference)

	var (
		bd domain.BookingDetails

		rfID        *uuid.UUID
		rfNumber    *string
		rfOrigin    *string
		rfDest      *string
		rfDeparture *time.Time
		rfCreatedAt *time.Time

		dID         *uuid.UUID
		dType       *string
		dReasonCode *string
		dReason     *string
		dOccurredAt *time.Time
		dCreatedAt  *time.Time
	)

	err := row.Scan(
		&bd.ID, &bd.Reference, &bd.Status, &bd.PassengerName, &bd.OriginalFlightID, &bd.RebookedFlightID, &bd.Version, &bd.CreatedAt, &bd.UpdatedAt,
		&bd.OriginalFlight.FlightNumber, &bd.OriginalFlight.Origin, &bd.OriginalFlight.Destination, &bd.OriginalFlight.ScheduledDeparture, &bd.OriginalFlight.CreatedAt,
		&rfID, &rfNumber, &rfOrigin, &rfDest, &rfDeparture, &rfCreatedAt,
		&dID, &dType, &dReasonCode, &dReason, &dOccurredAt, &dCreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	bd.OriginalFlight.ID = bd.OriginalFlightID

	if rfID != nil {
		bd.RebookedFlight = &domain.Flight{
			ID:                 *rfID,
			FlightNumber:       *rfNumber,
			Origin:             *rfOrigin,
			Destination:        *rfDest,
			ScheduledDeparture: *rfDeparture,
			CreatedAt:          *rfCreatedAt,
		}
	}
	if dID != nil {
		bd.Disruption = &domain.Disruption{
			ID:                *dID,
			BookingID:         bd.ID,
			Type:              domain.DisruptionType(*dType),
			ReasonCode:        *dReasonCode,
			ReasonDescription: *dReason,
			OccurredAt:        *dOccurredAt,
			CreatedAt:         *dCreatedAt,
		}
	}
	return &bd, nil
}

func (r *PGBookingRepository) MarkRebooked(ctx context.Context, id uuid.UUID, expectedVersion int64, flightID uuid.UUID, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings
		SET status=$1, rebooked_flight_id=$2, version=version+1, updated_at=$3
		WHERE id=$4 AND version=$5`,
		domain.BookingStatusRebooked, flightID, at, id, expectedVersion)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

func (r *PGBookingRepository) MarkDisrupted(ctx context.Context, id uuid.UUID, expectedVersion int64, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings
		SET status=$1, version=version+1, updated_at=$2
		WHERE id=$3 AND version=$4`,
		domain.BookingStatusDisrupted, at, id, expectedVersion)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
