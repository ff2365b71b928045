package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flightrebooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PGFlightRepository struct {
	db Querier
}

func NewFlightRepository(db Querier) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT id, flight_number, origin, destination, scheduled_departure, created_at FROM flights ORDER BY scheduled_departure`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFlights(rows)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT id, flight_number, origin, destination, scheduled_departure, created_at FROM flights WHERE id=$1`, id)
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.Origin, &f.Destination, &f.ScheduledDeparture, &f.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) FindByRoute(ctx context.Context, origin, destination string, after time.Time) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT id, flight_number, origin, destination, scheduled_departure, created_at FROM flights
		WHERE origin=$1 AND destination=$2 AND scheduled_departure > $3
		ORDER BY scheduled_departure`, origin, destination, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFlights(rows)
}

func scanFlights(rows pgx.Rows) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.FlightNumber, &f.Origin, &f.Destination, &f.ScheduledDeparture, &f.CreatedAt); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
