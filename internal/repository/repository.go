package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flightrebooking/internal/domain"
	"github.com/google/uuid"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error)
	// FindByRoute returns flights on the given origin/destination pair
	// departing strictly after the given instant, ordered by departure.
	FindByRoute(ctx context.Context, origin, destination string, after time.Time) ([]domain.Flight, error)
}

type BookingRepository interface {
	// GetByReference loads the booking together with its original flight,
	// rebooked flight and disruption. Returns domain.ErrBookingNotFound
	// if no booking carries the reference.
	GetByReference(ctx context.Context, reference string) (*domain.BookingDetails, error)
	// MarkRebooked transitions the booking to REBOOKED and bumps its version,
	// but only if the stored version still equals expectedVersion. Returns
	// domain.ErrVersionConflict otherwise.
	MarkRebooked(ctx context.Context, id uuid.UUID, expectedVersion int64, flightID uuid.UUID, at time.Time) error
	// MarkDisrupted transitions the booking to DISRUPTED under the same
	// version-conditional discipline as MarkRebooked.
	MarkDisrupted(ctx context.Context, id uuid.UUID, expectedVersion int64, at time.Time) error
}

type AuditRepository interface {
	// GetByIdempotencyKey returns (nil, nil) when no row carries the key.
	GetByIdempotencyKey(ctx context.Context, key uuid.UUID) (*domain.RebookingAudit, error)
	// Insert appends one audit row. The store enforces idempotency-key
	// uniqueness; a duplicate returns domain.ErrIdempotencyKeyReused.
	Insert(ctx context.Context, audit *domain.RebookingAudit) error
}

type DisruptionRepository interface {
	Insert(ctx context.Context, disruption *domain.Disruption) error
}

// Stores is the set of repositories sharing one database handle, either a
// pool for lock-free reads or a transaction inside a unit of work.
type Stores interface {
	Flights() FlightRepository
	Bookings() BookingRepository
	Audits() AuditRepository
	Disruptions() DisruptionRepository
}

// UnitOfWork runs fn against transaction-scoped stores; every read and write
// inside fn observes one consistent snapshot and commits or aborts together.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error
}
