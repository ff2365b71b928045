// Package memstore is an in-memory Stores/UnitOfWork used by service tests.
// It enforces the same two store-level primitives as the Postgres adapter:
// version-conditional booking updates and idempotency-key uniqueness. A unit
// of work holds the store mutex for its whole duration and rolls back by
// snapshot on error, so transactions are serialized and all-or-nothing.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/flightrebooking/internal/domain"
	"github.com/Domenick1991/flightrebooking/internal/errs"
	"github.com/Domenick1991/flightrebooking/internal/repository"
	"github.com/google/uuid"
)

type data struct {
	flights     map[uuid.UUID]domain.Flight
	bookings    map[string]domain.Booking
	disruptions map[uuid.UUID]domain.Disruption
	audits      map[uuid.UUID]domain.RebookingAudit
}

func (d *data) clone() *data {
	c := &data{
		flights:     make(map[uuid.UUID]domain.Flight, len(d.flights)),
		bookings:    make(map[string]domain.Booking, len(d.bookings)),
		disruptions: make(map[uuid.UUID]domain.Disruption, len(d.disruptions)),
		audits:      make(map[uuid.UUID]domain.RebookingAudit, len(d.audits)),
	}
	for k, v := range d.flights {
		c.flights[k] = v
	}
	for k, v := range d.bookings {
		c.bookings[k] = v
	}
	for k, v := range d.disruptions {
		c.disruptions[k] = v
	}
	for k, v := range d.audits {
		c.audits[k] = v
	}
	return c
}

type Store struct {
	mu sync.Mutex
	d  *data
}

func New() *Store {
	return &Store{d: &data{
		flights:     make(map[uuid.UUID]domain.Flight),
		bookings:    make(map[string]domain.Booking),
		disruptions: make(map[uuid.UUID]domain.Disruption),
		audits:      make(map[uuid.UUID]domain.RebookingAudit),
	}}
}

func (s *Store) AddFlight(f domain.Flight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.flights[f.ID] = f
}

func (s *Store) AddBooking(b domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.bookings[b.Reference] = b
}

func (s *Store) AddDisruption(d domain.Disruption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.disruptions[d.BookingID] = d
}

// BookingVersion reads the current version of a booking; test helper.
func (s *Store) BookingVersion(reference string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.bookings[reference].Version
}

// AuditCount reports the number of stored audit rows; test helper.
func (s *Store) AuditCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.d.audits)
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx repository.Stores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(ctx, rawStores{s.d}); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

func (s *Store) Flights() repository.FlightRepository         { return lockedFlights{s} }
func (s *Store) Bookings() repository.BookingRepository       { return lockedBookings{s} }
func (s *Store) Audits() repository.AuditRepository           { return lockedAudits{s} }
func (s *Store) Disruptions() repository.DisruptionRepository { return lockedDisruptions{s} }

var (
	_ repository.Stores     = (*Store)(nil)
	_ repository.UnitOfWork = (*Store)(nil)
)

// rawStores operates directly on the data; only used while the mutex is held.
type rawStores struct{ d *data }

func (r rawStores) Flights() repository.FlightRepository         { return flightStore{r.d} }
func (r rawStores) Bookings() repository.BookingRepository       { return bookingStore{r.d} }
func (r rawStores) Audits() repository.AuditRepository           { return auditStore{r.d} }
func (r rawStores) Disruptions() repository.DisruptionRepository { return disruptionStore{r.d} }

type flightStore struct{ d *data }

func (f flightStore) List(ctx context.Context) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0, len(f.d.flights))
	for _, fl := range f.d.flights {
		flights = append(flights, fl)
	}
	sort.Slice(flights, func(i, j int) bool {
		return flights[i].ScheduledDeparture.Before(flights[j].ScheduledDeparture)
	})
	return flights, nil
}

func (f flightStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error) {
	fl, ok := f.d.flights[id]
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	return &fl, nil
}

func (f flightStore) FindByRoute(ctx context.Context, origin, destination string, after time.Time) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0)
	for _, fl := range f.d.flights {
		if fl.Origin == origin && fl.Destination == destination && fl.ScheduledDeparture.After(after) {
			flights = append(flights, fl)
		}
	}
	sort.Slice(flights, func(i, j int) bool {
		return flights[i].ScheduledDeparture.Before(flights[j].ScheduledDeparture)
	})
	return flights, nil
}

type bookingStore struct{ d *data }

func (b bookingStore) GetByReference(ctx context.Context, reference string) (*domain.BookingDetails, error) {
	booking, ok := b.d.bookings[reference]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	original, ok := b.d.flights[booking.OriginalFlightID]
	if !ok {
		return nil, errs.Newf("booking %s references missing flight %s", reference, booking.OriginalFlightID)
	}

	details := &domain.BookingDetails{Booking: booking, OriginalFlight: original}
	if booking.RebookedFlightID != nil {
		if rf, ok := b.d.flights[*booking.RebookedFlightID]; ok {
			details.RebookedFlight = &rf
		}
	}
	if disr, ok := b.d.disruptions[booking.ID]; ok {
		details.Disruption = &disr
	}
	return details, nil
}

func (b bookingStore) MarkRebooked(ctx context.Context, id uuid.UUID, expectedVersion int64, flightID uuid.UUID, at time.Time) error {
	return b.update(id, expectedVersion, func(booking *domain.Booking) {
		booking.Status = domain.BookingStatusRebooked
		booking.RebookedFlightID = &flightID
		booking.UpdatedAt = at
	})
}

func (b bookingStore) MarkDisrupted(ctx context.Context, id uuid.UUID, expectedVersion int64, at time.Time) error {
	return b.update(id, expectedVersion, func(booking *domain.Booking) {
		booking.Status = domain.BookingStatusDisrupted
		booking.UpdatedAt = at
	})
}

func (b bookingStore) update(id uuid.UUID, expectedVersion int64, apply func(*domain.Booking)) error {
	for ref, booking := range b.d.bookings {
		if booking.ID != id {
			continue
		}
		if booking.Version != expectedVersion {
			return domain.ErrVersionConflict
		}
		apply(&booking)
		booking.Version++
		b.d.bookings[ref] = booking
		return nil
	}
	return domain.ErrVersionConflict
}

type auditStore struct{ d *data }

func (a auditStore) GetByIdempotencyKey(ctx context.Context, key uuid.UUID) (*domain.RebookingAudit, error) {
	audit, ok := a.d.audits[key]
	if !ok {
		return nil, nil
	}
	return &audit, nil
}

func (a auditStore) Insert(ctx context.Context, audit *domain.RebookingAudit) error {
	if _, ok := a.d.audits[audit.IdempotencyKey]; ok {
		return errs.Mark(errs.Newf("duplicate idempotency key %s", audit.IdempotencyKey), domain.ErrIdempotencyKeyReused)
	}
	a.d.audits[audit.IdempotencyKey] = *audit
	return nil
}

type disruptionStore struct{ d *data }

func (ds disruptionStore) Insert(ctx context.Context, d *domain.Disruption) error {
	ds.d.disruptions[d.BookingID] = *d
	return nil
}

type lockedFlights struct{ s *Store }

func (l lockedFlights) List(ctx context.Context) ([]domain.Flight, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return flightStore{l.s.d}.List(ctx)
}

func (l lockedFlights) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return flightStore{l.s.d}.GetByID(ctx, id)
}

func (l lockedFlights) FindByRoute(ctx context.Context, origin, destination string, after time.Time) ([]domain.Flight, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return flightStore{l.s.d}.FindByRoute(ctx, origin, destination, after)
}

type lockedBookings struct{ s *Store }

func (l lockedBookings) GetByReference(ctx context.Context, reference string) (*domain.BookingDetails, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return bookingStore{l.s.d}.GetByReference(ctx, reference)
}

func (l lockedBookings) MarkRebooked(ctx context.Context, id uuid.UUID, expectedVersion int64, flightID uuid.UUID, at time.Time) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return bookingStore{l.s.d}.MarkRebooked(ctx, id, expectedVersion, flightID, at)
}

func (l lockedBookings) MarkDisrupted(ctx context.Context, id uuid.UUID, expectedVersion int64, at time.Time) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return bookingStore{l.s.d}.MarkDisrupted(ctx, id, expectedVersion, at)
}

type lockedAudits struct{ s *Store }

func (l lockedAudits) GetByIdempotencyKey(ctx context.Context, key uuid.UUID) (*domain.RebookingAudit, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return auditStore{l.s.d}.GetByIdempotencyKey(ctx, key)
}

func (l lockedAudits) Insert(ctx context.Context, audit *domain.RebookingAudit) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return auditStore{l.s.d}.Insert(ctx, audit)
}

type lockedDisruptions struct{ s *Store }

func (l lockedDisruptions) Insert(ctx context.Context, d *domain.Disruption) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return disruptionStore{l.s.d}.Insert(ctx, d)
}
