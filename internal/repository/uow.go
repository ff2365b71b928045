package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightrebooking/internal/errs"
	"github.com/Domenick1991/flightrebooking/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same repositories serve both the lock-free read path and the unit of work.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgStores struct {
	flights     FlightRepository
	bookings    BookingRepository
	audits      AuditRepository
	disruptions DisruptionRepository
}

// NewStores builds repositories over a shared database handle.
func NewStores(db Querier) Stores {
	return &pgStores{
		flights:     NewFlightRepository(db),
		bookings:    NewBookingRepository(db),
		audits:      NewAuditRepository(db),
		disruptions: NewDisruptionRepository(db),
	}
}

func (s *pgStores) Flights() FlightRepository         { return s.flights }
func (s *pgStores) Bookings() BookingRepository       { return s.bookings }
func (s *pgStores) Audits() AuditRepository           { return s.audits }
func (s *pgStores) Disruptions() DisruptionRepository { return s.disruptions }

type PGUnitOfWork struct {
	pool *pgxpool.Pool
}

func NewUnitOfWork(pool *pgxpool.Pool) UnitOfWork {
	return &PGUnitOfWork{pool: pool}
}

func (u *PGUnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errs.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			logger.ErrorLogger.Errorf("rollback failed: %v", rollbackErr)
		}
	}()

	if err := fn(ctx, NewStores(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errs.Wrap(err, "commit transaction")
	}
	return nil
}

var _ UnitOfWork = (*PGUnitOfWork)(nil)
