package disruption

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flightrebooking/internal/domain"
	"github.com/Domenick1991/flightrebooking/internal/kafka"
	"github.com/Domenick1991/flightrebooking/internal/logger"
	"github.com/Domenick1991/flightrebooking/internal/repository"
	"github.com/google/uuid"
)

type DisruptionUseCase interface {
	RecordDisruption(ctx context.Context, event kafka.DisruptionEvent) error
}

// Service applies inbound disruption events: it records the Disruption and
// flips the booking CONFIRMED -> DISRUPTED with the same version-conditional
// write the rebooking commit uses.
type Service struct {
	uow repository.UnitOfWork
	now func() time.Time
}

func NewService(uow repository.UnitOfWork) *Service {
	return &Service{uow: uow, now: time.Now}
}

func (s *Service) RecordDisruption(ctx context.Context, event kafka.DisruptionEvent) error {
	err := s.uow.Within(ctx, func(ctx context.Context, tx repository.Stores) error {
		details, err := tx.Bookings().GetByReference(ctx, event.BookingReference)
		if err != nil {
			return err
		}
		// Duplicate or late events are no-ops; the first disruption wins.
		if details.Status != domain.BookingStatusConfirmed {
			logger.InfoLogger.Infof("ignoring disruption event for booking %s in status %s", details.Reference, details.Status)
			return nil
		}

		now := s.now().UTC()
		record := &domain.Disruption{
			ID:                uuid.New(),
			BookingID:         details.ID,
			Type:              disruptionType(event.Type),
			ReasonCode:        event.ReasonCode,
			ReasonDescription: event.Reason,
			OccurredAt:        event.OccurredAt,
			CreatedAt:         now,
		}
		if err := tx.Disruptions().Insert(ctx, record); err != nil {
			return err
		}
		return tx.Bookings().MarkDisrupted(ctx, details.ID, details.Version, now)
	})
	// A version conflict means another writer got to the booking first, which
	// for a disruption event is the same lost race as the status check above.
	if errors.Is(err, domain.ErrVersionConflict) {
		logger.InfoLogger.Infof("ignoring disruption event for booking %s after concurrent update", event.BookingReference)
		return nil
	}
	return err
}

func disruptionType(raw string) domain.DisruptionType {
	switch domain.DisruptionType(raw) {
	case domain.DisruptionTypeCancellation, domain.DisruptionTypeDelay:
		return domain.DisruptionType(raw)
	default:
		return domain.DisruptionTypeOther
	}
}

var _ DisruptionUseCase = (*Service)(nil)
