package rebooking

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/Domenick1991/flightrebooking/internal/domain"
	"github.com/Domenick1991/flightrebooking/internal/errs"
	"github.com/Domenick1991/flightrebooking/internal/repository"
	"github.com/google/uuid"
)

const maxOptions = 5

type RebookingUseCase interface {
	GetBooking(ctx context.Context, reference string) (*domain.BookingDetails, error)
	GetRebookingOptions(ctx context.Context, reference string) (*OptionsResponse, error)
	Rebook(ctx context.Context, input RebookInput) (*RebookResult, error)
}

type RebookInput struct {
	Reference        string
	SelectedFlightID string
	IdempotencyKey   uuid.UUID
	// ExpectedVersion is the client's If-Match token; nil when absent.
	ExpectedVersion *int64
}

type RebookingService struct {
	reads repository.Stores
	uow   repository.UnitOfWork
	now   func() time.Time
}

type RebookingServiceOption func(*RebookingService)

func WithClock(now func() time.Time) RebookingServiceOption {
	return func(s *RebookingService) {
		s.now = now
	}
}

func NewRebookingService(reads repository.Stores, uow repository.UnitOfWork, opts ...RebookingServiceOption) *RebookingService {
	service := &RebookingService{
		reads: reads,
		uow:   uow,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *RebookingService) GetBooking(ctx context.Context, reference string) (*domain.BookingDetails, error) {
	return s.reads.Bookings().GetByReference(ctx, reference)
}

// GetRebookingOptions is a pure read: no lock is taken and nothing is written.
func (s *RebookingService) GetRebookingOptions(ctx context.Context, reference string) (*OptionsResponse, error) {
	return s.computeOptions(ctx, s.reads, reference)
}

func (s *RebookingService) computeOptions(ctx context.Context, stores repository.Stores, reference string) (*OptionsResponse, error) {
	details, err := stores.Bookings().GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if details.Status != domain.BookingStatusDisrupted {
		return nil, errs.Mark(errs.Newf("booking %s has status %s", reference, details.Status), domain.ErrNotEligible)
	}

	original := details.OriginalFlight
	anchor := original.ScheduledDeparture
	if details.Disruption != nil {
		anchor = details.Disruption.OccurredAt
	}

	candidates, err := stores.Flights().FindByRoute(ctx, original.Origin, original.Destination, anchor)
	if err != nil {
		return nil, err
	}

	options := make([]Option, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == original.ID {
			continue
		}
		options = append(options, Option{
			Flight: NewFlightSummary(candidate),
			Score:  scoreCandidate(candidate, original),
			Reason: candidateReason(candidate, original),
		})
	}

	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Score != options[j].Score {
			return options[i].Score > options[j].Score
		}
		return options[i].Flight.ScheduledDeparture.Before(options[j].Flight.ScheduledDeparture)
	})
	if len(options) > maxOptions {
		options = options[:maxOptions]
	}

	return &OptionsResponse{
		BookingReference: details.Reference,
		GeneratedAt:      s.now().UTC(),
		Options:          options,
	}, nil
}

// Rebook commits a rebooking decision exactly once per idempotency key. The
// whole operation runs inside one unit of work; no partial state is ever
// visible, and a duplicate key replays the stored response without touching
// booking state again.
func (s *RebookingService) Rebook(ctx context.Context, input RebookInput) (*RebookResult, error) {
	var result *RebookResult

	err := s.uow.Within(ctx, func(ctx context.Context, tx repository.Stores) error {
		existing, err := tx.Audits().GetByIdempotencyKey(ctx, input.IdempotencyKey)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.BookingReference != input.Reference {
				return errs.Mark(
					errs.Newf("idempotency key %s is bound to booking %s", input.IdempotencyKey, existing.BookingReference),
					domain.ErrIdempotencyKeyReused)
			}
			var stored RebookResponse
			if err := json.Unmarshal(existing.ResponsePayload, &stored); err != nil {
				return errs.Wrap(err, "decode stored rebooking response")
			}
			result = &RebookResult{Response: stored, Replay: true}
			return nil
		}

		details, err := tx.Bookings().GetByReference(ctx, input.Reference)
		if err != nil {
			return err
		}

		if input.ExpectedVersion != nil && *input.ExpectedVersion != details.Version {
			return errs.Mark(
				errs.Newf("expected version %d but booking %s is at version %d", *input.ExpectedVersion, input.Reference, details.Version),
				domain.ErrVersionConflict)
		}

		if details.Status == domain.BookingStatusRebooked {
			return errs.Mark(errs.Newf("booking %s has already been rebooked", input.Reference), domain.ErrAlreadyRebooked)
		}
		if details.Status != domain.BookingStatusDisrupted {
			return errs.Mark(errs.Newf("booking %s has status %s", input.Reference, details.Status), domain.ErrNotEligible)
		}

		// The freshly recomputed option list, not anything the client saw
		// earlier, decides whether the selection is valid.
		options, err := s.computeOptions(ctx, tx, input.Reference)
		if err != nil {
			return err
		}
		valid := false
		for _, opt := range options.Options {
			if opt.Flight.FlightID == input.SelectedFlightID {
				valid = true
				break
			}
		}
		if !valid {
			return errs.Mark(errs.Newf("flight %s is not among the current rebooking options", input.SelectedFlightID), domain.ErrInvalidFlightSelection)
		}

		flightID, err := uuid.Parse(input.SelectedFlightID)
		if err != nil {
			return errs.Mark(errs.Newf("flight id %s is not a valid identifier", input.SelectedFlightID), domain.ErrInvalidFlightSelection)
		}
		newFlight, err := tx.Flights().GetByID(ctx, flightID)
		if err != nil {
			if errors.Is(err, domain.ErrFlightNotFound) {
				// Not a catalog 404: an absent flight is a bad selection.
				return errs.Mark(errs.Newf("flight %s does not exist", input.SelectedFlightID), domain.ErrInvalidFlightSelection)
			}
			return err
		}

		rebookedAt := s.now().UTC()
		response := RebookResponse{
			BookingReference: details.Reference,
			Status:           string(domain.BookingStatusRebooked),
			PreviousFlight:   NewFlightSummary(details.OriginalFlight),
			NewFlight:        NewFlightSummary(*newFlight),
			RebookedAt:       rebookedAt,
		}

		// Conditional write: if another commit bumped the version since the
		// read above, this fails and the whole unit of work aborts.
		if err := tx.Bookings().MarkRebooked(ctx, details.ID, details.Version, newFlight.ID, rebookedAt); err != nil {
			return err
		}

		payload, err := json.Marshal(response)
		if err != nil {
			return errs.Wrap(err, "encode rebooking response")
		}
		audit := &domain.RebookingAudit{
			ID:               uuid.New(),
			BookingID:        details.ID,
			BookingReference: details.Reference,
			IdempotencyKey:   input.IdempotencyKey,
			PreviousFlightID: details.OriginalFlightID,
			NewFlightID:      newFlight.ID,
			Outcome:          domain.RebookingOutcomeSuccess,
			ResponsePayload:  payload,
			CreatedAt:        rebookedAt,
		}
		if err := tx.Audits().Insert(ctx, audit); err != nil {
			return err
		}

		result = &RebookResult{Response: response, Replay: false}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

var _ RebookingUseCase = (*RebookingService)(nil)
