package domain

import (
	"time"

	"github.com/google/uuid"
)

type RebookingOutcome string

const RebookingOutcomeSuccess RebookingOutcome = "SUCCESS"

// RebookingAudit is append-only: one row per idempotency key, written inside
// the same transaction as the booking update it records. ResponsePayload is
// the serialized response returned to the client, replayed verbatim on
// duplicate requests.
type RebookingAudit struct {
	ID               uuid.UUID
	BookingID        uuid.UUID
	BookingReference string
	IdempotencyKey   uuid.UUID
	PreviousFlightID uuid.UUID
	NewFlightID      uuid.UUID
	Outcome          RebookingOutcome
	ResponsePayload  []byte
	CreatedAt        time.Time
}
