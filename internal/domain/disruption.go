package domain

import (
	"time"

	"github.com/google/uuid"
)

type DisruptionType string

const (
	DisruptionTypeCancellation DisruptionType = "CANCELLATION"
	DisruptionTypeDelay        DisruptionType = "DELAY"
	DisruptionTypeOther        DisruptionType = "OTHER"
)

// Disruption is recorded once per booking and never mutated afterwards.
type Disruption struct {
	ID                uuid.UUID
	BookingID         uuid.UUID
	Type              DisruptionType
	ReasonCode        string
	ReasonDescription string
	OccurredAt        time.Time
	CreatedAt         time.Time
}
