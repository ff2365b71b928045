package domain

import (
	"time"

	"github.com/google/uuid"
)

// Flight is immutable reference data; rows are never updated after creation.
type Flight struct {
	ID                 uuid.UUID
	FlightNumber       string
	Origin             string
	Destination        string
	ScheduledDeparture time.Time
	CreatedAt          time.Time
}
