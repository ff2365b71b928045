package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusDisrupted BookingStatus = "DISRUPTED"
	BookingStatusRebooked  BookingStatus = "REBOOKED"
)

type Booking struct {
	ID               uuid.UUID
	Reference        string
	Status           BookingStatus
	PassengerName    string
	OriginalFlightID uuid.UUID
	RebookedFlightID *uuid.UUID
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BookingDetails is a booking with its associations resolved in one fetch,
// so callers never reach back into the store for related rows.
type BookingDetails struct {
	Booking
	OriginalFlight Flight
	RebookedFlight *Flight
	Disruption     *Disruption
}
