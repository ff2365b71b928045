package rebooking

import (
	"time"

	"github.com/Domenick1991/flightrebooking/internal/domain"
)

// FlightSummary is the externally visible shape of a flight. It is also what
// gets frozen into the audit snapshot, so field names must stay stable.
type FlightSummary struct {
	FlightID           string    `json:"flight_id"`
	FlightNumber       string    `json:"flight_number"`
	Origin             string    `json:"origin"`
	Destination        string    `json:"destination"`
	ScheduledDeparture time.Time `json:"scheduled_departure"`
}

func NewFlightSummary(f domain.Flight) FlightSummary {
	return FlightSummary{
		FlightID:           f.ID.String(),
		FlightNumber:       f.FlightNumber,
		Origin:             f.Origin,
		Destination:        f.Destination,
		ScheduledDeparture: f.ScheduledDeparture,
	}
}

// Option is a transient ranked candidate; never persisted.
type Option struct {
	Flight FlightSummary `json:"flight"`
	Score  int           `json:"score"`
	Reason string        `json:"reason"`
}

type OptionsResponse struct {
	BookingReference string    `json:"booking_reference"`
	GeneratedAt      time.Time `json:"generated_at"`
	Options          []Option  `json:"options"`
}

type RebookResponse struct {
	BookingReference string        `json:"booking_reference"`
	Status           string        `json:"status"`
	PreviousFlight   FlightSummary `json:"previous_flight"`
	NewFlight        FlightSummary `json:"new_flight"`
	RebookedAt       time.Time     `json:"rebooked_at"`
}

// RebookResult distinguishes a fresh commit from a replay of a stored one;
// the payload shape is identical either way.
type RebookResult struct {
	Response RebookResponse
	Replay   bool
}
