package rebooking

import (
	"fmt"
	"time"

	"github.com/Domenick1991/flightrebooking/internal/domain"
)

// Scoring constants: base 100, flat penalty for leaving the original
// calendar date, 5 points per hour of delay capped at 40, and a bonus for
// departing within two hours of the original clock time.
const (
	baseScore        = 100
	dayChangePenalty = 30
	delayPenaltyCap  = 40
	similarTimeBonus = 10
)

func scoreCandidate(candidate, original domain.Flight) int {
	score := baseScore

	if !sameUTCDate(candidate.ScheduledDeparture, original.ScheduledDeparture) {
		score -= dayChangePenalty
	}

	delayMinutes := candidate.ScheduledDeparture.Sub(original.ScheduledDeparture) / time.Minute
	if delayMinutes > 0 {
		penalty := int(float64(delayMinutes) / 60.0 * 5)
		if penalty > delayPenaltyCap {
			penalty = delayPenaltyCap
		}
		score -= penalty
	}

	if clockDiffMinutes(candidate.ScheduledDeparture, original.ScheduledDeparture) <= 120 {
		score += similarTimeBonus
	}

	if score < 0 {
		score = 0
	}
	return score
}

// candidateReason builds the display string for an option. The day difference
// is calendar-date subtraction in UTC, not duration division: a flight 2h
// later across midnight is "Next day", a 25h gap landing on the same date
// (which cannot happen in UTC, but the rule is date-based regardless) is not.
func candidateReason(candidate, original domain.Flight) string {
	dayDiff := utcDateDiffDays(candidate.ScheduledDeparture, original.ScheduledDeparture)
	candClock := candidate.ScheduledDeparture.UTC()
	timeStr := fmt.Sprintf("%02d:%02d", candClock.Hour(), candClock.Minute())

	switch {
	case dayDiff == 0:
		if clockDiffMinutes(candidate.ScheduledDeparture, original.ScheduledDeparture) <= 120 {
			return "Same day, similar departure time, direct flight"
		}
		hoursDiff := candidate.ScheduledDeparture.Sub(original.ScheduledDeparture) / time.Hour
		return fmt.Sprintf("Same day, %dh later than original, direct flight", hoursDiff)
	case dayDiff == 1:
		return fmt.Sprintf("Next day, %s departure, direct flight", timeStr)
	default:
		return fmt.Sprintf("%d days later, %s departure", dayDiff, timeStr)
	}
}

func sameUTCDate(a, b time.Time) bool {
	return utcDateDiffDays(a, b) == 0
}

// utcDateDiffDays is the signed number of calendar days from b's UTC date
// to a's UTC date.
func utcDateDiffDays(a, b time.Time) int {
	au := a.UTC()
	bu := b.UTC()
	aday := time.Date(au.Year(), au.Month(), au.Day(), 0, 0, 0, 0, time.UTC)
	bday := time.Date(bu.Year(), bu.Month(), bu.Day(), 0, 0, 0, 0, time.UTC)
	return int(aday.Sub(bday) / (24 * time.Hour))
}

// clockDiffMinutes compares UTC times of day, ignoring dates. The comparison
// does not wrap around midnight: 23:00 and 01:00 are 22 hours apart.
func clockDiffMinutes(a, b time.Time) int {
	au := a.UTC()
	bu := b.UTC()
	am := au.Hour()*60 + au.Minute()
	bm := bu.Hour()*60 + bu.Minute()
	diff := am - bm
	if diff < 0 {
		diff = -diff
	}
	return diff
}
