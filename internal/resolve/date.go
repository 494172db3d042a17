// Package resolve decides the authoritative sale date of a submission and how timely it was.
package resolve

import (
	"time"

	"github.com/Veraticus/salesflow/internal/model"
)

// Hours of the morning window in which a next-day message still reports yesterday's sale.
const (
	MorningStartHour = 6
	MorningEndHour   = 11
)

// CalendarDate returns the calendar date of t, in t's own location, as UTC midnight.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(CalendarDate(b).Sub(CalendarDate(a)).Hours() / 24)
}

// ResolveSaleDate picks the sale date from the date the rep claims and the
// time the message was sent, and reports which rule decided it.
//
// The returned date is always either the claimed date or the message date.
func ResolveSaleDate(claimed, messageTS *time.Time) (*time.Time, model.DateRule) {
	if claimed == nil || messageTS == nil {
		return nil, model.DateRuleMissing
	}

	claimedDate := CalendarDate(*claimed)
	msgDate := CalendarDate(*messageTS)
	delta := DaysBetween(claimedDate, msgDate)

	switch {
	case delta == 0:
		return &claimedDate, model.DateRuleClaimedEqMsgDate
	case delta == 1 && inMorningWindow(*messageTS):
		return &claimedDate, model.DateRuleNextDayMorning
	case delta > 1 || delta < -1:
		return &msgDate, model.DateRuleClaimFarOff
	default:
		return &claimedDate, model.DateRuleSmallMismatch
	}
}

func inMorningWindow(t time.Time) bool {
	h := t.Hour()
	return h >= MorningStartHour && h <= MorningEndHour
}
