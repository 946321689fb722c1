package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"
)

// rrule weekday constants indexed by the wire encoding (0 = Sunday).
var rruleWeekdays = []rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// Next for a weekly rule walks the BYDAY pattern with an RFC 5545 weekly
// rule. The weekday set uses the wire encoding, Sunday = 0.
func (w Weekly) Next(now time.Time, _ *time.Time, loc *time.Location) *time.Time {
	if len(w.Days) == 0 {
		return nil
	}

	var byDay []rrule.Weekday
	for _, d := range w.Days {
		if d >= 0 && d < len(rruleWeekdays) {
			byDay = append(byDay, rruleWeekdays[d])
		}
	}
	if len(byDay) == 0 {
		return nil
	}

	h, m := parseClock(w.Time)
	local := now.In(loc)

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: byDay,
		Byhour:    []int{h},
		Byminute:  []int{m},
		Bysecond:  []int{0},
		Dtstart:   local,
	})
	if err != nil {
		return nil
	}

	next := rule.After(local, false)
	if next.IsZero() {
		return nil
	}
	return &next
}
