// Package recurrence models the four reminder recurrence kinds as an
// explicit tagged variant and computes trigger instants from them. The flat
// wire record (models.Reminder) is mapped to a Rule only here, so invalid
// field combinations never travel further than the store boundary.
package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stayclose/stayclose/internal/models"
)

// Granularity is the coarse repeat unit the device scheduler natively
// supports. Anything finer (weekly patterns, N-unit intervals) has to be
// approximated and re-anchored by a resync.
type Granularity string

const (
	GranularityNone Granularity = "none"
	GranularityHour Granularity = "hour"
	GranularityDay  Granularity = "day"
)

// Rule is one reminder recurrence kind.
type Rule interface {
	// Describe returns the human-readable phrasing shown inside the
	// notification body.
	Describe() string
	// IsRepeating reports whether the rule fires more than once.
	IsRepeating() bool
	// Granularity maps the rule onto the device scheduler's native repeat
	// unit. Weekly is not expressible and returns GranularityNone; the
	// periodic resync bounds the resulting drift.
	Granularity() Granularity
	// Next computes the next firing instant after now. lastTriggered is the
	// previous firing, if any. A nil result means the rule has no further
	// occurrence.
	Next(now time.Time, lastTriggered *time.Time, loc *time.Location) *time.Time
}

const defaultClock = "12:00"

var weekdayNames = []string{"ראשון", "שני", "שלישי", "רביעי", "חמישי", "שישי", "שבת"}

// OneTime fires exactly once at an absolute instant.
type OneTime struct {
	At        *time.Time
	Triggered bool
}

func (o OneTime) Describe() string         { return "תאריך ספציפי" }
func (o OneTime) IsRepeating() bool        { return false }
func (o OneTime) Granularity() Granularity { return GranularityNone }

func (o OneTime) Next(now time.Time, _ *time.Time, _ *time.Location) *time.Time {
	if o.Triggered || o.At == nil {
		return nil
	}
	at := *o.At
	return &at
}

// Recurring fires every N hours or every N days, anchored on the previous
// firing (or on creation time for the first occurrence).
type Recurring struct {
	Unit  models.IntervalType
	Value int
}

func (r Recurring) Describe() string {
	unit := "ימים"
	if r.Unit == models.IntervalHours {
		unit = "שעות"
	}
	return fmt.Sprintf("כל %d %s", r.value(), unit)
}

func (r Recurring) IsRepeating() bool { return true }

func (r Recurring) Granularity() Granularity {
	if r.Unit == models.IntervalHours {
		return GranularityHour
	}
	return GranularityDay
}

func (r Recurring) Next(now time.Time, lastTriggered *time.Time, _ *time.Location) *time.Time {
	base := now
	if lastTriggered != nil {
		base = *lastTriggered
	}
	var next time.Time
	if r.Unit == models.IntervalHours {
		next = base.Add(time.Duration(r.value()) * time.Hour)
	} else {
		next = base.AddDate(0, 0, r.value())
	}
	return &next
}

func (r Recurring) value() int {
	if r.Value < 1 {
		return 1
	}
	return r.Value
}

// Weekly fires on a set of weekdays (0 = Sunday) at a fixed local time.
type Weekly struct {
	Days []int
	Time string
}

func (w Weekly) Describe() string {
	var names []string
	for _, d := range w.Days {
		if d >= 0 && d < len(weekdayNames) {
			names = append(names, weekdayNames[d])
		}
	}
	desc := strings.Join(names, ", ")
	if w.Time != "" {
		desc += " בשעה " + w.Time
	}
	return desc
}

func (w Weekly) IsRepeating() bool        { return true }
func (w Weekly) Granularity() Granularity { return GranularityNone }

// Daily fires every day at a fixed local time.
type Daily struct {
	Time string
}

func (d Daily) Describe() string {
	clock := d.Time
	if clock == "" {
		clock = defaultClock
	}
	return "כל יום בשעה " + clock
}

func (d Daily) IsRepeating() bool        { return true }
func (d Daily) Granularity() Granularity { return GranularityDay }

func (d Daily) Next(now time.Time, _ *time.Time, loc *time.Location) *time.Time {
	h, m := parseClock(d.Time)
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), h, m, 0, 0, loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return &next
}

// FromReminder maps a flat wire record onto its rule variant. Unknown types
// degrade to the recurring interpretation so a malformed record still gets
// a sensible description instead of crashing the caller.
func FromReminder(r *models.Reminder) Rule {
	switch r.Type {
	case models.ReminderOneTime:
		return OneTime{At: r.ScheduledAt, Triggered: r.OneTimeTriggered}
	case models.ReminderWeekly:
		return Weekly{Days: r.Weekdays, Time: r.SpecificTime}
	case models.ReminderDaily:
		return Daily{Time: r.SpecificTime}
	default:
		return Recurring{Unit: r.IntervalType, Value: r.IntervalValue}
	}
}

// Describe is the record-level convenience used when building notification
// text from a wire record.
func Describe(r *models.Reminder) string {
	return FromReminder(r).Describe()
}

// IsRepeating reports whether the record describes a repeating schedule.
func IsRepeating(r *models.Reminder) bool {
	return FromReminder(r).IsRepeating()
}

// RepeatGranularity maps the record onto the device scheduler's repeat unit.
func RepeatGranularity(r *models.Reminder) Granularity {
	return FromReminder(r).Granularity()
}

// parseClock parses "HH:MM", falling back to noon on malformed input. The
// editor validates the field before it reaches the store, so the fallback
// only covers records written by older clients.
func parseClock(s string) (hour, minute int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 12, 0
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 12, 0
	}
	return h, m
}
