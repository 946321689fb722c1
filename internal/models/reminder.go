package models

import "time"

// ReminderType discriminates which of the reminder fields are meaningful.
type ReminderType string

const (
	ReminderOneTime   ReminderType = "one_time"
	ReminderRecurring ReminderType = "recurring"
	ReminderWeekly    ReminderType = "weekly"
	ReminderDaily     ReminderType = "daily"
)

// IntervalType is the unit of a recurring reminder's interval.
type IntervalType string

const (
	IntervalHours IntervalType = "hours"
	IntervalDays  IntervalType = "days"
)

// DefaultTimezone is used whenever device timezone resolution fails or a
// record arrives without one.
const DefaultTimezone = "Asia/Jerusalem"

// Reminder is the server-canonical reminder record. It is a flat wire
// representation: only the fields matching Type are meaningful, the rest
// stay at their zero value. next_trigger and last_triggered are owned by
// the store; clients treat them as read-only.
type Reminder struct {
	ID               int64        `json:"id" db:"id"`
	UserID           string       `json:"user_id,omitempty" db:"user_id"`
	ContactID        int64        `json:"contact_id" db:"contact_id"`
	Type             ReminderType `json:"reminder_type" db:"reminder_type"`
	IntervalType     IntervalType `json:"interval_type,omitempty" db:"interval_type"`
	IntervalValue    int          `json:"interval_value,omitempty" db:"interval_value"`
	ScheduledAt      *time.Time   `json:"scheduled_datetime,omitempty" db:"scheduled_datetime"`
	OneTimeTriggered bool         `json:"one_time_triggered" db:"one_time_triggered"`
	Weekdays         []int        `json:"weekdays,omitempty" db:"weekdays"`
	SpecificTime     string       `json:"specific_time,omitempty" db:"specific_time"`
	Timezone         string       `json:"timezone,omitempty" db:"timezone"`
	Enabled          bool         `json:"enabled" db:"enabled"`
	LastTriggered    *time.Time   `json:"last_triggered,omitempty" db:"last_triggered"`
	NextTrigger      *time.Time   `json:"next_trigger,omitempty" db:"next_trigger"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
}

// ReminderCreate is the payload accepted by the store on create and update.
type ReminderCreate struct {
	ContactID     int64        `json:"contact_id"`
	Type          ReminderType `json:"reminder_type"`
	IntervalType  IntervalType `json:"interval_type,omitempty"`
	IntervalValue int          `json:"interval_value,omitempty"`
	ScheduledAt   *time.Time   `json:"scheduled_datetime,omitempty"`
	Weekdays      []int        `json:"weekdays,omitempty"`
	SpecificTime  string       `json:"specific_time,omitempty"`
	Timezone      string       `json:"timezone,omitempty"`
	Enabled       bool         `json:"enabled"`
}

// HasFutureTrigger reports whether the reminder carries a next_trigger that
// is strictly after now. Only such reminders are mirrored to the device.
func (r *Reminder) HasFutureTrigger(now time.Time) bool {
	return r.NextTrigger != nil && r.NextTrigger.After(now)
}

// Location resolves the reminder's IANA timezone, falling back to the
// default zone when the field is empty or unknown.
func (r *Reminder) Location() *time.Location {
	return locationOrDefault(r.Timezone)
}

func locationOrDefault(name string) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
