// Package editor holds the in-progress state of the reminder form and turns
// it into a valid create/update payload. State only changes through the
// explicit setters; validation runs at submit time.
package editor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stayclose/stayclose/internal/models"
	"github.com/stayclose/stayclose/internal/notifier"
)

// ValidationError reports a missing or invalid field for the selected
// reminder type. It blocks submission before any store call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Store is the slice of the reminder store the editor writes through.
type Store interface {
	CreateReminder(ctx context.Context, payload models.ReminderCreate) (*models.Reminder, error)
	UpdateReminder(ctx context.Context, id int64, payload models.ReminderCreate) (*models.Reminder, error)
}

// TimezoneResolver returns the device's IANA timezone. Resolution failure
// falls back to models.DefaultTimezone rather than omitting the field.
type TimezoneResolver func() (string, error)

// Editor is the composite form state for one reminder. A zero reminderID
// means the submit creates a new record; otherwise it updates.
type Editor struct {
	store       Store
	adapter     *notifier.Adapter
	logger      *logrus.Logger
	resolveZone TimezoneResolver

	reminderID    int64
	contactID     int64
	contactName   string
	typ           models.ReminderType
	intervalType  models.IntervalType
	intervalValue int
	date          string // one_time, "2006-01-02"
	clock         string // one_time, "15:04"
	weekdays      []int
	specificTime  string
	enabled       bool
}

// New creates an editor for a fresh reminder with the form's defaults:
// recurring every 7 days, enabled.
func New(store Store, adapter *notifier.Adapter, resolveZone TimezoneResolver, logger *logrus.Logger) *Editor {
	return &Editor{
		store:         store,
		adapter:       adapter,
		logger:        logger,
		resolveZone:   resolveZone,
		typ:           models.ReminderRecurring,
		intervalType:  models.IntervalDays,
		intervalValue: 7,
		enabled:       true,
	}
}

// ForReminder creates an editor preloaded from an existing record.
func ForReminder(store Store, adapter *notifier.Adapter, resolveZone TimezoneResolver, logger *logrus.Logger, r *models.Reminder) *Editor {
	e := New(store, adapter, resolveZone, logger)
	e.reminderID = r.ID
	e.contactID = r.ContactID
	e.typ = r.Type
	if r.IntervalType != "" {
		e.intervalType = r.IntervalType
	}
	if r.IntervalValue > 0 {
		e.intervalValue = r.IntervalValue
	}
	if r.ScheduledAt != nil {
		local := r.ScheduledAt.In(r.Location())
		e.date = local.Format("2006-01-02")
		e.clock = local.Format("15:04")
	}
	e.weekdays = append([]int(nil), r.Weekdays...)
	e.specificTime = r.SpecificTime
	e.enabled = r.Enabled
	return e
}

// SetContact binds the reminder to a contact. The name is only used for the
// notification body of the local mirror.
func (e *Editor) SetContact(id int64, name string) {
	e.contactID = id
	e.contactName = name
}
func (e *Editor) SetType(t models.ReminderType) { e.typ = t }

func (e *Editor) SetInterval(u models.IntervalType, v int) {
	e.intervalType = u
	e.intervalValue = v
}

func (e *Editor) SetDate(date string)      { e.date = date }
func (e *Editor) SetClock(clock string)    { e.clock = clock }
func (e *Editor) SetWeekdays(days []int)   { e.weekdays = append([]int(nil), days...) }
func (e *Editor) SetSpecificTime(t string) { e.specificTime = t }
func (e *Editor) SetEnabled(enabled bool)  { e.enabled = enabled }

// IsNew reports whether submitting will create a record.
func (e *Editor) IsNew() bool { return e.reminderID == 0 }

// Validate checks the rules for the selected reminder type.
func (e *Editor) Validate() error {
	if e.contactID == 0 {
		return &ValidationError{Field: "contact_id", Reason: "a contact is required"}
	}
	switch e.typ {
	case models.ReminderOneTime:
		if e.date == "" {
			return &ValidationError{Field: "scheduled_datetime", Reason: "date is required"}
		}
		if e.clock == "" {
			return &ValidationError{Field: "scheduled_datetime", Reason: "time is required"}
		}
	case models.ReminderRecurring:
		if e.intervalValue < 1 {
			return &ValidationError{Field: "interval_value", Reason: "must be at least 1"}
		}
	case models.ReminderWeekly:
		if len(e.weekdays) == 0 {
			return &ValidationError{Field: "weekdays", Reason: "select at least one day"}
		}
		if e.specificTime == "" {
			return &ValidationError{Field: "specific_time", Reason: "time is required"}
		}
	case models.ReminderDaily:
		if e.specificTime == "" {
			return &ValidationError{Field: "specific_time", Reason: "time is required"}
		}
	default:
		return &ValidationError{Field: "reminder_type", Reason: fmt.Sprintf("unknown type %q", e.typ)}
	}
	return nil
}

// BuildPayload assembles the store payload, carrying only the fields that
// belong to the selected type.
func (e *Editor) BuildPayload() (models.ReminderCreate, error) {
	zone := e.timezone()
	payload := models.ReminderCreate{
		ContactID: e.contactID,
		Type:      e.typ,
		Timezone:  zone,
		Enabled:   e.enabled,
	}

	switch e.typ {
	case models.ReminderOneTime:
		loc, err := time.LoadLocation(zone)
		if err != nil {
			loc = time.UTC
		}
		at, err := time.ParseInLocation("2006-01-02 15:04", e.date+" "+e.clock, loc)
		if err != nil {
			return models.ReminderCreate{}, &ValidationError{Field: "scheduled_datetime", Reason: "not a valid date and time"}
		}
		payload.ScheduledAt = &at
	case models.ReminderWeekly:
		payload.Weekdays = append([]int(nil), e.weekdays...)
		payload.SpecificTime = e.specificTime
	case models.ReminderDaily:
		payload.SpecificTime = e.specificTime
	default:
		payload.IntervalType = e.intervalType
		payload.IntervalValue = e.intervalValue
	}
	return payload, nil
}

// timezone resolves the device zone, falling back to the fixed default when
// the resolver is absent or fails.
func (e *Editor) timezone() string {
	if e.resolveZone == nil {
		return models.DefaultTimezone
	}
	zone, err := e.resolveZone()
	if err != nil || zone == "" {
		if err != nil {
			e.logger.WithError(err).Warn("Timezone resolution failed, using default")
		}
		return models.DefaultTimezone
	}
	return zone
}

// Submit validates the form, persists the reminder, and mirrors it into the
// local schedule. Persistence success is the operation's success criterion:
// every local-scheduling failure after that point is logged and swallowed.
func (e *Editor) Submit(ctx context.Context) (*models.Reminder, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	payload, err := e.BuildPayload()
	if err != nil {
		return nil, err
	}

	// New enabled reminders trigger the permission prompt up front so the
	// first notification is not silently lost. A denial only suppresses the
	// local mirror, never the creation itself.
	if e.IsNew() && e.enabled {
		if err := e.adapter.EnsurePermission(ctx); err != nil {
			e.logger.WithError(err).Warn("Notification permission unavailable, creating reminder anyway")
		}
	}

	var rec *models.Reminder
	if e.IsNew() {
		rec, err = e.store.CreateReminder(ctx, payload)
	} else {
		rec, err = e.store.UpdateReminder(ctx, e.reminderID, payload)
	}
	if err != nil {
		return nil, fmt.Errorf("persist reminder: %w", err)
	}

	if !e.IsNew() {
		if err := e.adapter.Cancel(ctx, rec.ID); err != nil {
			e.logger.WithError(err).Warnf("Failed to cancel stale local entry for reminder %d", rec.ID)
		}
	}
	if rec.Enabled && rec.NextTrigger != nil {
		name := e.contactName
		if name == "" {
			name = "איש קשר"
		}
		if err := e.adapter.Schedule(ctx, rec, name); err != nil {
			e.logger.WithError(err).Warnf("Failed to mirror reminder %d locally", rec.ID)
		}
	}

	e.reminderID = rec.ID
	return rec, nil
}
