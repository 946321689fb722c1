// Package service is the store's business logic layer. It owns the
// authoritative next_trigger and last_triggered values: clients only ever
// read them back.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stayclose/stayclose/internal/models"
	"github.com/stayclose/stayclose/internal/recurrence"
	"github.com/stayclose/stayclose/internal/repository"
)

var (
	// ErrContactNotFound is returned when a reminder references a contact
	// the user does not own.
	ErrContactNotFound = errors.New("contact not found")
	// ErrReminderNotFound is returned for operations on unknown reminders.
	ErrReminderNotFound = errors.New("reminder not found")
	// ErrInvalidPayload is returned when a create/update payload is missing
	// the fields its reminder type requires.
	ErrInvalidPayload = errors.New("invalid reminder payload")
)

// Service holds the repositories and implements the store operations.
type Service struct {
	db        *sql.DB
	logger    *logrus.Logger
	Reminders repository.ReminderRepository
	Contacts  repository.ContactRepository
	now       func() time.Time
}

// New creates a new Service with all required dependencies.
func New(db *sql.DB, logger *logrus.Logger,
	reminders repository.ReminderRepository,
	contacts repository.ContactRepository,
) *Service {
	return &Service{
		db:        db,
		logger:    logger,
		Reminders: reminders,
		Contacts:  contacts,
		now:       time.Now,
	}
}

// CreateReminder validates the payload, computes the first next_trigger and
// persists the record.
func (s *Service) CreateReminder(ctx context.Context, userID string, payload models.ReminderCreate) (*models.Reminder, error) {
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	contact, err := s.Contacts.GetByID(ctx, userID, payload.ContactID)
	if err != nil {
		return nil, fmt.Errorf("lookup contact %d: %w", payload.ContactID, err)
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}

	reminder := normalizeReminder(userID, payload)
	now := s.now()
	reminder.NextTrigger = recurrence.FromReminder(reminder).Next(now, nil, reminder.Location())

	created, err := s.Reminders.Create(ctx, reminder)
	if err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}

	s.logger.Infof("Created reminder %d (%s) for contact %d", created.ID, created.Type, created.ContactID)
	return created, nil
}

// UpdateReminder replaces a reminder's rule and recomputes next_trigger.
// Changing the rule of a fired one_time reminder re-arms it.
func (s *Service) UpdateReminder(ctx context.Context, userID string, id int64, payload models.ReminderCreate) (*models.Reminder, error) {
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	existing, err := s.Reminders.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("lookup reminder %d: %w", id, err)
	}
	if existing == nil {
		return nil, ErrReminderNotFound
	}

	reminder := normalizeReminder(userID, payload)
	reminder.ID = existing.ID
	reminder.CreatedAt = existing.CreatedAt
	reminder.LastTriggered = existing.LastTriggered

	now := s.now()
	reminder.NextTrigger = recurrence.FromReminder(reminder).Next(now, reminder.LastTriggered, reminder.Location())

	updated, err := s.Reminders.Update(ctx, reminder)
	if err != nil {
		return nil, fmt.Errorf("update reminder %d: %w", id, err)
	}
	return updated, nil
}

// DeleteReminder removes a reminder.
func (s *Service) DeleteReminder(ctx context.Context, userID string, id int64) error {
	reminder, err := s.Reminders.GetByID(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("lookup reminder %d: %w", id, err)
	}
	if reminder == nil {
		return ErrReminderNotFound
	}
	return s.Reminders.Delete(ctx, userID, id)
}

// ListReminders returns all reminders for the user.
func (s *Service) ListReminders(ctx context.Context, userID string) ([]*models.Reminder, error) {
	return s.Reminders.GetByUserID(ctx, userID)
}

// GetReminder returns one reminder or ErrReminderNotFound.
func (s *Service) GetReminder(ctx context.Context, userID string, id int64) (*models.Reminder, error) {
	reminder, err := s.Reminders.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if reminder == nil {
		return nil, ErrReminderNotFound
	}
	return reminder, nil
}

// CheckDue returns the reminders that should fire now and advances their
// schedule: one_time reminders are marked triggered and disarmed, repeating
// reminders get a fresh next_trigger.
func (s *Service) CheckDue(ctx context.Context, userID string) ([]*models.Reminder, error) {
	now := s.now()
	due, err := s.Reminders.GetDue(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("query due reminders: %w", err)
	}

	for _, reminder := range due {
		fired := now
		reminder.LastTriggered = &fired
		if reminder.Type == models.ReminderOneTime {
			reminder.OneTimeTriggered = true
			reminder.NextTrigger = nil
		} else {
			reminder.NextTrigger = recurrence.FromReminder(reminder).Next(now, &fired, reminder.Location())
		}
		if _, err := s.Reminders.Update(ctx, reminder); err != nil {
			s.logger.WithError(err).Errorf("Failed to advance reminder %d", reminder.ID)
		}
	}

	if len(due) > 0 {
		s.logger.Infof("Triggered %d due reminders for user %s", len(due), userID)
	}
	return due, nil
}

// CreateContact adds a contact for the user.
func (s *Service) CreateContact(ctx context.Context, userID string, payload models.ContactCreate) (*models.Contact, error) {
	if payload.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidPayload)
	}
	contact := &models.Contact{
		UserID:      userID,
		Name:        payload.Name,
		Notes:       payload.Notes,
		DefaultTone: payload.DefaultTone,
	}
	return s.Contacts.Create(ctx, contact)
}

// ListContacts returns all contacts for the user.
func (s *Service) ListContacts(ctx context.Context, userID string) ([]*models.Contact, error) {
	return s.Contacts.GetByUserID(ctx, userID)
}

// DeleteContact removes a contact together with every reminder bound to
// it, so no orphaned reminder can keep firing for a deleted person.
func (s *Service) DeleteContact(ctx context.Context, userID string, id int64) error {
	contact, err := s.Contacts.GetByID(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("lookup contact %d: %w", id, err)
	}
	if contact == nil {
		return ErrContactNotFound
	}

	if err := s.Reminders.DeleteByContact(ctx, userID, id); err != nil {
		return err
	}
	if err := s.Contacts.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Infof("Deleted contact %d and its reminders for user %s", id, userID)
	return nil
}

// validatePayload enforces the per-type field rules on the server as well;
// the editor runs the same checks client-side for inline feedback.
func validatePayload(p models.ReminderCreate) error {
	if p.ContactID == 0 {
		return fmt.Errorf("%w: contact_id is required", ErrInvalidPayload)
	}
	switch p.Type {
	case models.ReminderOneTime:
		if p.ScheduledAt == nil {
			return fmt.Errorf("%w: scheduled_datetime is required for one_time", ErrInvalidPayload)
		}
	case models.ReminderRecurring, "":
		if p.IntervalValue < 1 {
			return fmt.Errorf("%w: interval_value must be at least 1", ErrInvalidPayload)
		}
	case models.ReminderWeekly:
		if len(p.Weekdays) == 0 {
			return fmt.Errorf("%w: weekdays must not be empty", ErrInvalidPayload)
		}
		for _, d := range p.Weekdays {
			if d < 0 || d > 6 {
				return fmt.Errorf("%w: weekday %d out of range", ErrInvalidPayload, d)
			}
		}
		if p.SpecificTime == "" {
			return fmt.Errorf("%w: specific_time is required for weekly", ErrInvalidPayload)
		}
	case models.ReminderDaily:
		if p.SpecificTime == "" {
			return fmt.Errorf("%w: specific_time is required for daily", ErrInvalidPayload)
		}
	default:
		return fmt.Errorf("%w: unknown reminder_type %q", ErrInvalidPayload, p.Type)
	}
	return nil
}

// normalizeReminder maps a payload onto a canonical record, keeping only
// the fields that belong to the selected type. This is the store-side
// enforcement of the tagged-union invariant.
func normalizeReminder(userID string, p models.ReminderCreate) *models.Reminder {
	reminder := &models.Reminder{
		UserID:    userID,
		ContactID: p.ContactID,
		Type:      p.Type,
		Timezone:  p.Timezone,
		Enabled:   p.Enabled,
	}
	if reminder.Type == "" {
		reminder.Type = models.ReminderRecurring
	}
	if reminder.Timezone == "" {
		reminder.Timezone = models.DefaultTimezone
	}

	switch reminder.Type {
	case models.ReminderOneTime:
		reminder.ScheduledAt = p.ScheduledAt
	case models.ReminderWeekly:
		reminder.Weekdays = append([]int(nil), p.Weekdays...)
		reminder.SpecificTime = p.SpecificTime
	case models.ReminderDaily:
		reminder.SpecificTime = p.SpecificTime
	default:
		reminder.IntervalType = p.IntervalType
		if reminder.IntervalType == "" {
			reminder.IntervalType = models.IntervalDays
		}
		reminder.IntervalValue = p.IntervalValue
	}
	return reminder
}
