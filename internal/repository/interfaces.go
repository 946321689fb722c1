package repository

import (
	"context"
	"time"

	"github.com/stayclose/stayclose/internal/models"
)

// ReminderRepository defines the interface for reminder persistence. All
// queries are scoped to a user; one user can never see or mutate another
// user's reminders.
type ReminderRepository interface {
	Create(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error)
	GetByID(ctx context.Context, userID string, id int64) (*models.Reminder, error)
	GetByUserID(ctx context.Context, userID string) ([]*models.Reminder, error)
	// GetDue returns enabled reminders whose next_trigger is at or before now.
	GetDue(ctx context.Context, userID string, now time.Time) ([]*models.Reminder, error)
	Update(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error)
	Delete(ctx context.Context, userID string, id int64) error
	// DeleteByContact removes every reminder bound to a contact, used when
	// the contact itself is deleted.
	DeleteByContact(ctx context.Context, userID string, contactID int64) error
}

// ContactRepository defines the interface for contact persistence.
type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	GetByID(ctx context.Context, userID string, id int64) (*models.Contact, error)
	GetByUserID(ctx context.Context, userID string) ([]*models.Contact, error)
	Delete(ctx context.Context, userID string, id int64) error
}
