package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/stayclose/stayclose/internal/models"
	"github.com/stayclose/stayclose/internal/repository"
)

const reminderColumns = `id, user_id, contact_id, reminder_type, interval_type, interval_value,
	scheduled_datetime, one_time_triggered, weekdays, specific_time, timezone,
	enabled, last_triggered, next_trigger, created_at`

type reminderRepository struct {
	db *sql.DB
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *sql.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	query := `
		INSERT INTO reminders (user_id, contact_id, reminder_type, interval_type, interval_value,
			scheduled_datetime, one_time_triggered, weekdays, specific_time, timezone,
			enabled, last_triggered, next_trigger, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`

	reminder.CreatedAt = time.Now()
	if reminder.Timezone == "" {
		reminder.Timezone = models.DefaultTimezone
	}

	err := r.db.QueryRowContext(ctx, query,
		reminder.UserID,
		reminder.ContactID,
		reminder.Type,
		nullString(string(reminder.IntervalType)),
		nullInt(reminder.IntervalValue),
		reminder.ScheduledAt,
		reminder.OneTimeTriggered,
		weekdaysArray(reminder.Weekdays),
		nullString(reminder.SpecificTime),
		reminder.Timezone,
		reminder.Enabled,
		reminder.LastTriggered,
		reminder.NextTrigger,
		reminder.CreatedAt,
	).Scan(&reminder.ID, &reminder.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	return reminder, nil
}

func (r *reminderRepository) GetByID(ctx context.Context, userID string, id int64) (*models.Reminder, error) {
	query := `SELECT ` + reminderColumns + `
		FROM reminders
		WHERE id = $1 AND user_id = $2`

	reminder, err := scanReminder(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return reminder, nil
}

func (r *reminderRepository) GetByUserID(ctx context.Context, userID string) ([]*models.Reminder, error) {
	query := `SELECT ` + reminderColumns + `
		FROM reminders
		WHERE user_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	return collectReminders(rows)
}

func (r *reminderRepository) GetDue(ctx context.Context, userID string, now time.Time) ([]*models.Reminder, error) {
	query := `SELECT ` + reminderColumns + `
		FROM reminders
		WHERE user_id = $1 AND enabled = true AND next_trigger IS NOT NULL AND next_trigger <= $2
		ORDER BY next_trigger ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer rows.Close()

	return collectReminders(rows)
}

func (r *reminderRepository) Update(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	query := `
		UPDATE reminders
		SET contact_id = $3, reminder_type = $4, interval_type = $5, interval_value = $6,
			scheduled_datetime = $7, one_time_triggered = $8, weekdays = $9, specific_time = $10,
			timezone = $11, enabled = $12, last_triggered = $13, next_trigger = $14
		WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.UserID,
		reminder.ContactID,
		reminder.Type,
		nullString(string(reminder.IntervalType)),
		nullInt(reminder.IntervalValue),
		reminder.ScheduledAt,
		reminder.OneTimeTriggered,
		weekdaysArray(reminder.Weekdays),
		nullString(reminder.SpecificTime),
		reminder.Timezone,
		reminder.Enabled,
		reminder.LastTriggered,
		reminder.NextTrigger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("reminder with ID %d not found", reminder.ID)
	}

	return reminder, nil
}

func (r *reminderRepository) Delete(ctx context.Context, userID string, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("reminder with ID %d not found", id)
	}

	return nil
}

func (r *reminderRepository) DeleteByContact(ctx context.Context, userID string, contactID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE contact_id = $1 AND user_id = $2`, contactID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete reminders for contact %d: %w", contactID, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	var (
		intervalType sql.NullString
		intervalVal  sql.NullInt64
		specificTime sql.NullString
		weekdays     pq.Int64Array
	)

	if err := row.Scan(
		&reminder.ID,
		&reminder.UserID,
		&reminder.ContactID,
		&reminder.Type,
		&intervalType,
		&intervalVal,
		&reminder.ScheduledAt,
		&reminder.OneTimeTriggered,
		&weekdays,
		&specificTime,
		&reminder.Timezone,
		&reminder.Enabled,
		&reminder.LastTriggered,
		&reminder.NextTrigger,
		&reminder.CreatedAt,
	); err != nil {
		return nil, err
	}

	reminder.IntervalType = models.IntervalType(intervalType.String)
	reminder.IntervalValue = int(intervalVal.Int64)
	reminder.SpecificTime = specificTime.String
	if len(weekdays) > 0 {
		reminder.Weekdays = make([]int, len(weekdays))
		for i, d := range weekdays {
			reminder.Weekdays[i] = int(d)
		}
	}
	return reminder, nil
}

func collectReminders(rows *sql.Rows) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func weekdaysArray(days []int) pq.Int64Array {
	if len(days) == 0 {
		return nil
	}
	out := make(pq.Int64Array, len(days))
	for i, d := range days {
		out[i] = int64(d)
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
