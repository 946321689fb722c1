// Package notifier bridges server reminder records to the device's local
// notification scheduler. The local schedule is a best-effort mirror of the
// server-authoritative reminder list: every failure here is logged and kept
// away from the caller's happy path, because the reminder data is already
// safely persisted server-side.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stayclose/stayclose/internal/models"
	"github.com/stayclose/stayclose/internal/recurrence"
)

const notificationTitle = "זמן לשלוח הודעה! 💌"

// Adapter translates one reminder plus its contact name into a scheduled
// local notification. The notification ID is always the reminder ID, which
// is what makes cancel and replace idempotent: two different reminders can
// never collide because the store assigns unique IDs.
type Adapter struct {
	bridge    Bridge
	supported bool
	logger    *logrus.Logger
	now       func() time.Time
}

// New creates an adapter. supported=false models a platform without a local
// scheduler: every operation becomes a successful no-op so callers never
// have to special-case the platform.
func New(bridge Bridge, supported bool, logger *logrus.Logger) *Adapter {
	return &Adapter{
		bridge:    bridge,
		supported: supported,
		logger:    logger,
		now:       time.Now,
	}
}

// Supported reports whether the platform has a local scheduler.
func (a *Adapter) Supported() bool { return a.supported }

// EnsurePermission checks the notification permission, requesting it once
// if the user has not decided yet. A denial is returned as an error; the
// callers treat it as best-effort and never surface it to the user.
func (a *Adapter) EnsurePermission(ctx context.Context) error {
	if !a.supported {
		return nil
	}
	status, err := a.bridge.CheckPermissions(ctx)
	if err != nil {
		return fmt.Errorf("check notification permissions: %w", err)
	}
	if status == PermissionPrompt {
		a.logger.Debug("Requesting local notification permission")
		status, err = a.bridge.RequestPermissions(ctx)
		if err != nil {
			return fmt.Errorf("request notification permissions: %w", err)
		}
	}
	if status != PermissionGranted {
		return fmt.Errorf("notification permission %s", status)
	}
	return nil
}

// Schedule mirrors one reminder into the device schedule. A reminder with a
// missing or stale next_trigger is a logged no-op, never an error, so flows
// like contact deletion are never blocked by a record that cannot be
// scheduled anyway.
func (a *Adapter) Schedule(ctx context.Context, r *models.Reminder, contactName string) error {
	if !a.supported {
		return nil
	}

	if err := a.EnsurePermission(ctx); err != nil {
		a.logger.WithError(err).Warnf("Cannot schedule reminder %d", r.ID)
		return err
	}

	now := a.now()
	if !r.HasFutureTrigger(now) {
		a.logger.Warnf("Reminder %d has no future next_trigger, skipping local schedule", r.ID)
		return nil
	}

	rule := recurrence.FromReminder(r)
	n := Notification{
		ID:    r.ID,
		Title: notificationTitle,
		Body:  fmt.Sprintf("הגיע הזמן לשלוח הודעה ל-%s\n(%s)", contactName, rule.Describe()),
		At:    *r.NextTrigger,
		Extra: map[string]string{
			"reminder_id": fmt.Sprintf("%d", r.ID),
			"contact_id":  fmt.Sprintf("%d", r.ContactID),
		},
	}
	if rule.IsRepeating() {
		// The platform only repeats per hour or per day. Weekly patterns and
		// N-unit intervals degrade to their granularity here; the periodic
		// resync re-anchors them from the server-computed next_trigger.
		n.Repeats = true
		n.Every = rule.Granularity()
	}

	if err := a.bridge.Schedule(ctx, []Notification{n}); err != nil {
		a.logger.WithError(err).Errorf("Failed to schedule local notification for reminder %d", r.ID)
		return fmt.Errorf("schedule reminder %d: %w", r.ID, err)
	}

	a.logger.Debugf("Scheduled local notification for reminder %d at %s", r.ID, r.NextTrigger.Format(time.RFC3339))
	return nil
}

// Cancel removes the device entry for a reminder. Cancelling an ID that has
// no pending entry is a no-op, not an error.
func (a *Adapter) Cancel(ctx context.Context, reminderID int64) error {
	if !a.supported {
		return nil
	}
	if err := a.bridge.Cancel(ctx, []int64{reminderID}); err != nil {
		a.logger.WithError(err).Errorf("Failed to cancel local notification for reminder %d", reminderID)
		return fmt.Errorf("cancel reminder %d: %w", reminderID, err)
	}
	return nil
}

// CancelAll clears every pending entry. Only the full resync uses this; all
// pending notifications in this app belong to reminders, so enumerating the
// whole table is safe here and must stay that way.
func (a *Adapter) CancelAll(ctx context.Context) error {
	if !a.supported {
		return nil
	}
	pending, err := a.bridge.GetPending(ctx)
	if err != nil {
		return fmt.Errorf("list pending notifications: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}
	ids := make([]int64, len(pending))
	for i, n := range pending {
		ids[i] = n.ID
	}
	if err := a.bridge.Cancel(ctx, ids); err != nil {
		return fmt.Errorf("cancel %d pending notifications: %w", len(ids), err)
	}
	a.logger.Debugf("Cancelled %d pending local notifications", len(ids))
	return nil
}

// Pending lists the device's scheduled notifications. Unsupported platforms
// report an empty schedule.
func (a *Adapter) Pending(ctx context.Context) ([]Notification, error) {
	if !a.supported {
		return nil, nil
	}
	return a.bridge.GetPending(ctx)
}
