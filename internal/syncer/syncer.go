// Package syncer rebuilds the device's local notification schedule from the
// server reminder list. It is a full replace, not a diff: the platform's
// coarse repeat units drift away from the real recurrence rules, and a
// rebuild from the authoritative next_trigger values is self-healing where
// incremental bookkeeping would not be.
package syncer

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/stayclose/stayclose/internal/models"
	"github.com/stayclose/stayclose/internal/notifier"
)

// Store is the slice of the reminder store the syncer consumes.
type Store interface {
	Reminders(ctx context.Context) ([]models.Reminder, error)
	Contacts(ctx context.Context) ([]models.Contact, error)
}

// Session reports whether a user is signed in. Without a session there is
// nothing to sync and the pass is skipped entirely.
type Session interface {
	Authenticated() bool
}

// FallbackContactName is used when a reminder references a contact that no
// longer resolves.
const FallbackContactName = "איש קשר"

// Service runs the full resync pass, typically once at app start.
type Service struct {
	store   Store
	session Session
	adapter *notifier.Adapter
	logger  *logrus.Logger
}

// Result reports what a sync pass did. Callers do not act on it; it exists
// so logs, metrics and tests can observe the swallowed per-item failures.
type Result struct {
	Total     int
	Scheduled int
	Failed    int
	Skipped   int
}

func New(store Store, session Session, adapter *notifier.Adapter, logger *logrus.Logger) *Service {
	return &Service{store: store, session: session, adapter: adapter, logger: logger}
}

// Sync makes the device schedule an exact mirror of the enabled,
// future-dated server reminders. One reminder failing to schedule never
// aborts the rest of the pass; the error returned covers only the fetch
// phase, where nothing useful can happen without data.
func (s *Service) Sync(ctx context.Context) (Result, error) {
	var res Result

	if !s.session.Authenticated() {
		s.logger.Debug("Sync skipped: no authenticated session")
		return res, nil
	}
	if !s.adapter.Supported() {
		s.logger.Debug("Sync skipped: platform has no local scheduler")
		return res, nil
	}

	syncRuns.Inc()

	reminders, err := s.store.Reminders(ctx)
	if err != nil {
		syncFetchErrors.Inc()
		return res, fmt.Errorf("fetch reminders: %w", err)
	}
	contacts, err := s.store.Contacts(ctx)
	if err != nil {
		syncFetchErrors.Inc()
		return res, fmt.Errorf("fetch contacts: %w", err)
	}

	names := make(map[int64]string, len(contacts))
	for _, c := range contacts {
		if c.ID == 0 {
			continue
		}
		names[c.ID] = c.Name
	}

	// All existing entries go before any new one is scheduled, so a stale
	// duplicate can never survive the pass.
	if err := s.adapter.CancelAll(ctx); err != nil {
		syncFetchErrors.Inc()
		return res, fmt.Errorf("cancel existing notifications: %w", err)
	}

	res.Total = len(reminders)
	var failures *multierror.Error
	for i := range reminders {
		r := &reminders[i]
		if !r.Enabled || r.NextTrigger == nil {
			res.Skipped++
			continue
		}
		name, ok := names[r.ContactID]
		if !ok {
			name = FallbackContactName
		}
		if err := s.adapter.Schedule(ctx, r, name); err != nil {
			res.Failed++
			remindersFailed.Inc()
			failures = multierror.Append(failures, fmt.Errorf("reminder %d: %w", r.ID, err))
			continue
		}
		res.Scheduled++
		remindersScheduled.Inc()
	}

	if failures.ErrorOrNil() != nil {
		s.logger.WithError(failures).Warnf("Sync completed with %d failures", res.Failed)
	}
	s.logger.Infof("Sync complete: %d scheduled, %d skipped, %d failed of %d reminders",
		res.Scheduled, res.Skipped, res.Failed, res.Total)
	return res, nil
}
