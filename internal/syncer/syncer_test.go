package syncer

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayclose/stayclose/internal/models"
	"github.com/stayclose/stayclose/internal/notifier"
)

type fakeStore struct {
	reminders []models.Reminder
	contacts  []models.Contact
	err       error
	calls     int
}

func (f *fakeStore) Reminders(context.Context) ([]models.Reminder, error) {
	f.calls++
	return f.reminders, f.err
}

func (f *fakeStore) Contacts(context.Context) ([]models.Contact, error) {
	return f.contacts, f.err
}

type fakeSession bool

func (f fakeSession) Authenticated() bool { return bool(f) }

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func reminder(id int64, contactID int64, enabled bool, next *time.Time) models.Reminder {
	return models.Reminder{
		ID:           id,
		ContactID:    contactID,
		Type:         models.ReminderDaily,
		SpecificTime: "09:00",
		Enabled:      enabled,
		NextTrigger:  next,
	}
}

func TestSyncMirrorsEnabledFutureReminders(t *testing.T) {
	future := time.Now().Add(time.Hour)
	store := &fakeStore{
		reminders: []models.Reminder{
			reminder(1, 10, true, &future),
			reminder(2, 11, false, &future),
			reminder(3, 10, true, nil),
		},
		contacts: []models.Contact{{ID: 10, Name: "Dana"}},
	}
	bridge := notifier.NewMemoryBridge(notifier.PermissionGranted, false)
	svc := New(store, fakeSession(true), notifier.New(bridge, true, testLogger()), testLogger())

	res, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.Scheduled)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 0, res.Failed)

	pending, err := bridge.GetPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].ID)
	assert.Contains(t, pending[0].Body, "Dana")
}

func TestSyncFallsBackToGenericContactName(t *testing.T) {
	future := time.Now().Add(time.Hour)
	store := &fakeStore{
		reminders: []models.Reminder{reminder(1, 999, true, &future)},
	}
	bridge := notifier.NewMemoryBridge(notifier.PermissionGranted, false)
	svc := New(store, fakeSession(true), notifier.New(bridge, true, testLogger()), testLogger())

	_, err := svc.Sync(context.Background())
	require.NoError(t, err)

	pending, _ := bridge.GetPending(context.Background())
	require.Len(t, pending, 1)
	assert.Contains(t, pending[0].Body, FallbackContactName)
}

func TestSyncIsolatesPerReminderFailures(t *testing.T) {
	future := time.Now().Add(time.Hour)
	store := &fakeStore{
		reminders: []models.Reminder{
			reminder(1, 10, true, &future),
			reminder(2, 10, true, &future),
			reminder(3, 10, true, &future),
		},
		contacts: []models.Contact{{ID: 10, Name: "Dana"}},
	}
	bridge := notifier.NewMemoryBridge(notifier.PermissionGranted, false)
	bridge.FailIDs = map[int64]bool{2: true}
	svc := New(store, fakeSession(true), notifier.New(bridge, true, testLogger()), testLogger())

	res, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Scheduled)
	assert.Equal(t, 1, res.Failed)

	pending, _ := bridge.GetPending(context.Background())
	require.Len(t, pending, 2)
	assert.Equal(t, int64(1), pending[0].ID)
	assert.Equal(t, int64(3), pending[1].ID)
}

func TestSyncRemovesStaleEntriesFirst(t *testing.T) {
	bridge := notifier.NewMemoryBridge(notifier.PermissionGranted, false)
	require.NoError(t, bridge.Schedule(context.Background(), []notifier.Notification{{ID: 99, Title: "stale"}}))

	store := &fakeStore{}
	svc := New(store, fakeSession(true), notifier.New(bridge, true, testLogger()), testLogger())

	_, err := svc.Sync(context.Background())
	require.NoError(t, err)

	pending, _ := bridge.GetPending(context.Background())
	assert.Empty(t, pending)
}

func TestSyncSkipsWithoutSession(t *testing.T) {
	store := &fakeStore{}
	bridge := notifier.NewMemoryBridge(notifier.PermissionGranted, false)
	svc := New(store, fakeSession(false), notifier.New(bridge, true, testLogger()), testLogger())

	res, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Zero(t, store.calls)
}

func TestSyncSkipsOnUnsupportedPlatform(t *testing.T) {
	store := &fakeStore{}
	bridge := notifier.NewMemoryBridge(notifier.PermissionGranted, false)
	svc := New(store, fakeSession(true), notifier.New(bridge, false, testLogger()), testLogger())

	res, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Zero(t, store.calls)
}

func TestSyncReturnsFetchError(t *testing.T) {
	store := &fakeStore{err: errors.New("store down")}
	bridge := notifier.NewMemoryBridge(notifier.PermissionGranted, false)
	svc := New(store, fakeSession(true), notifier.New(bridge, true, testLogger()), testLogger())

	_, err := svc.Sync(context.Background())
	assert.Error(t, err)
}
