package editor

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
	created   []models.ReminderCreate
	updated   []models.ReminderCreate
	updatedID int64
	err       error
	result    *models.Reminder
}

func (f *fakeStore) CreateReminder(_ context.Context, p models.ReminderCreate) (*models.Reminder, error) {
	f.created = append(f.created, p)
	if f.err != nil {
		return nil, f.err
	}
	return f.record(p, 1), nil
}

func (f *fakeStore) UpdateReminder(_ context.Context, id int64, p models.ReminderCreate) (*models.Reminder, error) {
	f.updated = append(f.updated, p)
	f.updatedID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.record(p, id), nil
}

func (f *fakeStore) record(p models.ReminderCreate, id int64) *models.Reminder {
	if f.result != nil {
		return f.result
	}
	next := time.Now().Add(time.Hour)
	return &models.Reminder{
		ID:            id,
		ContactID:     p.ContactID,
		Type:          p.Type,
		IntervalType:  p.IntervalType,
		IntervalValue: p.IntervalValue,
		ScheduledAt:   p.ScheduledAt,
		Weekdays:      p.Weekdays,
		SpecificTime:  p.SpecificTime,
		Timezone:      p.Timezone,
		Enabled:       p.Enabled,
		NextTrigger:   &next,
	}
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestEditor(store Store, bridge *notifier.MemoryBridge) *Editor {
	return New(store, notifier.New(bridge, true, testLogger()), nil, testLogger())
}

func TestWeeklyWithoutWeekdaysFailsValidation(t *testing.T) {
	store := &fakeStore{}
	e := newTestEditor(store, notifier.NewMemoryBridge(notifier.PermissionGranted, false))
	e.SetContact(10, "Dana")
	e.SetType(models.ReminderWeekly)
	e.SetSpecificTime("14:00")

	_, err := e.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "weekdays", verr.Field)
	assert.Empty(t, store.created, "validation failure must not reach the store")
}

func TestOneTimeWithEmptyClockFailsValidation(t *testing.T) {
	store := &fakeStore{}
	e := newTestEditor(store, notifier.NewMemoryBridge(notifier.PermissionGranted, false))
	e.SetContact(10, "Dana")
	e.SetType(models.ReminderOneTime)
	e.SetDate("2025-06-01")

	_, err := e.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, store.created)
}

func TestRecurringIntervalMustBePositive(t *testing.T) {
	store := &fakeStore{}
	e := newTestEditor(store, notifier.NewMemoryBridge(notifier.PermissionGranted, false))
	e.SetContact(10, "Dana")
	e.SetInterval(models.IntervalHours, 0)

	_, err := e.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "interval_value", verr.Field)
}

func TestTimezoneFallbackWhenResolutionFails(t *testing.T) {
	store := &fakeStore{}
	bridge := notifier.NewMemoryBridge(notifier.PermissionGranted, false)
	resolver := func() (string, error) { return "", errors.New("no zone database") }
	e := New(store, notifier.New(bridge, true, testLogger()), resolver, testLogger())
	e.SetContact(10, "Dana")
	e.SetType(models.ReminderDaily)
	e.SetSpecificTime("08:00")

	payload, err := e.BuildPayload()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jerusalem", payload.Timezone)
}

func TestPayloadCarriesOnlyTypeRelevantFields(t *testing.T) {
	store := &fakeStore{}
	e := newTestEditor(store, notifier.NewMemoryBridge(notifier.PermissionGranted, false))
	e.SetContact(10, "Dana")
	e.SetType(models.ReminderWeekly)
	e.SetWeekdays([]int{0, 4})
	e.SetSpecificTime("14:00")
	// Leftover state from a previous type selection must not leak out.
	e.SetInterval(models.IntervalHours, 5)
	e.SetType(models.ReminderWeekly)

	payload, err := e.BuildPayload()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 4}, payload.Weekdays)
	assert.Equal(t, "14:00", payload.SpecificTime)
	assert.Empty(t, payload.IntervalType)
	assert.Zero(t, payload.IntervalValue)
	assert.Nil(t, payload.ScheduledAt)
}

func TestSubmitCreatesAndMirrorsLocally(t *testing.T) {
	store := &fakeStore{}
	bridge := notifier.NewMemoryBridge(notifier.PermissionGranted, false)
	e := newTestEditor(store, bridge)
	e.SetContact(10, "Dana")
	e.SetInterval(models.IntervalDays, 3)

	rec, err := e.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.False(t, e.IsNew(), "editor binds to the created record")

	pending, _ := bridge.GetPending(context.Background())
	require.Len(t, pending, 1)
	assert.Equal(t, rec.ID, pending[0].ID)
	assert.Contains(t, pending[0].Body, "Dana")
}

func TestSubmitUpdateReplacesLocalEntry(t *testing.T) {
	store := &fakeStore{}
	bridge := notifier.NewMemoryBridge(notifier.PermissionGranted, false)
	existing := &models.Reminder{ID: 5, ContactID: 10, Type: models.ReminderDaily, SpecificTime: "08:00", Enabled: true}
	e := ForReminder(store, notifier.New(bridge, true, testLogger()), nil, testLogger(), existing)
	e.SetContact(10, "Dana")
	e.SetSpecificTime("09:30")

	// Simulate a stale entry from the previous version of the reminder.
	require.NoError(t, bridge.Schedule(context.Background(), []notifier.Notification{{ID: 5, Body: "old"}}))

	_, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), store.updatedID)

	pending, _ := bridge.GetPending(context.Background())
	require.Len(t, pending, 1)
	assert.Contains(t, pending[0].Body, "09:30")
}

func TestSubmitSurfacesPersistenceError(t *testing.T) {
	store := &fakeStore{err: errors.New("store down")}
	bridge := notifier.NewMemoryBridge(notifier.PermissionGranted, false)
	e := newTestEditor(store, bridge)
	e.SetContact(10, "Dana")

	_, err := e.Submit(context.Background())
	require.Error(t, err)

	pending, _ := bridge.GetPending(context.Background())
	assert.Empty(t, pending, "nothing is mirrored when persistence fails")
}

func TestSubmitSwallowsLocalSchedulingFailure(t *testing.T) {
	store := &fakeStore{}
	bridge := notifier.NewMemoryBridge(notifier.PermissionGranted, false)
	bridge.FailIDs = map[int64]bool{1: true}
	e := newTestEditor(store, bridge)
	e.SetContact(10, "Dana")

	rec, err := e.Submit(context.Background())
	require.NoError(t, err, "persistence success is the success criterion")
	assert.Equal(t, int64(1), rec.ID)
}

func TestSubmitDeniedPermissionDoesNotBlockCreation(t *testing.T) {
	store := &fakeStore{}
	bridge := notifier.NewMemoryBridge(notifier.PermissionDenied, false)
	e := newTestEditor(store, bridge)
	e.SetContact(10, "Dana")

	rec, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rec)

	pending, _ := bridge.GetPending(context.Background())
	assert.Empty(t, pending)
}

func TestOneTimePayloadParsesInResolvedZone(t *testing.T) {
	store := &fakeStore{}
	bridge := notifier.NewMemoryBridge(notifier.PermissionGranted, false)
	resolver := func() (string, error) { return "UTC", nil }
	e := New(store, notifier.New(bridge, true, testLogger()), resolver, testLogger())
	e.SetContact(10, "Dana")
	e.SetType(models.ReminderOneTime)
	e.SetDate("2025-06-01")
	e.SetClock("18:45")

	payload, err := e.BuildPayload()
	require.NoError(t, err)
	require.NotNil(t, payload.ScheduledAt)
	assert.Equal(t, time.Date(2025, 6, 1, 18, 45, 0, 0, time.UTC), *payload.ScheduledAt)
	assert.Equal(t, "UTC", payload.Timezone)
}
