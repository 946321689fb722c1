package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayclose/stayclose/internal/models"
)

// Wednesday.
var wednesday = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func TestDescribeRecurring(t *testing.T) {
	hours := &models.Reminder{Type: models.ReminderRecurring, IntervalType: models.IntervalHours, IntervalValue: 6}
	assert.Equal(t, "כל 6 שעות", Describe(hours))

	days := &models.Reminder{Type: models.ReminderRecurring, IntervalType: models.IntervalDays, IntervalValue: 7}
	assert.Equal(t, "כל 7 ימים", Describe(days))
}

func TestDescribeWeekly(t *testing.T) {
	r := &models.Reminder{Type: models.ReminderWeekly, Weekdays: []int{0, 2, 4}, SpecificTime: "14:30"}
	assert.Equal(t, "ראשון, שלישי, חמישי בשעה 14:30", Describe(r))

	noTime := &models.Reminder{Type: models.ReminderWeekly, Weekdays: []int{6}}
	assert.Equal(t, "שבת", Describe(noTime))
}

func TestDescribeDailyAndOneTime(t *testing.T) {
	daily := &models.Reminder{Type: models.ReminderDaily, SpecificTime: "08:15"}
	assert.Equal(t, "כל יום בשעה 08:15", Describe(daily))

	noClock := &models.Reminder{Type: models.ReminderDaily}
	assert.Equal(t, "כל יום בשעה 12:00", Describe(noClock))

	oneTime := &models.Reminder{Type: models.ReminderOneTime}
	assert.Equal(t, "תאריך ספציפי", Describe(oneTime))
}

func TestDescribeUnknownTypeFallsBackToRecurring(t *testing.T) {
	r := &models.Reminder{Type: "mystery", IntervalType: models.IntervalHours, IntervalValue: 3}
	assert.Equal(t, "כל 3 שעות", Describe(r))
}

func TestIsRepeating(t *testing.T) {
	cases := map[models.ReminderType]bool{
		models.ReminderOneTime:   false,
		models.ReminderRecurring: true,
		models.ReminderWeekly:    true,
		models.ReminderDaily:     true,
	}
	for typ, want := range cases {
		assert.Equal(t, want, IsRepeating(&models.Reminder{Type: typ}), "type %s", typ)
	}
}

func TestRepeatGranularity(t *testing.T) {
	assert.Equal(t, GranularityNone, RepeatGranularity(&models.Reminder{Type: models.ReminderOneTime}))
	assert.Equal(t, GranularityDay, RepeatGranularity(&models.Reminder{Type: models.ReminderDaily}))
	assert.Equal(t, GranularityHour, RepeatGranularity(&models.Reminder{
		Type: models.ReminderRecurring, IntervalType: models.IntervalHours, IntervalValue: 4,
	}))
	assert.Equal(t, GranularityDay, RepeatGranularity(&models.Reminder{
		Type: models.ReminderRecurring, IntervalType: models.IntervalDays, IntervalValue: 3,
	}))

	// The device scheduler cannot express a weekday pattern, so weekly snaps
	// to no native repeat and relies on the resync to re-anchor.
	weekly := &models.Reminder{Type: models.ReminderWeekly, Weekdays: []int{1}}
	assert.True(t, IsRepeating(weekly))
	assert.Equal(t, GranularityNone, RepeatGranularity(weekly))
}

func TestRecurringNext(t *testing.T) {
	rule := Recurring{Unit: models.IntervalHours, Value: 6}
	next := rule.Next(wednesday, nil, time.UTC)
	require.NotNil(t, next)
	assert.Equal(t, wednesday.Add(6*time.Hour), *next)

	last := wednesday.Add(-2 * time.Hour)
	next = rule.Next(wednesday, &last, time.UTC)
	require.NotNil(t, next)
	assert.Equal(t, last.Add(6*time.Hour), *next)

	daysRule := Recurring{Unit: models.IntervalDays, Value: 7}
	next = daysRule.Next(wednesday, nil, time.UTC)
	require.NotNil(t, next)
	assert.Equal(t, wednesday.AddDate(0, 0, 7), *next)
}

func TestRecurringNextGuardsZeroValue(t *testing.T) {
	rule := Recurring{Unit: models.IntervalDays, Value: 0}
	next := rule.Next(wednesday, nil, time.UTC)
	require.NotNil(t, next)
	assert.Equal(t, wednesday.AddDate(0, 0, 1), *next)
}

func TestOneTimeNext(t *testing.T) {
	at := wednesday.Add(48 * time.Hour)
	rule := OneTime{At: &at}
	next := rule.Next(wednesday, nil, time.UTC)
	require.NotNil(t, next)
	assert.Equal(t, at, *next)

	assert.Nil(t, OneTime{At: &at, Triggered: true}.Next(wednesday, nil, time.UTC))
	assert.Nil(t, OneTime{}.Next(wednesday, nil, time.UTC))
}

func TestDailyNext(t *testing.T) {
	// 14:30 is still ahead of the 10:00 reference, so it fires today.
	next := Daily{Time: "14:30"}.Next(wednesday, nil, time.UTC)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC), *next)

	// 09:00 already passed, so it rolls over to tomorrow.
	next = Daily{Time: "09:00"}.Next(wednesday, nil, time.UTC)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2025, 1, 16, 9, 0, 0, 0, time.UTC), *next)
}

func TestWeeklyNext(t *testing.T) {
	// Sunday and Wednesday at 09:00; 09:00 on Wednesday already passed, so
	// the next occurrence is Sunday.
	next := Weekly{Days: []int{0, 3}, Time: "09:00"}.Next(wednesday, nil, time.UTC)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2025, 1, 19, 9, 0, 0, 0, time.UTC), *next)
	assert.Equal(t, time.Sunday, next.Weekday())

	// Wednesday at 18:00 is still ahead on the same day.
	next = Weekly{Days: []int{3}, Time: "18:00"}.Next(wednesday, nil, time.UTC)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2025, 1, 15, 18, 0, 0, 0, time.UTC), *next)
}

func TestWeeklyNextEmptyDays(t *testing.T) {
	assert.Nil(t, Weekly{Time: "09:00"}.Next(wednesday, nil, time.UTC))
	assert.Nil(t, Weekly{Days: []int{42}, Time: "09:00"}.Next(wednesday, nil, time.UTC))
}
