package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayclose/stayclose/internal/models"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRemindersSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/reminders", r.URL.Path)
		json.NewEncoder(w).Encode([]models.Reminder{{ID: 1, ContactID: 10, Type: models.ReminderDaily}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", testLogger())
	assert.True(t, c.Authenticated())

	reminders, err := c.Reminders(context.Background())
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, models.ReminderDaily, reminders[0].Type)
}

func TestCreateReminderRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var payload models.ReminderCreate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, models.ReminderWeekly, payload.Type)
		assert.Equal(t, []int{0, 3}, payload.Weekdays)

		json.NewEncoder(w).Encode(models.Reminder{ID: 42, ContactID: payload.ContactID, Type: payload.Type})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", testLogger())
	rec, err := c.CreateReminder(context.Background(), models.ReminderCreate{
		ContactID: 10,
		Type:      models.ReminderWeekly,
		Weekdays:  []int{0, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), rec.ID)
}

func TestErrorResponsesAreSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "reminder not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", testLogger())
	err := c.DeleteReminder(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reminder not found")
}

func TestEmptyTokenMeansNoSession(t *testing.T) {
	c := NewClient("http://localhost:0", "", testLogger())
	assert.False(t, c.Authenticated())
}
