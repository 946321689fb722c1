package notifier

import (
	"context"
	"time"

	"github.com/stayclose/stayclose/internal/recurrence"
)

// PermissionStatus mirrors the device notification permission states.
type PermissionStatus string

const (
	PermissionPrompt  PermissionStatus = "prompt"
	PermissionGranted PermissionStatus = "granted"
	PermissionDenied  PermissionStatus = "denied"
)

// Notification is one entry in the device's scheduling table. ID doubles as
// the platform notification identifier; scheduling a second notification
// with the same ID replaces the first.
type Notification struct {
	ID      int64
	Title   string
	Body    string
	At      time.Time
	Repeats bool
	Every   recurrence.Granularity
	Extra   map[string]string
}

// Bridge is the device local-notification capability surface. The real
// implementation talks to the platform plugin; tests and headless runs use
// the in-memory bridge. Permission state lives inside the bridge instance,
// never in package-level variables, so tests can reset it between cases.
type Bridge interface {
	CheckPermissions(ctx context.Context) (PermissionStatus, error)
	RequestPermissions(ctx context.Context) (PermissionStatus, error)
	Schedule(ctx context.Context, notifications []Notification) error
	Cancel(ctx context.Context, ids []int64) error
	GetPending(ctx context.Context) ([]Notification, error)
}
