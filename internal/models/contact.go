package models

import "time"

// Contact is a person the user wants to stay in touch with. The engine only
// consumes ID and Name (for notification text); the remaining fields belong
// to the messaging screens.
type Contact struct {
	ID          int64     `json:"id" db:"id"`
	UserID      string    `json:"user_id,omitempty" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Notes       string    `json:"notes,omitempty" db:"notes"`
	DefaultTone string    `json:"default_tone,omitempty" db:"default_tone"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ContactCreate is the payload accepted by the store when adding a contact.
type ContactCreate struct {
	Name        string `json:"name"`
	Notes       string `json:"notes,omitempty"`
	DefaultTone string `json:"default_tone,omitempty"`
}
