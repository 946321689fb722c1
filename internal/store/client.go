// Package store is the REST client for the reminder store API. It is the
// single source of truth the device mirrors; the client holds no local
// cache.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stayclose/stayclose/internal/models"
)

// Client talks to the reminder store over HTTP with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *logrus.Logger
}

// NewClient creates a store client. An empty token means no session; the
// sync pass will skip itself.
func NewClient(baseURL, token string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Authenticated reports whether the client carries a session token.
func (c *Client) Authenticated() bool { return c.token != "" }

// Reminders fetches the full reminder list for the signed-in user.
func (c *Client) Reminders(ctx context.Context) ([]models.Reminder, error) {
	var out []models.Reminder
	if err := c.do(ctx, http.MethodGet, "/api/reminders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Contacts fetches the full contact list for the signed-in user.
func (c *Client) Contacts(ctx context.Context) ([]models.Contact, error) {
	var out []models.Contact
	if err := c.do(ctx, http.MethodGet, "/api/contacts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateReminder persists a new reminder and returns the canonical record,
// including the server-computed next_trigger.
func (c *Client) CreateReminder(ctx context.Context, payload models.ReminderCreate) (*models.Reminder, error) {
	var out models.Reminder
	if err := c.do(ctx, http.MethodPost, "/api/reminders", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateReminder replaces an existing reminder's rule.
func (c *Client) UpdateReminder(ctx context.Context, id int64, payload models.ReminderCreate) (*models.Reminder, error) {
	var out models.Reminder
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/reminders/%d", id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteReminder removes a reminder from the store.
func (c *Client) DeleteReminder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/reminders/%d", id), nil, nil)
}

// CheckDue asks the store which reminders are due right now. The store
// advances their next_trigger as a side effect.
func (c *Client) CheckDue(ctx context.Context) ([]models.Reminder, error) {
	var out []models.Reminder
	if err := c.do(ctx, http.MethodGet, "/api/reminders/check", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
