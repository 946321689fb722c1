package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/stayclose/stayclose/internal/models"
	"github.com/stayclose/stayclose/internal/service"
)

// Server provides the reminder store's HTTP API.
type Server struct {
	svc    *service.Service
	logger *logrus.Logger
	tokens map[string]string // bearer token -> user id
	mux    *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it. tokens
// maps bearer tokens onto user ids; the full authentication lifecycle lives
// outside this service.
func NewServer(svc *service.Service, tokens map[string]string, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, logger: logger, tokens: tokens, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// API – Reminders
	s.mux.HandleFunc("GET /api/reminders", s.withUser(s.handleGetReminders))
	s.mux.HandleFunc("GET /api/reminders/check", s.withUser(s.handleCheckReminders))
	s.mux.HandleFunc("GET /api/reminders/{id}", s.withUser(s.handleGetReminder))
	s.mux.HandleFunc("POST /api/reminders", s.withUser(s.handleCreateReminder))
	s.mux.HandleFunc("PUT /api/reminders/{id}", s.withUser(s.handleUpdateReminder))
	s.mux.HandleFunc("DELETE /api/reminders/{id}", s.withUser(s.handleDeleteReminder))

	// API – Contacts
	s.mux.HandleFunc("GET /api/contacts", s.withUser(s.handleGetContacts))
	s.mux.HandleFunc("POST /api/contacts", s.withUser(s.handleCreateContact))
	s.mux.HandleFunc("DELETE /api/contacts/{id}", s.withUser(s.handleDeleteContact))

	// Operations
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

type contextKey string

const userIDKey contextKey = "user_id"

// withUser resolves the bearer token to a user id and rejects requests
// without a valid session.
func (s *Server) withUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
			s.respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, ok := s.tokens[auth[len(prefix):]]
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPayload):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrContactNotFound), errors.Is(err, service.ErrReminderNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.WithError(err).Error("request failed")
		s.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads the request body into dst and returns an error message
// on failure. The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// pathID extracts the {id} path value and converts it to int64.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, fmt.Errorf("missing id in path")
	}
	return strconv.ParseInt(raw, 10, 64)
}

// ---------------------------------------------------------------------------
// Reminders
// ---------------------------------------------------------------------------

func (s *Server) handleGetReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.svc.ListReminders(r.Context(), userID(r))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if reminders == nil {
		reminders = []*models.Reminder{}
	}
	s.respondJSON(w, http.StatusOK, reminders)
}

func (s *Server) handleGetReminder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "id must be an integer")
		return
	}
	reminder, err := s.svc.GetReminder(r.Context(), userID(r), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, reminder)
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var payload models.ReminderCreate
	if ok, msg := s.decodeJSON(r, &payload); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	reminder, err := s.svc.CreateReminder(r.Context(), userID(r), payload)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, reminder)
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "id must be an integer")
		return
	}
	var payload models.ReminderCreate
	if ok, msg := s.decodeJSON(r, &payload); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	reminder, err := s.svc.UpdateReminder(r.Context(), userID(r), id, payload)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, reminder)
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "id must be an integer")
		return
	}
	if err := s.svc.DeleteReminder(r.Context(), userID(r), id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "reminder deleted"})
}

func (s *Server) handleCheckReminders(w http.ResponseWriter, r *http.Request) {
	due, err := s.svc.CheckDue(r.Context(), userID(r))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if due == nil {
		due = []*models.Reminder{}
	}
	s.respondJSON(w, http.StatusOK, due)
}

// ---------------------------------------------------------------------------
// Contacts
// ---------------------------------------------------------------------------

func (s *Server) handleGetContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.svc.ListContacts(r.Context(), userID(r))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if contacts == nil {
		contacts = []*models.Contact{}
	}
	s.respondJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var payload models.ContactCreate
	if ok, msg := s.decodeJSON(r, &payload); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	contact, err := s.svc.CreateContact(r.Context(), userID(r), payload)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, contact)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "id must be an integer")
		return
	}
	if err := s.svc.DeleteContact(r.Context(), userID(r), id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "contact deleted"})
}
