package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stayclose/stayclose/internal/models"
	"github.com/stayclose/stayclose/internal/repository"
)

type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *sql.DB) repository.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	query := `
		INSERT INTO contacts (user_id, name, notes, default_tone, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	contact.CreatedAt = time.Now()
	if contact.DefaultTone == "" {
		contact.DefaultTone = "friendly"
	}

	err := r.db.QueryRowContext(ctx, query,
		contact.UserID,
		contact.Name,
		contact.Notes,
		contact.DefaultTone,
		contact.CreatedAt,
	).Scan(&contact.ID, &contact.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	return contact, nil
}

func (r *contactRepository) GetByID(ctx context.Context, userID string, id int64) (*models.Contact, error) {
	query := `
		SELECT id, user_id, name, notes, default_tone, created_at
		FROM contacts
		WHERE id = $1 AND user_id = $2`

	contact := &models.Contact{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&contact.ID,
		&contact.UserID,
		&contact.Name,
		&contact.Notes,
		&contact.DefaultTone,
		&contact.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return contact, nil
}

func (r *contactRepository) GetByUserID(ctx context.Context, userID string) ([]*models.Contact, error) {
	query := `
		SELECT id, user_id, name, notes, default_tone, created_at
		FROM contacts
		WHERE user_id = $1
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		contact := &models.Contact{}
		if err := rows.Scan(
			&contact.ID,
			&contact.UserID,
			&contact.Name,
			&contact.Notes,
			&contact.DefaultTone,
			&contact.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}

	return contacts, rows.Err()
}

func (r *contactRepository) Delete(ctx context.Context, userID string, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("contact with ID %d not found", id)
	}

	return nil
}
