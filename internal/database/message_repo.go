package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"birthday-inbox/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepo handles message database operations
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo creates a new message repository
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create inserts a message and fills in its ID and timestamp
func (r *MessageRepo) Create(ctx context.Context, msg *models.Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (sender, receiver, message, timestamp)
		VALUES (?, ?, ?, ?)
	`, msg.Sender, msg.Receiver, msg.Body, msg.Timestamp.UTC())
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	msg.ID = id

	return nil
}

// GetByID retrieves a message by ID
func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	msg := &models.Message{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, sender, receiver, message, timestamp
		FROM messages WHERE id = ?
	`, id).Scan(&msg.ID, &msg.Sender, &msg.Receiver, &msg.Body, &msg.Timestamp)
	if err == sql.ErrNoRows {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListByReceiver returns messages addressed to receiver, ignoring case,
// newest first
func (r *MessageRepo) ListByReceiver(ctx context.Context, receiver string) ([]*models.Message, error) {
	return r.query(ctx, `
		SELECT id, sender, receiver, message, timestamp
		FROM messages
		WHERE receiver = ? COLLATE NOCASE
		ORDER BY timestamp DESC, id DESC
	`, receiver)
}

// List returns every message, newest first
func (r *MessageRepo) List(ctx context.Context) ([]*models.Message, error) {
	return r.query(ctx, `
		SELECT id, sender, receiver, message, timestamp
		FROM messages
		ORDER BY timestamp DESC, id DESC
	`)
}

func (r *MessageRepo) query(ctx context.Context, query string, args ...interface{}) ([]*models.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		msg := &models.Message{}
		if err := rows.Scan(&msg.ID, &msg.Sender, &msg.Receiver, &msg.Body, &msg.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
