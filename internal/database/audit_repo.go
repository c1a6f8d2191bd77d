package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"birthday-inbox/internal/models"
)

// AuditRepo handles audit log database operations
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo creates a new audit repository
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Create creates a new audit log entry
func (r *AuditRepo) Create(ctx context.Context, log *models.AuditLog) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (timestamp, username, action, target, details, ip_address)
		VALUES (?, ?, ?, ?, ?, ?)
	`, log.Timestamp.UTC(), log.Username, log.Action, log.Target, log.Details, log.IPAddress)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	log.ID = id
	return nil
}

// Log is a convenience method to create an audit log entry with current timestamp
func (r *AuditRepo) Log(ctx context.Context, username, action, target string, details interface{}, ipAddress string) error {
	var detailsJSON string
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			detailsJSON = "{}"
		} else {
			detailsJSON = string(b)
		}
	}

	return r.Create(ctx, &models.AuditLog{
		Timestamp: time.Now().UTC(),
		Username:  username,
		Action:    action,
		Target:    target,
		Details:   detailsJSON,
		IPAddress: ipAddress,
	})
}

// List returns the most recent entries, newest first. An empty action
// matches every entry.
func (r *AuditRepo) List(ctx context.Context, action string, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query := "SELECT id, timestamp, username, action, target, details, ip_address FROM audit_logs"
	args := []interface{}{}
	if action != "" {
		query += " WHERE action = ?"
		args = append(args, action)
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		log := &models.AuditLog{}
		var username, target, details, ip sql.NullString
		if err := rows.Scan(&log.ID, &log.Timestamp, &username, &log.Action, &target, &details, &ip); err != nil {
			return nil, err
		}
		log.Username = username.String
		log.Target = target.String
		log.Details = details.String
		log.IPAddress = ip.String
		logs = append(logs, log)
	}

	return logs, rows.Err()
}
