package database

import (
	"context"
	"database/sql"
	"fmt"

	"birthday-inbox/internal/models"
)

// Column describes one column as reported by PRAGMA table_info
type Column struct {
	CID          int     `json:"cid"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	NotNull      bool    `json:"not_null"`
	DefaultValue *string `json:"default_value,omitempty"`
	PrimaryKey   int     `json:"pk"` // 1-based position in the primary key, 0 if none
}

// Snapshot is a debug dump of the database contents
type Snapshot struct {
	Path     string              `json:"db_path"`
	Tables   map[string][]Column `json:"tables"`
	Users    []*models.User      `json:"users"`
	Messages []*models.Message   `json:"messages"`
	Audit    []*models.AuditLog  `json:"audit_logs"`
}

// Inspector builds debug snapshots. It must only be exposed in debug builds.
type Inspector struct {
	db       *sql.DB
	path     string
	users    *UserRepo
	messages *MessageRepo
	audit    *AuditRepo
}

// NewInspector creates a new inspector
func NewInspector(db *sql.DB, path string) *Inspector {
	return &Inspector{
		db:       db,
		path:     path,
		users:    NewUserRepo(db),
		messages: NewMessageRepo(db),
		audit:    NewAuditRepo(db),
	}
}

// Snapshot collects schema and table contents
func (i *Inspector) Snapshot(ctx context.Context) (*Snapshot, error) {
	tables, err := i.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Path:   i.path,
		Tables: make(map[string][]Column, len(tables)),
	}
	for _, name := range tables {
		cols, err := i.tableInfo(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("table info %s: %w", name, err)
		}
		snap.Tables[name] = cols
	}

	if snap.Users, err = i.users.List(ctx); err != nil {
		return nil, err
	}
	if snap.Messages, err = i.messages.List(ctx); err != nil {
		return nil, err
	}
	if snap.Audit, err = i.audit.List(ctx, "", 100); err != nil {
		return nil, err
	}

	return snap, nil
}

func (i *Inspector) tableNames(ctx context.Context) ([]string, error) {
	rows, err := i.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (i *Inspector) tableInfo(ctx context.Context, table string) ([]Column, error) {
	// Table names come from sqlite_master, never from the request
	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var col Column
		var dflt sql.NullString
		if err := rows.Scan(&col.CID, &col.Name, &col.Type, &col.NotNull, &dflt, &col.PrimaryKey); err != nil {
			return nil, err
		}
		if dflt.Valid {
			col.DefaultValue = &dflt.String
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}
