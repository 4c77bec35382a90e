package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/notexe/ledger-reminders/internal/reminder"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS reminders (
	position INTEGER PRIMARY KEY,
	id INTEGER NOT NULL,
	category TEXT NOT NULL,
	title TEXT NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	date_start TEXT NOT NULL DEFAULT '',
	reminder_time TEXT NOT NULL DEFAULT ''
);
`

// SQLite keeps the list in a local database file, one row per reminder
// in list order.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init cache: %w", err)
		}
	}

	return &SQLite{db: db}, nil
}

// Load returns the cached list in its saved order.
func (s *SQLite) Load(ctx context.Context) ([]reminder.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, title, is_read, date_start, reminder_time
		FROM reminders
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query cached reminders: %w", err)
	}
	defer rows.Close()

	var list []reminder.Reminder
	for rows.Next() {
		var r reminder.Reminder
		if err := rows.Scan(&r.ID, &r.Category, &r.Title, &r.IsRead, &r.DateStart, &r.Time); err != nil {
			return nil, fmt.Errorf("scan cached reminder: %w", err)
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// Save replaces the cached list.
func (s *SQLite) Save(ctx context.Context, list []reminder.Reminder) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM reminders"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reminders (position, id, category, title, is_read, date_start, reminder_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare cache insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range list {
		if _, err := stmt.ExecContext(ctx, i, r.ID, r.Category, r.Title, r.IsRead, r.DateStart, r.Time); err != nil {
			return fmt.Errorf("cache reminder %d: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
