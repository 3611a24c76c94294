package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RobinCoderZhao/alert-digest/pkg/storage"
)

// Schema is the SQLite schema for the state backend.
const Schema = `
CREATE TABLE IF NOT EXISTS seen (
    uid        TEXT PRIMARY KEY,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS history (
    seq       INTEGER PRIMARY KEY AUTOINCREMENT,
    uid       TEXT NOT NULL UNIQUE,
    title     TEXT NOT NULL,
    link      TEXT NOT NULL,
    source    TEXT NOT NULL DEFAULT '',
    published TEXT NOT NULL DEFAULT '',
    summary   TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteBackend stores state in a SQLite database.
type SQLiteBackend struct {
	db *storage.DB
}

// NewSQLiteBackend opens the database at path and creates the schema.
func NewSQLiteBackend(ctx context.Context, path string) (*SQLiteBackend, error) {
	db, err := storage.Open(storage.Config{Driver: storage.SQLite, DSN: path})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteBackend{db: db}, nil
}

// Load reads the seen set and the history in insertion order.
func (b *SQLiteBackend) Load(ctx context.Context) (*State, error) {
	state := NewState()

	rows, err := b.db.QueryContext(ctx, `SELECT uid FROM seen`)
	if err != nil {
		return nil, fmt.Errorf("query seen: %w", err)
	}
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan seen: %w", err)
		}
		state.Seen.Add(uid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seen: %w", err)
	}

	rows, err = b.db.QueryContext(ctx, `
		SELECT uid, title, link, source, published, summary
		FROM history ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.UID, &e.Title, &e.Link, &e.Source, &e.Published, &e.Summary); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	state.History = NewHistory(entries)
	return state, nil
}

// SaveHistory inserts entries not yet stored. Existing rows are never
// updated.
func (b *SQLiteBackend) SaveHistory(ctx context.Context, h *History) error {
	if !h.Changed() {
		return nil
	}
	return b.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO history (uid, title, link, source, published, summary)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare history insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range h.Entries() {
			if _, err := stmt.ExecContext(ctx, e.UID, e.Title, e.Link, e.Source, e.Published, e.Summary); err != nil {
				return fmt.Errorf("insert history %s: %w", e.UID, err)
			}
		}
		return nil
	})
}

// SaveSeen inserts every UID of seen.
func (b *SQLiteBackend) SaveSeen(ctx context.Context, seen SeenSet) error {
	return b.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO seen (uid) VALUES (?)`)
		if err != nil {
			return fmt.Errorf("prepare seen insert: %w", err)
		}
		defer stmt.Close()

		for _, uid := range seen.Sorted() {
			if _, err := stmt.ExecContext(ctx, uid); err != nil {
				return fmt.Errorf("insert seen %s: %w", uid, err)
			}
		}
		return nil
	})
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
