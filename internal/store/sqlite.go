package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/zhouzirui/talker-manager/backend/internal/model/talker"
)

// SQLiteStore snapshots the talker collection into a single SQLite table.
// Every Save rewrites the table inside one transaction.
type SQLiteStore struct {
	db *sql.DB
}

var _ talker.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at path and creates the table if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS talkers (
		position   INTEGER PRIMARY KEY,
		id         INTEGER NOT NULL UNIQUE,
		name       TEXT    NOT NULL,
		age        INTEGER NOT NULL,
		watched_at TEXT    NOT NULL,
		rate       INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create talkers table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns every row ordered by position.
func (s *SQLiteStore) Load(ctx context.Context) ([]talker.Talker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, age, watched_at, rate FROM talkers ORDER BY position`)
	if err != nil {
		return nil, unavailable("select talkers", err)
	}
	defer func() { _ = rows.Close() }()

	talkers := []talker.Talker{}
	for rows.Next() {
		var t talker.Talker
		if err := rows.Scan(&t.ID, &t.Name, &t.Age, &t.Talk.WatchedAt, &t.Talk.Rate); err != nil {
			return nil, unavailable("scan talker", err)
		}
		talkers = append(talkers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate talkers", err)
	}
	return talkers, nil
}

// Save deletes every row and inserts talkers in order.
func (s *SQLiteStore) Save(ctx context.Context, talkers []talker.Talker) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin tx", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM talkers`); err != nil {
		return unavailable("clear talkers", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO talkers (position, id, name, age, watched_at, rate) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return unavailable("prepare insert", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, t := range talkers {
		if _, err := stmt.ExecContext(ctx, i, t.ID, t.Name, t.Age, t.Talk.WatchedAt, t.Talk.Rate); err != nil {
			return unavailable(fmt.Sprintf("insert talker %d", t.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("commit", err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
