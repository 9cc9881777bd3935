// Package sqlite provides a lessongraph.MemoryStore on SQLite.
//
// It has the same contract as memory.FileStore but survives concurrent writers from
// several processes, since SQLite serializes write transactions.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/memory"
	"github.com/rs/zerolog"
)

const schema = `
	CREATE TABLE IF NOT EXISTS memory_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id TEXT NOT NULL,
		task TEXT NOT NULL,
		plan TEXT NOT NULL,
		result TEXT NOT NULL,
		critic_review TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
`

// Store keeps the newest max records in a SQLite table.
type Store struct {
	db     *sql.DB
	max    int
	logger zerolog.Logger
}

// Config holds store configuration.
type Config struct {
	// Path is the database file. ":memory:" is accepted for tests.
	Path string

	// MaxItems is the ring size. Zero or negative means memory.DefaultMaxItems.
	MaxItems int

	// Logger reports reads that degraded to an empty history. Zero value logs nothing.
	Logger zerolog.Logger
}

// Open opens (or creates) the database and its table.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("database path is required")
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = memory.DefaultMaxItems
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, max: cfg.MaxItems, logger: cfg.Logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts record and deletes everything but the newest max rows, in one
// transaction.
func (s *Store) Append(ctx context.Context, record lessongraph.MemoryRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO memory_records (task_id, task, plan, result, critic_review, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.TaskID, record.Task, record.Plan, record.Result, record.CriticReview,
		createdAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM memory_records
		 WHERE id NOT IN (SELECT id FROM memory_records ORDER BY id DESC LIMIT ?)`,
		s.max,
	); err != nil {
		return fmt.Errorf("trim records: %w", err)
	}
	return tx.Commit()
}

// Recent returns up to n newest records, oldest first. n <= 0 returns all. A failing
// query is logged and yields an empty history.
func (s *Store) Recent(ctx context.Context, n int) ([]lessongraph.MemoryRecord, error) {
	limit := n
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT task_id, task, plan, result, critic_review, created_at FROM (
			SELECT * FROM memory_records ORDER BY id DESC LIMIT ?
		 ) ORDER BY id ASC`,
		limit,
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Warn().Err(err).Msg("memory query failed, starting empty")
		return nil, nil
	}
	defer rows.Close()

	var records []lessongraph.MemoryRecord
	for rows.Next() {
		var r lessongraph.MemoryRecord
		var createdAt int64
		if err := rows.Scan(&r.TaskID, &r.Task, &r.Plan, &r.Result, &r.CriticReview, &createdAt); err != nil {
			s.logger.Warn().Err(err).Msg("memory row unreadable, starting empty")
			return nil, nil
		}
		r.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn().Err(err).Msg("memory query failed, starting empty")
		return nil, nil
	}
	return records, nil
}

var _ lessongraph.MemoryStore = (*Store)(nil)
