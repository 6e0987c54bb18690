package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sameicp/assignment-monitor/internal/types"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS participants (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		area_of_study TEXT NOT NULL,
		role          TEXT NOT NULL,
		has_staked    INTEGER NOT NULL DEFAULT 0,
		created_at    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS balances (
		participant_id TEXT PRIMARY KEY,
		amount         INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS supervisor_pool (
		participant_id TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		area_of_study  TEXT NOT NULL,
		joined_at      INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS assignments (
		id                 TEXT PRIMARY KEY,
		topic              TEXT NOT NULL,
		due_date_days      INTEGER NOT NULL,
		progress_record_id TEXT NOT NULL UNIQUE,
		created_at         INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS progress_records (
		id            TEXT PRIMARY KEY,
		student_id    TEXT NOT NULL,
		supervisor_id TEXT NOT NULL,
		assignment_id TEXT NOT NULL UNIQUE,
		is_finished   INTEGER NOT NULL DEFAULT 0,
		state         TEXT NOT NULL,
		created_at    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS uploaded_work (
		assignment_id TEXT PRIMARY KEY,
		work          TEXT NOT NULL,
		uploaded_at   INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS supervisor_assignments (
		supervisor_id      TEXT PRIMARY KEY,
		progress_record_id TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS timers (
		assignment_id      TEXT PRIMARY KEY,
		handle             TEXT NOT NULL,
		progress_record_id TEXT NOT NULL,
		participant_id     TEXT NOT NULL,
		fire_at            INTEGER NOT NULL,
		state              TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS timers_state_fire_at ON timers (state, fire_at)`,
	`CREATE TABLE IF NOT EXISTS unprocessable_messages (
		id           TEXT PRIMARY KEY,
		message_body TEXT NOT NULL,
		receipt      TEXT NOT NULL,
		created_at   INTEGER NOT NULL
	)`,
}

// Compile-time interface satisfaction check.
var (
	_ DBClient = (*Database)(nil)
	_ DBClient = (*SQLiteDatabase)(nil)
)

// SQLiteDatabase implements DBClient on a single SQLite connection, so every
// transaction is serialized.
type SQLiteDatabase struct {
	db *sql.DB
}

// NewSQLiteDatabase opens the SQLite database at path and creates the schema.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// An in-memory database only lives as long as its connection
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	pragmas := []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout = 5000"}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	log.Debug().Str("path", path).Msg("sqlite database opened")
	return &SQLiteDatabase{db: db}, nil
}

func (s *SQLiteDatabase) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteDatabase) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *SQLiteDatabase) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Ctx(ctx).Error().Err(rbErr).Msg("failed to rollback sqlite transaction")
		}
		return err
	}
	return tx.Commit()
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func execExpectingRow(ctx context.Context, e execer, notFound error, query string, args ...any) error {
	result, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

func statesInClause(states []types.ProgressState) (string, []any) {
	placeholders := make([]string, len(states))
	args := make([]any, len(states))
	for i, state := range states {
		placeholders[i] = "?"
		args[i] = state.ToString()
	}
	return "(" + strings.Join(placeholders, ", ") + ")", args
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
}

func toSQLiteDuplicateKeyError(err error, key, message string) error {
	if isSQLiteUniqueViolation(err) {
		return &DuplicateKeyError{
			Key:     key,
			Message: message,
		}
	}
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
