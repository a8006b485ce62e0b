package ledger

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteSink mirrors the ledger into a SQLite database shared by many
// sessions. Each Write replaces the rows of its own session in one
// transaction.
type SQLiteSink struct {
	db        *sql.DB
	sessionID string
}

func OpenSQLiteSink(path, sessionID string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode = WAL", "PRAGMA busy_timeout = 5000", schemaSQL} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to prepare database: %w", err)
		}
	}
	return &SQLiteSink{db: db, sessionID: sessionID}, nil
}

func (s *SQLiteSink) Write(records []Record) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM results WHERE session_id = ?`, s.sessionID); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO results (session_id, trial_index, all_keys_pressed, trial_type, running_time) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		var keys sql.NullString
		if r.Responded() {
			keys = sql.NullString{String: FormatKeys(r.Keys), Valid: true}
		}
		if _, err = stmt.Exec(s.sessionID, i, keys, r.TrialType, r.RunningTime.Seconds()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteSink) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
