package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/carheater/core/heating"
	"github.com/kilianp07/carheater/core/scheduler"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the state in a single-row table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS schedule_state (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        ready_time TEXT NOT NULL,
        timer_enabled INTEGER NOT NULL,
        updated_at INTEGER NOT NULL
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (heating.ScheduleState, error) {
	var (
		readyTime string
		enabled   bool
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT ready_time, timer_enabled FROM schedule_state WHERE id = 1`).Scan(&readyTime, &enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return heating.ScheduleState{}, scheduler.ErrStateNotFound
	}
	if err != nil {
		return heating.ScheduleState{}, fmt.Errorf("query state: %w", err)
	}
	return heating.NewScheduleState(readyTime, enabled)
}

func (s *SQLiteStore) Save(ctx context.Context, st heating.ScheduleState) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule_state (id, ready_time, timer_enabled, updated_at) VALUES (1, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             ready_time = excluded.ready_time,
             timer_enabled = excluded.timer_enabled,
             updated_at = excluded.updated_at`,
		st.ReadyTime.String(), st.Enabled, s.now().Unix())
	if err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
