// Package store persists the schedule state to a JSON file or SQLite.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kilianp07/carheater/core/heating"
	"github.com/kilianp07/carheater/core/scheduler"
)

// FileStore keeps the state as {"readyTime":"HH:mm","timerEnabled":bool}.
// Writes go through a temp file and rename so a crash never leaves a
// truncated document.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) (heating.ScheduleState, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return heating.ScheduleState{}, scheduler.ErrStateNotFound
	}
	if err != nil {
		return heating.ScheduleState{}, fmt.Errorf("read state %s: %w", s.path, err)
	}
	var st heating.ScheduleState
	if err := json.Unmarshal(b, &st); err != nil {
		return heating.ScheduleState{}, fmt.Errorf("decode state %s: %w", s.path, err)
	}
	return st, nil
}

func (s *FileStore) Save(_ context.Context, st heating.ScheduleState) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".carheater-state-*")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state %s: %w", s.path, err)
	}
	return nil
}
