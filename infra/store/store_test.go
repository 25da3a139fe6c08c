package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/carheater/core/heating"
	"github.com/kilianp07/carheater/core/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]scheduler.Store {
	t.Helper()
	dir := t.TempDir()
	sq, err := NewSQLiteStore(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]scheduler.Store{
		"file":   NewFileStore(filepath.Join(dir, "state.json")),
		"sqlite": sq,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.Load(ctx)
			assert.ErrorIs(t, err, scheduler.ErrStateNotFound)

			first := heating.ScheduleState{ReadyTime: heating.MustParseTimeOfDay("06:45"), Enabled: true}
			require.NoError(t, s.Save(ctx, first))
			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, first, got)

			second := heating.ScheduleState{ReadyTime: heating.MustParseTimeOfDay("23:59"), Enabled: false}
			require.NoError(t, s.Save(ctx, second))
			got, err = s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, second, got)
		})
	}
}

func TestFileStoreFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "car_heater_state.json")
	s := NewFileStore(path)
	require.NoError(t, s.Save(context.Background(), heating.ScheduleState{ReadyTime: heating.MustParseTimeOfDay("07:30"), Enabled: true}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"readyTime":"07:30","timerEnabled":true}`, string(b))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file cleaned up")
}

func TestFileStoreRejectsCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"readyTime":"25:00","timerEnabled":true}`), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	assert.ErrorIs(t, err, heating.ErrInvalidConfiguration)
	assert.NotErrorIs(t, err, scheduler.ErrStateNotFound)
}

func TestFileStoreSaveFailsForMissingDir(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing", "state.json"))
	assert.Error(t, s.Save(context.Background(), heating.DefaultScheduleState()))
}

func TestNewFromConfig(t *testing.T) {
	cfg := Config{Path: filepath.Join(t.TempDir(), "x.json")}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	s, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	bad := Config{Backend: "etcd", Path: "x"}
	assert.Error(t, bad.Validate())
	_, err = New(bad)
	assert.Error(t, err)
}
