package state_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lsst-cfht/cfhtenv/internal/state"
	"github.com/lsst-cfht/cfhtenv/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadState_ValidJSON(t *testing.T) {
	content := `{
		"version": 1,
		"entries": {
			"obs_cfht": {
				"identity": "alice",
				"project_dir": "/home/alice/lsst/obs_cfht",
				"activated_at": "2026-10-01T10:30:00Z",
				"setup_ok": true,
				"changes": 12
			}
		}
	}`
	path := testutil.TempStateFile(t, content)
	s, err := state.Load(path)

	require.NoError(t, err)
	assert.Equal(t, 1, s.Version)
	e, ok := s.Lookup("obs_cfht")
	require.True(t, ok)
	assert.Equal(t, "alice", e.Identity)
	assert.Equal(t, 12, e.Changes)
}

func TestLoadState_MissingFile(t *testing.T) {
	s, err := state.Load("/nonexistent/state.json")
	require.NoError(t, err) // graceful: empty state
	assert.Empty(t, s.Entries)
}

func TestLoadState_InvalidJSON(t *testing.T) {
	path := testutil.TempStateFile(t, "not json {{{")
	s, err := state.Load(path)
	require.NoError(t, err) // graceful degradation
	assert.Empty(t, s.Entries)
}

func TestRecent(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	s := state.New()
	s.Record("obs_cfht", state.Entry{
		Identity:    "alice",
		ActivatedAt: now.Add(-30 * time.Minute).Format(time.RFC3339),
		SetupOK:     true,
	})
	s.Record("obs_megacam", state.Entry{
		Identity:    "alice",
		ActivatedAt: now.Format(time.RFC3339),
		SetupOK:     false,
	})

	assert.True(t, s.Recent("obs_cfht", "alice", time.Hour, now))
	assert.False(t, s.Recent("obs_cfht", "alice", 10*time.Minute, now), "too old")
	assert.False(t, s.Recent("obs_cfht", "bob", time.Hour, now), "other identity")
	assert.False(t, s.Recent("obs_megacam", "alice", time.Hour, now), "failed setup")
	assert.False(t, s.Recent("obs_subaru", "alice", time.Hour, now), "unknown package")
}

func TestSaveAndForget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s := state.New()
	s.Record("obs_cfht", state.Entry{Identity: "alice", SetupOK: true})
	require.NoError(t, s.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := state.Load(path)
	require.NoError(t, err)
	_, ok := loaded.Lookup("obs_cfht")
	assert.True(t, ok)

	loaded.Forget("obs_cfht")
	_, ok = loaded.Lookup("obs_cfht")
	assert.False(t, ok)
}
