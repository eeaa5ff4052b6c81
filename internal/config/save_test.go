package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lsst-cfht/cfhtenv/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave_WritesValidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	color := 5
	cfg := &config.Config{
		Version:     1,
		ProjectDir:  "/data/obs_cfht",
		Package:     "obs_cfht",
		Identity:    "bob",
		PromptLabel: "cfht",
		PromptColor: &color,
		Color:       config.ColorAlways,
		Profiles: map[string]config.Profile{
			"megacam": {Package: "obs_megacam"},
		},
	}

	err := config.Save(path, cfg)
	require.NoError(t, err)

	// 파일 권한 0600 확인
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Load로 round-trip 검증
	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/obs_cfht", loaded.ProjectDir)
	assert.Equal(t, "bob", loaded.Identity)
	assert.Equal(t, "cfht", loaded.PromptLabel)
	assert.Equal(t, 5, loaded.ColorIndex())
	assert.Equal(t, "obs_megacam", loaded.Profiles["megacam"].Package)
}

func TestSave_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("garbage that is much longer than the new content ...\n"), 0600))

	require.NoError(t, config.Save(path, config.Default()))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPackage, loaded.Package)
}
