// Package testutil provides common test helpers for the cfhtenv project.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TempConfigFile creates a temporary config.toml with the given content
// and returns its path. The file is automatically cleaned up.
func TempConfigFile(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("TempConfigFile: write failed: %v", err)
	}

	return path
}

// TempStateFile creates a temporary state.json with the given content
// and returns its path.
func TempStateFile(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("TempStateFile: write failed: %v", err)
	}

	return path
}

// TempProjectDir creates a temporary directory standing in for the
// obs_cfht checkout and returns its path with symlinks resolved, so it
// compares equal to os.Getwd() after a chdir.
func TempProjectDir(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "obs_cfht")
	if err := os.MkdirAll(filepath.Join(dir, "ups"), 0755); err != nil {
		t.Fatalf("TempProjectDir: mkdir failed: %v", err)
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("TempProjectDir: %v", err)
	}
	return resolved
}

// Chdir switches the working directory for the duration of the test and
// restores it on cleanup. Tests using it must not run in parallel.
func Chdir(t *testing.T, dir string) string {
	t.Helper()

	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	return cwd
}

// SetupTestConfig writes a config.toml pointing project_dir at projectDir
// with one extra profile. Returns the config file path.
func SetupTestConfig(t *testing.T, projectDir string) string {
	t.Helper()

	content := `version = 1
project_dir = "PROJECT"
package = "obs_cfht"
identity = "alice"
prompt_label = "lsst-cfht"
prompt_color = 2
color = "always"

[profiles.megacam]
package = "obs_cfht"
project_dir = "PROJECT/megacam"
prompt_label = "lsst-megacam"
prompt_color = 4
`
	return TempConfigFile(t, strings.ReplaceAll(content, "PROJECT", projectDir))
}

// EnvDump renders vars in the NUL separated KEY=VALUE format produced by
// the setup script's environment dump.
func EnvDump(vars map[string]string, order ...string) string {
	var b strings.Builder
	for _, k := range order {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(vars[k])
		b.WriteByte(0)
	}
	return b.String()
}
