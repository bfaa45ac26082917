package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadWithFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "custom.yaml", `
db: sessions.db
frame_step: 16.5
format: json
log_level: debug
metrics: true
hit_policy: any
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		DB:        "sessions.db",
		FrameStep: 16.5,
		Format:    "json",
		LogLevel:  "debug",
		Metrics:   true,
		HitPolicy: "any",
	}, cfg)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "holdjudge.db", cfg.DB)
	assert.Equal(t, 10.0, cfg.FrameStep)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Metrics)
	assert.Equal(t, "cursor", cfg.HitPolicy)
}

func TestLoadFindsFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "holdjudge.yaml", "frame_step: 5\n")
	chdir(t, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.FrameStep)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "c.yaml", "db: file.db\n")
	t.Setenv("HOLDJUDGE_DB", "env.db")
	t.Setenv("HOLDJUDGE_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.DB)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load("/nonexistent/holdjudge.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"zero frame step", "frame_step: 0\n", "frame_step"},
		{"unknown format", "format: xml\n", "format"},
		{"unknown policy", "hit_policy: touch\n", "hit_policy"},
		{"unknown level", "log_level: loud\n", "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "c.yaml", tt.body)
			_, err := Load(path)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
