package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"LIBRARY_DB", "LOG_LEVEL",
	"LIBRARIAN_NAME", "LIBRARIAN_AGE", "LIBRARIAN_EMAIL", "LIBRARIAN_PASSWORD",
}

// clearEnv unsets every key Load reads; the previous values come back when
// the test ends.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LIBRARIAN_EMAIL", "desk@lib.org")
	t.Setenv("LIBRARIAN_PASSWORD", "Shelves2024")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "library.db", cfg.DBPath)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, "Librarian", cfg.Librarian.Name)
	assert.Equal(t, 40, cfg.Librarian.Age)
	assert.Equal(t, "desk@lib.org", cfg.Librarian.Email)
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`LIBRARY_DB=/var/lib/library/data.db
LOG_LEVEL=debug
LIBRARIAN_NAME="Head Librarian"
LIBRARIAN_AGE=52
LIBRARIAN_EMAIL=desk@lib.org
LIBRARIAN_PASSWORD=Shelves2024
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/library/data.db", cfg.DBPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "Head Librarian", cfg.Librarian.Name)
	assert.Equal(t, 52, cfg.Librarian.Age)
	assert.Equal(t, "Shelves2024", cfg.Librarian.Password)
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("LIBRARY_DB", "from-env.db")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LIBRARY_DB=from-file.db\nLIBRARIAN_EMAIL=desk@lib.org\nLIBRARIAN_PASSWORD=x\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.DBPath)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing librarian email",
			env:  map[string]string{"LIBRARIAN_PASSWORD": "Shelves2024"},
			want: "LIBRARIAN_EMAIL is required",
		},
		{
			name: "missing librarian password",
			env:  map[string]string{"LIBRARIAN_EMAIL": "desk@lib.org"},
			want: "LIBRARIAN_PASSWORD is required",
		},
		{
			name: "bad age",
			env: map[string]string{
				"LIBRARIAN_EMAIL":    "desk@lib.org",
				"LIBRARIAN_PASSWORD": "Shelves2024",
				"LIBRARIAN_AGE":      "forty",
			},
			want: "invalid LIBRARIAN_AGE",
		},
		{
			name: "bad log level",
			env: map[string]string{
				"LIBRARIAN_EMAIL":    "desk@lib.org",
				"LIBRARIAN_PASSWORD": "Shelves2024",
				"LOG_LEVEL":          "loud",
			},
			want: "invalid LOG_LEVEL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
