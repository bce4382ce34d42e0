package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.ListenAddr)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "listen_addr: \":9090\"\nseed_file: seed.yaml\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "seed.yaml", cfg.SeedFile)
	// Untouched fields keep their defaults.
	assert.Equal(t, "askwave.db", cfg.DBPath)
	assert.Equal(t, "active-users-default", cfg.ActiveUsersID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "listen_addr: [\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsBlankedOutFields(t *testing.T) {
	cases := map[string]string{
		"listen_addr":     "listen_addr: \"\"\n",
		"db_path":         "db_path: \"\"\n",
		"active_users_id": "active_users_id: \"\"\n",
	}
	for field, contents := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := Load(writeConfig(t, contents))
			require.Error(t, err)
			assert.Contains(t, err.Error(), field)
		})
	}
}
