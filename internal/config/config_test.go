package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateUserConfig keeps the test away from a real ~/.config/cardbox file.
func isolateUserConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func writeJSONConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolateUserConfig(t)

	cfg, err := Load(Overrides{})
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".cardbox", "abook.db"), cfg.Storage.DB.Path)
	assert.Equal(t, 30*time.Second, cfg.Remote.Timeout)
	assert.False(t, cfg.App.Debug)
	assert.False(t, cfg.App.WriteSupport)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv("CARDBOX_STORAGE_DB_PATH", "/tmp/env-abook.db")
	t.Setenv("CARDBOX_REMOTE_RESOURCE", "https://dav.example.com/abook")
	t.Setenv("CARDBOX_REMOTE_TIMEOUT", "45s")
	t.Setenv("CARDBOX_APP_WRITE_SUPPORT", "true")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env-abook.db", cfg.Storage.DB.Path)
	assert.Equal(t, "https://dav.example.com/abook", cfg.Remote.Resource)
	assert.Equal(t, 45*time.Second, cfg.Remote.Timeout)
	assert.True(t, cfg.App.WriteSupport)
}

func TestLoad_OverridesBeatEnv(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv("CARDBOX_STORAGE_DB_PATH", "/tmp/env-abook.db")

	cfg, err := Load(Overrides{DBPath: "/tmp/flag-abook.db"})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/flag-abook.db", cfg.Storage.DB.Path)
}

func TestLoad_JSONLayer(t *testing.T) {
	isolateUserConfig(t)

	path := writeJSONConfig(t, `{
		"app": {"write_support": true, "log_path": "/tmp/cardbox.log"},
		"storage": {"db": {"path": "/tmp/json-abook.db"}},
		"remote": {
			"resource": "https://dav.example.com/abook",
			"user": "ann",
			"password": "secret",
			"timeout": "90s"
		}
	}`)

	cfg, err := Load(Overrides{ConfigPath: path})
	require.NoError(t, err)

	assert.True(t, cfg.App.WriteSupport)
	assert.Equal(t, "/tmp/cardbox.log", cfg.App.LogPath)
	assert.Equal(t, "/tmp/json-abook.db", cfg.Storage.DB.Path)
	assert.Equal(t, "ann", cfg.Remote.User)
	assert.Equal(t, "secret", cfg.Remote.Password)
	assert.Equal(t, 90*time.Second, cfg.Remote.Timeout)
}

func TestLoad_EnvBeatsJSON(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv("CARDBOX_STORAGE_DB_PATH", "/tmp/env-abook.db")

	path := writeJSONConfig(t, `{"storage": {"db": {"path": "/tmp/json-abook.db"}}}`)

	cfg, err := Load(Overrides{ConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env-abook.db", cfg.Storage.DB.Path)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	isolateUserConfig(t)

	path := writeJSONConfig(t, `{"remote": {"resource": "https://dav.example.com/abook"}}`)
	t.Setenv("CARDBOX_CONFIG", path)

	cfg, err := Load(Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "https://dav.example.com/abook", cfg.Remote.Resource)
}

func TestLoad_MissingJSONFile(t *testing.T) {
	isolateUserConfig(t)

	_, err := Load(Overrides{ConfigPath: filepath.Join(t.TempDir(), "nope.json")})
	require.Error(t, err)
}

func TestValidate_ExpandsHomeInDBPath(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv("CARDBOX_STORAGE_DB_PATH", "~/cards/abook.db")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "cards", "abook.db"), cfg.Storage.DB.Path)
}

func TestValidateRemote(t *testing.T) {
	t.Run("missing resource", func(t *testing.T) {
		cfg := &Config{}
		require.ErrorIs(t, cfg.ValidateRemote(), ErrMandatoryOptionMissing)
	})

	t.Run("resource present", func(t *testing.T) {
		cfg := &Config{Remote: Remote{Resource: "https://dav.example.com/abook"}}
		require.NoError(t, cfg.ValidateRemote())
	})
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "duration string", input: `"1h30m"`, want: 90 * time.Minute},
		{name: "nanosecond number", input: `1000000000`, want: time.Second},
		{name: "unparsable string", input: `"soon"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}
}
