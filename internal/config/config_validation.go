package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// validate checks mandatory options and normalizes paths. The database path
// must always be present; the remote resource is checked lazily by the sync
// command via [Config.ValidateRemote], because query-only invocations work
// fine without one.
func (c *Config) validate() error {
	if c.Storage.DB.Path == "" {
		return fmt.Errorf("%w: storage db path", ErrMandatoryOptionMissing)
	}

	expanded, err := expandHome(c.Storage.DB.Path)
	if err != nil {
		return fmt.Errorf("expand db path: %w", err)
	}
	c.Storage.DB.Path = expanded

	if c.App.LogPath != "" {
		expanded, err = expandHome(c.App.LogPath)
		if err != nil {
			return fmt.Errorf("expand log path: %w", err)
		}
		c.App.LogPath = expanded
	}

	return nil
}

// ValidateRemote checks the options the sync command cannot run without.
func (c *Config) ValidateRemote() error {
	if c.Remote.Resource == "" {
		return fmt.Errorf("%w: remote resource", ErrMandatoryOptionMissing)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
