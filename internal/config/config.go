package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level configuration container for cardbox. It aggregates
// all sub-configurations and is populated by merging values from command-line
// overrides, environment variables (prefix CARDBOX_), and an optional JSON
// file, in that priority order.
type Config struct {
	// App holds application-level settings such as the debug flag and the
	// write-support gate for mutating commands.
	App App `envPrefix:"APP_"`

	// Storage holds the local card store settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Remote holds the remote address-book connection settings used by the
	// sync command.
	Remote Remote `envPrefix:"REMOTE_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CARDBOX_CONFIG environment variable or the
	// -c / --config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// Debug raises the log level to Debug.
	// Env: CARDBOX_APP_DEBUG
	Debug bool `env:"DEBUG"`

	// WriteSupport gates commands that mutate the local store
	// (import, delete). Off by default so a misconfigured invocation
	// cannot damage an address book.
	// Env: CARDBOX_APP_WRITE_SUPPORT
	WriteSupport bool `env:"WRITE_SUPPORT"`

	// LogPath is the structured log file location. Empty means stderr.
	// Env: CARDBOX_APP_LOG_PATH
	LogPath string `env:"LOG_PATH"`
}

// Storage groups configuration for the persistence layer.
type Storage struct {
	// DB holds the embedded database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds the embedded database settings.
type DB struct {
	// Path is the SQLite database file location. Mandatory; defaulted to
	// ~/.cardbox/abook.db when not configured.
	// Env: CARDBOX_STORAGE_DB_PATH
	Path string `env:"PATH"`
}

// Remote holds the remote address-book endpoint settings.
type Remote struct {
	// Resource is the base URL of the remote address book.
	// Mandatory for the sync command only.
	// Env: CARDBOX_REMOTE_RESOURCE
	Resource string `env:"RESOURCE"`

	// User and Password are the HTTP basic auth credentials.
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`

	// SkipVerify disables TLS certificate verification.
	// Env: CARDBOX_REMOTE_SKIP_VERIFY
	SkipVerify bool `env:"SKIP_VERIFY"`

	// Timeout bounds one remote fetch, after which an in-flight sync run
	// fails with a timeout error (e.g. "30s", "2m").
	// Env: CARDBOX_REMOTE_TIMEOUT
	Timeout time.Duration `env:"TIMEOUT"`
}

const (
	defaultDBDir  = ".cardbox"
	defaultDBFile = "abook.db"

	defaultRemoteTimeout = 30 * time.Second
)

// defaults returns the lowest-priority configuration layer.
func defaults() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &Config{
		Storage: Storage{DB: DB{Path: filepath.Join(home, defaultDBDir, defaultDBFile)}},
		Remote:  Remote{Timeout: defaultRemoteTimeout},
	}
}

// DefaultJSONPath returns the conventional config file location
// (~/.config/cardbox/config.json) if such a file exists, otherwise "".
func DefaultJSONPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}

	path := filepath.Join(configHome, "cardbox", "config.json")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
