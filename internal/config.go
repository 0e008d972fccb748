package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Storage backends selectable with the storage setting
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	BaseURL        string        `toml:"base_url"`
	AuthURL        string        `toml:"auth_url"`
	Model          string        `toml:"model"`
	Models         []string      `toml:"models"`
	DataDir        string        `toml:"data_dir"`
	Storage        string        `toml:"storage"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	AuthTimeout    time.Duration `toml:"auth_timeout"`
	SpeechCommand  string        `toml:"speech_command"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "http://localhost:11614",
		AuthURL:        "http://localhost:8000",
		Model:          "Llama 70b",
		Models:         []string{"Llama 70b", "GPT 4o"},
		DataDir:        "~/.chatpane",
		Storage:        StorageFile,
		RequestTimeout: 120 * time.Second,
		AuthTimeout:    10 * time.Second,
	}
}

// DefaultConfigPath returns $CHATPANE_CONFIG or ~/.config/chatpane/config.toml
func DefaultConfigPath() string {
	if p := os.Getenv("CHATPANE_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ExpandPath("~/.config/chatpane/config.toml")
	}
	return filepath.Join(dir, "chatpane", "config.toml")
}

// LoadConfig reads path (or the default path when empty) over the defaults
// and applies environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultConfigPath()
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, &ParseError{Source: "config", Key: path, Err: err}
		}
		LogDebug("No config file at %s, using defaults", path)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CHATPANE_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("CHATPANE_AUTH_URL"); v != "" {
		c.AuthURL = v
	}
	if v := os.Getenv("CHATPANE_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("CHATPANE_DATA_DIR"); v != "" {
		c.DataDir = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	if c.AuthURL == "" {
		return fmt.Errorf("auth URL cannot be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if !c.HasModel(c.Model) {
		return fmt.Errorf("unknown model %q (available: %s)", c.Model, strings.Join(c.Models, ", "))
	}
	switch c.Storage {
	case StorageFile, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("unsupported storage %q (supported: file, sqlite, memory)", c.Storage)
	}
	if c.RequestTimeout < 0 || c.AuthTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

// HasModel reports whether model is one of the configured models. An empty
// model list accepts anything.
func (c *Config) HasModel(model string) bool {
	if len(c.Models) == 0 {
		return true
	}
	for _, m := range c.Models {
		if m == model {
			return true
		}
	}
	return false
}

// DataPath returns the expanded data directory
func (c *Config) DataPath() string {
	return ExpandPath(c.DataDir)
}

// OpenSlot opens the configured storage backend. The returned closer must be
// called when done.
func (c *Config) OpenSlot() (Slot, io.Closer, error) {
	switch c.Storage {
	case StorageMemory:
		return NewMemorySlot(), nopCloser{}, nil
	case StorageSQLite:
		if err := os.MkdirAll(c.DataPath(), 0700); err != nil {
			return nil, nil, &StorageError{Key: c.DataPath(), Op: "open", Err: err}
		}
		db, err := OpenDatabase(filepath.Join(c.DataPath(), "chatpane.db"))
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteSlot(db), db, nil
	default:
		slot, err := NewFileSlot(c.DataPath())
		if err != nil {
			return nil, nil, err
		}
		return slot, nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
