package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// DefaultBaseURL is where the extraction backend listens unless configured otherwise
	DefaultBaseURL = "http://localhost:5000"

	// Environment variables read after the optional .env file
	EnvBaseURL = "INSIGHTCLI_BASE_URL"
	EnvTimeout = "INSIGHTCLI_TIMEOUT"
)

var (
	// ConfigDir is the global configuration directory (~/.insightcli)
	ConfigDir string

	// ConfigFile is the global config.jsonc file
	ConfigFile string

	// DatabasePath is the SQLite database file for submission history
	DatabasePath string

	// LogFile receives TUI logs, since the TUI owns the terminal
	LogFile string

	// KeybindsFile holds user keybinding overrides
	KeybindsFile string
)

// Config holds the settings that change client and view behaviour.
// It is built once by Load and passed down explicitly.
type Config struct {
	BaseURL        string        `json:"baseUrl"`
	Timeout        time.Duration `json:"-"`
	HistoryEnabled bool          `json:"historyEnabled"`
	Output         string        `json:"output"`
	Highlight      bool          `json:"highlight"`
	Theme          string        `json:"theme"`
}

// fileConfig mirrors config.jsonc; pointers distinguish unset from zero
type fileConfig struct {
	BaseURL        *string `json:"baseUrl"`
	Timeout        *string `json:"timeout"`
	HistoryEnabled *bool   `json:"historyEnabled"`
	Output         *string `json:"output"`
	Highlight      *bool   `json:"highlight"`
	Theme          *string `json:"theme"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		HistoryEnabled: true,
		Output:         "json",
		Highlight:      true,
		Theme:          "monokai",
	}
}

// Initialize sets up the configuration directory and files
// It creates ~/.insightcli/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".insightcli"))
}

// InitializeAt is Initialize with an explicit directory
func InitializeAt(dir string) error {
	ConfigDir = dir
	ConfigFile = filepath.Join(ConfigDir, "config.jsonc")
	DatabasePath = filepath.Join(ConfigDir, "insightcli.db")
	LogFile = filepath.Join(ConfigDir, "insightcli.log")
	KeybindsFile = filepath.Join(ConfigDir, "keybinds.json")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create a commented default config if it doesn't exist
	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		defaultConfig := []byte(`{
  // Origin of the insight extraction service
  "baseUrl": "` + DefaultBaseURL + `",
  // Request timeout as a Go duration ("30s"); empty means no timeout
  "timeout": "",
  "historyEnabled": true,
  // CLI output format: json, yaml or body
  "output": "json",
  "highlight": true,
  "theme": "monokai"
}
`)
		if err := os.WriteFile(ConfigFile, defaultConfig, FilePermissions); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	return nil
}

// GetConfigFilePath returns the config file path (local or global)
func GetConfigFilePath() string {
	if _, err := os.Stat("config.jsonc"); err == nil {
		return "config.jsonc"
	}
	return ConfigFile
}

// Load builds the effective configuration: defaults, then the config file,
// then .env and process environment.
func Load() (*Config, error) {
	cfg := Default()

	if path := GetConfigFilePath(); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	// .env is optional
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.BaseURL != nil && *fc.BaseURL != "" {
		c.BaseURL = *fc.BaseURL
	}
	if fc.Timeout != nil {
		timeout, err := ParseTimeout(*fc.Timeout)
		if err != nil {
			return fmt.Errorf("config file %s: %w", path, err)
		}
		c.Timeout = timeout
	}
	if fc.HistoryEnabled != nil {
		c.HistoryEnabled = *fc.HistoryEnabled
	}
	if fc.Output != nil && *fc.Output != "" {
		c.Output = *fc.Output
	}
	if fc.Highlight != nil {
		c.Highlight = *fc.Highlight
	}
	if fc.Theme != nil && *fc.Theme != "" {
		c.Theme = *fc.Theme
	}
	return nil
}

func (c *Config) mergeEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvTimeout); ok {
		timeout, err := ParseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = timeout
	}
	return nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	switch c.Output {
	case "json", "yaml", "body":
	default:
		return fmt.Errorf("unsupported output format %q (use json, yaml or body)", c.Output)
	}
	return nil
}

// ParseTimeout accepts a Go duration or a bare number of seconds.
// An empty string means no timeout.
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	return d, nil
}
