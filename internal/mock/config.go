package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SampleInsight is a canned response in the service's product insight shape
const SampleInsight = `{
  "summary_sentence": "Reviews are mostly positive. Users often mention cream, packaging.",
  "ai_score": 6.84,
  "top_keywords": ["cream", "packaging", "scent", "price", "skin"]
}`

// DefaultConfig analyses whatever text is posted to /extract-insights
func DefaultConfig() *Config {
	return &Config{
		Port:    5000,
		Host:    "localhost",
		Logging: true,
		Routes: []Route{
			{
				Name:        "extract-insights",
				Method:      http.MethodPost,
				Path:        "/extract-insights",
				Mode:        ModeAnalyze,
				RequireText: true,
			},
		},
	}
}

// LoadConfig reads routes from a .yaml, .yml or .json file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{Logging: true}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	case ".json":
		err = json.Unmarshal(data, &config)
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// Validate checks every route before the server starts
func (c *Config) Validate() error {
	if len(c.Routes) == 0 {
		return fmt.Errorf("no routes defined")
	}

	for i, route := range c.Routes {
		if route.Method == "" || route.Path == "" {
			return fmt.Errorf("route %d: method and path are required", i)
		}
		switch route.Match {
		case "", "exact", "prefix", "regex":
		default:
			return fmt.Errorf("route %d: match must be exact, prefix or regex", i)
		}
		switch route.Mode {
		case "", ModeStatic, ModeAnalyze:
		default:
			return fmt.Errorf("route %d: mode must be %s or %s", i, ModeStatic, ModeAnalyze)
		}
		if route.Status != 0 && http.StatusText(route.Status) == "" {
			return fmt.Errorf("route %d: status %d is not a valid HTTP status", i, route.Status)
		}
		if route.DelayMs < 0 {
			return fmt.Errorf("route %d: delayMs cannot be negative", i)
		}
	}

	return nil
}
