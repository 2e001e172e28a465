package keybinds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Config is the keybinds.json layout: per context, key -> action name.
// Comments are allowed, as in config.jsonc.
type Config struct {
	Global  map[string]string `json:"global,omitempty"`
	Editor  map[string]string `json:"editor,omitempty"`
	History map[string]string `json:"history,omitempty"`
	Query   map[string]string `json:"query,omitempty"`
}

func (c *Config) sections() []struct {
	context  Context
	bindings map[string]string
} {
	return []struct {
		context  Context
		bindings map[string]string
	}{
		{ContextGlobal, c.Global},
		{ContextEditor, c.Editor},
		{ContextHistory, c.History},
		{ContextQuery, c.Query},
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyConfig layers cfg over the registry. Binding a key to "none"
// unbinds it.
func ApplyConfig(registry *Registry, cfg *Config) error {
	for _, s := range cfg.sections() {
		for key, name := range s.bindings {
			action := Action(name)
			if !IsValidAction(action) {
				return fmt.Errorf("%s: key %q bound to unknown action %q", s.context, key, name)
			}
			registry.Register(s.context, key, action)
		}
	}
	return nil
}

// LoadOrDefault returns the default registry with the user's keybinds.json
// applied when the file exists
func LoadOrDefault(path string) (*Registry, error) {
	registry := NewDefaultRegistry()
	if path == "" {
		return registry, nil
	}

	cfg, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		return registry, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load keybinds: %w", err)
	}
	if err := ApplyConfig(registry, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply keybinds: %w", err)
	}
	return registry, nil
}
