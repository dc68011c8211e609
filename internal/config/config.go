// Package config handles configuration loading and focus home resolution.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Config types
// ---------------------------------------------------------------------------

// FocusSettings controls how task descriptions are broken down.
type FocusSettings struct {
	SlotMinutes     int           `yaml:"slot_minutes"`
	ProcessingDelay time.Duration `yaml:"processing_delay"` // cosmetic wait before showing a breakdown
}

// EmbeddingConfig holds settings for the embedding provider.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // "ollama" | "openai" | "openrouter" | "none"
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"` // #nosec G117 -- APIKey is an intentional field name for the embedding provider's authentication token
}

// SearchConfig controls how plan history is searched.
type SearchConfig struct {
	Semantic string `yaml:"semantic"` // "auto" | "always" | "never"
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// FocusConfig is the root per-home configuration.
type FocusConfig struct {
	Focus     FocusSettings   `yaml:"focus"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Server    ServerConfig    `yaml:"server"`
}

// Default returns a FocusConfig populated with sensible defaults.
func Default() *FocusConfig {
	return &FocusConfig{
		Focus: FocusSettings{
			SlotMinutes: 25,
		},
		Embedding: EmbeddingConfig{
			Provider: "none",
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		Search: SearchConfig{
			Semantic: "auto",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:7725",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Load reads a per-home config.yaml from path.
// If the file does not exist it returns Default() with no error.
// Missing keys retain their default values.
func Load(path string) (*FocusConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	// Unmarshal into a plain map so we can apply only the keys that are present.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if focus, ok := raw["focus"].(map[string]any); ok {
		if v, ok := focus["slot_minutes"].(int); ok && v > 0 {
			cfg.Focus.SlotMinutes = v
		}
		if d, ok := durationValue(focus["processing_delay"]); ok {
			cfg.Focus.ProcessingDelay = d
		}
	}

	if emb, ok := raw["embedding"].(map[string]any); ok {
		if v, ok := emb["provider"].(string); ok && v != "" {
			cfg.Embedding.Provider = v
		}
		if v, ok := emb["model"].(string); ok && v != "" {
			cfg.Embedding.Model = v
		}
		if v, ok := emb["base_url"].(string); ok {
			cfg.Embedding.BaseURL = v
		}
		if v, ok := emb["api_key"].(string); ok {
			cfg.Embedding.APIKey = v
		}
	}

	if search, ok := raw["search"].(map[string]any); ok {
		if v, ok := search["semantic"].(string); ok && v != "" {
			cfg.Search.Semantic = v
		}
	}

	if srv, ok := raw["server"].(map[string]any); ok {
		if v, ok := srv["addr"].(string); ok && v != "" {
			cfg.Server.Addr = v
		}
		if d, ok := durationValue(srv["read_timeout"]); ok {
			cfg.Server.ReadTimeout = d
		}
		if d, ok := durationValue(srv["write_timeout"]); ok {
			cfg.Server.WriteTimeout = d
		}
	}

	return cfg, nil
}

// durationValue accepts "750ms"-style strings or a bare integer of milliseconds.
func durationValue(v any) (time.Duration, bool) {
	switch t := v.(type) {
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(t))
		if err != nil || d < 0 {
			return 0, false
		}
		return d, true
	case int:
		if t < 0 {
			return 0, false
		}
		return time.Duration(t) * time.Millisecond, true
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Focus home resolution
// ---------------------------------------------------------------------------

// globalConfigPath returns the path to the global focusflow config file.
// This file stores only focus_home.
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "focusflow", "config.yaml"), nil
}

// normalizePath expands ~ and makes the path absolute.
func normalizePath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(os.ExpandEnv(path))
}

// ResolveHome returns the focus home path and the source of the resolution.
// Priority: FOCUS_HOME env → persisted global config → ~/.focusflow
// source is one of "env", "config", or "default".
func ResolveHome() (path, source string) {
	if env := os.Getenv("FOCUS_HOME"); env != "" {
		p, err := normalizePath(env)
		if err == nil {
			return p, "env"
		}
	}

	if persisted, ok, _ := GetPersistedHome(); ok {
		return persisted, "config"
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".focusflow"), "default"
}

// GetHome returns the resolved focus home path.
func GetHome() string {
	path, _ := ResolveHome()
	return path
}

// GetPersistedHome reads focus_home from the global config.
// Returns ("", false, nil) if not set.
func GetPersistedHome() (string, bool, error) {
	cfgPath, err := globalConfigPath()
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(cfgPath)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return "", false, nil
	}

	val, _ := raw["focus_home"].(string)
	val = strings.TrimSpace(val)
	if val == "" {
		return "", false, nil
	}

	p, err := normalizePath(val)
	if err != nil {
		return "", false, err
	}
	return p, true, nil
}

// SetPersistedHome normalizes path and persists it in the global config.
// Returns the normalized path.
func SetPersistedHome(path string) (string, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return "", err
	}

	cfgPath, err := globalConfigPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", err
	}

	// Read existing global config, preserving any other keys.
	var raw map[string]any
	if data, err := os.ReadFile(cfgPath); err == nil {
		_ = yaml.Unmarshal(data, &raw)
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	raw["focus_home"] = normalized

	out, err := yaml.Marshal(raw)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(cfgPath, out, 0o600); err != nil {
		return "", err
	}
	return normalized, nil
}

// ClearPersistedHome removes focus_home from the global config.
// Returns true if the key was present and removed.
// If the file becomes empty after removal it is deleted.
func ClearPersistedHome() (bool, error) {
	cfgPath, err := globalConfigPath()
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(cfgPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return false, nil
	}

	if _, ok := raw["focus_home"]; !ok {
		return false, nil
	}
	delete(raw, "focus_home")

	if len(raw) == 0 {
		_ = os.Remove(cfgPath)
		return true, nil
	}

	out, err := yaml.Marshal(raw)
	if err != nil {
		return false, err
	}
	return true, os.WriteFile(cfgPath, out, 0o600)
}
