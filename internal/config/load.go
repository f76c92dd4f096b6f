package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the project config file looked up next to documents and in
// the working directory.
const FileName = "tubegen.yaml"

// Load loads configuration with priority: defaults < file < flags.
// flags may be nil. docs are the documents the command works on; a
// tubegen.yaml beside the first of them wins over the working directory.
func Load(flags *Flags, docs ...string) (*Config, error) {
	cfg := Default()

	// Explicit path takes priority
	configPath := flags.ConfigPath()
	if configPath == "" {
		configPath = FindConfigFile(docs...)
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
		cfg.source = configPath
	}

	// Apply CLI flags (highest priority)
	flags.apply(cfg)

	return cfg, nil
}

// Source returns the file the config was read from, or "" for defaults.
func (c *Config) Source() string {
	return c.source
}

// FindConfigFile returns the first existing config file among the document
// directories, the working directory and ConfigDir, or "".
func FindConfigFile(docs ...string) string {
	var candidates []string
	seen := make(map[string]bool)
	for _, doc := range docs {
		dir, err := filepath.Abs(filepath.Dir(doc))
		if err != nil || seen[dir] {
			continue
		}
		seen[dir] = true
		candidates = append(candidates, filepath.Join(dir, FileName))
	}
	candidates = append(candidates, FileName, filepath.Join(ConfigDir(), "config.yaml"))

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Tubegen")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Tubegen")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "tubegen")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "tubegen")
	}
}

// loadFromFile merges a YAML file into cfg. Unknown keys are rejected.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
