// Package config provides policy configuration for the merge tool.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Folder matching policies.
const (
	// MatchByName addresses folder path segments by their display name.
	MatchByName = "name"
	// MatchByID addresses folder path segments by their identifier; only
	// safe when both models share folder ids.
	MatchByID = "id"
)

// Config controls how the merge engine resolves folders and labels created
// category folders.
type Config struct {
	// FolderMatch selects the folder path matching policy ("name" or "id").
	FolderMatch string `yaml:"folder_match"`
	// FallbackFolder is the category tag for nodes without a folder path.
	FallbackFolder string `yaml:"fallback_folder"`
	// Labels overrides the built-in category folder label table.
	Labels map[string]string `yaml:"labels"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		FolderMatch:    MatchByName,
		FallbackFolder: "diagrams",
	}
}

// LoadFromFile reads a YAML config file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.FolderMatch != MatchByName && c.FolderMatch != MatchByID {
		return fmt.Errorf("folder_match must be %q or %q, got %q", MatchByName, MatchByID, c.FolderMatch)
	}
	if c.FallbackFolder == "" {
		return fmt.Errorf("fallback_folder is required")
	}
	return nil
}
