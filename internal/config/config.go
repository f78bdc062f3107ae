// Package config provides YAML-based configuration for the service and CLI.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var embeddedConfig []byte

// Collections names the document collections the service writes to.
type Collections struct {
	Transactions string `yaml:"transactions"`
	Documents    string `yaml:"documents"`
	Budgets      string `yaml:"budgets"`
}

// Config holds runtime configuration.
//
// Configs should be created via:
//   - YAML loading: New, LoadEmbedded, LoadFromFile
//
// All loaders validate the invariants:
//   - SpendingGoal must be positive
//   - ListenAddr must not be empty
//   - Collection names must not be empty
type Config struct {
	// ProjectID is the Firebase project. Empty means local-only mode.
	ProjectID string `yaml:"project_id"`

	// ListenAddr is the HTTP listen address for -serve mode.
	ListenAddr string `yaml:"listen_addr"`

	// AllowedOrigin is the origin permitted by the CORS middleware.
	AllowedOrigin string `yaml:"allowed_origin"`

	// SpendingGoal is the fixed per-batch goal in rupees.
	SpendingGoal float64 `yaml:"spending_goal"`

	// LocalDBPath is the SQLite ledger path for CLI ingestion.
	LocalDBPath string `yaml:"local_db_path"`

	Collections Collections `yaml:"collections"`
}

// New creates a validated config from YAML data. Fields omitted from the
// YAML fall back to the embedded defaults.
func New(data []byte) (*Config, error) {
	cfg, err := defaults()
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config (check syntax, indentation, and field names): %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEmbedded loads the embedded default configuration.
func LoadEmbedded() (*Config, error) {
	cfg, err := New(embeddedConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded config (possible binary corruption): %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a filesystem path.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := New(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %q: %w", path, err)
	}
	return cfg, nil
}

func defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(embeddedConfig, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse embedded config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SpendingGoal <= 0 {
		return fmt.Errorf("spending_goal must be positive, got %f", c.SpendingGoal)
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("listen_addr cannot be empty")
	}
	if strings.TrimSpace(c.Collections.Transactions) == "" {
		return fmt.Errorf("collections.transactions cannot be empty")
	}
	if strings.TrimSpace(c.Collections.Documents) == "" {
		return fmt.Errorf("collections.documents cannot be empty")
	}
	if strings.TrimSpace(c.Collections.Budgets) == "" {
		return fmt.Errorf("collections.budgets cannot be empty")
	}
	return nil
}
