package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/recall"
	"github.com/aretw0/recall/internal/platform"
	"github.com/aretw0/recall/pkg/status"
)

var validate = validator.New()

// Config is the CLI configuration read from .recall/config.yaml.
// Missing fields keep their defaults.
type Config struct {
	Adapter      string        `yaml:"adapter" validate:"oneof=fs sqlite memory"`
	DataFile     string        `yaml:"data_file,omitempty"`
	TickInterval time.Duration `yaml:"tick_interval" validate:"gt=0"`
	SevereAfter  time.Duration `yaml:"severe_after" validate:"gt=0"`
	Versioning   bool          `yaml:"versioning"`
	ReadOnly     bool          `yaml:"read_only"`
	EventBuffer  int           `yaml:"event_buffer" validate:"gte=0,lte=100000"`
	History      int           `yaml:"history" validate:"gte=0"`
	Vault        VaultConfig   `yaml:"vault"`
}

// VaultConfig locates the markdown files notes link to.
type VaultConfig struct {
	Root    string `yaml:"root,omitempty"` // relative to the recall root
	Name    string `yaml:"name,omitempty"`
	Pattern string `yaml:"pattern" validate:"required"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Adapter:      platform.AdapterFS,
		TickInterval: status.DefaultInterval,
		SevereAfter:  status.DefaultSevereAfter,
		EventBuffer:  100,
		History:      50,
		Vault:        VaultConfig{Pattern: "**/*.md"},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error
// unless required is set.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !required:
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	return validate.Struct(c)
}

// Write stores the configuration as YAML, creating the directory.
func (c Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// URI is what the adapter opens for root.
func (c Config) URI(root string) string {
	if c.DataFile == "" {
		return root
	}
	if filepath.IsAbs(c.DataFile) {
		return c.DataFile
	}
	return filepath.Join(root, c.DataFile)
}

// Options translates the configuration into library options.
func (c Config) Options(root string) []recall.Option {
	vaultRoot := c.Vault.Root
	if vaultRoot == "" {
		vaultRoot = root
	} else if !filepath.IsAbs(vaultRoot) {
		vaultRoot = filepath.Join(root, vaultRoot)
	}
	return []recall.Option{
		recall.WithAdapter(c.Adapter),
		recall.WithTickInterval(c.TickInterval),
		recall.WithSevereAfter(c.SevereAfter),
		recall.WithVersioning(c.Versioning),
		recall.WithReadOnly(c.ReadOnly),
		recall.WithEventBuffer(c.EventBuffer),
		recall.WithHistory(c.History),
		recall.WithVault(vaultRoot, c.Vault.Name, c.Vault.Pattern),
	}
}
