// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading for costgate.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - $COSTGATE_CONFIG (explicit path)
//   - ~/.costgate/config.toml
//   - ~/.costgate/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/costgate/internal/errs"
	"github.com/jeranaias/costgate/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete costgate configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Routing configuration
	Routing RoutingConfig `toml:"routing" json:"routing"`

	// Local runtime configuration
	Runtime RuntimeConfig `toml:"runtime" json:"runtime"`

	// Static paid-tier provider definitions
	Providers []ProviderDef `toml:"providers" json:"providers"`

	// Ledger (audit + aggregate) storage configuration
	Ledger LedgerConfig `toml:"ledger" json:"ledger"`

	// Premium permission gate configuration
	Gate GateConfig `toml:"gate" json:"gate"`
}

// RoutingConfig contains routing behavior configuration.
type RoutingConfig struct {
	// BaselineProvider is the designated fallback provider id. Routing
	// falls back to it whenever no cheaper candidate survives gating.
	BaselineProvider string `toml:"baseline_provider" json:"baseline_provider"`
	// PremiumPolicy controls how request_required gate outcomes resolve:
	// "strict" downgrades silently, "prompt" surfaces the downgrade in
	// CLI output. Neither grants premium without an explicit override.
	PremiumPolicy string `toml:"premium_policy" json:"premium_policy"`
}

// RuntimeConfig contains local runtime (Ollama) configuration.
type RuntimeConfig struct {
	// BinaryPath is the trusted path to the runtime executable. The
	// sandbox resolves this path first and consults PATH only when the
	// trusted path does not exist.
	BinaryPath string `toml:"binary_path" json:"binary_path"`
	// URL is the runtime API endpoint used for the startup model probe.
	URL string `toml:"url" json:"url"`
	// ProbeTimeoutSecs bounds the startup installed-model probe.
	ProbeTimeoutSecs int `toml:"probe_timeout_secs" json:"probe_timeout_secs"`
	// ExecTimeoutSecs bounds a single sandboxed execution.
	ExecTimeoutSecs int `toml:"exec_timeout_secs" json:"exec_timeout_secs"`
}

// ProviderDef defines a static paid-tier provider.
type ProviderDef struct {
	ID              string   `toml:"id" json:"id"`
	Tier            string   `toml:"tier" json:"tier"`
	UnitCost        float64  `toml:"unit_cost" json:"unit_cost"`
	MaxContextUnits int      `toml:"max_context_units" json:"max_context_units"`
	Capabilities    []string `toml:"capabilities" json:"capabilities"`
}

// LedgerConfig contains audit and aggregate storage configuration.
type LedgerConfig struct {
	// DataDir holds the audit log, the usage aggregate, and the decision
	// history database. Supports ~ expansion.
	DataDir string `toml:"data_dir" json:"data_dir"`
	// MaxAuditSizeMB triggers audit log rotation.
	MaxAuditSizeMB int `toml:"max_audit_size_mb" json:"max_audit_size_mb"`
}

// GateConfig contains premium gate throttle configuration.
type GateConfig struct {
	// RatePerSec and Burst bound gate evaluations. Exceeding the limit is
	// treated as an internal fault and denies (never grants).
	RatePerSec float64 `toml:"rate_per_sec" json:"rate_per_sec"`
	Burst      int     `toml:"burst" json:"burst"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Routing: RoutingConfig{
			BaselineProvider: "claude-haiku",
			PremiumPolicy:    "strict",
		},
		Runtime: RuntimeConfig{
			BinaryPath:       "/usr/local/bin/ollama",
			URL:              "http://127.0.0.1:11434",
			ProbeTimeoutSecs: 3,
			ExecTimeoutSecs:  120,
		},
		Providers: []ProviderDef{
			{
				ID:              "claude-haiku",
				Tier:            "baseline",
				UnitCost:        0.025,
				MaxContextUnits: 200000,
				Capabilities:    []string{"general", "code", "files", "data"},
			},
			{
				ID:              "claude-sonnet",
				Tier:            "premium",
				UnitCost:        0.3,
				MaxContextUnits: 200000,
				Capabilities:    []string{"general", "code", "analysis"},
			},
			{
				ID:              "claude-opus",
				Tier:            "premium",
				UnitCost:        1.5,
				MaxContextUnits: 200000,
				Capabilities:    []string{"general", "code", "analysis", "security"},
			},
		},
		Ledger: LedgerConfig{
			DataDir:        "~/.costgate",
			MaxAuditSizeMB: 10,
		},
		Gate: GateConfig{
			RatePerSec: 50,
			Burst:      100,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the costgate configuration directory (~/.costgate).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".costgate"), nil
}

// ConfigPathTOML returns the TOML config file path.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the JSON config file path.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ExpandPath expands a leading ~ to the user home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// =============================================================================
// LOAD
// =============================================================================

// Load loads configuration with the standard precedence: explicit
// $COSTGATE_CONFIG path, TOML, JSON, then built-in defaults. Environment
// overrides and validation are applied in every case. Validation failure is
// a fatal configuration error.
func Load() (*Config, error) {
	if explicit := os.Getenv("COSTGATE_CONFIG"); explicit != "" {
		return LoadFromPath(explicit)
	}

	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := decodeTOML(cfg, tomlPath); err != nil {
				return nil, errs.Wrap(errs.KindConfiguration, "config.load", err)
			}
			return finish(cfg)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := decodeJSON(cfg, jsonPath); err != nil {
				return nil, errs.Wrap(errs.KindConfiguration, "config.load", err)
			}
			return finish(cfg)
		}
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	var err error
	if strings.HasSuffix(path, ".json") {
		err = decodeJSON(cfg, path)
	} else {
		err = decodeTOML(cfg, path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindConfiguration, "config.load", err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errs.Wrap(errs.KindConfiguration, "config.validate", err)
	}
	return cfg, nil
}

func decodeTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

func decodeJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to the TOML config path atomically.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML to the given path.
func SaveTOML(cfg *Config, path string) error {
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode TOML: %w", err)
	}
	// Config may hold provider definitions only, but 0600 matches the
	// conservative permissions used everywhere else in costgate.
	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - COSTGATE_RUNTIME_PATH: overrides runtime.binary_path
//   - COSTGATE_RUNTIME_URL: overrides runtime.url
//   - COSTGATE_DATA_DIR: overrides ledger.data_dir
//   - COSTGATE_PREMIUM_POLICY: overrides routing.premium_policy
//   - COSTGATE_BASELINE: overrides routing.baseline_provider
//   - COSTGATE_EXEC_TIMEOUT_SECS: overrides runtime.exec_timeout_secs
func (c *Config) ApplyEnvOverrides() {
	if path := os.Getenv("COSTGATE_RUNTIME_PATH"); path != "" {
		c.Runtime.BinaryPath = path
	}
	if u := os.Getenv("COSTGATE_RUNTIME_URL"); u != "" {
		c.Runtime.URL = u
	}
	if dir := os.Getenv("COSTGATE_DATA_DIR"); dir != "" {
		c.Ledger.DataDir = dir
	}
	if policy := os.Getenv("COSTGATE_PREMIUM_POLICY"); policy != "" {
		c.Routing.PremiumPolicy = strings.ToLower(policy)
	}
	if baseline := os.Getenv("COSTGATE_BASELINE"); baseline != "" {
		c.Routing.BaselineProvider = baseline
	}
	if secs := os.Getenv("COSTGATE_EXEC_TIMEOUT_SECS"); secs != "" {
		var n int
		if _, err := fmt.Sscanf(secs, "%d", &n); err == nil && n > 0 {
			c.Runtime.ExecTimeoutSecs = n
		}
	}
}

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

// SetDefaults fills zero values with defaults after decode and overrides.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Routing.BaselineProvider == "" {
		c.Routing.BaselineProvider = def.Routing.BaselineProvider
	}
	if c.Routing.PremiumPolicy == "" {
		c.Routing.PremiumPolicy = def.Routing.PremiumPolicy
	}
	if c.Runtime.BinaryPath == "" {
		c.Runtime.BinaryPath = def.Runtime.BinaryPath
	}
	if c.Runtime.URL == "" {
		c.Runtime.URL = def.Runtime.URL
	}
	if c.Runtime.ProbeTimeoutSecs <= 0 {
		c.Runtime.ProbeTimeoutSecs = def.Runtime.ProbeTimeoutSecs
	}
	if c.Runtime.ExecTimeoutSecs <= 0 {
		c.Runtime.ExecTimeoutSecs = def.Runtime.ExecTimeoutSecs
	}
	if len(c.Providers) == 0 {
		c.Providers = def.Providers
	}
	if c.Ledger.DataDir == "" {
		c.Ledger.DataDir = def.Ledger.DataDir
	}
	if c.Ledger.MaxAuditSizeMB <= 0 {
		c.Ledger.MaxAuditSizeMB = def.Ledger.MaxAuditSizeMB
	}
	if c.Gate.RatePerSec <= 0 {
		c.Gate.RatePerSec = def.Gate.RatePerSec
	}
	if c.Gate.Burst <= 0 {
		c.Gate.Burst = def.Gate.Burst
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errList ValidateErrors

	validPolicies := map[string]bool{"strict": true, "prompt": true}
	if !validPolicies[strings.ToLower(c.Routing.PremiumPolicy)] {
		errList = append(errList, ValidationError{
			Field:   "routing.premium_policy",
			Message: fmt.Sprintf("invalid policy '%s', must be one of: strict, prompt", c.Routing.PremiumPolicy),
		})
	}

	if c.Routing.BaselineProvider == "" {
		errList = append(errList, ValidationError{
			Field:   "routing.baseline_provider",
			Message: "baseline provider must be set",
		})
	}

	if c.Runtime.URL != "" {
		if _, err := url.Parse(c.Runtime.URL); err != nil {
			errList = append(errList, ValidationError{
				Field:   "runtime.url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}

	validTiers := map[string]bool{"baseline": true, "premium": true}
	baselineSeen := false
	for i, p := range c.Providers {
		if p.ID == "" {
			errList = append(errList, ValidationError{
				Field:   fmt.Sprintf("providers[%d].id", i),
				Message: "provider id must be set",
			})
		}
		if !validTiers[strings.ToLower(p.Tier)] {
			errList = append(errList, ValidationError{
				Field:   fmt.Sprintf("providers[%d].tier", i),
				Message: fmt.Sprintf("invalid tier '%s', must be one of: baseline, premium (local providers are probed, not configured)", p.Tier),
			})
		}
		if p.UnitCost < 0 {
			errList = append(errList, ValidationError{
				Field:   fmt.Sprintf("providers[%d].unit_cost", i),
				Message: "unit_cost cannot be negative",
			})
		}
		if strings.EqualFold(p.Tier, "baseline") && p.ID == c.Routing.BaselineProvider {
			baselineSeen = true
		}
	}
	if len(c.Providers) > 0 && !baselineSeen {
		errList = append(errList, ValidationError{
			Field:   "routing.baseline_provider",
			Message: fmt.Sprintf("designated baseline '%s' is not defined as a baseline-tier provider", c.Routing.BaselineProvider),
		})
	}

	if len(errList) > 0 {
		return errList
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// ProbeTimeout returns the probe timeout as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Runtime.ProbeTimeoutSecs) * time.Second
}

// ExecTimeout returns the sandbox execution timeout as a duration.
func (c *Config) ExecTimeout() time.Duration {
	return time.Duration(c.Runtime.ExecTimeoutSecs) * time.Second
}

// DataDir returns the ledger data directory with ~ expanded.
func (c *Config) DataDir() string {
	return ExpandPath(c.Ledger.DataDir)
}
