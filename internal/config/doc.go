// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading for costgate.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: top-level configuration structure
//   - RuntimeConfig: trusted runtime binary path, probe URL, timeouts
//   - ProviderDef: static baseline/premium provider definitions
//   - LedgerConfig: audit and aggregate storage locations
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (COSTGATE_*)
//   - $COSTGATE_CONFIG explicit path
//   - ~/.costgate/config.toml
//   - ~/.costgate/config.json
//   - Built-in defaults
//
// Validation failure at load is fatal: costgate refuses to start with a
// configuration it cannot trust.
package config
