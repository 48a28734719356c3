// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider defines provider tiers and the read-only catalog the
// routing engine draws candidates from.
//
// # Key Types
//
//   - Tier: Local / Baseline / Premium cost tiers
//   - Config: one selectable provider with cost, capabilities, availability
//   - Catalog: built once at startup; local providers come from the runtime
//     probe, paid providers from configuration
//
// Availability is a construction-time fact. A probe failure is logged and
// yields an empty local set; routing then falls through to paid tiers. The
// catalog never mutates after construction, which is what lets the routing
// engine read it without locks.
package provider
