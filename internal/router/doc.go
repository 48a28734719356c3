// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router provides cost-aware task routing for costgate.
//
// Routes tasks to the cheapest capable provider tier:
// Local -> Baseline -> Premium (gated).
//
// # Key Types
//
//   - Engine: the routing engine with injected catalog, gate, and ledger
//   - Decision: one routing answer with cost accounting and reasoning
//   - Classify: keyword-heuristic task classification
//
// # Selection
//
// Candidates come from the catalog's per-category preference table. Premium
// candidates are dropped unless the permission gate grants them; among the
// survivors the lowest unit cost wins, with preference-table position as the
// deterministic tie-break. When nothing survives, the designated baseline
// provider is the fallback; catalog construction guarantees it exists.
//
// Route never panics and never returns an error: every input maps to some
// decision. The only fatal condition in the system (zero providers) is
// raised at catalog construction, not here.
package router
