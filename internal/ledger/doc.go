// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ledger provides the durable usage ledger: an append-only audit
// log plus an atomically maintained usage aggregate.
//
// # Audit log
//
// Every routing decision, permission-gate check, and sandbox execution
// appends exactly one pipe-separated line. Lines are never rewritten.
// Task excerpts are capped at 100 characters and pass secret redaction
// before touching disk. When COSTGATE_AUDIT_HMAC_KEY is set, each line
// carries an HMAC-SHA256 suffix and VerifyAuditLog checks the whole file.
//
// # Aggregate
//
// The aggregate (total requests, savings sum, per-provider counters) is
// the only mutable shared resource in costgate. Updates take an advisory
// file lock, read the current state, and atomically rename a temp file
// over the target. Readers therefore observe either the previous or the
// complete new state, never a partial write, and N concurrent updates
// from any mix of processes land as exactly N increments.
package ledger
