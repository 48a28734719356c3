// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists routing decision history in SQLite.
//
// The history store supplements the append-only ledger: the ledger is the
// audit record, the history is the queryable view behind `costgate stats
// --history`. Losing the history database loses convenience, not evidence.
package storage
