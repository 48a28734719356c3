// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared helpers for costgate.
//
// File operations:
//   - AtomicWriteFile: crash-safe write via temp file, fsync, rename
//   - AtomicWriteFilePrivate: same, with a 0700 parent directory
//
// String utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateRunesNoEllipsis, RuneLen
package util
