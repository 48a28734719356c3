// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sandbox executes local models inside a hardened subprocess
// boundary.
//
// # Validation
//
// Strictly ordered, first failure wins, zero side effects on reject:
//
//  1. The provider id must match the fixed vendor:size allowlist. This
//     check is independent of the catalog: defense in depth against a
//     compromised or misconfigured catalog.
//  2. The prompt must not exceed MaxPromptLength characters. NUL and
//     other control characters are stripped after NFKC normalization;
//     tab and newline survive.
//  3. The runtime executable resolves from the trusted configured path,
//     with the fixed candidate list and PATH as fallbacks only.
//
// # Invocation
//
// One OS process per call. The model id is the only variable argument and
// the prompt travels exclusively over stdin, which removes argument and
// shell injection as a class. The child runs in its own process group; on
// timeout or cancellation the whole group is killed and the call blocks
// until the child is reaped, so no exit path leaves an orphan. Failure
// detail (stderr, exit codes, paths) is logged internally and never
// crosses the trust boundary: callers see a generic error kind only.
package sandbox
