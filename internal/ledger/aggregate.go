// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// LEDGER: Usage aggregate with lock-and-rename update discipline
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/costgate/internal/util"
)

// =============================================================================
// AGGREGATE
// =============================================================================

// Aggregate is the rolled-up usage state. It is rewritten in place as a
// whole file; no field is ever updated partially on disk.
type Aggregate struct {
	TotalRequests  int64            `json:"total_requests"`
	CostSavingsSum float64          `json:"cost_savings_sum"`
	Providers      map[string]int64 `json:"providers"`
}

// emptyAggregate returns a zero aggregate with a non-nil provider map.
func emptyAggregate() Aggregate {
	return Aggregate{Providers: make(map[string]int64)}
}

// AvgSavingsPct returns the mean savings percentage across all requests.
func (a Aggregate) AvgSavingsPct() float64 {
	if a.TotalRequests == 0 {
		return 0
	}
	return a.CostSavingsSum / float64(a.TotalRequests)
}

// =============================================================================
// STATS (PURE READ)
// =============================================================================

// Stats reads the current aggregate. Pure read: no lock is taken and no
// state changes. The atomic-rename write discipline guarantees the file is
// always a complete JSON document.
func (l *Ledger) Stats() (Aggregate, error) {
	return readAggregate(l.AggregatePath())
}

func readAggregate(path string) (Aggregate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return emptyAggregate(), nil
		}
		return emptyAggregate(), fmt.Errorf("ledger: read aggregate: %w", err)
	}
	var agg Aggregate
	if err := json.Unmarshal(data, &agg); err != nil {
		return emptyAggregate(), fmt.Errorf("ledger: decode aggregate: %w", err)
	}
	if agg.Providers == nil {
		agg.Providers = make(map[string]int64)
	}
	return agg, nil
}

// =============================================================================
// UPDATE (LOCKED READ-MODIFY-WRITE)
// =============================================================================

// updateAggregate folds one routing decision into the aggregate under an
// advisory file lock. The sequence is: lock, read, modify, write to a temp
// file in the same directory, rename over the target, unlock. Concurrent
// updaters in any mix of processes serialize on the lock, so N updates are
// never collapsed into fewer.
func (l *Ledger) updateAggregate(providerID string, savingsPct float64) error {
	lockPath := l.AggregatePath() + ".lock"
	unlock, err := acquireFileLock(lockPath)
	if err != nil {
		return fmt.Errorf("ledger: lock aggregate: %w", err)
	}
	defer unlock()

	agg, err := readAggregate(l.AggregatePath())
	if err != nil {
		return err
	}

	agg.TotalRequests++
	agg.CostSavingsSum += savingsPct
	if providerID != "" {
		agg.Providers[providerID]++
	}

	data, err := json.MarshalIndent(agg, "", "  ")
	if err != nil {
		return fmt.Errorf("ledger: encode aggregate: %w", err)
	}
	if err := util.AtomicWriteFilePrivate(l.AggregatePath(), data, 0600); err != nil {
		return fmt.Errorf("ledger: write aggregate: %w", err)
	}
	return nil
}

// acquireFileLock takes an exclusive advisory lock on path, creating it if
// needed, and returns the release function. Platform specifics live in
// lock_unix.go and lock_windows.go.
func acquireFileLock(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, err
	}
	return func() {
		// Unlock before close so the release is explicit on every
		// platform, then close drops the descriptor.
		_ = unlockFile(f)
		_ = f.Close()
	}, nil
}
