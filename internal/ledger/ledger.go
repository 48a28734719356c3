// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// LEDGER: Append-only audit log with rotation and aggregate updates
package ledger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// AuditFileName is the audit log file within the data directory.
	AuditFileName = "audit.log"

	// AggregateFileName is the usage aggregate file within the data directory.
	AggregateFileName = "usage_aggregate.json"

	// DefaultMaxAuditSizeMB triggers audit rotation.
	DefaultMaxAuditSizeMB = 10

	// HMACKeyEnv names the optional audit line signing key.
	HMACKeyEnv = "COSTGATE_AUDIT_HMAC_KEY"
)

// =============================================================================
// LEDGER
// =============================================================================

// Ledger records usage durably. One Ledger per process; the session ID is
// fixed at Open and stamped on every record. Safe for concurrent use, and
// safe against concurrent ledgers in other processes: the audit file is
// O_APPEND and the aggregate update holds an advisory file lock.
type Ledger struct {
	dir          string
	sessionID    string
	maxAuditSize int64
	hmacKey      []byte

	// mu serializes appends within this process so a rotation check and
	// its write stay paired.
	mu sync.Mutex
}

// Open creates the data directory if needed and returns a ready ledger.
// maxSizeMB <= 0 uses the default rotation threshold.
func Open(dir string, maxSizeMB int) (*Ledger, error) {
	if dir == "" {
		return nil, fmt.Errorf("ledger: data directory must be set")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("ledger: create data directory: %w", err)
	}
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxAuditSizeMB
	}
	l := &Ledger{
		dir:          dir,
		sessionID:    uuid.New().String(),
		maxAuditSize: int64(maxSizeMB) * 1024 * 1024,
	}
	if key := os.Getenv(HMACKeyEnv); key != "" {
		l.hmacKey = []byte(key)
	}
	return l, nil
}

// SessionID returns the session identifier stamped on this ledger's records.
func (l *Ledger) SessionID() string {
	return l.sessionID
}

// AuditPath returns the audit log path.
func (l *Ledger) AuditPath() string {
	return filepath.Join(l.dir, AuditFileName)
}

// AggregatePath returns the usage aggregate path.
func (l *Ledger) AggregatePath() string {
	return filepath.Join(l.dir, AggregateFileName)
}

// =============================================================================
// RECORDING
// =============================================================================

// Record appends one audit line, then folds ROUTE records into the
// aggregate. The audit append and the aggregate update are each durable on
// return.
func (l *Ledger) Record(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.SessionID == "" {
		rec.SessionID = l.sessionID
	}

	if err := l.append(&rec); err != nil {
		return err
	}

	if rec.Action == ActionRoute {
		if err := l.updateAggregate(rec.Decision, rec.SavingsPct); err != nil {
			return err
		}
	}
	return nil
}

// RecordRouting records a routing decision. Implements router.UsageRecorder.
// Failures are logged, not returned: a decided route stands even when
// bookkeeping fails.
func (l *Ledger) RecordRouting(taskText, providerID, reasoning string, savingsPct float64) {
	err := l.Record(Record{
		Action:      ActionRoute,
		TaskExcerpt: excerpt(taskText),
		Decision:    providerID,
		Reason:      reasoning,
		SavingsPct:  savingsPct,
	})
	if err != nil {
		log.Printf("LEDGER: routing record failed: %v", err)
	}
}

// RecordGateCheck records one permission-gate invocation. Implements
// gate.AuditSink. Unlike routing, the error IS returned: the gate treats a
// failed audit write as an internal fault and denies.
func (l *Ledger) RecordGateCheck(taskText, decision, reason, recommended string) error {
	return l.Record(Record{
		Action:              ActionGateCheck,
		TaskExcerpt:         excerpt(taskText),
		Decision:            decision,
		Reason:              reason,
		RecommendedProvider: recommended,
	})
}

// RecordExecution records one sandbox execution outcome.
func (l *Ledger) RecordExecution(providerID string, success bool, detail string, elapsed time.Duration) {
	decision := "failure"
	if success {
		decision = "success"
	}
	err := l.Record(Record{
		Action:   ActionExecute,
		Decision: decision,
		Reason:   fmt.Sprintf("%s in %s: %s", providerID, elapsed.Round(time.Millisecond), detail),
	})
	if err != nil {
		log.Printf("LEDGER: execution record failed: %v", err)
	}
}

// =============================================================================
// AUDIT APPEND
// =============================================================================

func (l *Ledger) append(rec *Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.rotateIfNeeded(); err != nil {
		// Rotation failure must not lose the record; keep appending to
		// the oversized file and say so.
		log.Printf("LEDGER: audit rotation failed, appending anyway: %v", err)
	}

	line := rec.ToLogLine()
	if len(l.hmacKey) > 0 {
		line += " | hmac=" + signLine(l.hmacKey, line)
	}

	f, err := os.OpenFile(l.AuditPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("ledger: open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("ledger: append audit line: %w", err)
	}
	// Audit lines are evidence; they must survive a crash that follows the
	// call.
	if err := f.Sync(); err != nil {
		return fmt.Errorf("ledger: sync audit log: %w", err)
	}
	return nil
}

// rotateIfNeeded renames an oversized audit log to a timestamped archive.
// Archives are append-only history and are never deleted by costgate.
func (l *Ledger) rotateIfNeeded() error {
	info, err := os.Stat(l.AuditPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Size() < l.maxAuditSize {
		return nil
	}
	archive := filepath.Join(l.dir, fmt.Sprintf("audit-%s.log", time.Now().UTC().Format("20060102-150405")))
	return os.Rename(l.AuditPath(), archive)
}
