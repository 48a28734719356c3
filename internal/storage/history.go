// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// STORAGE: SQLite-backed routing decision history
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/costgate/internal/ledger"
	"github.com/jeranaias/costgate/internal/router"
	"github.com/jeranaias/costgate/internal/task"
	"github.com/jeranaias/costgate/internal/util"
)

// DatabaseFileName is the history database within the data directory.
const DatabaseFileName = "history.db"

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at  TIMESTAMP NOT NULL,
	session_id  TEXT NOT NULL,
	excerpt     TEXT NOT NULL,
	category    TEXT NOT NULL,
	provider_id TEXT NOT NULL,
	tier        TEXT NOT NULL,
	confidence  REAL NOT NULL,
	est_cost    REAL NOT NULL,
	savings_pct REAL NOT NULL,
	downgraded  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_decisions_created ON decisions(created_at);
CREATE INDEX IF NOT EXISTS idx_decisions_provider ON decisions(provider_id);
`

// Row is one stored routing decision.
type Row struct {
	ID         int64
	CreatedAt  time.Time
	SessionID  string
	Excerpt    string
	Category   string
	ProviderID string
	Tier       string
	Confidence float64
	EstCost    float64
	SavingsPct float64
	Downgraded bool
}

// History is the decision history store. Safe for concurrent use; SQLite
// serializes writers internally.
type History struct {
	db        *sql.DB
	sessionID string
}

// Open opens (creating if needed) the history database in dir.
func Open(dir, sessionID string) (*History, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("storage: create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, DatabaseFileName))
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &History{db: db, sessionID: sessionID}, nil
}

// Close releases the database handle.
func (h *History) Close() error {
	return h.db.Close()
}

// SaveDecision stores one routing decision. Implements router.DecisionSink.
// The stored excerpt follows the same redaction and cap as the ledger.
func (h *History) SaveDecision(t task.Task, d router.Decision) error {
	downgraded := 0
	if d.Downgraded {
		downgraded = 1
	}
	_, err := h.db.Exec(
		`INSERT INTO decisions
		 (created_at, session_id, excerpt, category, provider_id, tier, confidence, est_cost, savings_pct, downgraded)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), h.sessionID,
		util.TruncateRunes(ledger.Redact(t.Text), ledger.MaxExcerptLength),
		d.Category, d.ProviderID, d.Tier, d.Confidence, d.EstimatedCost, d.CostSavingsPct, downgraded,
	)
	if err != nil {
		return fmt.Errorf("storage: save decision: %w", err)
	}
	return nil
}

// Recent returns the newest n decisions, newest first.
func (h *History) Recent(n int) ([]Row, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := h.db.Query(
		`SELECT id, created_at, session_id, excerpt, category, provider_id, tier, confidence, est_cost, savings_pct, downgraded
		 FROM decisions ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("storage: query recent: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var downgraded int
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.SessionID, &r.Excerpt, &r.Category,
			&r.ProviderID, &r.Tier, &r.Confidence, &r.EstCost, &r.SavingsPct, &downgraded); err != nil {
			return nil, fmt.Errorf("storage: scan row: %w", err)
		}
		r.Downgraded = downgraded != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountByProvider returns per-provider decision counts for this store.
func (h *History) CountByProvider() (map[string]int64, error) {
	rows, err := h.db.Query(`SELECT provider_id, COUNT(*) FROM decisions GROUP BY provider_id`)
	if err != nil {
		return nil, fmt.Errorf("storage: count by provider: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var id string
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("storage: scan count: %w", err)
		}
		out[id] = n
	}
	return out, rows.Err()
}
