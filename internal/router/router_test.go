// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/costgate/internal/gate"
	"github.com/jeranaias/costgate/internal/provider"
	"github.com/jeranaias/costgate/internal/task"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

// recorderStub captures routing records.
type recorderStub struct {
	mu      sync.Mutex
	records []string
}

func (r *recorderStub) RecordRouting(taskText, providerID, reasoning string, savingsPct float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, providerID)
}

// auditStub satisfies gate.AuditSink.
type auditStub struct {
	mu    sync.Mutex
	calls int
}

func (a *auditStub) RecordGateCheck(taskText, decision, reason, recommended string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return nil
}

func testProviders(withLocal bool) []*provider.Config {
	caps := map[string]struct{}{"general": {}}
	ps := []*provider.Config{
		{ID: "claude-haiku", Tier: provider.TierBaseline, UnitCost: 0.025, MaxContextUnits: 200000, Capabilities: caps, RequiresNetwork: true, Available: true},
		{ID: "claude-sonnet", Tier: provider.TierPremium, UnitCost: 0.3, MaxContextUnits: 200000, Capabilities: caps, RequiresNetwork: true, Available: true},
		{ID: "claude-opus", Tier: provider.TierPremium, UnitCost: 1.5, MaxContextUnits: 200000, Capabilities: caps, RequiresNetwork: true, Available: true},
	}
	if withLocal {
		ps = append([]*provider.Config{
			{ID: "llama3.2:3b", Tier: provider.TierLocal, UnitCost: 0, MaxContextUnits: 32768, Capabilities: caps, Local: true, Available: true},
		}, ps...)
	}
	return ps
}

func testEngine(t *testing.T, withLocal bool) (*Engine, *recorderStub) {
	t.Helper()
	catalog, err := provider.NewStatic(testProviders(withLocal), "claude-haiku")
	require.NoError(t, err)
	rec := &recorderStub{}
	g := gate.New("claude-haiku", 1000, 1000, &auditStub{})
	return New(catalog, g, rec, Options{PremiumPolicy: "strict"}), rec
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestRoute_ScenarioA_FileOpsGoLocal(t *testing.T) {
	engine, rec := testEngine(t, true)

	d := engine.Route(task.Task{Text: "Read a configuration file and extract settings"})

	assert.Equal(t, "llama3.2:3b", d.ProviderID)
	assert.Equal(t, "file-operations", d.Category)
	assert.InDelta(t, 0.4, d.Confidence, 0.01)
	assert.Greater(t, d.CostSavingsPct, 80.0)
	assert.Zero(t, d.EstimatedCost)
	require.Len(t, rec.records, 1)
	assert.Equal(t, "llama3.2:3b", rec.records[0])
}

func TestRoute_ScenarioB_PremiumDowngradesToBaseline(t *testing.T) {
	engine, _ := testEngine(t, false)

	// Strategic analysis prefers premium providers only; without an
	// override the gate returns request_required and the engine must
	// fall back to the baseline.
	d := engine.Route(task.Task{Text: "Security vulnerability assessment"})

	assert.Equal(t, "claude-haiku", d.ProviderID)
	assert.Equal(t, "baseline", d.Tier)
	assert.True(t, d.Downgraded)
	assert.Contains(t, d.Reasoning, "baseline")
	assert.Contains(t, d.Reasoning, "claude-haiku")
}

func TestRoute_PremiumGrantedWithOverride(t *testing.T) {
	engine, _ := testEngine(t, false)

	d := engine.Route(task.Task{
		Text:    "Security vulnerability assessment",
		Context: map[string]string{gate.OverrideFlag: "true"},
	})

	// Both premium candidates are granted; sonnet is cheaper than opus.
	assert.Equal(t, "claude-sonnet", d.ProviderID)
	assert.Equal(t, "premium", d.Tier)
	assert.False(t, d.Downgraded)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestRoute_RoutineKeywordsNeverPremium(t *testing.T) {
	engine, _ := testEngine(t, true)

	routine := []string{"format", "lint", "sort", "typo", "read file", "copy"}
	for _, kw := range routine {
		for _, reps := range []int{1, 10, 100} {
			text := strings.TrimSpace(strings.Repeat(kw+" ", reps))
			d := engine.Route(task.Task{Text: text})
			assert.NotEqual(t, "premium", d.Tier,
				"routine keyword %q x%d reached premium", kw, reps)
		}
	}
}

func TestRoute_NeverSelectsUnavailable(t *testing.T) {
	ps := testProviders(true)
	ps[0].Available = false // local down
	catalog, err := provider.NewStatic(ps, "claude-haiku")
	require.NoError(t, err)
	engine := New(catalog, gate.New("claude-haiku", 1000, 1000, &auditStub{}), &recorderStub{}, Options{})

	d := engine.Route(task.Task{Text: "read the file and copy it"})
	assert.Equal(t, "claude-haiku", d.ProviderID)
}

func TestRoute_TieBreakIsPreferenceOrder(t *testing.T) {
	// Two zero-cost local providers: the first in catalog order must win
	// every time.
	caps := map[string]struct{}{"general": {}}
	ps := []*provider.Config{
		{ID: "llama3.2:3b", Tier: provider.TierLocal, Local: true, Available: true, Capabilities: caps},
		{ID: "qwen2.5-coder:14b", Tier: provider.TierLocal, Local: true, Available: true, Capabilities: caps},
		{ID: "claude-haiku", Tier: provider.TierBaseline, UnitCost: 0.025, Available: true, Capabilities: caps},
	}
	catalog, err := provider.NewStatic(ps, "claude-haiku")
	require.NoError(t, err)
	engine := New(catalog, gate.New("claude-haiku", 1000, 1000, &auditStub{}), &recorderStub{}, Options{})

	for i := 0; i < 20; i++ {
		d := engine.Route(task.Task{Text: "read the file and copy it"})
		assert.Equal(t, "llama3.2:3b", d.ProviderID, "iteration %d", i)
	}
}

func TestRoute_EstimatedCostFormula(t *testing.T) {
	engine, _ := testEngine(t, false)

	text := strings.Repeat("x", 300) + " what is this" // general query, haiku
	d := engine.Route(task.Task{Text: text})

	require.Equal(t, "claude-haiku", d.ProviderID)
	units := EstimateUnits(text)
	assert.InDelta(t, float64(units)*0.025, d.EstimatedCost, 1e-9)
}

func TestRoute_ReasoningCitesCategoryAndConfidence(t *testing.T) {
	engine, _ := testEngine(t, true)

	d := engine.Route(task.Task{Text: "convert this csv to json"})
	assert.Contains(t, d.Reasoning, "data-transformation")
	assert.Contains(t, d.Reasoning, "confidence")
}

func TestSavingsPct_Bounds(t *testing.T) {
	baseline := &provider.Config{UnitCost: 0.025}
	tests := []struct {
		name     string
		selected *provider.Config
		want     float64
	}{
		{"free_local", &provider.Config{UnitCost: 0}, 100},
		{"same_cost", &provider.Config{UnitCost: 0.025}, 0},
		{"more_expensive", &provider.Config{UnitCost: 1.5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SavingsPct(tt.selected, baseline))
		})
	}

	// Zero-cost baseline: nothing to save against.
	assert.Zero(t, SavingsPct(&provider.Config{UnitCost: 0}, &provider.Config{UnitCost: 0}))
}
