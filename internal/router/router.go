// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ROUTER: Cost-aware provider selection with gated premium access
package router

import (
	"fmt"
	"log"
	"strings"

	"github.com/jeranaias/costgate/internal/gate"
	"github.com/jeranaias/costgate/internal/provider"
	"github.com/jeranaias/costgate/internal/task"
)

// ============================================================================
// ENGINE
// ============================================================================

// Engine routes tasks to providers. All dependencies are injected at
// construction; there is no ambient global router. Safe for concurrent use:
// the catalog is immutable and the gate and ledger synchronize internally.
type Engine struct {
	catalog *provider.Catalog
	gate    PermissionGate
	ledger  UsageRecorder
	opts    Options
}

// New creates a routing engine. catalog, permGate, and ledger are required;
// opts.History is optional.
func New(catalog *provider.Catalog, permGate PermissionGate, ledger UsageRecorder, opts Options) *Engine {
	if opts.PremiumPolicy == "" {
		opts.PremiumPolicy = "strict"
	}
	return &Engine{
		catalog: catalog,
		gate:    permGate,
		ledger:  ledger,
		opts:    opts,
	}
}

// ============================================================================
// ROUTING
// ============================================================================

// Route decides which provider handles the task. It classifies, gathers
// candidates, gates premium candidates, and picks the cheapest available
// survivor. No error or panic escapes: any unexpected condition falls back
// to the designated baseline provider.
func (e *Engine) Route(t task.Task) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ROUTER: recovered fault during route, falling back to baseline: %v", r)
			d = e.baselineDecision(t, task.Classification{Category: task.CategoryGeneralQuery},
				"internal routing fault; baseline fallback")
			e.finish(t, d)
		}
	}()

	cls := Classify(t)
	candidates := e.catalog.CandidatesFor(cls.Category)

	selected, downgraded := e.selectProvider(t, candidates)
	if selected == nil {
		why := "no candidate available for category"
		if downgraded {
			why = "premium access not granted by permission gate"
		}
		d = e.baselineDecision(t, cls, why)
		d.Downgraded = downgraded
		e.finish(t, d)
		return d
	}

	d = e.decisionFor(t, cls, selected, downgraded)
	e.finish(t, d)
	return d
}

// selectProvider walks the ordered candidate list, drops unavailable
// entries and ungated premium entries, and returns the cheapest survivor.
// The walk order is the preference-table order, so keeping the FIRST
// provider at any given cost is the deterministic tie-break.
func (e *Engine) selectProvider(t task.Task, candidates []*provider.Config) (best *provider.Config, downgraded bool) {
	for _, c := range candidates {
		if !c.Available {
			continue
		}
		if c.Tier == provider.TierPremium {
			gd := e.gate.Check(c, t)
			if gd.State != gate.StateGranted {
				// request_required without an override resolves to the
				// same drop as denied: fail-secure auto-downgrade.
				downgraded = true
				continue
			}
		}
		if best == nil || c.UnitCost < best.UnitCost {
			best = c
		}
	}
	return best, downgraded
}

func (e *Engine) decisionFor(t task.Task, cls task.Classification, selected *provider.Config, downgraded bool) Decision {
	baseline := e.catalog.Baseline()
	savings := SavingsPct(selected, baseline)

	var reasoning strings.Builder
	fmt.Fprintf(&reasoning, "classified %s (confidence %.2f); selected %s [%s tier] at %.4f¢/unit",
		cls.Category, cls.Confidence, selected.ID, strings.ToLower(selected.Tier.String()), selected.UnitCost)
	if savings > 0 {
		fmt.Fprintf(&reasoning, "; saves %.0f%% vs baseline %s", savings, baseline.ID)
	}
	if downgraded {
		fmt.Fprintf(&reasoning, "; premium candidate downgraded by permission gate, baseline tier %s covers this task", baseline.ID)
		if e.opts.PremiumPolicy == "prompt" {
			reasoning.WriteString(" (re-run with premium_override=true to request premium)")
		}
	}

	return Decision{
		ProviderID:     selected.ID,
		Tier:           strings.ToLower(selected.Tier.String()),
		Category:       cls.Category.String(),
		Confidence:     cls.Confidence,
		EstimatedCost:  EstimateCost(t.Text, selected),
		CostSavingsPct: savings,
		Reasoning:      reasoning.String(),
		Downgraded:     downgraded,
	}
}

// baselineDecision is the guaranteed fallback. The baseline provider always
// exists and is always available: catalog construction enforces both.
func (e *Engine) baselineDecision(t task.Task, cls task.Classification, why string) Decision {
	baseline := e.catalog.Baseline()
	return Decision{
		ProviderID:     baseline.ID,
		Tier:           strings.ToLower(baseline.Tier.String()),
		Category:       cls.Category.String(),
		Confidence:     cls.Confidence,
		EstimatedCost:  EstimateCost(t.Text, baseline),
		CostSavingsPct: 0,
		Reasoning: fmt.Sprintf("classified %s (confidence %.2f); %s; falling back to baseline tier provider %s",
			cls.Category, cls.Confidence, why, baseline.ID),
	}
}

// finish records the decision in the ledger and the optional history store.
// Neither failure changes the decision; routing never blocks on bookkeeping.
func (e *Engine) finish(t task.Task, d Decision) {
	e.ledger.RecordRouting(t.Text, d.ProviderID, d.Reasoning, d.CostSavingsPct)
	if e.opts.History != nil {
		if err := e.opts.History.SaveDecision(t, d); err != nil {
			log.Printf("ROUTER: history save failed: %v", err)
		}
	}
}
