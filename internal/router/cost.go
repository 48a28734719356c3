// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ROUTER: Cost estimation and savings accounting
package router

import (
	"github.com/jeranaias/costgate/internal/provider"
)

// ============================================================================
// UNIT ESTIMATION
// ============================================================================

// CharsPerUnit is the text-to-unit conversion factor. One unit approximates
// one token at ~3 characters; the estimate rounds up so a one-character task
// still costs one unit.
const CharsPerUnit = 3

// EstimateUnits converts task text length to billing units.
func EstimateUnits(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + CharsPerUnit - 1) / CharsPerUnit
}

// ============================================================================
// COST AND SAVINGS
// ============================================================================

// EstimateCost calculates the estimated cost in cents for running the task
// text on the given provider.
func EstimateCost(text string, p *provider.Config) float64 {
	return float64(EstimateUnits(text)) * p.UnitCost
}

// SavingsPct calculates the relative saving of the selected provider against
// the designated baseline, as a percentage clamped to [0, 100]. A zero-cost
// baseline yields zero: there is nothing to save against.
func SavingsPct(selected, baseline *provider.Config) float64 {
	if baseline.UnitCost <= 0 {
		return 0
	}
	pct := (baseline.UnitCost - selected.UnitCost) / baseline.UnitCost * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
