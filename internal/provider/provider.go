// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"fmt"
	"sort"
	"strings"
)

// ============================================================================
// TIER TYPE
// ============================================================================

// Tier represents a provider cost tier.
// Ordered by cost: Local < Baseline < Premium.
type Tier int

const (
	// TierLocal represents local runtime inference (no per-unit cost).
	TierLocal Tier = iota
	// TierBaseline represents the default paid tier (cheap, capable).
	TierBaseline
	// TierPremium represents the expensive paid tier (gated).
	TierPremium
)

// String returns the human-readable name of the tier.
func (t Tier) String() string {
	switch t {
	case TierLocal:
		return "Local"
	case TierBaseline:
		return "Baseline"
	case TierPremium:
		return "Premium"
	default:
		return fmt.Sprintf("Tier(%d)", t)
	}
}

// IsPaid returns true if the tier incurs API costs.
func (t Tier) IsPaid() bool {
	return t >= TierBaseline
}

// Order returns the numeric order of the tier for comparison.
// Lower values mean cheaper tiers.
func (t Tier) Order() int {
	return int(t)
}

// ParseTier parses a configuration tier name. Local is not parseable on
// purpose: local providers are probed, never configured.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(s) {
	case "baseline":
		return TierBaseline, nil
	case "premium":
		return TierPremium, nil
	default:
		return 0, fmt.Errorf("unknown tier %q", s)
	}
}

// ============================================================================
// PROVIDER CONFIG
// ============================================================================

// Config describes one provider the router can select.
type Config struct {
	// ID is the provider identifier ("claude-haiku", "llama3.2:3b").
	ID string `json:"id"`

	// Tier is the cost tier.
	Tier Tier `json:"tier"`

	// UnitCost is the cost per text unit in cents. Zero for local.
	UnitCost float64 `json:"unit_cost"`

	// MaxContextUnits bounds the input size the provider accepts.
	MaxContextUnits int `json:"max_context_units"`

	// Capabilities tags what the provider is suited for.
	Capabilities map[string]struct{} `json:"-"`

	// Local is resolved once at catalog construction. Nothing downstream
	// re-derives locality from ID string patterns.
	Local bool `json:"local"`

	// RequiresNetwork is true for paid tiers.
	RequiresNetwork bool `json:"requires_network"`

	// Available is fixed at catalog construction: probed for local
	// providers, true for configured paid providers.
	Available bool `json:"available"`
}

// HasCapability reports whether the provider carries the capability tag.
func (c *Config) HasCapability(tag string) bool {
	_, ok := c.Capabilities[tag]
	return ok
}

// CapabilityList returns the capability tags in stable sorted order.
func (c *Config) CapabilityList() []string {
	tags := make([]string, 0, len(c.Capabilities))
	for tag := range c.Capabilities {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
