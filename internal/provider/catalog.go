// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"log"
	"strings"

	"github.com/jeranaias/costgate/internal/config"
	"github.com/jeranaias/costgate/internal/errs"
	"github.com/jeranaias/costgate/internal/runtime"
	"github.com/jeranaias/costgate/internal/task"
)

// ============================================================================
// PREFERENCE TABLE
// ============================================================================

// prefLocal expands to every probed local provider, in probe order, at the
// position it occupies in the preference list.
const prefLocal = "tier:local"

// categoryPreferences is the fixed preference table: for each category, the
// ordered provider list routing draws candidates from. Earlier position wins
// cost ties. The table is deliberately not configurable.
var categoryPreferences = map[task.Category][]string{
	task.CategoryGeneralQuery:       {prefLocal, "claude-haiku"},
	task.CategoryCodeGeneration:     {prefLocal, "claude-haiku", "claude-sonnet"},
	task.CategoryCodeReview:         {prefLocal, "claude-haiku", "claude-sonnet"},
	task.CategoryDebugging:          {prefLocal, "claude-haiku", "claude-sonnet"},
	task.CategoryStrategicAnalysis:  {"claude-opus", "claude-sonnet"},
	task.CategoryDataTransformation: {prefLocal, "claude-haiku"},
	task.CategoryFileOperations:     {prefLocal, "claude-haiku"},
}

// localCapabilities are the capability tags every probed local model gets.
var localCapabilities = []string{"general", "code", "files", "data"}

// localMaxContextUnits is the conservative context bound assumed for local
// models. The probe reports sizes, not context windows.
const localMaxContextUnits = 32768

// ============================================================================
// CATALOG
// ============================================================================

// Catalog is the read-only provider inventory. Availability is resolved
// exactly once, at construction: local providers come from the runtime's
// installed-model probe, paid providers from configuration. Routing never
// re-probes.
type Catalog struct {
	byID     map[string]*Config
	ordered  []string // construction order, local first
	baseline string
}

// New builds the catalog from configuration plus a bounded local-runtime
// probe. Probe failure is logged and leaves the local set empty; it is not
// fatal. Zero providers overall, or a missing designated baseline, is a
// fatal configuration error, the only fatal error in the system.
func New(cfg *config.Config, client *runtime.Client) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Config)}

	probeCtx, cancel := context.WithTimeout(context.Background(), cfg.ProbeTimeout())
	defer cancel()

	models, err := client.ListModels(probeCtx)
	if err != nil {
		log.Printf("CATALOG: local runtime probe failed, continuing without local providers: %v", err)
	}
	for _, m := range models {
		c.add(localConfig(m.Name))
	}

	for _, def := range cfg.Providers {
		tier, err := ParseTier(def.Tier)
		if err != nil {
			return nil, errs.Configuration("catalog.new", "provider %q: %v", def.ID, err)
		}
		caps := make(map[string]struct{}, len(def.Capabilities))
		for _, tag := range def.Capabilities {
			caps[strings.ToLower(tag)] = struct{}{}
		}
		c.add(&Config{
			ID:              def.ID,
			Tier:            tier,
			UnitCost:        def.UnitCost,
			MaxContextUnits: def.MaxContextUnits,
			Capabilities:    caps,
			Local:           false,
			RequiresNetwork: true,
			Available:       true,
		})
	}

	if err := c.check(cfg.Routing.BaselineProvider); err != nil {
		return nil, err
	}
	return c, nil
}

// NewStatic builds a catalog from explicit provider configs, skipping the
// probe. Used by tests and by tooling that replays recorded catalogs.
func NewStatic(providers []*Config, baselineID string) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Config)}
	for _, p := range providers {
		c.add(p)
	}
	if err := c.check(baselineID); err != nil {
		return nil, err
	}
	return c, nil
}

func localConfig(name string) *Config {
	caps := make(map[string]struct{}, len(localCapabilities))
	for _, tag := range localCapabilities {
		caps[tag] = struct{}{}
	}
	return &Config{
		ID:              name,
		Tier:            TierLocal,
		UnitCost:        0,
		MaxContextUnits: localMaxContextUnits,
		Capabilities:    caps,
		Local:           true,
		RequiresNetwork: false,
		Available:       true,
	}
}

func (c *Catalog) add(p *Config) {
	if _, exists := c.byID[p.ID]; exists {
		return
	}
	c.byID[p.ID] = p
	c.ordered = append(c.ordered, p.ID)
}

func (c *Catalog) check(baselineID string) error {
	if len(c.byID) == 0 {
		return errs.Configuration("catalog.new", "no providers available: local probe empty and no providers configured")
	}
	b, ok := c.byID[baselineID]
	if !ok {
		return errs.Configuration("catalog.new", "designated baseline provider %q is not in the catalog", baselineID)
	}
	if b.Tier != TierBaseline {
		return errs.Configuration("catalog.new", "designated baseline provider %q is %s tier", baselineID, b.Tier)
	}
	if !b.Available {
		return errs.Configuration("catalog.new", "designated baseline provider %q is unavailable", baselineID)
	}
	c.baseline = baselineID
	return nil
}

// ============================================================================
// LOOKUPS
// ============================================================================

// Get returns the provider with the given id.
func (c *Catalog) Get(id string) (*Config, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Baseline returns the designated baseline provider. It always exists:
// construction fails otherwise.
func (c *Catalog) Baseline() *Config {
	return c.byID[c.baseline]
}

// CandidatesFor returns the candidate providers for a category in fixed
// preference order. Local slots expand to the probed local providers;
// entries not present in the catalog are skipped.
func (c *Catalog) CandidatesFor(category task.Category) []*Config {
	prefs, ok := categoryPreferences[category]
	if !ok {
		prefs = []string{prefLocal, c.baseline}
	}

	var out []*Config
	seen := make(map[string]struct{})
	for _, entry := range prefs {
		if entry == prefLocal {
			for _, id := range c.ordered {
				p := c.byID[id]
				if !p.Local {
					continue
				}
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				out = append(out, p)
			}
			continue
		}
		p, present := c.byID[entry]
		if !present {
			continue
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, p)
	}
	return out
}

// All returns every provider in construction order (local first).
func (c *Catalog) All() []*Config {
	out := make([]*Config, 0, len(c.ordered))
	for _, id := range c.ordered {
		out = append(out, c.byID[id])
	}
	return out
}

// LocalCount returns the number of probed local providers.
func (c *Catalog) LocalCount() int {
	n := 0
	for _, id := range c.ordered {
		if c.byID[id].Local {
			n++
		}
	}
	return n
}
