// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jeranaias/costgate/internal/config"
	"github.com/jeranaias/costgate/internal/errs"
	"github.com/jeranaias/costgate/internal/runtime"
	"github.com/jeranaias/costgate/internal/task"
)

func probeServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(runtimeURL string) *config.Config {
	cfg := config.Default()
	cfg.Runtime.URL = runtimeURL
	cfg.Runtime.ProbeTimeoutSecs = 1
	return cfg
}

func TestNew_ProbeAndStatic(t *testing.T) {
	srv := probeServer(t, `{"models":[{"name":"llama3.2:3b"},{"name":"qwen2.5-coder:14b"}]}`)
	cfg := testConfig(srv.URL)
	client := runtime.NewClient(&runtime.ClientConfig{BaseURL: srv.URL, Timeout: time.Second})

	cat, err := New(cfg, client)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cat.LocalCount() != 2 {
		t.Errorf("local count = %d, want 2", cat.LocalCount())
	}

	local, ok := cat.Get("llama3.2:3b")
	if !ok {
		t.Fatal("probed model missing from catalog")
	}
	if !local.Local || local.Tier != TierLocal || local.UnitCost != 0 || !local.Available {
		t.Errorf("local provider fields wrong: %+v", local)
	}

	haiku, ok := cat.Get("claude-haiku")
	if !ok {
		t.Fatal("configured baseline missing from catalog")
	}
	if haiku.Local || !haiku.RequiresNetwork || haiku.Tier != TierBaseline {
		t.Errorf("baseline provider fields wrong: %+v", haiku)
	}

	if cat.Baseline().ID != "claude-haiku" {
		t.Errorf("baseline = %q", cat.Baseline().ID)
	}
}

func TestNew_ProbeFailureNotFatal(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	client := runtime.NewClient(&runtime.ClientConfig{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})

	cat, err := New(cfg, client)
	if err != nil {
		t.Fatalf("probe failure must not be fatal: %v", err)
	}
	if cat.LocalCount() != 0 {
		t.Errorf("local count = %d, want 0", cat.LocalCount())
	}
	// Paid providers still present
	if _, ok := cat.Get("claude-haiku"); !ok {
		t.Error("configured providers must survive probe failure")
	}
}

func TestNew_ZeroProvidersIsConfigurationError(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Providers = nil
	client := runtime.NewClient(&runtime.ClientConfig{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})

	_, err := New(cfg, client)
	if err == nil {
		t.Fatal("expected configuration error for zero providers")
	}
	if !errs.IsConfiguration(err) {
		t.Errorf("expected configuration kind, got %v", err)
	}
}

func TestNew_MissingBaselineIsConfigurationError(t *testing.T) {
	srv := probeServer(t, `{"models":[{"name":"llama3.2:3b"}]}`)
	cfg := testConfig(srv.URL)
	cfg.Routing.BaselineProvider = "no-such-provider"
	client := runtime.NewClient(&runtime.ClientConfig{BaseURL: srv.URL, Timeout: time.Second})

	_, err := New(cfg, client)
	if err == nil {
		t.Fatal("expected configuration error for missing baseline")
	}
	if !errs.IsConfiguration(err) {
		t.Errorf("expected configuration kind, got %v", err)
	}
}

func TestCandidatesFor_LocalExpansionAndOrder(t *testing.T) {
	srv := probeServer(t, `{"models":[{"name":"llama3.2:3b"},{"name":"qwen2.5-coder:14b"}]}`)
	cfg := testConfig(srv.URL)
	client := runtime.NewClient(&runtime.ClientConfig{BaseURL: srv.URL, Timeout: time.Second})

	cat, err := New(cfg, client)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got := cat.CandidatesFor(task.CategoryFileOperations)
	wantIDs := []string{"llama3.2:3b", "qwen2.5-coder:14b", "claude-haiku"}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d candidates, want %d", len(got), len(wantIDs))
	}
	for i, want := range wantIDs {
		if got[i].ID != want {
			t.Errorf("candidate[%d] = %q, want %q", i, got[i].ID, want)
		}
	}
}

func TestCandidatesFor_StrategicAnalysisIsPremiumFirst(t *testing.T) {
	srv := probeServer(t, `{"models":[]}`)
	cfg := testConfig(srv.URL)
	client := runtime.NewClient(&runtime.ClientConfig{BaseURL: srv.URL, Timeout: time.Second})

	cat, err := New(cfg, client)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got := cat.CandidatesFor(task.CategoryStrategicAnalysis)
	if len(got) == 0 {
		t.Fatal("no candidates for strategic analysis")
	}
	if got[0].Tier != TierPremium {
		t.Errorf("first strategic-analysis candidate must be premium, got %s", got[0].Tier)
	}
}

func TestNewStatic(t *testing.T) {
	providers := []*Config{
		{ID: "b1", Tier: TierBaseline, UnitCost: 1.0, Available: true},
		{ID: "p1", Tier: TierPremium, UnitCost: 5.0, Available: true},
	}
	cat, err := NewStatic(providers, "b1")
	if err != nil {
		t.Fatalf("NewStatic failed: %v", err)
	}
	if cat.Baseline().ID != "b1" {
		t.Errorf("baseline = %q", cat.Baseline().ID)
	}

	if _, err := NewStatic(nil, "b1"); err == nil {
		t.Error("empty static catalog must fail")
	}
	if _, err := NewStatic(providers, "p1"); err == nil {
		t.Error("premium baseline must fail")
	}
}

func TestTierString(t *testing.T) {
	tests := []struct {
		tier Tier
		want string
	}{
		{TierLocal, "Local"},
		{TierBaseline, "Baseline"},
		{TierPremium, "Premium"},
	}
	for _, tt := range tests {
		if got := tt.tier.String(); got != tt.want {
			t.Errorf("Tier(%d).String() = %q, want %q", tt.tier, got, tt.want)
		}
	}
	if TierLocal.IsPaid() {
		t.Error("local tier must not be paid")
	}
	if !TierPremium.IsPaid() {
		t.Error("premium tier must be paid")
	}
}
