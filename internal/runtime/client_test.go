// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package runtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[{"name":"llama3.2:3b","size":2019393189},{"name":"qwen2.5-coder:14b","size":8988124069}]}`))
	}))
	defer srv.Close()

	client := NewClient(&ClientConfig{BaseURL: srv.URL, Timeout: time.Second})
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("got %d models, want 2", len(models))
	}
	if models[0].Name != "llama3.2:3b" {
		t.Errorf("first model = %q", models[0].Name)
	}
}

func TestListModels_NotRunning(t *testing.T) {
	// Port 1 is never listening.
	client := NewClient(&ClientConfig{BaseURL: "http://127.0.0.1:1", Timeout: 500 * time.Millisecond})
	_, err := client.ListModels(context.Background())
	if err == nil {
		t.Fatal("expected error for unreachable runtime")
	}
	if !errors.Is(err, ErrNotRunning) && !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrNotRunning or ErrTimeout, got %v", err)
	}
}

func TestListModels_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(&ClientConfig{BaseURL: srv.URL, Timeout: time.Second})
	if _, err := client.ListModels(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestCheckRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(&ClientConfig{BaseURL: srv.URL, Timeout: time.Second})
	if err := client.CheckRunning(context.Background()); err != nil {
		t.Fatalf("CheckRunning failed: %v", err)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(nil)
	if client.BaseURL() != "http://127.0.0.1:11434" {
		t.Errorf("default base URL = %q", client.BaseURL())
	}
}
