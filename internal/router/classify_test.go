// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"strings"
	"testing"

	"github.com/jeranaias/costgate/internal/task"
)

func TestClassify_CodeIndicators(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		category   task.Category
		confidence float64
	}{
		{"fenced_block", "Here is my snippet:\n```\nx = 1\n```", task.CategoryCodeGeneration, ConfidenceCodeGeneration},
		{"def_keyword", "def handler(event): pass", task.CategoryCodeGeneration, ConfidenceCodeGeneration},
		{"go_extension", "update parser.go to handle comments", task.CategoryCodeGeneration, ConfidenceCodeGeneration},
		{"review_verb_wins", "review this function:\nfunc add(a, b int) int { return a + b }", task.CategoryCodeReview, ConfidenceCodeSubtype},
		{"debug_verb", "fix the crash in main.py", task.CategoryDebugging, ConfidenceCodeSubtype},
		{"review_before_debug", "review the fix in handler.go", task.CategoryCodeReview, ConfidenceCodeSubtype},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(task.Task{Text: tt.text})
			if got.Category != tt.category {
				t.Errorf("category = %s, want %s", got.Category, tt.category)
			}
			if got.Confidence != tt.confidence {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.confidence)
			}
		})
	}
}

func TestClassify_KeywordTable(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category task.Category
	}{
		{"debugging", "there is a bug and an error somewhere", task.CategoryDebugging},
		{"data_transform", "convert this csv to json", task.CategoryDataTransformation},
		{"file_ops", "read the file and copy it to the backup directory", task.CategoryFileOperations},
		{"strategic", "security vulnerability assessment", task.CategoryStrategicAnalysis},
		{"general", "what is a goroutine", task.CategoryGeneralQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(task.Task{Text: tt.text})
			if got.Category != tt.category {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got.Category, tt.category)
			}
		})
	}
}

func TestClassify_Fallbacks(t *testing.T) {
	short := Classify(task.Task{Text: "zzz qqq"})
	if short.Category != task.CategoryFileOperations || short.Confidence != ConfidenceShortFallback {
		t.Errorf("short fallback = %s (%v)", short.Category, short.Confidence)
	}

	long := Classify(task.Task{Text: strings.Repeat("zzz qqq ", 200)})
	if long.Category != task.CategoryStrategicAnalysis || long.Confidence != ConfidenceLongFallback {
		t.Errorf("long fallback = %s (%v)", long.Category, long.Confidence)
	}

	empty := Classify(task.Task{Text: ""})
	if empty.Category != task.CategoryFileOperations {
		t.Errorf("empty text = %s, want file-operations", empty.Category)
	}
}

func TestClassify_ScenarioA(t *testing.T) {
	got := Classify(task.Task{Text: "Read a configuration file and extract settings"})
	if got.Category != task.CategoryFileOperations {
		t.Fatalf("category = %s, want file-operations", got.Category)
	}
	if got.Confidence < 0.3 || got.Confidence > 0.5 {
		t.Errorf("confidence = %v, want ~0.4", got.Confidence)
	}
}

func TestClassify_ConfidenceCap(t *testing.T) {
	// Every strategic keyword at once must still cap below 1.0.
	text := "analyze analysis assessment assess strategy architecture security vulnerability risk roadmap compare"
	got := Classify(task.Task{Text: text})
	if got.Confidence > MaxKeywordConfidence {
		t.Errorf("confidence = %v, want <= %v", got.Confidence, MaxKeywordConfidence)
	}
}

func TestEstimateUnits(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abc", 1},
		{"abcd", 2},
		{strings.Repeat("x", 300), 100},
	}
	for _, tt := range tests {
		if got := EstimateUnits(tt.text); got != tt.want {
			t.Errorf("EstimateUnits(len %d) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
}
