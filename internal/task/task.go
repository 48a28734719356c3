// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package task defines the task and classification types shared by the
// classifier, the provider catalog, and the routing engine.
package task

import "fmt"

// ============================================================================
// TASK TYPE
// ============================================================================

// Task is a unit of work submitted for routing: free-form text plus
// optional context metadata (override flags, session hints).
type Task struct {
	Text    string            `json:"text"`
	Context map[string]string `json:"context,omitempty"`
}

// ContextFlag reports whether the named context key is set to a truthy
// value ("1" or "true", case-insensitive callers pass lowered values).
func (t Task) ContextFlag(key string) bool {
	v, ok := t.Context[key]
	if !ok {
		return false
	}
	return v == "1" || v == "true"
}

// ============================================================================
// CATEGORY TYPE
// ============================================================================

// Category represents the kind of work a task asks for.
type Category int

const (
	// CategoryGeneralQuery represents simple questions and short requests.
	CategoryGeneralQuery Category = iota
	// CategoryCodeGeneration represents writing new code.
	CategoryCodeGeneration
	// CategoryCodeReview represents evaluating existing code.
	CategoryCodeReview
	// CategoryDebugging represents finding and fixing faults.
	CategoryDebugging
	// CategoryStrategicAnalysis represents planning, assessment, and
	// architecture work.
	CategoryStrategicAnalysis
	// CategoryDataTransformation represents converting or reshaping data.
	CategoryDataTransformation
	// CategoryFileOperations represents reading, writing, and organizing
	// files.
	CategoryFileOperations
)

// String returns the wire name of the category.
func (c Category) String() string {
	switch c {
	case CategoryGeneralQuery:
		return "general-query"
	case CategoryCodeGeneration:
		return "code-generation"
	case CategoryCodeReview:
		return "code-review"
	case CategoryDebugging:
		return "debugging"
	case CategoryStrategicAnalysis:
		return "strategic-analysis"
	case CategoryDataTransformation:
		return "data-transformation"
	case CategoryFileOperations:
		return "file-operations"
	default:
		return fmt.Sprintf("Category(%d)", c)
	}
}

// Categories returns all categories in preference-table order.
func Categories() []Category {
	return []Category{
		CategoryGeneralQuery,
		CategoryCodeGeneration,
		CategoryCodeReview,
		CategoryDebugging,
		CategoryStrategicAnalysis,
		CategoryDataTransformation,
		CategoryFileOperations,
	}
}

// ============================================================================
// CLASSIFICATION TYPE
// ============================================================================

// Classification is the classifier's verdict for one task.
type Classification struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

// String returns a compact human-readable form for logs.
func (c Classification) String() string {
	return fmt.Sprintf("%s (%.2f)", c.Category, c.Confidence)
}
