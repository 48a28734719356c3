// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ROUTER: Keyword-heuristic task classification
package router

import (
	"strings"

	"github.com/jeranaias/costgate/internal/task"
)

// ============================================================================
// CLASSIFICATION CONSTANTS
// ============================================================================

// Classification confidences and scoring parameters. Keyword scoring is
// deliberately coarse: each keyword hit adds a fixed increment and the first
// category over its threshold wins.
const (
	// ConfidenceCodeGeneration is assigned when code indicators are present
	// with no review or debugging verbs.
	ConfidenceCodeGeneration = 0.9
	// ConfidenceCodeSubtype is assigned to review/debugging sub-classification.
	ConfidenceCodeSubtype = 0.8
	// KeywordScoreIncrement is the per-keyword-match score contribution.
	KeywordScoreIncrement = 0.2
	// MaxKeywordConfidence caps keyword-derived confidence.
	MaxKeywordConfidence = 0.95
	// LongTaskThreshold separates the two no-match fallbacks, in characters.
	LongTaskThreshold = 1000
	// ConfidenceLongFallback applies to unmatched long tasks.
	ConfidenceLongFallback = 0.5
	// ConfidenceShortFallback applies to unmatched short tasks.
	ConfidenceShortFallback = 0.4
)

// ============================================================================
// INDICATOR TABLES
// ============================================================================

// codeIndicators mark a task as code work. Checked against the raw text:
// several entries are case- and spacing-sensitive on purpose.
var codeIndicators = []string{
	"```", "def ", "func ", "class ", "import ", "function", "var ", "const ", "let ",
	".py", ".go", ".js", ".ts", ".java", ".rs", ".rb", ".cpp", ".sql",
}

// reviewVerbs sub-classify code tasks as review work.
var reviewVerbs = []string{"review", "audit", "critique", "feedback on", "evaluate this"}

// debugVerbs sub-classify code tasks as debugging work.
var debugVerbs = []string{"fix", "debug", "bug", "error", "broken", "crash", "traceback", "stack trace"}

// keywordRule is one row of the ordered keyword table.
type keywordRule struct {
	category  task.Category
	keywords  []string
	threshold float64
}

// keywordRules is the fixed ordered classification table. Earlier rows win:
// the first category whose score reaches its threshold is the result.
var keywordRules = []keywordRule{
	{
		category:  task.CategoryDebugging,
		keywords:  []string{"fix", "bug", "debug", "error", "broken", "crash", "stack trace", "traceback"},
		threshold: 0.4,
	},
	{
		category:  task.CategoryCodeReview,
		keywords:  []string{"review", "audit", "critique", "feedback on", "pull request"},
		threshold: 0.4,
	},
	{
		category:  task.CategoryCodeGeneration,
		keywords:  []string{"write", "implement", "create a", "generate", "build a", "refactor"},
		threshold: 0.4,
	},
	{
		category:  task.CategoryStrategicAnalysis,
		keywords:  []string{"analyze", "analysis", "assessment", "assess", "strategy", "architecture", "security", "vulnerability", "risk", "roadmap", "compare"},
		threshold: 0.4,
	},
	{
		category:  task.CategoryDataTransformation,
		keywords:  []string{"convert", "transform", "parse", "reformat", "json", "csv", "xml", "yaml", "migrate"},
		threshold: 0.4,
	},
	{
		category:  task.CategoryFileOperations,
		keywords:  []string{"file", "read", "directory", "folder", "rename", "copy", "move", "organize"},
		threshold: 0.4,
	},
	{
		category:  task.CategoryGeneralQuery,
		keywords:  []string{"what is", "how do", "explain", "who ", "when ", "where "},
		threshold: 0.2,
	},
}

// ============================================================================
// CLASSIFIER
// ============================================================================

// Classify determines the category and confidence for a task. Pure function:
// no side effects, no errors, any input maps to some category.
//
// Order of checks:
//  1. Code indicators, sub-classified by review and debugging verbs
//  2. The ordered keyword table, scored per matching keyword
//  3. Length-based fallback
func Classify(t task.Task) task.Classification {
	text := t.Text
	lower := strings.ToLower(text)

	if hasCodeIndicator(text) {
		return classifyCode(lower)
	}

	for _, rule := range keywordRules {
		score := keywordScore(lower, rule.keywords)
		if score >= rule.threshold {
			if score > MaxKeywordConfidence {
				score = MaxKeywordConfidence
			}
			return task.Classification{Category: rule.category, Confidence: score}
		}
	}

	if len(text) > LongTaskThreshold {
		return task.Classification{Category: task.CategoryStrategicAnalysis, Confidence: ConfidenceLongFallback}
	}
	return task.Classification{Category: task.CategoryFileOperations, Confidence: ConfidenceShortFallback}
}

func hasCodeIndicator(text string) bool {
	for _, indicator := range codeIndicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	return false
}

// classifyCode sub-classifies a task already known to contain code. Review
// verbs are checked before debugging verbs: "review the fix" is review work.
func classifyCode(lower string) task.Classification {
	for _, verb := range reviewVerbs {
		if strings.Contains(lower, verb) {
			return task.Classification{Category: task.CategoryCodeReview, Confidence: ConfidenceCodeSubtype}
		}
	}
	for _, verb := range debugVerbs {
		if strings.Contains(lower, verb) {
			return task.Classification{Category: task.CategoryDebugging, Confidence: ConfidenceCodeSubtype}
		}
	}
	return task.Classification{Category: task.CategoryCodeGeneration, Confidence: ConfidenceCodeGeneration}
}

func keywordScore(lower string, keywords []string) float64 {
	score := 0.0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			score += KeywordScoreIncrement
		}
	}
	return score
}
