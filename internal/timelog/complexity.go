package timelog

import (
	"fmt"
	"strings"
)

// Complexity scoring is a deterministic, explainable rule engine: each rule
// counts keyword hits in the description and contributes score points plus
// a human-readable indicator at fixed thresholds. No NLP, by construction.

var actionVerbs = []string{
	"implement", "create", "build", "design", "develop", "write",
	"test", "deploy", "configure", "setup", "integrate", "refactor",
	"update", "modify", "add", "remove", "fix", "debug",
}

var conjunctions = []string{
	"and", "then", "also", "plus", "along with", "as well as",
}

var scopeWords = []string{
	"complete", "full", "entire", "comprehensive", "end-to-end", "all",
}

// keywordRule scores a keyword family: strongCount hits earn 2 points,
// weakCount hits earn 1.
type keywordRule struct {
	keywords        []string
	strongCount     int
	weakCount       int
	strongIndicator func(hits int) string
	weakIndicator   func(hits int) string
}

var keywordRules = []keywordRule{
	{
		keywords:    actionVerbs,
		strongCount: 3,
		weakCount:   2,
		strongIndicator: func(hits int) string {
			return fmt.Sprintf("Multiple action verbs (%d) suggest multiple tasks", hits)
		},
		weakIndicator: func(hits int) string {
			return fmt.Sprintf("Multiple actions (%d) detected", hits)
		},
	},
	{
		keywords:    conjunctions,
		strongCount: 2,
		weakCount:   1,
		strongIndicator: func(hits int) string {
			return fmt.Sprintf("Multiple conjunctions (%d) suggest compound work", hits)
		},
		weakIndicator: func(int) string {
			return "Conjunctions suggest multiple components"
		},
	},
	{
		keywords:    scopeWords,
		strongCount: 2,
		weakCount:   1,
		strongIndicator: func(int) string {
			return "Broad scope indicators detected"
		},
		weakIndicator: func(int) string {
			return "Scope indicator suggests larger work item"
		},
	},
}

// AnalyzeComplexity scores a work description against the rule tables and
// maps the additive score to a low/medium/high level.
func AnalyzeComplexity(description string) ComplexityAnalysis {
	lower := strings.ToLower(description)

	score := 0
	var indicators []string

	// Length rule: the longer threshold wins.
	switch {
	case len(description) > 100:
		score += 2
		indicators = append(indicators, "Long description suggests multiple components")
	case len(description) > 50:
		score++
		indicators = append(indicators, "Moderate description length")
	}

	for _, rule := range keywordRules {
		hits := 0
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		switch {
		case hits >= rule.strongCount:
			score += 2
			indicators = append(indicators, rule.strongIndicator(hits))
		case hits >= rule.weakCount:
			score++
			indicators = append(indicators, rule.weakIndicator(hits))
		}
	}

	level, recommendation := complexityLevel(score)
	if indicators == nil {
		indicators = []string{}
	}
	return ComplexityAnalysis{
		Score:          score,
		Level:          level,
		Indicators:     indicators,
		Recommendation: recommendation,
	}
}

func complexityLevel(score int) (level, recommendation string) {
	switch {
	case score >= 5:
		return "high", "Strong candidate for breakdown into smaller chunks"
	case score >= 3:
		return "medium", "Consider breaking down into 2-3 chunks"
	default:
		return "low", "Appears to be a single, focused work item"
	}
}
