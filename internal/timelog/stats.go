package timelog

import (
	"fmt"
	"math"
	"strings"
)

// FindSimilarWork returns completed entries matching the given work type
// exactly and, when knowledgeRefs is non-empty, sharing at least one
// knowledge ref with the query.
//
// The description parameter is accepted but not used in matching: it is a
// forward-compatibility hook for text similarity. Callers must not rely on
// description-sensitive results.
func (e *Engine) FindSimilarWork(description, workType string, knowledgeRefs []string) ([]Entry, error) {
	_ = description

	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	var similar []Entry
	for i := range doc.Entries {
		entry := &doc.Entries[i]
		if !entry.Completed() {
			continue
		}
		if entry.WorkType != workType {
			continue
		}
		if len(knowledgeRefs) > 0 && !anyOverlap(entry.KnowledgeRefs, knowledgeRefs) {
			continue
		}
		similar = append(similar, *entry)
	}
	return similar, nil
}

// CalculateStatistics computes the population mean and population variance
// (divide by N) over the entries' durations. Entries without a duration are
// ignored. Empty input yields (0, 0); a single sample has variance 0.
func CalculateStatistics(entries []Entry) (mean, variance float64) {
	var durations []float64
	for i := range entries {
		if entries[i].DurationMinutes != nil {
			durations = append(durations, float64(*entries[i].DurationMinutes))
		}
	}
	if len(durations) == 0 {
		return 0, 0
	}

	var sum float64
	for _, d := range durations {
		sum += d
	}
	mean = sum / float64(len(durations))

	if len(durations) == 1 {
		return mean, 0
	}
	var sq float64
	for _, d := range durations {
		sq += (d - mean) * (d - mean)
	}
	return mean, sq / float64(len(durations))
}

// GenerateEstimate produces a time estimate from similar historical work,
// as mean ± standard deviation with the lower bound clamped at zero.
// Returns nil when no similar work exists.
func (e *Engine) GenerateEstimate(description, workType string, knowledgeRefs []string) (*Estimate, error) {
	similar, err := e.FindSimilarWork(description, workType, knowledgeRefs)
	if err != nil {
		return nil, err
	}
	if len(similar) == 0 {
		return nil, nil
	}

	mean, variance := CalculateStatistics(similar)
	stdDev := math.Sqrt(variance)
	minEst := math.Max(0, mean-stdDev)
	maxEst := mean + stdDev

	ids := make([]string, len(similar))
	for i := range similar {
		ids[i] = similar[i].ID
	}

	return &Estimate{
		MeanMinutes:     mean,
		Variance:        variance,
		StdDev:          stdDev,
		MinEstimate:     minEst,
		MaxEstimate:     maxEst,
		ConfidenceRange: [2]float64{minEst, maxEst},
		SimilarCount:    len(similar),
		SimilarIDs:      ids,
		Explanation:     buildExplanation(similar, mean, stdDev, workType, knowledgeRefs),
	}, nil
}

// buildExplanation renders the human-readable rationale for an estimate,
// listing up to three historical items.
func buildExplanation(similar []Entry, mean, stdDev float64, workType string, knowledgeRefs []string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Based on %d similar %s work items", len(similar), workType))

	if len(knowledgeRefs) > 0 {
		parts = append(parts, fmt.Sprintf("related to: %s", strings.Join(knowledgeRefs, ", ")))
	}

	parts = append(parts, fmt.Sprintf("Average duration: %.1f minutes (±%.1f minutes)", mean, stdDev))

	refs := func(entries []Entry) []string {
		out := make([]string, len(entries))
		for i := range entries {
			out[i] = fmt.Sprintf("'%s' (%d min)", entries[i].WorkDescription, *entries[i].DurationMinutes)
		}
		return out
	}

	if len(similar) <= 3 {
		parts = append(parts, fmt.Sprintf("Historical work: %s", strings.Join(refs(similar), ", ")))
	} else {
		parts = append(parts, fmt.Sprintf("Sample work: %s (and %d more)",
			strings.Join(refs(similar[:3]), ", "), len(similar)-3))
	}

	return strings.Join(parts, ". ") + "."
}

func anyOverlap(a, b []string) bool {
	for _, x := range a {
		if containsRef(b, x) {
			return true
		}
	}
	return false
}
