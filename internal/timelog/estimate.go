package timelog

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// DistractionImpact quantifies the duration overhead that distractions add,
// comparing the average duration of completed entries with distractions to
// those without.
type DistractionImpact struct {
	AvgWithDistractions    float64 `json:"average_duration_with_distractions"`
	AvgWithoutDistractions float64 `json:"average_duration_without_distractions"`
	OverheadMinutes        float64 `json:"average_distraction_overhead_minutes"`
	OverheadPct            float64 `json:"average_distraction_overhead_percentage"`
	TotalDistractionTime   int     `json:"total_distraction_time"`
	EntriesWith            int     `json:"entries_with_distractions"`
	EntriesWithout         int     `json:"entries_without_distractions"`
}

// CalculateDistractionImpact computes distraction overhead across completed
// entries, optionally filtered to one work type (empty = all types).
func (e *Engine) CalculateDistractionImpact(workType string) (*DistractionImpact, error) {
	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	impact := &DistractionImpact{}
	var withSum, withoutSum int
	for i := range doc.Entries {
		entry := &doc.Entries[i]
		if !entry.Completed() {
			continue
		}
		if workType != "" && entry.WorkType != workType {
			continue
		}
		if len(entry.Distractions) > 0 {
			impact.EntriesWith++
			withSum += *entry.DurationMinutes
			for _, d := range entry.Distractions {
				impact.TotalDistractionTime += d.DurationMinutes
			}
		} else {
			impact.EntriesWithout++
			withoutSum += *entry.DurationMinutes
		}
	}

	if impact.EntriesWith > 0 {
		impact.AvgWithDistractions = float64(withSum) / float64(impact.EntriesWith)
	}
	if impact.EntriesWithout > 0 {
		impact.AvgWithoutDistractions = float64(withoutSum) / float64(impact.EntriesWithout)
	}
	impact.OverheadMinutes = impact.AvgWithDistractions - impact.AvgWithoutDistractions
	if impact.AvgWithoutDistractions > 0 {
		impact.OverheadPct = impact.OverheadMinutes / impact.AvgWithoutDistractions * 100
	}
	return impact, nil
}

// EstimateWithDistractionOverhead scales the base estimate by the typical
// distraction overhead for the work type. With no distracted history the
// base estimate is returned unmodified. Returns nil when no similar work
// exists.
func (e *Engine) EstimateWithDistractionOverhead(description, workType string, knowledgeRefs []string) (*Estimate, error) {
	base, err := e.GenerateEstimate(description, workType, knowledgeRefs)
	if err != nil || base == nil {
		return base, err
	}

	impact, err := e.CalculateDistractionImpact(workType)
	if err != nil {
		return nil, err
	}
	if impact.EntriesWith == 0 {
		return base, nil
	}

	factor := 1 + impact.OverheadPct/100
	adjusted := *base
	adjusted.MeanMinutes = base.MeanMinutes * factor
	adjusted.MinEstimate = base.MinEstimate * factor
	adjusted.MaxEstimate = base.MaxEstimate * factor
	adjusted.ConfidenceRange = [2]float64{adjusted.MinEstimate, adjusted.MaxEstimate}
	adjusted.Explanation = base.Explanation + fmt.Sprintf(
		" Adjusted for typical distraction overhead: +%.1f%% (%.1f minutes) based on %d historical work items with distractions.",
		impact.OverheadPct, impact.OverheadMinutes, impact.EntriesWith)
	return &adjusted, nil
}

// Experience tiers: cumulative minutes invested in the query's knowledge
// areas map to a discrete multiplier. More experience, faster work.
type experienceTier struct {
	maxMinutes int // exclusive upper bound; -1 = unbounded
	level      string
	factor     float64
}

var experienceTiers = []experienceTier{
	{maxMinutes: 120, level: "novice", factor: 1.2},
	{maxMinutes: 480, level: "intermediate", factor: 1.0},
	{maxMinutes: 1200, level: "experienced", factor: 0.85},
	{maxMinutes: -1, level: "expert", factor: 0.7},
}

func experienceTierFor(totalMinutes int) experienceTier {
	for _, tier := range experienceTiers {
		if tier.maxMinutes < 0 || totalMinutes < tier.maxMinutes {
			return tier
		}
	}
	return experienceTiers[len(experienceTiers)-1]
}

// ExperienceAdjustedEstimate scales the base estimate by the caller's
// experience tier across the supplied knowledge areas. With no knowledge
// refs the base estimate is returned unmodified. Returns nil when no
// similar work exists.
func (e *Engine) ExperienceAdjustedEstimate(description, workType string, knowledgeRefs []string) (*Estimate, error) {
	base, err := e.GenerateEstimate(description, workType, knowledgeRefs)
	if err != nil || base == nil {
		return base, err
	}
	if len(knowledgeRefs) == 0 {
		return base, nil
	}

	totalMinutes := 0
	areas := make([]string, 0, len(knowledgeRefs))
	for _, ref := range knowledgeRefs {
		inv, err := e.KnowledgeTimeInvestment(ref)
		if err != nil {
			return nil, err
		}
		totalMinutes += inv.TotalMinutes
		areas = append(areas, fmt.Sprintf("%s (%d min, %d items)", ref, inv.TotalMinutes, inv.WorkItemCount))
	}

	tier := experienceTierFor(totalMinutes)

	adjusted := *base
	adjusted.MeanMinutes = base.MeanMinutes * tier.factor
	adjusted.MinEstimate = base.MinEstimate * tier.factor
	adjusted.MaxEstimate = base.MaxEstimate * tier.factor
	adjusted.ConfidenceRange = [2]float64{adjusted.MinEstimate, adjusted.MaxEstimate}
	adjusted.Explanation = base.Explanation + fmt.Sprintf(
		" Experience adjustment: %s level (%d total minutes across %d knowledge areas). Estimate adjusted by %gx. Experience breakdown: %s.",
		tier.level, totalMinutes, len(knowledgeRefs), tier.factor, strings.Join(areas, ", "))
	return &adjusted, nil
}

// CollaborationAdjustedEstimate replaces the base statistics with ones
// computed solely from past work of the same type involving any of the
// given people. With no people refs or no collaborative history the base
// estimate is returned unmodified. Returns nil when no similar work exists.
func (e *Engine) CollaborationAdjustedEstimate(description, workType string, peopleRefs, knowledgeRefs []string) (*Estimate, error) {
	base, err := e.GenerateEstimate(description, workType, knowledgeRefs)
	if err != nil || base == nil {
		return base, err
	}
	if len(peopleRefs) == 0 {
		return base, nil
	}

	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	var collaborative []Entry
	for i := range doc.Entries {
		entry := &doc.Entries[i]
		if !entry.Completed() || entry.WorkType != workType {
			continue
		}
		if anyOverlap(entry.PeopleRefs, peopleRefs) {
			collaborative = append(collaborative, *entry)
		}
	}
	if len(collaborative) == 0 {
		return base, nil
	}

	mean, variance := CalculateStatistics(collaborative)
	if mean <= 0 {
		return base, nil
	}
	stdDev := math.Sqrt(variance)
	minEst := math.Max(0, mean-stdDev)
	maxEst := mean + stdDev

	ids := make([]string, len(collaborative))
	for i := range collaborative {
		ids[i] = collaborative[i].ID
	}

	direction := "less"
	if mean > base.MeanMinutes {
		direction = "more"
	}
	diffPct := (mean - base.MeanMinutes) / base.MeanMinutes * 100

	return &Estimate{
		MeanMinutes:     mean,
		Variance:        variance,
		StdDev:          stdDev,
		MinEstimate:     minEst,
		MaxEstimate:     maxEst,
		ConfidenceRange: [2]float64{minEst, maxEst},
		SimilarCount:    len(collaborative),
		SimilarIDs:      ids,
		Explanation: fmt.Sprintf(
			"Based on %d similar %s work items involving %s. Average collaborative duration: %.1f minutes (±%.1f minutes). Collaborative work with these people typically takes %.1f%% %s time than solo work.",
			len(collaborative), workType, strings.Join(peopleRefs, ", "), mean, stdDev, diffPct, direction),
	}, nil
}

// AnalyzeEstimationAccuracy replays history: for each completed entry it
// computes what the estimate would have been from the entries before it
// (same work type, mean only) and compares to the actual duration. An
// O(n²) backtest, fine at personal-log scale.
func (e *Engine) AnalyzeEstimationAccuracy(tolerancePct float64) (*Accuracy, error) {
	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	var completed []Entry
	for i := range doc.Entries {
		if doc.Entries[i].Completed() {
			completed = append(completed, doc.Entries[i])
		}
	}

	acc := &Accuracy{DeviationPatterns: []DeviationPattern{}}
	if len(completed) < 2 {
		return acc, nil
	}

	type deviation struct {
		workType string
		devType  string
		errorPct float64
	}
	var deviations []deviation
	var errorSum float64
	var errorCount int

	for i := range completed {
		var history []Entry
		for j := 0; j < i; j++ {
			if completed[j].WorkType == completed[i].WorkType {
				history = append(history, completed[j])
			}
		}
		if len(history) == 0 {
			continue
		}

		mean, _ := CalculateStatistics(history)
		if mean == 0 {
			continue
		}

		actual := float64(*completed[i].DurationMinutes)
		errorPct := math.Abs(actual-mean) / actual * 100
		errorSum += errorPct
		errorCount++
		acc.TotalEstimates++

		switch {
		case errorPct <= tolerancePct:
			acc.AccurateEstimates++
		case mean > actual:
			acc.Overestimates++
			deviations = append(deviations, deviation{completed[i].WorkType, "overestimate", errorPct})
		default:
			acc.Underestimates++
			deviations = append(deviations, deviation{completed[i].WorkType, "underestimate", errorPct})
		}
	}

	if errorCount > 0 {
		acc.AverageErrorPct = errorSum / float64(errorCount)
	}

	// Group deviations by (work type, direction); keep recurring ones.
	type bucket struct {
		count    int
		errorSum float64
	}
	buckets := map[[2]string]*bucket{}
	var order [][2]string
	for _, d := range deviations {
		key := [2]string{d.workType, d.devType}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		b.count++
		b.errorSum += d.errorPct
	}
	for _, key := range order {
		b := buckets[key]
		if b.count < 2 {
			continue
		}
		acc.DeviationPatterns = append(acc.DeviationPatterns, DeviationPattern{
			WorkType:        key[0],
			DeviationType:   key[1],
			OccurrenceCount: b.count,
			AverageErrorPct: b.errorSum / float64(b.count),
		})
	}
	sort.SliceStable(acc.DeviationPatterns, func(i, j int) bool {
		return acc.DeviationPatterns[i].OccurrenceCount > acc.DeviationPatterns[j].OccurrenceCount
	})

	return acc, nil
}
