package timelog

import (
	"math"
	"strings"
	"testing"
)

// distractedEntry builds a completed entry carrying one distraction.
func distractedEntry(id, workType string, duration, distractionMinutes int) Entry {
	entry := completedEntry(id, workType, duration)
	entry.Distractions = []Distraction{{
		Type:            "interruption",
		DurationMinutes: distractionMinutes,
		Timestamp:       "2026-03-02T09:30:00Z",
	}}
	return entry
}

func TestCalculateDistractionImpact(t *testing.T) {
	e, _ := newTestEngine(t)
	seedEntries(t, e,
		distractedEntry("time_a", "technical", 60, 15),
		completedEntry("time_b", "technical", 40),
	)

	impact, err := e.CalculateDistractionImpact("technical")
	if err != nil {
		t.Fatalf("CalculateDistractionImpact: %v", err)
	}
	if impact.AvgWithDistractions != 60 {
		t.Errorf("avg with = %v, want 60", impact.AvgWithDistractions)
	}
	if impact.AvgWithoutDistractions != 40 {
		t.Errorf("avg without = %v, want 40", impact.AvgWithoutDistractions)
	}
	if impact.OverheadPct != 50 {
		t.Errorf("overhead pct = %v, want 50", impact.OverheadPct)
	}
	if impact.TotalDistractionTime != 15 {
		t.Errorf("total distraction time = %v, want 15", impact.TotalDistractionTime)
	}
	if impact.EntriesWith != 1 || impact.EntriesWithout != 1 {
		t.Errorf("entry counts = %d/%d", impact.EntriesWith, impact.EntriesWithout)
	}
}

func TestCalculateDistractionImpact_FiltersWorkType(t *testing.T) {
	e, _ := newTestEngine(t)
	seedEntries(t, e,
		distractedEntry("time_a", "writing", 100, 30),
		completedEntry("time_b", "technical", 40),
	)

	impact, _ := e.CalculateDistractionImpact("technical")
	if impact.EntriesWith != 0 {
		t.Errorf("writing entry leaked into technical impact: %+v", impact)
	}
}

func TestEstimateWithDistractionOverhead_ScalesRange(t *testing.T) {
	e, _ := newTestEngine(t)
	seedEntries(t, e,
		distractedEntry("time_a", "technical", 60, 15),
		completedEntry("time_b", "technical", 40),
	)

	base, _ := e.GenerateEstimate("task", "technical", nil)
	adjusted, err := e.EstimateWithDistractionOverhead("task", "technical", nil)
	if err != nil {
		t.Fatalf("EstimateWithDistractionOverhead: %v", err)
	}
	if adjusted == nil {
		t.Fatal("expected estimate")
	}

	// Overhead is 50%, so the whole range scales by 1.5.
	if math.Abs(adjusted.MeanMinutes-base.MeanMinutes*1.5) > 1e-9 {
		t.Errorf("mean = %v, want %v", adjusted.MeanMinutes, base.MeanMinutes*1.5)
	}
	if math.Abs(adjusted.MinEstimate-base.MinEstimate*1.5) > 1e-9 {
		t.Errorf("min = %v, want %v", adjusted.MinEstimate, base.MinEstimate*1.5)
	}
	if !strings.Contains(adjusted.Explanation, "distraction overhead") {
		t.Errorf("explanation = %q", adjusted.Explanation)
	}
}

func TestEstimateWithDistractionOverhead_NoDistractedHistory(t *testing.T) {
	e, _ := newTestEngine(t)
	seedEntries(t, e, completedEntry("time_a", "technical", 40))

	base, _ := e.GenerateEstimate("task", "technical", nil)
	adjusted, _ := e.EstimateWithDistractionOverhead("task", "technical", nil)
	if adjusted.MeanMinutes != base.MeanMinutes {
		t.Errorf("estimate should be unmodified without distracted history")
	}
}

func TestExperienceTiers_MonotonicAndExhaustive(t *testing.T) {
	cases := []struct {
		minutes int
		factor  float64
		level   string
	}{
		{0, 1.2, "novice"},
		{119, 1.2, "novice"},
		{120, 1.0, "intermediate"},
		{479, 1.0, "intermediate"},
		{480, 0.85, "experienced"},
		{1199, 0.85, "experienced"},
		{1200, 0.7, "expert"},
		{5000, 0.7, "expert"},
	}
	for _, tc := range cases {
		tier := experienceTierFor(tc.minutes)
		if tier.factor != tc.factor || tier.level != tc.level {
			t.Errorf("tier(%d) = %s/%v, want %s/%v", tc.minutes, tier.level, tier.factor, tc.level, tc.factor)
		}
	}
}

func TestExperienceAdjustedEstimate_ScalesByTier(t *testing.T) {
	e, _ := newTestEngine(t)

	// 3 x 400 min of "Go" history: 1200 total → expert tier.
	a := completedEntry("time_a", "technical", 400)
	a.KnowledgeRefs = []string{"Go"}
	b := completedEntry("time_b", "technical", 400)
	b.KnowledgeRefs = []string{"Go"}
	c := completedEntry("time_c", "technical", 400)
	c.KnowledgeRefs = []string{"Go"}
	seedEntries(t, e, a, b, c)

	est, err := e.ExperienceAdjustedEstimate("task", "technical", []string{"Go"})
	if err != nil {
		t.Fatalf("ExperienceAdjustedEstimate: %v", err)
	}
	if est == nil {
		t.Fatal("expected estimate")
	}
	if math.Abs(est.MeanMinutes-400*0.7) > 1e-9 {
		t.Errorf("mean = %v, want %v", est.MeanMinutes, 400*0.7)
	}
	if !strings.Contains(est.Explanation, "expert level") {
		t.Errorf("explanation should name the tier: %q", est.Explanation)
	}
	if !strings.Contains(est.Explanation, "Go (1200 min, 3 items)") {
		t.Errorf("explanation should list per-area minutes: %q", est.Explanation)
	}
}

func TestExperienceAdjustedEstimate_NoKnowledgeRefs(t *testing.T) {
	e, _ := newTestEngine(t)
	seedEntries(t, e, completedEntry("time_a", "technical", 60))

	base, _ := e.GenerateEstimate("task", "technical", nil)
	est, _ := e.ExperienceAdjustedEstimate("task", "technical", nil)
	if est.MeanMinutes != base.MeanMinutes || est.Explanation != base.Explanation {
		t.Errorf("estimate should be unmodified without knowledge refs")
	}
}

func TestCollaborationAdjustedEstimate_ReplacesStatistics(t *testing.T) {
	e, _ := newTestEngine(t)

	solo := completedEntry("time_solo", "technical", 60)
	collab := completedEntry("time_collab", "technical", 120)
	collab.PeopleRefs = []string{"alice"}
	seedEntries(t, e, solo, collab)

	est, err := e.CollaborationAdjustedEstimate("task", "technical", []string{"alice"}, nil)
	if err != nil {
		t.Fatalf("CollaborationAdjustedEstimate: %v", err)
	}
	if est == nil {
		t.Fatal("expected estimate")
	}
	// Replaced, not blended: statistics come solely from the
	// collaborative population.
	if est.MeanMinutes != 120 {
		t.Errorf("mean = %v, want 120", est.MeanMinutes)
	}
	if est.SimilarCount != 1 || est.SimilarIDs[0] != "time_collab" {
		t.Errorf("similar ids = %v", est.SimilarIDs)
	}
	if !strings.Contains(est.Explanation, "alice") || !strings.Contains(est.Explanation, "more time than solo work") {
		t.Errorf("explanation = %q", est.Explanation)
	}
}

func TestCollaborationAdjustedEstimate_NoCollaborativeHistory(t *testing.T) {
	e, _ := newTestEngine(t)
	seedEntries(t, e, completedEntry("time_a", "technical", 60))

	base, _ := e.GenerateEstimate("task", "technical", nil)
	est, _ := e.CollaborationAdjustedEstimate("task", "technical", []string{"bob"}, nil)
	if est.MeanMinutes != base.MeanMinutes {
		t.Errorf("estimate should fall back to base without collaborative history")
	}
}

func TestAnalyzeEstimationAccuracy_TooFewEntries(t *testing.T) {
	e, _ := newTestEngine(t)
	seedEntries(t, e, completedEntry("time_a", "technical", 60))

	acc, err := e.AnalyzeEstimationAccuracy(20)
	if err != nil {
		t.Fatalf("AnalyzeEstimationAccuracy: %v", err)
	}
	if acc.TotalEstimates != 0 {
		t.Errorf("total estimates = %d, want 0", acc.TotalEstimates)
	}
}

func TestAnalyzeEstimationAccuracy_Backtest(t *testing.T) {
	e, _ := newTestEngine(t)
	// Stored order matters: each entry is estimated from the mean of the
	// same-type entries before it.
	seedEntries(t, e,
		completedEntry("time_a", "technical", 100), // no history, skipped
		completedEntry("time_b", "technical", 100), // est 100, actual 100 → accurate
		completedEntry("time_c", "technical", 50),  // est 100, actual 50 → overestimate (100%)
		completedEntry("time_d", "technical", 50),  // est ~83.3, actual 50 → overestimate (66.7%)
	)

	acc, err := e.AnalyzeEstimationAccuracy(20)
	if err != nil {
		t.Fatalf("AnalyzeEstimationAccuracy: %v", err)
	}
	if acc.TotalEstimates != 3 {
		t.Errorf("total = %d, want 3", acc.TotalEstimates)
	}
	if acc.AccurateEstimates != 1 || acc.Overestimates != 2 || acc.Underestimates != 0 {
		t.Errorf("classification = %d/%d/%d", acc.AccurateEstimates, acc.Overestimates, acc.Underestimates)
	}
	// Two recurring overestimates for the same work type form a pattern.
	if len(acc.DeviationPatterns) != 1 {
		t.Fatalf("patterns = %v", acc.DeviationPatterns)
	}
	p := acc.DeviationPatterns[0]
	if p.WorkType != "technical" || p.DeviationType != "overestimate" || p.OccurrenceCount != 2 {
		t.Errorf("pattern = %+v", p)
	}
}

func TestAnalyzeEstimationAccuracy_SingletonDeviationsSuppressed(t *testing.T) {
	e, _ := newTestEngine(t)
	seedEntries(t, e,
		completedEntry("time_a", "technical", 100),
		completedEntry("time_b", "technical", 30), // single overestimate
	)

	acc, _ := e.AnalyzeEstimationAccuracy(20)
	if len(acc.DeviationPatterns) != 0 {
		t.Errorf("singleton deviations should not form patterns: %v", acc.DeviationPatterns)
	}
}
