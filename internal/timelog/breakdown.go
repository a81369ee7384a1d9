package timelog

import (
	"fmt"
	"strings"
)

// Fallback per-phase estimates in minutes, used when no historical data
// matches a chunk's work type.
var phaseHeuristics = map[string]float64{
	"design":    60,
	"implement": 120,
	"test":      60,
	"document":  30,
	"research":  45,
	"draft":     90,
	"edit":      30,
	"prepare":   20,
	"attend":    60,
	"followup":  30,
	"generic":   60,
}

// technicalPhase is one conditional phase of the technical-work generator:
// the phase is emitted when any trigger keyword appears in the description,
// or (for test/document) when the work is high complexity.
type technicalPhase struct {
	phaseType      string
	triggers       []string
	onHigh         bool   // also emit for high-complexity work
	descriptionFmt string // fmt with the original description
	workType       string // overrides the work type when non-empty
}

var technicalPhases = []technicalPhase{
	{phaseType: "design", triggers: []string{"design", "architecture", "plan", "spec"}, descriptionFmt: "Design and plan: %s"},
	{phaseType: "implement", triggers: []string{"implement", "build", "create", "develop", "code"}, descriptionFmt: "Implement core functionality: %s"},
	{phaseType: "test", triggers: []string{"test", "verify", "validate"}, onHigh: true, descriptionFmt: "Test and validate: %s"},
	{phaseType: "document", triggers: []string{"document", "doc", "write"}, onHigh: true, descriptionFmt: "Document: %s", workType: "writing"},
}

// linearPhase is one fixed phase of the writing/meeting generators.
type linearPhase struct {
	phaseType      string
	descriptionFmt string
}

var writingPhases = []linearPhase{
	{phaseType: "research", descriptionFmt: "Research and outline: %s"},
	{phaseType: "draft", descriptionFmt: "Write first draft: %s"},
	{phaseType: "edit", descriptionFmt: "Review and edit: %s"},
}

var meetingPhases = []linearPhase{
	{phaseType: "prepare", descriptionFmt: "Prepare for: %s"},
	{phaseType: "attend", descriptionFmt: "Attend: %s"},
	{phaseType: "followup", descriptionFmt: "Follow-up actions: %s"},
}

// SuggestBreakdown decomposes a work description into estimated chunks
// with linear dependency chains. Returns nil for low-complexity work —
// single focused items don't need decomposition.
func (e *Engine) SuggestBreakdown(description, workType string, knowledgeRefs []string) (*Breakdown, error) {
	if knowledgeRefs == nil {
		knowledgeRefs = []string{}
	}

	complexity := AnalyzeComplexity(description)
	if complexity.Level == "low" {
		return nil, nil
	}

	chunks, err := e.generateChunks(description, workType, knowledgeRefs, complexity)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	var total float64
	for _, c := range chunks {
		total += c.EstimatedMinutes
	}

	return &Breakdown{
		OriginalWork:    description,
		EstimatedTotal:  total,
		Chunks:          chunks,
		BreakdownID:     e.newID("breakdown"),
		CreatedAt:       e.timestamp(),
		CompletedChunks: []string{},
	}, nil
}

func (e *Engine) generateChunks(description, workType string, knowledgeRefs []string, complexity ComplexityAnalysis) ([]Chunk, error) {
	switch workType {
	case "technical":
		return e.technicalChunks(description, workType, knowledgeRefs, complexity)
	case "writing":
		return e.linearChunks(writingPhases, description, workType, knowledgeRefs)
	case "meeting":
		return e.linearChunks(meetingPhases, description, workType, knowledgeRefs)
	default:
		return e.genericChunks(description, workType, knowledgeRefs, complexity)
	}
}

// technicalChunks emits design/implement/test/document phases depending on
// keywords in the description; each emitted phase depends on the one
// before it.
func (e *Engine) technicalChunks(description, workType string, knowledgeRefs []string, complexity ComplexityAnalysis) ([]Chunk, error) {
	lower := strings.ToLower(description)
	var chunks []Chunk

	for _, phase := range technicalPhases {
		triggered := false
		for _, kw := range phase.triggers {
			if strings.Contains(lower, kw) {
				triggered = true
				break
			}
		}
		if !triggered && !(phase.onHigh && complexity.Level == "high") {
			continue
		}

		estimate, err := e.estimateChunk(phase.phaseType, workType, knowledgeRefs)
		if err != nil {
			return nil, err
		}

		chunkWorkType := workType
		if phase.workType != "" {
			chunkWorkType = phase.workType
		}

		var deps []string
		if len(chunks) > 0 {
			deps = []string{chunks[len(chunks)-1].ID}
		} else {
			deps = []string{}
		}

		chunks = append(chunks, Chunk{
			ID:               fmt.Sprintf("chunk_%d", len(chunks)+1),
			Description:      fmt.Sprintf(phase.descriptionFmt, description),
			EstimatedMinutes: estimate,
			WorkType:         chunkWorkType,
			KnowledgeRefs:    knowledgeRefs,
			Dependencies:     deps,
		})
	}
	return chunks, nil
}

// linearChunks emits a fixed phase sequence with a strict dependency chain.
func (e *Engine) linearChunks(phases []linearPhase, description, workType string, knowledgeRefs []string) ([]Chunk, error) {
	chunks := make([]Chunk, 0, len(phases))
	for i, phase := range phases {
		estimate, err := e.estimateChunk(phase.phaseType, workType, knowledgeRefs)
		if err != nil {
			return nil, err
		}

		deps := []string{}
		if i > 0 {
			deps = []string{fmt.Sprintf("chunk_%d", i)}
		}

		chunks = append(chunks, Chunk{
			ID:               fmt.Sprintf("chunk_%d", i+1),
			Description:      fmt.Sprintf(phase.descriptionFmt, description),
			EstimatedMinutes: estimate,
			WorkType:         workType,
			KnowledgeRefs:    knowledgeRefs,
			Dependencies:     deps,
		})
	}
	return chunks, nil
}

// genericChunks splits unrecognized work types into N linearly dependent
// phases: 4 for high complexity, otherwise 2.
func (e *Engine) genericChunks(description, workType string, knowledgeRefs []string, complexity ComplexityAnalysis) ([]Chunk, error) {
	phaseCount := 2
	if complexity.Level == "high" {
		phaseCount = 4
	}

	chunks := make([]Chunk, 0, phaseCount)
	for i := 0; i < phaseCount; i++ {
		estimate, err := e.estimateChunk("generic", workType, knowledgeRefs)
		if err != nil {
			return nil, err
		}

		deps := []string{}
		if i > 0 {
			deps = []string{fmt.Sprintf("chunk_%d", i)}
		}

		chunks = append(chunks, Chunk{
			ID:               fmt.Sprintf("chunk_%d", i+1),
			Description:      fmt.Sprintf("Phase %d: %s", i+1, description),
			EstimatedMinutes: estimate,
			WorkType:         workType,
			KnowledgeRefs:    knowledgeRefs,
			Dependencies:     deps,
		})
	}
	return chunks, nil
}

// estimateChunk estimates one phase: historical mean for the work type
// when available, otherwise the fixed per-phase heuristic. The phase type
// is passed as the (unused) description, so matching is purely by work
// type and knowledge refs.
func (e *Engine) estimateChunk(phaseType, workType string, knowledgeRefs []string) (float64, error) {
	similar, err := e.FindSimilarWork(phaseType, workType, knowledgeRefs)
	if err != nil {
		return 0, err
	}
	if len(similar) > 0 {
		if mean, _ := CalculateStatistics(similar); mean > 0 {
			return mean, nil
		}
	}

	if est, ok := phaseHeuristics[phaseType]; ok {
		return est, nil
	}
	return phaseHeuristics["generic"], nil
}

// AcceptBreakdown persists the breakdown and creates one planned entry per
// chunk (nil start time — not yet started), tagged with the breakdown and
// chunk IDs. Returns the new entry IDs in chunk order.
func (e *Engine) AcceptBreakdown(breakdown *Breakdown) ([]string, error) {
	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	doc.Breakdowns = append(doc.Breakdowns, *breakdown)

	ids := make([]string, 0, len(breakdown.Chunks))
	for _, chunk := range breakdown.Chunks {
		estimated := chunk.EstimatedMinutes
		entry := Entry{
			ID:               e.newID("time"),
			WorkDescription:  chunk.Description,
			WorkType:         chunk.WorkType,
			KnowledgeRefs:    chunk.KnowledgeRefs,
			PeopleRefs:       []string{},
			Distractions:     []Distraction{},
			Notes:            fmt.Sprintf("Part of breakdown: %s", breakdown.BreakdownID),
			BreakdownID:      breakdown.BreakdownID,
			ChunkID:          chunk.ID,
			EstimatedMinutes: &estimated,
		}
		doc.Entries = append(doc.Entries, entry)
		ids = append(ids, entry.ID)
	}

	if err := e.store.Save(doc); err != nil {
		return nil, err
	}
	return ids, nil
}

// BreakdownProgress reports completion counts and actual-vs-estimated
// totals for a breakdown. Returns nil if the ID is unknown. The final
// variance is only reported once every chunk is complete.
type BreakdownProgress struct {
	BreakdownID        string   `json:"breakdown_id"`
	OriginalWork       string   `json:"original_work"`
	TotalChunks        int      `json:"total_chunks"`
	CompletedChunks    int      `json:"completed_chunks"`
	ProgressPct        float64  `json:"progress_percentage"`
	EstimatedTotal     float64  `json:"estimated_total_minutes"`
	ActualTotal        int      `json:"actual_total_minutes"`
	RemainingEstimated float64  `json:"remaining_estimated_minutes"`
	VarianceMinutes    *float64 `json:"variance_minutes"`
}

// BreakdownProgress joins planned entries against the stored chunk list.
func (e *Engine) BreakdownProgress(breakdownID string) (*BreakdownProgress, error) {
	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	breakdown := findBreakdown(doc, breakdownID)
	if breakdown == nil {
		return nil, nil
	}

	progress := &BreakdownProgress{
		BreakdownID:    breakdownID,
		OriginalWork:   breakdown.OriginalWork,
		TotalChunks:    len(breakdown.Chunks),
		EstimatedTotal: breakdown.EstimatedTotal,
	}

	for i := range doc.Entries {
		entry := &doc.Entries[i]
		if entry.BreakdownID != breakdownID {
			continue
		}
		if entry.Completed() {
			progress.CompletedChunks++
			progress.ActualTotal += *entry.DurationMinutes
		}
	}

	if progress.TotalChunks > 0 {
		progress.ProgressPct = float64(progress.CompletedChunks) / float64(progress.TotalChunks) * 100
	}
	progress.RemainingEstimated = progress.EstimatedTotal - float64(progress.ActualTotal)
	if progress.RemainingEstimated < 0 {
		progress.RemainingEstimated = 0
	}
	if progress.CompletedChunks == progress.TotalChunks {
		variance := float64(progress.ActualTotal) - progress.EstimatedTotal
		progress.VarianceMinutes = &variance
	}
	return progress, nil
}

// ChunkResult compares one chunk's estimate to its actual duration.
type ChunkResult struct {
	ChunkID          string   `json:"chunk_id"`
	Description      string   `json:"description"`
	EstimatedMinutes float64  `json:"estimated_minutes"`
	ActualMinutes    *int     `json:"actual_minutes"`
	VarianceMinutes  *float64 `json:"variance_minutes"`
	VariancePct      *float64 `json:"variance_percentage"`
	Completed        bool     `json:"completed"`
}

// BreakdownAggregate is the full estimate-vs-actual comparison for a
// breakdown.
type BreakdownAggregate struct {
	BreakdownID     string        `json:"breakdown_id"`
	OriginalWork    string        `json:"original_work"`
	TotalChunks     int           `json:"total_chunks"`
	CompletedChunks int           `json:"completed_chunks"`
	ChunkResults    []ChunkResult `json:"chunk_results"`
	EstimatedTotal  float64       `json:"total_estimated_minutes"`
	ActualTotal     int           `json:"total_actual_minutes"`
	VarianceMinutes float64       `json:"total_variance_minutes"`
	VariancePct     float64       `json:"total_variance_percentage"`
	AllCompleted    bool          `json:"all_chunks_completed"`
}

// AggregateBreakdown computes per-chunk and total variance between
// estimates and actuals. Returns nil if the ID is unknown.
func (e *Engine) AggregateBreakdown(breakdownID string) (*BreakdownAggregate, error) {
	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	breakdown := findBreakdown(doc, breakdownID)
	if breakdown == nil {
		return nil, nil
	}

	entryByChunk := map[string]*Entry{}
	for i := range doc.Entries {
		if doc.Entries[i].BreakdownID == breakdownID {
			entryByChunk[doc.Entries[i].ChunkID] = &doc.Entries[i]
		}
	}

	agg := &BreakdownAggregate{
		BreakdownID:  breakdownID,
		OriginalWork: breakdown.OriginalWork,
		TotalChunks:  len(breakdown.Chunks),
		ChunkResults: []ChunkResult{},
	}

	for _, chunk := range breakdown.Chunks {
		agg.EstimatedTotal += chunk.EstimatedMinutes

		entry, ok := entryByChunk[chunk.ID]
		if !ok {
			continue
		}

		result := ChunkResult{
			ChunkID:          chunk.ID,
			Description:      chunk.Description,
			EstimatedMinutes: chunk.EstimatedMinutes,
		}
		if entry.Completed() {
			actual := *entry.DurationMinutes
			result.ActualMinutes = &actual
			result.Completed = true
			variance := float64(actual) - chunk.EstimatedMinutes
			result.VarianceMinutes = &variance
			if chunk.EstimatedMinutes > 0 {
				pct := variance / chunk.EstimatedMinutes * 100
				result.VariancePct = &pct
			}
			agg.ActualTotal += actual
			agg.CompletedChunks++
		}
		agg.ChunkResults = append(agg.ChunkResults, result)
	}

	agg.VarianceMinutes = float64(agg.ActualTotal) - agg.EstimatedTotal
	if agg.EstimatedTotal > 0 {
		agg.VariancePct = agg.VarianceMinutes / agg.EstimatedTotal * 100
	}
	agg.AllCompleted = agg.CompletedChunks == len(breakdown.Chunks)
	return agg, nil
}

func findBreakdown(doc *Document, breakdownID string) *Breakdown {
	for i := range doc.Breakdowns {
		if doc.Breakdowns[i].BreakdownID == breakdownID {
			return &doc.Breakdowns[i]
		}
	}
	return nil
}
