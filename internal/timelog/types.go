// Package timelog implements the time intelligence engine: tracking work
// duration, recording distractions, and producing statistical estimates,
// complexity-driven breakdowns, and pattern analytics from historical data.
//
// All state lives in one JSON document (see store.go). Every operation is a
// complete read-modify-write cycle against that document — there is no
// locking, no caching, and no background work. This is a deliberate
// constraint for a single-user local tool.
package timelog

// Distraction is one interruption recorded against a work entry.
// The timestamp is when the distraction was recorded, not clamped to the
// entry's [start, end] interval.
type Distraction struct {
	Type            string `json:"type"`
	DurationMinutes int    `json:"duration_minutes"`
	Description     string `json:"description"`
	Timestamp       string `json:"timestamp"`
}

// Entry is one tracked unit of work.
//
// Lifecycle: created by StartWork (or AcceptBreakdown, with a nil start
// time for planned chunks), closed by EndWork, and appended to by
// RecordDistraction. Entries are never deleted. EndTime and DurationMinutes
// stay nil while work is in progress; entries with a nil duration are
// excluded from all statistics.
type Entry struct {
	ID                   string        `json:"id"`
	StartTime            *string       `json:"start_time"`
	EndTime              *string       `json:"end_time"`
	DurationMinutes      *int          `json:"duration_minutes"`
	WorkDescription      string        `json:"work_description"`
	WorkType             string        `json:"work_type"`
	KnowledgeRefs        []string      `json:"knowledge_refs"`
	PeopleRefs           []string      `json:"people_refs"`
	Distractions         []Distraction `json:"distractions"`
	CompletionPercentage *int          `json:"completion_percentage"`
	Notes                string        `json:"notes"`

	// Set only on entries spawned by AcceptBreakdown.
	BreakdownID      string   `json:"breakdown_id,omitempty"`
	ChunkID          string   `json:"chunk_id,omitempty"`
	EstimatedMinutes *float64 `json:"estimated_minutes,omitempty"`
}

// Completed reports whether the entry has a recorded duration.
func (e *Entry) Completed() bool {
	return e.DurationMinutes != nil
}

// Chunk is one phase of a work breakdown. Dependencies list the chunk IDs
// that must complete first; they are informational, not enforced.
type Chunk struct {
	ID               string   `json:"id"`
	Description      string   `json:"description"`
	EstimatedMinutes float64  `json:"estimated_minutes"`
	WorkType         string   `json:"work_type"`
	KnowledgeRefs    []string `json:"knowledge_refs"`
	Dependencies     []string `json:"dependencies"`
}

// Breakdown is a decomposition of one work description into ordered,
// estimated chunks. Persisted in the document's "breakdowns" list.
type Breakdown struct {
	OriginalWork    string   `json:"original_work"`
	EstimatedTotal  float64  `json:"estimated_total"`
	Chunks          []Chunk  `json:"chunks"`
	BreakdownID     string   `json:"breakdown_id"`
	CreatedAt       string   `json:"created_at"`
	CompletedChunks []string `json:"completed_chunks"`
}

// Estimate is a statistical time estimate derived from similar historical
// work. Not persisted. The confidence range is mean ± std dev with the
// lower bound clamped at zero — not a proper statistical interval.
type Estimate struct {
	MeanMinutes     float64    `json:"mean_minutes"`
	Variance        float64    `json:"variance"`
	StdDev          float64    `json:"std_dev"`
	MinEstimate     float64    `json:"min_estimate"`
	MaxEstimate     float64    `json:"max_estimate"`
	ConfidenceRange [2]float64 `json:"confidence_range"`
	SimilarCount    int        `json:"similar_work_count"`
	SimilarIDs      []string   `json:"similar_work_ids"`
	Explanation     string     `json:"explanation"`
}

// DeviationPattern is a recurring estimation miss, grouped by work type
// and direction.
type DeviationPattern struct {
	WorkType        string  `json:"work_type"`
	DeviationType   string  `json:"deviation_type"`
	OccurrenceCount int     `json:"occurrence_count"`
	AverageErrorPct float64 `json:"average_error_percentage"`
}

// Accuracy is the result of the retrospective estimation backtest.
type Accuracy struct {
	TotalEstimates    int                `json:"total_estimates"`
	AccurateEstimates int                `json:"accurate_estimates"`
	Overestimates     int                `json:"overestimates"`
	Underestimates    int                `json:"underestimates"`
	AverageErrorPct   float64            `json:"average_error_percentage"`
	DeviationPatterns []DeviationPattern `json:"common_deviation_patterns"`
}

// ComplexityAnalysis is the output of the heuristic complexity scorer.
type ComplexityAnalysis struct {
	Score          int      `json:"complexity_score"`
	Level          string   `json:"complexity_level"` // low | medium | high
	Indicators     []string `json:"indicators"`
	Recommendation string   `json:"recommendation"`
}

// Document is the full persisted state: a flat append-only entry log plus
// accepted breakdowns.
type Document struct {
	Entries    []Entry     `json:"entries"`
	Breakdowns []Breakdown `json:"breakdowns,omitempty"`
	Version    string      `json:"version"`
}
