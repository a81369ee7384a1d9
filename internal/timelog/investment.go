package timelog

// WorkItemSummary is a compact projection of a completed entry, used in
// investment and collaboration reports.
type WorkItemSummary struct {
	ID              string  `json:"id"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes"`
	WorkType        string  `json:"work_type"`
	StartTime       *string `json:"start_time"`
}

// TimeInvestment aggregates completed time against one reference (a
// knowledge area or a person).
type TimeInvestment struct {
	Ref             string            `json:"ref"`
	TotalMinutes    int               `json:"total_minutes"`
	WorkItemCount   int               `json:"work_item_count"`
	AverageDuration float64           `json:"average_duration"`
	WorkItems       []WorkItemSummary `json:"work_items"`
}

// KnowledgeTimeInvestment returns the total completed time invested in a
// knowledge area. Unknown refs yield a zero-valued report, not an error.
func (e *Engine) KnowledgeTimeInvestment(knowledgeRef string) (*TimeInvestment, error) {
	entries, err := e.EntriesByKnowledge(knowledgeRef)
	if err != nil {
		return nil, err
	}
	return summarizeInvestment(knowledgeRef, entries), nil
}

// PersonCollaborationTime returns the total completed time spent on work
// involving a person.
func (e *Engine) PersonCollaborationTime(personRef string) (*TimeInvestment, error) {
	entries, err := e.EntriesByPerson(personRef)
	if err != nil {
		return nil, err
	}
	return summarizeInvestment(personRef, entries), nil
}

func summarizeInvestment(ref string, entries []Entry) *TimeInvestment {
	inv := &TimeInvestment{Ref: ref, WorkItems: []WorkItemSummary{}}
	for i := range entries {
		entry := &entries[i]
		if !entry.Completed() {
			continue
		}
		inv.TotalMinutes += *entry.DurationMinutes
		inv.WorkItemCount++
		inv.WorkItems = append(inv.WorkItems, WorkItemSummary{
			ID:              entry.ID,
			Description:     entry.WorkDescription,
			DurationMinutes: *entry.DurationMinutes,
			WorkType:        entry.WorkType,
			StartTime:       entry.StartTime,
		})
	}
	if inv.WorkItemCount > 0 {
		inv.AverageDuration = float64(inv.TotalMinutes) / float64(inv.WorkItemCount)
	}
	return inv
}
