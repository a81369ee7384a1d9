package timelog

import (
	"fmt"
	"sort"
	"time"
)

var dayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DistractionPatterns tallies recorded distractions by hour of day, day of
// week (0=Monday), work type, and distraction type, and reports the worst
// bucket of each dimension. Zero-valued when no distractions exist.
type DistractionPatterns struct {
	TotalDistractions     int            `json:"total_distractions"`
	ByHour                map[int]int    `json:"by_time_of_day"`
	ByDayOfWeek           map[int]int    `json:"by_day_of_week"`
	ByWorkType            map[string]int `json:"by_work_type"`
	ByDistractionType     map[string]int `json:"by_distraction_type"`
	MostDisruptiveHour    *int           `json:"most_disruptive_hour"`
	MostDisruptiveDay     *int           `json:"most_disruptive_day"`
	MostDisruptiveDayName string         `json:"most_disruptive_day_name,omitempty"`
	MostCommonType        string         `json:"most_common_distraction_type,omitempty"`
}

// AnalyzeDistractionPatterns mines distraction records, optionally limited
// to a recency window in days (0 = all time) and a work type (empty = all).
func (e *Engine) AnalyzeDistractionPatterns(days int, workType string) (*DistractionPatterns, error) {
	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	var cutoff time.Time
	if days > 0 {
		cutoff = e.now().UTC().AddDate(0, 0, -days)
	}

	patterns := &DistractionPatterns{
		ByHour:            map[int]int{},
		ByDayOfWeek:       map[int]int{},
		ByWorkType:        map[string]int{},
		ByDistractionType: map[string]int{},
	}
	for h := 0; h < 24; h++ {
		patterns.ByHour[h] = 0
	}
	for d := 0; d < 7; d++ {
		patterns.ByDayOfWeek[d] = 0
	}

	for i := range doc.Entries {
		entry := &doc.Entries[i]
		if days > 0 {
			if entry.StartTime == nil {
				continue
			}
			start, perr := time.Parse(time.RFC3339, *entry.StartTime)
			if perr != nil || start.Before(cutoff) {
				continue
			}
		}
		if workType != "" && entry.WorkType != workType {
			continue
		}

		for _, d := range entry.Distractions {
			patterns.TotalDistractions++

			if ts, perr := time.Parse(time.RFC3339, d.Timestamp); perr == nil {
				patterns.ByHour[ts.Hour()]++
				patterns.ByDayOfWeek[mondayWeekday(ts)]++
			}

			patterns.ByWorkType[entry.WorkType]++

			dtype := d.Type
			if dtype == "" {
				dtype = "unknown"
			}
			patterns.ByDistractionType[dtype]++
		}
	}

	if patterns.TotalDistractions > 0 {
		hour := argmaxInt(patterns.ByHour, 24)
		day := argmaxInt(patterns.ByDayOfWeek, 7)
		patterns.MostDisruptiveHour = &hour
		patterns.MostDisruptiveDay = &day
		patterns.MostDisruptiveDayName = dayNames[day]
	}
	if len(patterns.ByDistractionType) > 0 {
		patterns.MostCommonType = argmaxString(patterns.ByDistractionType)
	}
	return patterns, nil
}

// mondayWeekday maps time.Weekday (Sunday=0) to the 0=Monday..6=Sunday
// convention used throughout the analytics.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// argmaxInt returns the smallest key with the maximum count, scanning keys
// 0..n-1 in order so ties resolve deterministically.
func argmaxInt(counts map[int]int, n int) int {
	best, bestCount := 0, -1
	for k := 0; k < n; k++ {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}

// argmaxString returns the key with the maximum count; ties resolve to the
// lexicographically smallest key for determinism.
func argmaxString(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, bestCount := "", -1
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}

// ExpertiseArea is one knowledge area ranked by time investment.
type ExpertiseArea struct {
	KnowledgeRef  string `json:"knowledge_ref"`
	TotalMinutes  int    `json:"total_minutes"`
	WorkItemCount int    `json:"work_item_count"`
	Rank          int    `json:"rank"`
}

// RankExpertise aggregates completed durations per knowledge ref (an entry
// with multiple refs contributes its full duration to each), filters by a
// minimum total, and ranks descending by time.
func (e *Engine) RankExpertise(minMinutes int) ([]ExpertiseArea, error) {
	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	totals := map[string]*ExpertiseArea{}
	var order []string
	for i := range doc.Entries {
		entry := &doc.Entries[i]
		if !entry.Completed() {
			continue
		}
		for _, ref := range entry.KnowledgeRefs {
			area, ok := totals[ref]
			if !ok {
				area = &ExpertiseArea{KnowledgeRef: ref}
				totals[ref] = area
				order = append(order, ref)
			}
			area.TotalMinutes += *entry.DurationMinutes
			area.WorkItemCount++
		}
	}

	var ranked []ExpertiseArea
	for _, ref := range order {
		if totals[ref].TotalMinutes >= minMinutes {
			ranked = append(ranked, *totals[ref])
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalMinutes > ranked[j].TotalMinutes
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// TrendPeriod is one time bucket in a trend series.
type TrendPeriod struct {
	Period  string `json:"period"`
	Minutes int    `json:"minutes"`
}

// TimeTrends groups completed time into chronological buckets and
// classifies the overall direction.
type TimeTrends struct {
	KnowledgeRef   string        `json:"knowledge_ref"`
	PeriodData     []TrendPeriod `json:"period_data"`
	TotalMinutes   int           `json:"total_minutes"`
	TrendDirection string        `json:"trend_direction"` // increasing | decreasing | stable
	DaysAnalyzed   int           `json:"days_analyzed"`
	GroupBy        string        `json:"group_by"`
}

// TimeTrendsByKnowledge buckets completed entries within the window by
// day/week/month and compares the first half of buckets to the second to
// classify the trend (strict ±20% threshold). Empty knowledgeRef analyzes
// all areas.
func (e *Engine) TimeTrendsByKnowledge(knowledgeRef string, days int, groupBy string) (*TimeTrends, error) {
	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 90
	}
	cutoff := e.now().UTC().AddDate(0, 0, -days)

	buckets := map[string]int{}
	for i := range doc.Entries {
		entry := &doc.Entries[i]
		if !entry.Completed() || entry.StartTime == nil {
			continue
		}
		start, perr := time.Parse(time.RFC3339, *entry.StartTime)
		if perr != nil || start.Before(cutoff) {
			continue
		}
		if knowledgeRef != "" && !containsRef(entry.KnowledgeRefs, knowledgeRef) {
			continue
		}
		buckets[periodKey(start, groupBy)] += *entry.DurationMinutes
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	trends := &TimeTrends{
		KnowledgeRef:   knowledgeRef,
		PeriodData:     []TrendPeriod{},
		TrendDirection: "stable",
		DaysAnalyzed:   days,
		GroupBy:        groupBy,
	}
	if trends.KnowledgeRef == "" {
		trends.KnowledgeRef = "all"
	}
	if trends.GroupBy != "day" && trends.GroupBy != "week" && trends.GroupBy != "month" {
		trends.GroupBy = "week"
	}

	for _, k := range keys {
		trends.PeriodData = append(trends.PeriodData, TrendPeriod{Period: k, Minutes: buckets[k]})
		trends.TotalMinutes += buckets[k]
	}

	if len(keys) >= 2 {
		mid := len(keys) / 2
		firstAvg := averageMinutes(trends.PeriodData[:mid])
		secondAvg := averageMinutes(trends.PeriodData[mid:])
		switch {
		case secondAvg > firstAvg*1.2:
			trends.TrendDirection = "increasing"
		case secondAvg < firstAvg*0.8:
			trends.TrendDirection = "decreasing"
		}
	}
	return trends, nil
}

// periodKey formats a chronologically sortable bucket key.
func periodKey(t time.Time, groupBy string) string {
	switch groupBy {
	case "day":
		return t.Format("2006-01-02")
	case "month":
		return t.Format("2006-01")
	default: // week
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
}

func averageMinutes(periods []TrendPeriod) float64 {
	if len(periods) == 0 {
		return 0
	}
	sum := 0
	for _, p := range periods {
		sum += p.Minutes
	}
	return float64(sum) / float64(len(periods))
}

// Collaborator is one person ranked by shared work time.
type Collaborator struct {
	PersonRef     string `json:"person_ref"`
	TotalMinutes  int    `json:"total_minutes"`
	WorkItemCount int    `json:"work_item_count"`
	Rank          int    `json:"rank"`
}

// CollaborationPatterns splits completed time into collaborative (any
// people refs) and solo, with per-person and per-work-type aggregates.
type CollaborationPatterns struct {
	FrequentCollaborators []Collaborator `json:"frequent_collaborators"`
	ByWorkType            map[string]int `json:"collaboration_by_work_type"`
	CollaborationTime     int            `json:"total_collaboration_time"`
	SoloTime              int            `json:"solo_work_time"`
	CollaborationPct      float64        `json:"collaboration_percentage"`
	DaysAnalyzed          int            `json:"days_analyzed"`
}

// IdentifyCollaborationPatterns analyzes who work is shared with and how
// much, optionally limited to a recency window in days (0 = all time).
func (e *Engine) IdentifyCollaborationPatterns(days int) (*CollaborationPatterns, error) {
	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	var cutoff time.Time
	if days > 0 {
		cutoff = e.now().UTC().AddDate(0, 0, -days)
	}

	patterns := &CollaborationPatterns{
		FrequentCollaborators: []Collaborator{},
		ByWorkType:            map[string]int{},
		DaysAnalyzed:          days,
	}

	perPerson := map[string]*Collaborator{}
	var order []string
	for i := range doc.Entries {
		entry := &doc.Entries[i]
		if !entry.Completed() {
			continue
		}
		if days > 0 {
			if entry.StartTime == nil {
				continue
			}
			start, perr := time.Parse(time.RFC3339, *entry.StartTime)
			if perr != nil || start.Before(cutoff) {
				continue
			}
		}

		duration := *entry.DurationMinutes
		if len(entry.PeopleRefs) == 0 {
			patterns.SoloTime += duration
			continue
		}

		patterns.CollaborationTime += duration
		patterns.ByWorkType[entry.WorkType] += duration
		for _, ref := range entry.PeopleRefs {
			c, ok := perPerson[ref]
			if !ok {
				c = &Collaborator{PersonRef: ref}
				perPerson[ref] = c
				order = append(order, ref)
			}
			c.TotalMinutes += duration
			c.WorkItemCount++
		}
	}

	for _, ref := range order {
		patterns.FrequentCollaborators = append(patterns.FrequentCollaborators, *perPerson[ref])
	}
	sort.SliceStable(patterns.FrequentCollaborators, func(i, j int) bool {
		return patterns.FrequentCollaborators[i].TotalMinutes > patterns.FrequentCollaborators[j].TotalMinutes
	})
	for i := range patterns.FrequentCollaborators {
		patterns.FrequentCollaborators[i].Rank = i + 1
	}

	total := patterns.CollaborationTime + patterns.SoloTime
	if total > 0 {
		patterns.CollaborationPct = float64(patterns.CollaborationTime) / float64(total) * 100
	}
	return patterns, nil
}

// EntryCollaboration categorizes a single entry as solo or collaborative.
type EntryCollaboration struct {
	WorkID         string   `json:"work_id"`
	Category       string   `json:"category"` // solo | collaborative
	PeopleInvolved []string `json:"people_involved"`
	PeopleCount    int      `json:"people_count"`
}

// CategorizeEntry returns the solo/collaborative classification of one
// entry, or nil if the ID is unknown.
func (e *Engine) CategorizeEntry(workID string) (*EntryCollaboration, error) {
	entry, err := e.Entry(workID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	result := &EntryCollaboration{
		WorkID:         workID,
		Category:       "solo",
		PeopleInvolved: []string{},
	}
	if len(entry.PeopleRefs) > 0 {
		result.Category = "collaborative"
		result.PeopleInvolved = entry.PeopleRefs
		result.PeopleCount = len(entry.PeopleRefs)
	}
	return result, nil
}

// CategoryStats summarizes one side of the solo/collaborative split.
type CategoryStats struct {
	TotalMinutes    int            `json:"total_minutes"`
	WorkItemCount   int            `json:"work_item_count"`
	AverageDuration float64        `json:"average_duration"`
	PctOfTotalTime  float64        `json:"percentage_of_total_time"`
	ByWorkType      map[string]int `json:"by_work_type"`
}

// CollaborationBreakdown is the full solo-vs-collaborative analysis over
// all completed entries.
type CollaborationBreakdown struct {
	Solo          CategoryStats `json:"solo_work"`
	Collaborative CategoryStats `json:"collaborative_work"`
	TotalMinutes  int           `json:"total_minutes"`
	TotalItems    int           `json:"total_work_item_count"`
}

// CategorizeByCollaboration aggregates all completed work into solo and
// collaborative categories with per-work-type sub-totals.
func (e *Engine) CategorizeByCollaboration() (*CollaborationBreakdown, error) {
	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	breakdown := &CollaborationBreakdown{
		Solo:          CategoryStats{ByWorkType: map[string]int{}},
		Collaborative: CategoryStats{ByWorkType: map[string]int{}},
	}

	for i := range doc.Entries {
		entry := &doc.Entries[i]
		if !entry.Completed() {
			continue
		}
		duration := *entry.DurationMinutes

		stats := &breakdown.Solo
		if len(entry.PeopleRefs) > 0 {
			stats = &breakdown.Collaborative
		}
		stats.TotalMinutes += duration
		stats.WorkItemCount++
		stats.ByWorkType[entry.WorkType] += duration
	}

	breakdown.TotalMinutes = breakdown.Solo.TotalMinutes + breakdown.Collaborative.TotalMinutes
	breakdown.TotalItems = breakdown.Solo.WorkItemCount + breakdown.Collaborative.WorkItemCount

	finalize := func(stats *CategoryStats) {
		if stats.WorkItemCount > 0 {
			stats.AverageDuration = float64(stats.TotalMinutes) / float64(stats.WorkItemCount)
		}
		if breakdown.TotalMinutes > 0 {
			stats.PctOfTotalTime = float64(stats.TotalMinutes) / float64(breakdown.TotalMinutes) * 100
		}
	}
	finalize(&breakdown.Solo)
	finalize(&breakdown.Collaborative)

	return breakdown, nil
}
