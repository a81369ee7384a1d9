package timelog

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Engine is the time intelligence engine. All public operations load the
// full document from the store, compute or mutate, and (for mutations)
// save it back.
type Engine struct {
	store Store
	now   func() time.Time
}

// New creates an Engine over the given store.
func New(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// newID builds a unique identifier like "time_20260829_153042_a1b2c3".
func (e *Engine) newID(prefix string) string {
	ts := e.now().UTC().Format("20060102_150405")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%s_%s_%s", prefix, ts, suffix)
}

func (e *Engine) timestamp() string {
	return e.now().UTC().Format(time.RFC3339)
}

// StartWork creates a new open entry and returns its ID. The work type is
// free text and is not validated.
func (e *Engine) StartWork(description, workType string, knowledgeRefs, peopleRefs []string) (string, error) {
	if workType == "" {
		workType = "general"
	}
	if knowledgeRefs == nil {
		knowledgeRefs = []string{}
	}
	if peopleRefs == nil {
		peopleRefs = []string{}
	}

	start := e.timestamp()
	entry := Entry{
		ID:              e.newID("time"),
		StartTime:       &start,
		WorkDescription: description,
		WorkType:        workType,
		KnowledgeRefs:   knowledgeRefs,
		PeopleRefs:      peopleRefs,
		Distractions:    []Distraction{},
	}

	doc, err := e.store.Load()
	if err != nil {
		return "", err
	}
	doc.Entries = append(doc.Entries, entry)
	if err := e.store.Save(doc); err != nil {
		return "", err
	}
	return entry.ID, nil
}

// EndWork closes an entry: sets the end time, computes the duration in
// whole minutes (rounded), and records completion notes. Returns nil if
// the ID is unknown.
func (e *Engine) EndWork(workID, completionNotes string, completionPercentage *int) (*Entry, error) {
	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	idx := findEntry(doc, workID)
	if idx < 0 {
		return nil, nil
	}
	entry := &doc.Entries[idx]

	end := e.now().UTC()
	endStr := end.Format(time.RFC3339)
	entry.EndTime = &endStr

	if entry.StartTime != nil {
		if start, perr := time.Parse(time.RFC3339, *entry.StartTime); perr == nil {
			minutes := int(math.Round(end.Sub(start).Minutes()))
			entry.DurationMinutes = &minutes
		}
	}

	entry.Notes = completionNotes
	if completionPercentage != nil {
		entry.CompletionPercentage = completionPercentage
	}

	if err := e.store.Save(doc); err != nil {
		return nil, err
	}
	result := *entry
	return &result, nil
}

// RecordDistraction appends a distraction to an entry. There is no guard
// against recording after EndWork — late bookkeeping is allowed. Returns
// false if the ID is unknown.
func (e *Engine) RecordDistraction(workID, distractionType string, durationMinutes int, description string) (bool, error) {
	doc, err := e.store.Load()
	if err != nil {
		return false, err
	}

	idx := findEntry(doc, workID)
	if idx < 0 {
		return false, nil
	}

	doc.Entries[idx].Distractions = append(doc.Entries[idx].Distractions, Distraction{
		Type:            distractionType,
		DurationMinutes: durationMinutes,
		Description:     description,
		Timestamp:       e.timestamp(),
	})

	if err := e.store.Save(doc); err != nil {
		return false, err
	}
	return true, nil
}

// Entry returns a single entry by ID, or nil if unknown.
func (e *Engine) Entry(workID string) (*Entry, error) {
	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	idx := findEntry(doc, workID)
	if idx < 0 {
		return nil, nil
	}
	entry := doc.Entries[idx]
	return &entry, nil
}

// AllEntries returns every entry in stored order.
func (e *Engine) AllEntries() ([]Entry, error) {
	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

// EntriesByWorkType returns entries whose work type matches exactly.
func (e *Engine) EntriesByWorkType(workType string) ([]Entry, error) {
	return e.filterEntries(func(entry *Entry) bool {
		return entry.WorkType == workType
	})
}

// EntriesByKnowledge returns entries linked to the given knowledge ref.
func (e *Engine) EntriesByKnowledge(knowledgeRef string) ([]Entry, error) {
	return e.filterEntries(func(entry *Entry) bool {
		return containsRef(entry.KnowledgeRefs, knowledgeRef)
	})
}

// EntriesByPerson returns entries linked to the given person ref.
func (e *Engine) EntriesByPerson(personRef string) ([]Entry, error) {
	return e.filterEntries(func(entry *Entry) bool {
		return containsRef(entry.PeopleRefs, personRef)
	})
}

// LinkKnowledge merges knowledge refs into an existing entry. Returns
// false if the ID is unknown. References are plain strings; they are never
// validated against the knowledge base.
func (e *Engine) LinkKnowledge(workID string, knowledgeRefs []string) (bool, error) {
	return e.mergeRefs(workID, knowledgeRefs, func(entry *Entry, refs []string) {
		entry.KnowledgeRefs = refs
	}, func(entry *Entry) []string {
		return entry.KnowledgeRefs
	})
}

// LinkPeople merges people refs into an existing entry. Returns false if
// the ID is unknown.
func (e *Engine) LinkPeople(workID string, peopleRefs []string) (bool, error) {
	return e.mergeRefs(workID, peopleRefs, func(entry *Entry, refs []string) {
		entry.PeopleRefs = refs
	}, func(entry *Entry) []string {
		return entry.PeopleRefs
	})
}

func (e *Engine) mergeRefs(workID string, newRefs []string, set func(*Entry, []string), get func(*Entry) []string) (bool, error) {
	doc, err := e.store.Load()
	if err != nil {
		return false, err
	}

	idx := findEntry(doc, workID)
	if idx < 0 {
		return false, nil
	}

	merged := get(&doc.Entries[idx])
	for _, ref := range newRefs {
		if !containsRef(merged, ref) {
			merged = append(merged, ref)
		}
	}
	set(&doc.Entries[idx], merged)

	if err := e.store.Save(doc); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) filterEntries(keep func(*Entry) bool) ([]Entry, error) {
	doc, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	var result []Entry
	for i := range doc.Entries {
		if keep(&doc.Entries[i]) {
			result = append(result, doc.Entries[i])
		}
	}
	return result, nil
}

func findEntry(doc *Document, workID string) int {
	for i := range doc.Entries {
		if doc.Entries[i].ID == workID {
			return i
		}
	}
	return -1
}

func containsRef(refs []string, ref string) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}
