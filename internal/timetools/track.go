package timetools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/workosdev/workos/internal/timelog"
)

// ─── StartWorkTool ──────────────────────────────────────────────────────────

// StartWorkTool handles the start_work MCP tool.
type StartWorkTool struct {
	engine *timelog.Engine
}

// NewStartWorkTool creates a StartWorkTool with the given engine.
func NewStartWorkTool(engine *timelog.Engine) *StartWorkTool {
	return &StartWorkTool{engine: engine}
}

// Definition returns the MCP tool definition for start_work.
func (t *StartWorkTool) Definition() mcp.Tool {
	return mcp.NewTool("start_work",
		mcp.WithDescription(
			"Start tracking a work session. Returns the work ID to pass to end_work and record_distraction.",
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What you are working on"),
		),
		mcp.WithString("work_type",
			mcp.Description("Category of work: technical, writing, meeting, ... (default: general)"),
		),
		mcp.WithString("knowledge_refs",
			mcp.Description("Comma-separated knowledge areas this work relates to"),
		),
		mcp.WithString("people_refs",
			mcp.Description("Comma-separated people involved in this work"),
		),
	)
}

// Handle processes the start_work tool call.
func (t *StartWorkTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description := req.GetString("description", "")
	if description == "" {
		return mcp.NewToolResultError("'description' is required"), nil
	}

	id, err := t.engine.StartWork(
		description,
		req.GetString("work_type", ""),
		listArg(req, "knowledge_refs"),
		listArg(req, "people_refs"),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start work: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Work tracking started (ID: %s): %s", id, description)), nil
}

// ─── EndWorkTool ────────────────────────────────────────────────────────────

// EndWorkTool handles the end_work MCP tool.
type EndWorkTool struct {
	engine *timelog.Engine
}

// NewEndWorkTool creates an EndWorkTool with the given engine.
func NewEndWorkTool(engine *timelog.Engine) *EndWorkTool {
	return &EndWorkTool{engine: engine}
}

// Definition returns the MCP tool definition for end_work.
func (t *EndWorkTool) Definition() mcp.Tool {
	return mcp.NewTool("end_work",
		mcp.WithDescription(
			"End a work session. Records the end time and the rounded duration in minutes.",
		),
		mcp.WithString("work_id",
			mcp.Required(),
			mcp.Description("Work ID returned by start_work"),
		),
		mcp.WithString("completion_notes",
			mcp.Description("Notes about what was accomplished"),
		),
		mcp.WithNumber("completion_percentage",
			mcp.Description("How complete the work is (0-100)"),
		),
	)
}

// Handle processes the end_work tool call.
func (t *EndWorkTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workID := req.GetString("work_id", "")
	if workID == "" {
		return mcp.NewToolResultError("'work_id' is required"), nil
	}

	var pct *int
	if v, ok := req.GetArguments()["completion_percentage"].(float64); ok {
		p := int(v)
		pct = &p
	}

	entry, err := t.engine.EndWork(workID, req.GetString("completion_notes", ""), pct)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to end work: %v", err)), nil
	}
	if entry == nil {
		return mcp.NewToolResultError(fmt.Sprintf("work item %q not found", workID)), nil
	}

	duration := 0
	if entry.DurationMinutes != nil {
		duration = *entry.DurationMinutes
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Work %s ended after %d minutes: %s", entry.ID, duration, entry.WorkDescription)), nil
}

// ─── RecordDistractionTool ──────────────────────────────────────────────────

// RecordDistractionTool handles the record_distraction MCP tool.
type RecordDistractionTool struct {
	engine *timelog.Engine
}

// NewRecordDistractionTool creates a RecordDistractionTool with the given engine.
func NewRecordDistractionTool(engine *timelog.Engine) *RecordDistractionTool {
	return &RecordDistractionTool{engine: engine}
}

// Definition returns the MCP tool definition for record_distraction.
func (t *RecordDistractionTool) Definition() mcp.Tool {
	return mcp.NewTool("record_distraction",
		mcp.WithDescription(
			"Record a distraction against a work session (meeting overrun, interruption, context switch).",
		),
		mcp.WithString("work_id",
			mcp.Required(),
			mcp.Description("Work ID the distraction happened during"),
		),
		mcp.WithString("distraction_type",
			mcp.Required(),
			mcp.Description("Kind of distraction, e.g. meeting, email, interruption"),
		),
		mcp.WithNumber("duration_minutes",
			mcp.Required(),
			mcp.Description("How long the distraction lasted"),
		),
		mcp.WithString("description",
			mcp.Description("What happened"),
		),
	)
}

// Handle processes the record_distraction tool call.
func (t *RecordDistractionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workID := req.GetString("work_id", "")
	if workID == "" {
		return mcp.NewToolResultError("'work_id' is required"), nil
	}
	distractionType := req.GetString("distraction_type", "")
	if distractionType == "" {
		return mcp.NewToolResultError("'distraction_type' is required"), nil
	}
	minutes := intArg(req, "duration_minutes", 0)

	ok, err := t.engine.RecordDistraction(workID, distractionType, minutes, req.GetString("description", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to record distraction: %v", err)), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("work item %q not found", workID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Distraction recorded on %s: %s (%d minutes)", workID, distractionType, minutes)), nil
}

// ─── HistoryTool ────────────────────────────────────────────────────────────

// HistoryTool handles the get_time_history MCP tool.
type HistoryTool struct {
	engine *timelog.Engine
}

// NewHistoryTool creates a HistoryTool with the given engine.
func NewHistoryTool(engine *timelog.Engine) *HistoryTool {
	return &HistoryTool{engine: engine}
}

// Definition returns the MCP tool definition for get_time_history.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("get_time_history",
		mcp.WithDescription(
			"List tracked work entries, optionally filtered by work type, knowledge area, or person. "+
				"Filters are mutually exclusive; the first one provided wins.",
		),
		mcp.WithString("work_type",
			mcp.Description("Only entries of this work type"),
		),
		mcp.WithString("knowledge_ref",
			mcp.Description("Only entries linked to this knowledge area"),
		),
		mcp.WithString("person_ref",
			mcp.Description("Only entries involving this person"),
		),
	)
}

// Handle processes the get_time_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		entries []timelog.Entry
		err     error
	)
	switch {
	case req.GetString("work_type", "") != "":
		entries, err = t.engine.EntriesByWorkType(req.GetString("work_type", ""))
	case req.GetString("knowledge_ref", "") != "":
		entries, err = t.engine.EntriesByKnowledge(req.GetString("knowledge_ref", ""))
	case req.GetString("person_ref", "") != "":
		entries, err = t.engine.EntriesByPerson(req.GetString("person_ref", ""))
	default:
		entries, err = t.engine.AllEntries()
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load history: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No work entries recorded yet."), nil
	}
	return jsonResult(entries), nil
}

// ─── LinkWorkTool ───────────────────────────────────────────────────────────

// LinkWorkTool handles the link_work MCP tool.
type LinkWorkTool struct {
	engine *timelog.Engine
}

// NewLinkWorkTool creates a LinkWorkTool with the given engine.
func NewLinkWorkTool(engine *timelog.Engine) *LinkWorkTool {
	return &LinkWorkTool{engine: engine}
}

// Definition returns the MCP tool definition for link_work.
func (t *LinkWorkTool) Definition() mcp.Tool {
	return mcp.NewTool("link_work",
		mcp.WithDescription(
			"Link an existing work entry to knowledge areas and/or people. "+
				"References merge with existing ones; duplicates are dropped.",
		),
		mcp.WithString("work_id",
			mcp.Required(),
			mcp.Description("Work ID to link"),
		),
		mcp.WithString("knowledge_refs",
			mcp.Description("Comma-separated knowledge areas to add"),
		),
		mcp.WithString("people_refs",
			mcp.Description("Comma-separated people to add"),
		),
	)
}

// Handle processes the link_work tool call.
func (t *LinkWorkTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workID := req.GetString("work_id", "")
	if workID == "" {
		return mcp.NewToolResultError("'work_id' is required"), nil
	}
	knowledgeRefs := listArg(req, "knowledge_refs")
	peopleRefs := listArg(req, "people_refs")
	if len(knowledgeRefs) == 0 && len(peopleRefs) == 0 {
		return mcp.NewToolResultError("provide 'knowledge_refs' and/or 'people_refs'"), nil
	}

	if len(knowledgeRefs) > 0 {
		ok, err := t.engine.LinkKnowledge(workID, knowledgeRefs)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to link knowledge: %v", err)), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("work item %q not found", workID)), nil
		}
	}
	if len(peopleRefs) > 0 {
		ok, err := t.engine.LinkPeople(workID, peopleRefs)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to link people: %v", err)), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("work item %q not found", workID)), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Linked %s to %d knowledge area(s) and %d person/people", workID, len(knowledgeRefs), len(peopleRefs))), nil
}
