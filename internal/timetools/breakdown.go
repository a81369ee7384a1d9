package timetools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/workosdev/workos/internal/timelog"
)

// ─── SuggestBreakdownTool ───────────────────────────────────────────────────

// SuggestBreakdownTool handles the suggest_work_breakdown MCP tool.
type SuggestBreakdownTool struct {
	engine *timelog.Engine
}

// NewSuggestBreakdownTool creates a SuggestBreakdownTool with the given engine.
func NewSuggestBreakdownTool(engine *timelog.Engine) *SuggestBreakdownTool {
	return &SuggestBreakdownTool{engine: engine}
}

// Definition returns the MCP tool definition for suggest_work_breakdown.
func (t *SuggestBreakdownTool) Definition() mcp.Tool {
	return mcp.NewTool("suggest_work_breakdown",
		mcp.WithDescription(
			"Decompose complex work into estimated chunks with dependencies. "+
				"Low-complexity work gets no breakdown. Pass the returned JSON to "+
				"accept_work_breakdown to create planned entries.",
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("The work to break down"),
		),
		mcp.WithString("work_type",
			mcp.Description("Category of work: technical, writing, meeting, ... (default: general)"),
		),
		mcp.WithString("knowledge_refs",
			mcp.Description("Comma-separated knowledge areas for the chunks"),
		),
	)
}

// Handle processes the suggest_work_breakdown tool call.
func (t *SuggestBreakdownTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description := req.GetString("description", "")
	if description == "" {
		return mcp.NewToolResultError("'description' is required"), nil
	}

	workType := req.GetString("work_type", "general")
	breakdown, err := t.engine.SuggestBreakdown(description, workType, listArg(req, "knowledge_refs"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to suggest breakdown: %v", err)), nil
	}
	if breakdown == nil {
		return mcp.NewToolResultText(
			"This work looks like a single focused item; no breakdown needed."), nil
	}
	return jsonResult(breakdown), nil
}

// ─── AcceptBreakdownTool ────────────────────────────────────────────────────

// AcceptBreakdownTool handles the accept_work_breakdown MCP tool.
type AcceptBreakdownTool struct {
	engine *timelog.Engine
}

// NewAcceptBreakdownTool creates an AcceptBreakdownTool with the given engine.
func NewAcceptBreakdownTool(engine *timelog.Engine) *AcceptBreakdownTool {
	return &AcceptBreakdownTool{engine: engine}
}

// Definition returns the MCP tool definition for accept_work_breakdown.
func (t *AcceptBreakdownTool) Definition() mcp.Tool {
	return mcp.NewTool("accept_work_breakdown",
		mcp.WithDescription(
			"Accept a breakdown from suggest_work_breakdown: persists it and creates one planned "+
				"(not yet started) work entry per chunk.",
		),
		mcp.WithString("breakdown_json",
			mcp.Required(),
			mcp.Description("The breakdown JSON exactly as returned by suggest_work_breakdown"),
		),
	)
}

// Handle processes the accept_work_breakdown tool call.
func (t *AcceptBreakdownTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := req.GetString("breakdown_json", "")
	if raw == "" {
		return mcp.NewToolResultError("'breakdown_json' is required"), nil
	}

	var breakdown timelog.Breakdown
	if err := json.Unmarshal([]byte(raw), &breakdown); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("'breakdown_json' is not valid breakdown JSON: %v", err)), nil
	}
	if breakdown.BreakdownID == "" || len(breakdown.Chunks) == 0 {
		return mcp.NewToolResultError("'breakdown_json' must carry a breakdown_id and at least one chunk"), nil
	}

	ids, err := t.engine.AcceptBreakdown(&breakdown)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to accept breakdown: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Breakdown %s accepted: %d planned entries created (%v)", breakdown.BreakdownID, len(ids), ids)), nil
}

// ─── BreakdownProgressTool ──────────────────────────────────────────────────

// BreakdownProgressTool handles the get_breakdown_progress MCP tool.
type BreakdownProgressTool struct {
	engine *timelog.Engine
}

// NewBreakdownProgressTool creates a BreakdownProgressTool with the given engine.
func NewBreakdownProgressTool(engine *timelog.Engine) *BreakdownProgressTool {
	return &BreakdownProgressTool{engine: engine}
}

// Definition returns the MCP tool definition for get_breakdown_progress.
func (t *BreakdownProgressTool) Definition() mcp.Tool {
	return mcp.NewTool("get_breakdown_progress",
		mcp.WithDescription(
			"Report progress on an accepted breakdown: completed chunk counts, actual vs estimated "+
				"time, and per-chunk variance.",
		),
		mcp.WithString("breakdown_id",
			mcp.Required(),
			mcp.Description("Breakdown ID from suggest_work_breakdown"),
		),
	)
}

// Handle processes the get_breakdown_progress tool call.
func (t *BreakdownProgressTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	breakdownID := req.GetString("breakdown_id", "")
	if breakdownID == "" {
		return mcp.NewToolResultError("'breakdown_id' is required"), nil
	}

	progress, err := t.engine.BreakdownProgress(breakdownID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load progress: %v", err)), nil
	}
	if progress == nil {
		return mcp.NewToolResultError(fmt.Sprintf("breakdown %q not found", breakdownID)), nil
	}
	aggregate, err := t.engine.AggregateBreakdown(breakdownID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to aggregate breakdown: %v", err)), nil
	}

	return jsonResult(struct {
		Progress     *timelog.BreakdownProgress `json:"progress"`
		ChunkResults []timelog.ChunkResult      `json:"chunk_results"`
	}{progress, aggregate.ChunkResults}), nil
}
