package timetools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/workosdev/workos/internal/timelog"
)

// ─── EstimateTool ───────────────────────────────────────────────────────────

// EstimateTool handles the get_time_estimate MCP tool.
type EstimateTool struct {
	engine *timelog.Engine
}

// NewEstimateTool creates an EstimateTool with the given engine.
func NewEstimateTool(engine *timelog.Engine) *EstimateTool {
	return &EstimateTool{engine: engine}
}

// Definition returns the MCP tool definition for get_time_estimate.
func (t *EstimateTool) Definition() mcp.Tool {
	return mcp.NewTool("get_time_estimate",
		mcp.WithDescription(
			"Estimate how long a piece of work will take, based on historical durations of similar work. "+
				"Modes: base (plain statistics), distraction (adds typical distraction overhead), "+
				"experience (scales by cumulative experience in the knowledge areas), "+
				"collaboration (uses only past work with the given people).",
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("The work to estimate"),
		),
		mcp.WithString("work_type",
			mcp.Required(),
			mcp.Description("Category of work to match against history"),
		),
		mcp.WithString("mode",
			mcp.Description("base | distraction | experience | collaboration (default: base)"),
		),
		mcp.WithString("knowledge_refs",
			mcp.Description("Comma-separated knowledge areas (used by experience mode and similarity matching)"),
		),
		mcp.WithString("people_refs",
			mcp.Description("Comma-separated people (required for collaboration mode)"),
		),
	)
}

// Handle processes the get_time_estimate tool call.
func (t *EstimateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description := req.GetString("description", "")
	if description == "" {
		return mcp.NewToolResultError("'description' is required"), nil
	}
	workType := req.GetString("work_type", "")
	if workType == "" {
		return mcp.NewToolResultError("'work_type' is required"), nil
	}
	knowledgeRefs := listArg(req, "knowledge_refs")
	peopleRefs := listArg(req, "people_refs")

	var (
		estimate *timelog.Estimate
		err      error
	)
	mode := req.GetString("mode", "base")
	switch mode {
	case "base":
		estimate, err = t.engine.GenerateEstimate(description, workType, knowledgeRefs)
	case "distraction":
		estimate, err = t.engine.EstimateWithDistractionOverhead(description, workType, knowledgeRefs)
	case "experience":
		estimate, err = t.engine.ExperienceAdjustedEstimate(description, workType, knowledgeRefs)
	case "collaboration":
		estimate, err = t.engine.CollaborationAdjustedEstimate(description, workType, peopleRefs, knowledgeRefs)
	default:
		return mcp.NewToolResultError(fmt.Sprintf(
			"invalid mode %q: must be one of: base, distraction, experience, collaboration", mode)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to generate estimate: %v", err)), nil
	}
	if estimate == nil {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No historical data for similar %s work; track a few sessions first.", workType)), nil
	}
	return jsonResult(estimate), nil
}

// ─── ComplexityTool ─────────────────────────────────────────────────────────

// ComplexityTool handles the analyze_complexity MCP tool.
type ComplexityTool struct{}

// NewComplexityTool creates a ComplexityTool.
func NewComplexityTool() *ComplexityTool {
	return &ComplexityTool{}
}

// Definition returns the MCP tool definition for analyze_complexity.
func (t *ComplexityTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_complexity",
		mcp.WithDescription(
			"Score a work description's complexity (low/medium/high) from keyword and length rules, "+
				"with the indicators that contributed.",
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("The work description to analyze"),
		),
	)
}

// Handle processes the analyze_complexity tool call.
func (t *ComplexityTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description := req.GetString("description", "")
	if description == "" {
		return mcp.NewToolResultError("'description' is required"), nil
	}
	return jsonResult(timelog.AnalyzeComplexity(description)), nil
}

// ─── AccuracyTool ───────────────────────────────────────────────────────────

// AccuracyTool handles the get_estimation_accuracy MCP tool.
type AccuracyTool struct {
	engine *timelog.Engine
}

// NewAccuracyTool creates an AccuracyTool with the given engine.
func NewAccuracyTool(engine *timelog.Engine) *AccuracyTool {
	return &AccuracyTool{engine: engine}
}

// Definition returns the MCP tool definition for get_estimation_accuracy.
func (t *AccuracyTool) Definition() mcp.Tool {
	return mcp.NewTool("get_estimation_accuracy",
		mcp.WithDescription(
			"Replay history to measure how accurate estimates would have been, "+
				"with recurring over/underestimate patterns per work type.",
		),
		mcp.WithNumber("tolerance_pct",
			mcp.Description("Error percentage still counted as accurate (default: 20)"),
		),
	)
}

// Handle processes the get_estimation_accuracy tool call.
func (t *AccuracyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tolerance := req.GetFloat("tolerance_pct", 20)
	if tolerance < 0 {
		return mcp.NewToolResultError("'tolerance_pct' must be non-negative"), nil
	}

	accuracy, err := t.engine.AnalyzeEstimationAccuracy(tolerance)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to analyze accuracy: %v", err)), nil
	}
	if accuracy.TotalEstimates == 0 {
		return mcp.NewToolResultText("Not enough completed work to analyze estimation accuracy."), nil
	}
	return jsonResult(accuracy), nil
}
