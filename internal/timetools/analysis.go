package timetools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/workosdev/workos/internal/timelog"
)

// ─── DistractionAnalysisTool ────────────────────────────────────────────────

// DistractionAnalysisTool handles the get_distraction_analysis MCP tool.
type DistractionAnalysisTool struct {
	engine *timelog.Engine
}

// NewDistractionAnalysisTool creates a DistractionAnalysisTool with the given engine.
func NewDistractionAnalysisTool(engine *timelog.Engine) *DistractionAnalysisTool {
	return &DistractionAnalysisTool{engine: engine}
}

// Definition returns the MCP tool definition for get_distraction_analysis.
func (t *DistractionAnalysisTool) Definition() mcp.Tool {
	return mcp.NewTool("get_distraction_analysis",
		mcp.WithDescription(
			"Analyze recorded distractions: when they happen (hour, weekday), what kind, which work "+
				"types they hit, and the duration overhead they add.",
		),
		mcp.WithNumber("days",
			mcp.Description("Only look at the last N days (default: all time)"),
		),
		mcp.WithString("work_type",
			mcp.Description("Only distractions during this work type"),
		),
	)
}

// Handle processes the get_distraction_analysis tool call.
func (t *DistractionAnalysisTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := intArg(req, "days", 0)
	workType := req.GetString("work_type", "")

	patterns, err := t.engine.AnalyzeDistractionPatterns(days, workType)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to analyze distractions: %v", err)), nil
	}
	impact, err := t.engine.CalculateDistractionImpact(workType)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to calculate impact: %v", err)), nil
	}
	if patterns.TotalDistractions == 0 {
		return mcp.NewToolResultText("No distractions recorded yet."), nil
	}

	return jsonResult(struct {
		Patterns *timelog.DistractionPatterns `json:"patterns"`
		Impact   *timelog.DistractionImpact   `json:"impact"`
	}{patterns, impact}), nil
}

// ─── ExpertiseAnalysisTool ──────────────────────────────────────────────────

// ExpertiseAnalysisTool handles the get_expertise_analysis MCP tool.
type ExpertiseAnalysisTool struct {
	engine *timelog.Engine
}

// NewExpertiseAnalysisTool creates an ExpertiseAnalysisTool with the given engine.
func NewExpertiseAnalysisTool(engine *timelog.Engine) *ExpertiseAnalysisTool {
	return &ExpertiseAnalysisTool{engine: engine}
}

// Definition returns the MCP tool definition for get_expertise_analysis.
func (t *ExpertiseAnalysisTool) Definition() mcp.Tool {
	return mcp.NewTool("get_expertise_analysis",
		mcp.WithDescription(
			"Rank knowledge areas by total time invested. Pass knowledge_ref for a detailed "+
				"investment report on one area instead.",
		),
		mcp.WithString("knowledge_ref",
			mcp.Description("Report on this single knowledge area"),
		),
		mcp.WithNumber("min_minutes",
			mcp.Description("Minimum invested minutes for an area to rank (default: 60)"),
		),
	)
}

// Handle processes the get_expertise_analysis tool call.
func (t *ExpertiseAnalysisTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if ref := req.GetString("knowledge_ref", ""); ref != "" {
		investment, err := t.engine.KnowledgeTimeInvestment(ref)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load investment: %v", err)), nil
		}
		return jsonResult(investment), nil
	}

	ranked, err := t.engine.RankExpertise(intArg(req, "min_minutes", 60))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to rank expertise: %v", err)), nil
	}
	if len(ranked) == 0 {
		return mcp.NewToolResultText(
			"No knowledge area has enough invested time yet. Link work to knowledge areas as you track it."), nil
	}
	return jsonResult(ranked), nil
}

// ─── CollaborationAnalysisTool ──────────────────────────────────────────────

// CollaborationAnalysisTool handles the get_collaboration_analysis MCP tool.
type CollaborationAnalysisTool struct {
	engine *timelog.Engine
}

// NewCollaborationAnalysisTool creates a CollaborationAnalysisTool with the given engine.
func NewCollaborationAnalysisTool(engine *timelog.Engine) *CollaborationAnalysisTool {
	return &CollaborationAnalysisTool{engine: engine}
}

// Definition returns the MCP tool definition for get_collaboration_analysis.
func (t *CollaborationAnalysisTool) Definition() mcp.Tool {
	return mcp.NewTool("get_collaboration_analysis",
		mcp.WithDescription(
			"Analyze collaborative vs solo work. Default: frequent collaborators and the "+
				"solo/collaborative split. Pass work_id to classify one entry, or person_ref "+
				"for one person's collaboration time.",
		),
		mcp.WithString("work_id",
			mcp.Description("Classify this single work entry"),
		),
		mcp.WithString("person_ref",
			mcp.Description("Report collaboration time with this person"),
		),
		mcp.WithNumber("days",
			mcp.Description("Only look at the last N days (default: all time)"),
		),
	)
}

// Handle processes the get_collaboration_analysis tool call.
func (t *CollaborationAnalysisTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if workID := req.GetString("work_id", ""); workID != "" {
		result, err := t.engine.CategorizeEntry(workID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to categorize entry: %v", err)), nil
		}
		if result == nil {
			return mcp.NewToolResultError(fmt.Sprintf("work item %q not found", workID)), nil
		}
		return jsonResult(result), nil
	}
	if ref := req.GetString("person_ref", ""); ref != "" {
		investment, err := t.engine.PersonCollaborationTime(ref)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load collaboration time: %v", err)), nil
		}
		return jsonResult(investment), nil
	}

	patterns, err := t.engine.IdentifyCollaborationPatterns(intArg(req, "days", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to analyze collaboration: %v", err)), nil
	}
	breakdown, err := t.engine.CategorizeByCollaboration()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to categorize work: %v", err)), nil
	}

	return jsonResult(struct {
		Patterns  *timelog.CollaborationPatterns  `json:"patterns"`
		Breakdown *timelog.CollaborationBreakdown `json:"breakdown"`
	}{patterns, breakdown}), nil
}

// ─── TrendsTool ─────────────────────────────────────────────────────────────

// TrendsTool handles the get_time_trends MCP tool.
type TrendsTool struct {
	engine *timelog.Engine
}

// NewTrendsTool creates a TrendsTool with the given engine.
func NewTrendsTool(engine *timelog.Engine) *TrendsTool {
	return &TrendsTool{engine: engine}
}

// Definition returns the MCP tool definition for get_time_trends.
func (t *TrendsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_time_trends",
		mcp.WithDescription(
			"Show how time investment develops over day/week/month buckets, with an "+
				"increasing/decreasing/stable classification.",
		),
		mcp.WithString("knowledge_ref",
			mcp.Description("Only time linked to this knowledge area (default: all work)"),
		),
		mcp.WithNumber("days",
			mcp.Description("Analysis window in days (default: 90)"),
		),
		mcp.WithString("group_by",
			mcp.Description("Bucket size: day, week, or month (default: week)"),
		),
	)
}

// Handle processes the get_time_trends tool call.
func (t *TrendsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	trends, err := t.engine.TimeTrendsByKnowledge(
		req.GetString("knowledge_ref", ""),
		intArg(req, "days", 0),
		req.GetString("group_by", "week"),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to analyze trends: %v", err)), nil
	}
	if len(trends.PeriodData) == 0 {
		return mcp.NewToolResultText("No completed work in the analysis window."), nil
	}
	return jsonResult(trends), nil
}
