package timetools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/workosdev/workos/internal/timelog"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

var ctx = context.Background()

// newTestEngine creates a timelog engine over a temp-dir store.
func newTestEngine(t *testing.T) *timelog.Engine {
	t.Helper()
	return timelog.New(timelog.NewFileStore(t.TempDir()))
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// mustNotError asserts the Handle call returns no Go error and no tool error.
func mustNotError(t *testing.T, r *mcp.CallToolResult, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
}

// mustBeToolError asserts the Handle call returns a tool error (not a Go error).
func mustBeToolError(t *testing.T, r *mcp.CallToolResult, err error, wantSubstr string) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !r.IsError {
		t.Fatalf("expected tool error containing %q, got success: %s", wantSubstr, resultText(r))
	}
	if wantSubstr != "" && !strings.Contains(resultText(r), wantSubstr) {
		t.Errorf("error text %q does not contain %q", resultText(r), wantSubstr)
	}
}

// startWork starts a tracked entry directly on the engine and returns its ID.
func startWork(t *testing.T, e *timelog.Engine, description, workType string) string {
	t.Helper()
	id, err := e.StartWork(description, workType, nil, nil)
	if err != nil {
		t.Fatalf("StartWork: %v", err)
	}
	return id
}

// ─── StartWorkTool ───────────────────────────────────────────────────────────

func TestStartWorkTool_Definition(t *testing.T) {
	def := NewStartWorkTool(newTestEngine(t)).Definition()

	if def.Name != "start_work" {
		t.Errorf("tool name = %q, want %q", def.Name, "start_work")
	}
	if _, ok := def.InputSchema.Properties["description"]; !ok {
		t.Error("missing 'description' parameter")
	}

	found := false
	for _, r := range def.InputSchema.Required {
		if r == "description" {
			found = true
		}
	}
	if !found {
		t.Error("'description' should be required")
	}
}

func TestStartWorkTool_Success(t *testing.T) {
	e := newTestEngine(t)
	tool := NewStartWorkTool(e)

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"description":    "Write the onboarding guide",
		"work_type":      "writing",
		"knowledge_refs": "Documentation, Onboarding",
	}))
	mustNotError(t, r, err)

	text := resultText(r)
	if !strings.Contains(text, "Work tracking started") {
		t.Errorf("expected start confirmation, got: %s", text)
	}
	if !strings.Contains(text, "time_") {
		t.Errorf("expected work ID in response, got: %s", text)
	}

	entries, err := e.AllEntries()
	if err != nil {
		t.Fatalf("AllEntries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if got := entries[0].KnowledgeRefs; len(got) != 2 || got[0] != "Documentation" {
		t.Errorf("knowledge refs = %v", got)
	}
}

func TestStartWorkTool_MissingDescription(t *testing.T) {
	tool := NewStartWorkTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{}))
	mustBeToolError(t, r, err, "description")
}

// ─── EndWorkTool ─────────────────────────────────────────────────────────────

func TestEndWorkTool_Success(t *testing.T) {
	e := newTestEngine(t)
	id := startWork(t, e, "task", "technical")

	tool := NewEndWorkTool(e)
	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"work_id":               id,
		"completion_notes":      "done",
		"completion_percentage": float64(100),
	}))
	mustNotError(t, r, err)

	text := resultText(r)
	if !strings.Contains(text, "ended after") {
		t.Errorf("expected end confirmation, got: %s", text)
	}

	entry, err := e.Entry(id)
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if entry.EndTime == nil || entry.DurationMinutes == nil {
		t.Error("entry should be completed")
	}
	if entry.CompletionPercentage == nil || *entry.CompletionPercentage != 100 {
		t.Errorf("completion percentage = %v, want 100", entry.CompletionPercentage)
	}
}

func TestEndWorkTool_UnknownID(t *testing.T) {
	tool := NewEndWorkTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"work_id": "time_nope",
	}))
	mustBeToolError(t, r, err, "not found")
}

func TestEndWorkTool_MissingID(t *testing.T) {
	tool := NewEndWorkTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{}))
	mustBeToolError(t, r, err, "work_id")
}

// ─── RecordDistractionTool ───────────────────────────────────────────────────

func TestRecordDistractionTool_Success(t *testing.T) {
	e := newTestEngine(t)
	id := startWork(t, e, "focus block", "technical")

	tool := NewRecordDistractionTool(e)
	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"work_id":          id,
		"distraction_type": "meeting",
		"duration_minutes": float64(15),
	}))
	mustNotError(t, r, err)

	if !strings.Contains(resultText(r), "15 minutes") {
		t.Errorf("expected duration in response, got: %s", resultText(r))
	}

	entry, _ := e.Entry(id)
	if len(entry.Distractions) != 1 || entry.Distractions[0].Type != "meeting" {
		t.Errorf("distractions = %+v", entry.Distractions)
	}
}

func TestRecordDistractionTool_MissingType(t *testing.T) {
	e := newTestEngine(t)
	id := startWork(t, e, "focus block", "technical")

	tool := NewRecordDistractionTool(e)
	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"work_id":          id,
		"duration_minutes": float64(5),
	}))
	mustBeToolError(t, r, err, "distraction_type")
}

func TestRecordDistractionTool_UnknownID(t *testing.T) {
	tool := NewRecordDistractionTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"work_id":          "time_nope",
		"distraction_type": "email",
		"duration_minutes": float64(5),
	}))
	mustBeToolError(t, r, err, "not found")
}

// ─── HistoryTool ─────────────────────────────────────────────────────────────

func TestHistoryTool_Empty(t *testing.T) {
	tool := NewHistoryTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{}))
	mustNotError(t, r, err)

	if !strings.Contains(resultText(r), "No work entries") {
		t.Errorf("expected empty message, got: %s", resultText(r))
	}
}

func TestHistoryTool_FiltersByWorkType(t *testing.T) {
	e := newTestEngine(t)
	startWork(t, e, "debug the importer", "technical")
	startWork(t, e, "write release notes", "writing")

	tool := NewHistoryTool(e)
	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"work_type": "writing",
	}))
	mustNotError(t, r, err)

	text := resultText(r)
	if !strings.Contains(text, "write release notes") {
		t.Errorf("expected writing entry, got: %s", text)
	}
	if strings.Contains(text, "debug the importer") {
		t.Errorf("technical entry should be filtered out, got: %s", text)
	}
}

// ─── LinkWorkTool ────────────────────────────────────────────────────────────

func TestLinkWorkTool_Success(t *testing.T) {
	e := newTestEngine(t)
	id := startWork(t, e, "pairing session", "technical")

	tool := NewLinkWorkTool(e)
	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"work_id":        id,
		"knowledge_refs": "Go",
		"people_refs":    "alice, bob",
	}))
	mustNotError(t, r, err)

	entry, _ := e.Entry(id)
	if len(entry.KnowledgeRefs) != 1 || entry.KnowledgeRefs[0] != "Go" {
		t.Errorf("knowledge refs = %v", entry.KnowledgeRefs)
	}
	if len(entry.PeopleRefs) != 2 {
		t.Errorf("people refs = %v", entry.PeopleRefs)
	}
}

func TestLinkWorkTool_NoRefs(t *testing.T) {
	e := newTestEngine(t)
	id := startWork(t, e, "task", "technical")

	tool := NewLinkWorkTool(e)
	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"work_id": id,
	}))
	mustBeToolError(t, r, err, "knowledge_refs")
}

// ─── EstimateTool ────────────────────────────────────────────────────────────

func TestEstimateTool_NoHistory(t *testing.T) {
	tool := NewEstimateTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"description": "build the exporter",
		"work_type":   "technical",
	}))
	mustNotError(t, r, err)

	if !strings.Contains(resultText(r), "No historical data") {
		t.Errorf("expected no-data message, got: %s", resultText(r))
	}
}

func TestEstimateTool_InvalidMode(t *testing.T) {
	tool := NewEstimateTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"description": "build the exporter",
		"work_type":   "technical",
		"mode":        "psychic",
	}))
	mustBeToolError(t, r, err, "invalid mode")
}

func TestEstimateTool_MissingWorkType(t *testing.T) {
	tool := NewEstimateTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"description": "build the exporter",
	}))
	mustBeToolError(t, r, err, "work_type")
}

// ─── ComplexityTool ──────────────────────────────────────────────────────────

func TestComplexityTool_Success(t *testing.T) {
	tool := NewComplexityTool()

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"description": "fix typo",
	}))
	mustNotError(t, r, err)

	var analysis timelog.ComplexityAnalysis
	if jsonErr := json.Unmarshal([]byte(resultText(r)), &analysis); jsonErr != nil {
		t.Fatalf("result is not complexity JSON: %v", jsonErr)
	}
	if analysis.Level != "low" {
		t.Errorf("level = %q, want low", analysis.Level)
	}
}

func TestComplexityTool_MissingDescription(t *testing.T) {
	tool := NewComplexityTool()

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{}))
	mustBeToolError(t, r, err, "description")
}

// ─── AccuracyTool ────────────────────────────────────────────────────────────

func TestAccuracyTool_EmptyStore(t *testing.T) {
	tool := NewAccuracyTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{}))
	mustNotError(t, r, err)

	if !strings.Contains(resultText(r), "Not enough completed work") {
		t.Errorf("expected not-enough-data message, got: %s", resultText(r))
	}
}

func TestAccuracyTool_NegativeTolerance(t *testing.T) {
	tool := NewAccuracyTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"tolerance_pct": float64(-5),
	}))
	mustBeToolError(t, r, err, "tolerance_pct")
}

// ─── Breakdown tools ─────────────────────────────────────────────────────────

const breakdownDesc = "Design and implement the complete authentication service, " +
	"then build and test the full integration layer along with comprehensive documentation"

func TestSuggestBreakdownTool_LowComplexity(t *testing.T) {
	tool := NewSuggestBreakdownTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"description": "fix typo",
		"work_type":   "technical",
	}))
	mustNotError(t, r, err)

	if !strings.Contains(resultText(r), "no breakdown needed") {
		t.Errorf("expected no-breakdown message, got: %s", resultText(r))
	}
}

func TestSuggestBreakdownTool_ReturnsBreakdownJSON(t *testing.T) {
	tool := NewSuggestBreakdownTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"description": breakdownDesc,
		"work_type":   "technical",
	}))
	mustNotError(t, r, err)

	var breakdown timelog.Breakdown
	if jsonErr := json.Unmarshal([]byte(resultText(r)), &breakdown); jsonErr != nil {
		t.Fatalf("result is not breakdown JSON: %v", jsonErr)
	}
	if breakdown.BreakdownID == "" || len(breakdown.Chunks) == 0 {
		t.Errorf("incomplete breakdown: %+v", breakdown)
	}
}

func TestAcceptBreakdownTool_RoundTrip(t *testing.T) {
	e := newTestEngine(t)
	suggest := NewSuggestBreakdownTool(e)
	accept := NewAcceptBreakdownTool(e)

	r, err := suggest.Handle(ctx, makeReq(map[string]interface{}{
		"description": breakdownDesc,
		"work_type":   "technical",
	}))
	mustNotError(t, r, err)
	breakdownJSON := resultText(r)

	r, err = accept.Handle(ctx, makeReq(map[string]interface{}{
		"breakdown_json": breakdownJSON,
	}))
	mustNotError(t, r, err)

	if !strings.Contains(resultText(r), "planned entries created") {
		t.Errorf("expected accept confirmation, got: %s", resultText(r))
	}

	var breakdown timelog.Breakdown
	if jsonErr := json.Unmarshal([]byte(breakdownJSON), &breakdown); jsonErr != nil {
		t.Fatalf("unmarshal suggested breakdown: %v", jsonErr)
	}
	entries, err := e.AllEntries()
	if err != nil {
		t.Fatalf("AllEntries: %v", err)
	}
	if len(entries) != len(breakdown.Chunks) {
		t.Errorf("entries = %d, want one per chunk (%d)", len(entries), len(breakdown.Chunks))
	}
}

func TestAcceptBreakdownTool_InvalidJSON(t *testing.T) {
	tool := NewAcceptBreakdownTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"breakdown_json": "not json {{{",
	}))
	mustBeToolError(t, r, err, "breakdown_json")
}

func TestBreakdownProgressTool_UnknownID(t *testing.T) {
	tool := NewBreakdownProgressTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"breakdown_id": "breakdown_nope",
	}))
	mustBeToolError(t, r, err, "not found")
}

func TestBreakdownProgressTool_ReportsPlannedChunks(t *testing.T) {
	e := newTestEngine(t)
	suggest := NewSuggestBreakdownTool(e)
	accept := NewAcceptBreakdownTool(e)
	progress := NewBreakdownProgressTool(e)

	r, err := suggest.Handle(ctx, makeReq(map[string]interface{}{
		"description": breakdownDesc,
		"work_type":   "technical",
	}))
	mustNotError(t, r, err)

	suggestedJSON := resultText(r)
	var breakdown timelog.Breakdown
	if jsonErr := json.Unmarshal([]byte(suggestedJSON), &breakdown); jsonErr != nil {
		t.Fatalf("unmarshal breakdown: %v", jsonErr)
	}

	r, err = accept.Handle(ctx, makeReq(map[string]interface{}{
		"breakdown_json": suggestedJSON,
	}))
	mustNotError(t, r, err)

	r, err = progress.Handle(ctx, makeReq(map[string]interface{}{
		"breakdown_id": breakdown.BreakdownID,
	}))
	mustNotError(t, r, err)

	text := resultText(r)
	if !strings.Contains(text, "\"progress\"") || !strings.Contains(text, "\"chunk_results\"") {
		t.Errorf("expected progress and chunk_results sections, got: %s", text)
	}
}

// ─── Analysis tools ──────────────────────────────────────────────────────────

func TestDistractionAnalysisTool_Empty(t *testing.T) {
	tool := NewDistractionAnalysisTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{}))
	mustNotError(t, r, err)

	if !strings.Contains(resultText(r), "No distractions recorded") {
		t.Errorf("expected empty message, got: %s", resultText(r))
	}
}

func TestDistractionAnalysisTool_WithData(t *testing.T) {
	e := newTestEngine(t)
	id := startWork(t, e, "deep work", "technical")
	if ok, err := e.RecordDistraction(id, "slack", 10, "question from bob"); err != nil || !ok {
		t.Fatalf("RecordDistraction: ok=%v err=%v", ok, err)
	}

	tool := NewDistractionAnalysisTool(e)
	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{}))
	mustNotError(t, r, err)

	text := resultText(r)
	if !strings.Contains(text, "\"patterns\"") || !strings.Contains(text, "\"impact\"") {
		t.Errorf("expected patterns and impact sections, got: %s", text)
	}
	if !strings.Contains(text, "slack") {
		t.Errorf("expected distraction type in output, got: %s", text)
	}
}

func TestExpertiseAnalysisTool_Empty(t *testing.T) {
	tool := NewExpertiseAnalysisTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{}))
	mustNotError(t, r, err)

	if !strings.Contains(resultText(r), "Link work to knowledge areas") {
		t.Errorf("expected guidance message, got: %s", resultText(r))
	}
}

func TestCollaborationAnalysisTool_UnknownWorkID(t *testing.T) {
	tool := NewCollaborationAnalysisTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"work_id": "time_nope",
	}))
	mustBeToolError(t, r, err, "not found")
}

func TestTrendsTool_Empty(t *testing.T) {
	tool := NewTrendsTool(newTestEngine(t))

	r, err := tool.Handle(ctx, makeReq(map[string]interface{}{}))
	mustNotError(t, r, err)

	if !strings.Contains(resultText(r), "No completed work") {
		t.Errorf("expected empty message, got: %s", resultText(r))
	}
}

// ─── Definitions ─────────────────────────────────────────────────────────────

func TestAllTimeTools_HaveDefinitions(t *testing.T) {
	e := newTestEngine(t)

	defs := []mcp.Tool{
		NewStartWorkTool(e).Definition(),
		NewEndWorkTool(e).Definition(),
		NewRecordDistractionTool(e).Definition(),
		NewHistoryTool(e).Definition(),
		NewLinkWorkTool(e).Definition(),
		NewEstimateTool(e).Definition(),
		NewComplexityTool().Definition(),
		NewAccuracyTool(e).Definition(),
		NewSuggestBreakdownTool(e).Definition(),
		NewAcceptBreakdownTool(e).Definition(),
		NewBreakdownProgressTool(e).Definition(),
		NewDistractionAnalysisTool(e).Definition(),
		NewExpertiseAnalysisTool(e).Definition(),
		NewCollaborationAnalysisTool(e).Definition(),
		NewTrendsTool(e).Definition(),
	}

	seen := make(map[string]bool)
	for _, def := range defs {
		if def.Name == "" {
			t.Error("tool with empty name")
		}
		if def.Description == "" {
			t.Errorf("tool %s has no description", def.Name)
		}
		if seen[def.Name] {
			t.Errorf("duplicate tool name %s", def.Name)
		}
		seen[def.Name] = true
	}
}
