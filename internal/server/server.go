// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it resolves the workspace directory, creates
// the time engine and knowledge manager, and injects them into the tool
// handlers. No business logic lives here — only wiring.
package server

import (
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/workosdev/workos/internal/config"
	"github.com/workosdev/workos/internal/kbtools"
	"github.com/workosdev/workos/internal/knowledge"
	"github.com/workosdev/workos/internal/timelog"
	"github.com/workosdev/workos/internal/timetools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
// This is the single place where all dependencies are resolved.
func New() (*server.MCPServer, error) {
	baseDir, err := config.BaseDir()
	if err != nil {
		return nil, fmt.Errorf("resolving workspace directory: %w", err)
	}
	if os.Getenv(config.EnvHome) == "" {
		// Stderr only: stdout belongs to the MCP stdio transport.
		log.Printf("WARNING: %s not set, using working directory %s", config.EnvHome, baseDir)
	}

	engine := timelog.New(timelog.NewFileStore(baseDir))
	manager := knowledge.NewManager(baseDir)

	s := server.NewMCPServer(
		"workos",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	registerTimeTools(s, engine)
	registerKnowledgeTools(s, manager)

	return s, nil
}

// registerTimeTools registers the time tracking and intelligence tools.
func registerTimeTools(s *server.MCPServer, engine *timelog.Engine) {
	// --- Tracking lifecycle ---
	startWork := timetools.NewStartWorkTool(engine)
	s.AddTool(startWork.Definition(), startWork.Handle)

	endWork := timetools.NewEndWorkTool(engine)
	s.AddTool(endWork.Definition(), endWork.Handle)

	recordDistraction := timetools.NewRecordDistractionTool(engine)
	s.AddTool(recordDistraction.Definition(), recordDistraction.Handle)

	history := timetools.NewHistoryTool(engine)
	s.AddTool(history.Definition(), history.Handle)

	linkWork := timetools.NewLinkWorkTool(engine)
	s.AddTool(linkWork.Definition(), linkWork.Handle)

	// --- Estimation ---
	estimate := timetools.NewEstimateTool(engine)
	s.AddTool(estimate.Definition(), estimate.Handle)

	complexity := timetools.NewComplexityTool()
	s.AddTool(complexity.Definition(), complexity.Handle)

	accuracy := timetools.NewAccuracyTool(engine)
	s.AddTool(accuracy.Definition(), accuracy.Handle)

	// --- Work breakdown ---
	suggestBreakdown := timetools.NewSuggestBreakdownTool(engine)
	s.AddTool(suggestBreakdown.Definition(), suggestBreakdown.Handle)

	acceptBreakdown := timetools.NewAcceptBreakdownTool(engine)
	s.AddTool(acceptBreakdown.Definition(), acceptBreakdown.Handle)

	breakdownProgress := timetools.NewBreakdownProgressTool(engine)
	s.AddTool(breakdownProgress.Definition(), breakdownProgress.Handle)

	// --- Analysis ---
	distractionAnalysis := timetools.NewDistractionAnalysisTool(engine)
	s.AddTool(distractionAnalysis.Definition(), distractionAnalysis.Handle)

	expertiseAnalysis := timetools.NewExpertiseAnalysisTool(engine)
	s.AddTool(expertiseAnalysis.Definition(), expertiseAnalysis.Handle)

	collaborationAnalysis := timetools.NewCollaborationAnalysisTool(engine)
	s.AddTool(collaborationAnalysis.Definition(), collaborationAnalysis.Handle)

	trends := timetools.NewTrendsTool(engine)
	s.AddTool(trends.Definition(), trends.Handle)
}

// registerKnowledgeTools registers the knowledge base and people tools.
func registerKnowledgeTools(s *server.MCPServer, manager *knowledge.Manager) {
	// --- Knowledge documents ---
	createKnowledge := kbtools.NewCreateKnowledgeTool(manager)
	s.AddTool(createKnowledge.Definition(), createKnowledge.Handle)

	updateKnowledge := kbtools.NewUpdateKnowledgeTool(manager)
	s.AddTool(updateKnowledge.Definition(), updateKnowledge.Handle)

	searchKnowledge := kbtools.NewSearchKnowledgeTool(manager)
	s.AddTool(searchKnowledge.Definition(), searchKnowledge.Handle)

	relatedKnowledge := kbtools.NewRelatedKnowledgeTool(manager)
	s.AddTool(relatedKnowledge.Definition(), relatedKnowledge.Handle)

	validateWikilinks := kbtools.NewValidateWikilinksTool(manager)
	s.AddTool(validateWikilinks.Definition(), validateWikilinks.Handle)

	// --- People ---
	createPerson := kbtools.NewCreatePersonTool(manager)
	s.AddTool(createPerson.Definition(), createPerson.Handle)

	updatePerson := kbtools.NewUpdatePersonTool(manager)
	s.AddTool(updatePerson.Definition(), updatePerson.Handle)

	linkPersonKnowledge := kbtools.NewLinkPersonKnowledgeTool(manager)
	s.AddTool(linkPersonKnowledge.Definition(), linkPersonKnowledge.Handle)

	linkPeople := kbtools.NewLinkPeopleTool(manager)
	s.AddTool(linkPeople.Definition(), linkPeople.Handle)

	findExpertise := kbtools.NewFindExpertiseTool(manager)
	s.AddTool(findExpertise.Definition(), findExpertise.Handle)
}

// serverInstructions returns the system instructions that tell the AI
// how to use WorkOS effectively.
func serverInstructions() string {
	return `You have access to WorkOS, a personal work intelligence MCP server.
It tracks time, builds a markdown knowledge base, and learns from history
to estimate and break down future work.

## WORKSPACE

All data lives under the directory in the WORKOS_HOME environment variable
(or the current directory if unset):
- .system/time_analytics.json: the flat work entry log
- Knowledge/: markdown knowledge documents with YAML frontmatter
- People/: person profiles

## TIME TRACKING WORKFLOW

1. When the user starts working on something, call start_work with a
   description and work_type (technical, writing, meeting, research, ...).
   Link it to knowledge areas and people via knowledge_refs/people_refs.
2. Record interruptions as they happen with record_distraction.
3. When the work is done, call end_work with completion notes and an
   optional completion_percentage.
4. Use link_work to attach knowledge areas or people after the fact.

Always link work to knowledge areas — every intelligence feature
(estimates, expertise ranking, trends) keys off those links.

## ESTIMATION

- get_time_estimate predicts duration from similar past work. Modes:
  - base: plain statistics over matching history
  - distraction: adds the typical distraction overhead for the work type
  - experience: scales by accumulated experience in the knowledge areas
  - collaboration: uses only history with the given people
- analyze_complexity scores a description low/medium/high before you commit.
- get_estimation_accuracy replays history to show how reliable the
  statistical estimates would have been, with over/underestimate patterns.

## WORK BREAKDOWN

For complex work (analyze_complexity says medium or high):
1. Call suggest_work_breakdown — it decomposes the work into phased chunks
   with estimates and a dependency chain.
2. Show the chunks to the user. If they accept, pass the breakdown JSON
   unchanged to accept_work_breakdown — this creates one planned entry
   per chunk.
3. Start each planned entry with start_work as the user picks it up, and
   track completion with get_breakdown_progress.

## KNOWLEDGE BASE

- create_knowledge / update_knowledge manage markdown documents. Use
  [[wikilinks]] in content to connect documents; they resolve by filename.
- search_knowledge ranks documents by title, tag, content, and wikilink
  connectivity.
- get_related_knowledge walks the wikilink graph from a document.
- validate_wikilinks finds links whose target document does not exist —
  suggest creating the missing documents or fixing the links.

## PEOPLE

- create_person / update_person manage profiles under People/.
- link_person_to_knowledge records expertise bidirectionally: the document
  joins the person's expertise areas and vice versa.
- link_people records who works with whom.
- find_expertise answers "who knows about X?" from those links.

## ANALYSIS

- get_distraction_analysis: when and how the user gets interrupted, and
  how much longer distracted work takes.
- get_expertise_analysis: knowledge areas ranked by invested time.
- get_collaboration_analysis: solo vs collaborative split, frequent
  collaborators, or one entry/person in detail.
- get_time_trends: investment per day/week/month with an
  increasing/stable/decreasing classification.

## IMPORTANT RULES

- One open work entry per activity — end the previous one before starting
  an unrelated one.
- Durations are recorded in whole minutes.
- Estimates need history: with no similar completed work the tools say so
  instead of guessing. Encourage consistent work_type values so history
  accumulates into useful pools.
- Knowledge and people references are plain names; keep them consistent
  ("Go", not sometimes "golang") so time aggregates correctly.`
}
