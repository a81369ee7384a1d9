// Package kbtools provides the MCP tool handlers for the markdown
// knowledge base: knowledge documents, person profiles, and wikilinks.
//
// Handlers follow the same pattern as the time tools: a struct per tool
// with the knowledge manager injected, Definition() for the schema, and
// Handle() for the call.
package kbtools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/workosdev/workos/internal/knowledge"
)

// listArg parses a comma-separated string argument into a slice, trimming
// whitespace and dropping empty items. Missing or empty args yield nil.
func listArg(req mcp.CallToolRequest, key string) []string {
	raw := req.GetString(key, "")
	if raw == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// jsonResult renders a value as an indented-JSON tool result.
func jsonResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// ─── CreateKnowledgeTool ────────────────────────────────────────────────────

// CreateKnowledgeTool handles the create_knowledge MCP tool.
type CreateKnowledgeTool struct {
	manager *knowledge.Manager
}

// NewCreateKnowledgeTool creates a CreateKnowledgeTool with the given manager.
func NewCreateKnowledgeTool(manager *knowledge.Manager) *CreateKnowledgeTool {
	return &CreateKnowledgeTool{manager: manager}
}

// Definition returns the MCP tool definition for create_knowledge.
func (t *CreateKnowledgeTool) Definition() mcp.Tool {
	return mcp.NewTool("create_knowledge",
		mcp.WithDescription(
			"Create a knowledge document (markdown with YAML frontmatter) under Knowledge/. "+
				"Creating an existing title is a no-op.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Document title (also the filename)"),
		),
		mcp.WithString("content",
			mcp.Description("Markdown body; use [[wikilinks]] to reference other documents"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags"),
		),
		mcp.WithString("related_people",
			mcp.Description("Comma-separated people wikilinks, e.g. [[Alice]]"),
		),
	)
}

// Handle processes the create_knowledge tool call.
func (t *CreateKnowledgeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	path, err := t.manager.Create(title, req.GetString("content", ""),
		listArg(req, "tags"), listArg(req, "related_people"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create document: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Knowledge document created: %s", path)), nil
}

// ─── UpdateKnowledgeTool ────────────────────────────────────────────────────

// UpdateKnowledgeTool handles the update_knowledge MCP tool.
type UpdateKnowledgeTool struct {
	manager *knowledge.Manager
}

// NewUpdateKnowledgeTool creates an UpdateKnowledgeTool with the given manager.
func NewUpdateKnowledgeTool(manager *knowledge.Manager) *UpdateKnowledgeTool {
	return &UpdateKnowledgeTool{manager: manager}
}

// Definition returns the MCP tool definition for update_knowledge.
func (t *UpdateKnowledgeTool) Definition() mcp.Tool {
	return mcp.NewTool("update_knowledge",
		mcp.WithDescription(
			"Update a knowledge document. Only provided fields change; the updated date is bumped. "+
				"Pass add_minutes to add to the document's invested-time total.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Document ID (filename without .md)"),
		),
		mcp.WithString("content",
			mcp.Description("New markdown body"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags (replaces existing tags)"),
		),
		mcp.WithString("related_people",
			mcp.Description("Comma-separated people wikilinks (replaces existing list)"),
		),
		mcp.WithNumber("add_minutes",
			mcp.Description("Minutes to add to time_invested"),
		),
	)
}

// Handle processes the update_knowledge tool call.
func (t *UpdateKnowledgeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	upd := knowledge.DocumentUpdate{
		Tags:          listArg(req, "tags"),
		RelatedPeople: listArg(req, "related_people"),
	}
	if v := req.GetString("content", ""); v != "" {
		upd.Content = &v
	}

	ok, err := t.manager.Update(id, upd)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update document: %v", err)), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("knowledge document %q not found", id)), nil
	}

	if minutes := intArg(req, "add_minutes", 0); minutes > 0 {
		if _, err := t.manager.AddTimeInvested(id, minutes); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to add time invested: %v", err)), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("Knowledge document %q updated", id)), nil
}

// ─── SearchKnowledgeTool ────────────────────────────────────────────────────

// SearchKnowledgeTool handles the search_knowledge MCP tool.
type SearchKnowledgeTool struct {
	manager *knowledge.Manager
}

// NewSearchKnowledgeTool creates a SearchKnowledgeTool with the given manager.
func NewSearchKnowledgeTool(manager *knowledge.Manager) *SearchKnowledgeTool {
	return &SearchKnowledgeTool{manager: manager}
}

// Definition returns the MCP tool definition for search_knowledge.
func (t *SearchKnowledgeTool) Definition() mcp.Tool {
	return mcp.NewTool("search_knowledge",
		mcp.WithDescription(
			"Search the knowledge base. Matches title, tags, and content, ranked by relevance "+
				"and wikilink connectivity.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text (case-insensitive)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum results to return (default: 10)"),
		),
	)
}

// Handle processes the search_knowledge tool call.
func (t *SearchKnowledgeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	results, err := t.manager.Search(query, intArg(req, "max_results", 10))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No documents match %q.", query)), nil
	}
	return jsonResult(results), nil
}

// ─── RelatedKnowledgeTool ───────────────────────────────────────────────────

// RelatedKnowledgeTool handles the get_related_knowledge MCP tool.
type RelatedKnowledgeTool struct {
	manager *knowledge.Manager
}

// NewRelatedKnowledgeTool creates a RelatedKnowledgeTool with the given manager.
func NewRelatedKnowledgeTool(manager *knowledge.Manager) *RelatedKnowledgeTool {
	return &RelatedKnowledgeTool{manager: manager}
}

// Definition returns the MCP tool definition for get_related_knowledge.
func (t *RelatedKnowledgeTool) Definition() mcp.Tool {
	return mcp.NewTool("get_related_knowledge",
		mcp.WithDescription(
			"Walk the wikilink graph from a document and return the documents it connects to.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Document ID to start from"),
		),
		mcp.WithNumber("depth",
			mcp.Description("How many link hops to follow (default: 1)"),
		),
	)
}

// Handle processes the get_related_knowledge tool call.
func (t *RelatedKnowledgeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	related, err := t.manager.Related(id, intArg(req, "depth", 1))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to traverse links: %v", err)), nil
	}
	if len(related) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No linked documents found for %q.", id)), nil
	}
	return jsonResult(related), nil
}

// ─── ValidateWikilinksTool ──────────────────────────────────────────────────

// ValidateWikilinksTool handles the validate_wikilinks MCP tool.
type ValidateWikilinksTool struct {
	manager *knowledge.Manager
}

// NewValidateWikilinksTool creates a ValidateWikilinksTool with the given manager.
func NewValidateWikilinksTool(manager *knowledge.Manager) *ValidateWikilinksTool {
	return &ValidateWikilinksTool{manager: manager}
}

// Definition returns the MCP tool definition for validate_wikilinks.
func (t *ValidateWikilinksTool) Definition() mcp.Tool {
	return mcp.NewTool("validate_wikilinks",
		mcp.WithDescription(
			"Scan every document in the workspace and report wikilinks whose target does not exist.",
		),
	)
}

// Handle processes the validate_wikilinks tool call.
func (t *ValidateWikilinksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	broken, err := t.manager.Resolver().ValidateAll()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("validation failed: %v", err)), nil
	}
	if len(broken) == 0 {
		return mcp.NewToolResultText("All wikilinks resolve."), nil
	}
	return jsonResult(broken), nil
}

// ─── CreatePersonTool ───────────────────────────────────────────────────────

// CreatePersonTool handles the create_person MCP tool.
type CreatePersonTool struct {
	manager *knowledge.Manager
}

// NewCreatePersonTool creates a CreatePersonTool with the given manager.
func NewCreatePersonTool(manager *knowledge.Manager) *CreatePersonTool {
	return &CreatePersonTool{manager: manager}
}

// Definition returns the MCP tool definition for create_person.
func (t *CreatePersonTool) Definition() mcp.Tool {
	return mcp.NewTool("create_person",
		mcp.WithDescription(
			"Create a person profile under People/. Creating an existing name is a no-op.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Person's name (also the filename)"),
		),
		mcp.WithString("role",
			mcp.Description("Job role or title"),
		),
		mcp.WithString("team",
			mcp.Description("Team name"),
		),
		mcp.WithString("content",
			mcp.Description("Profile markdown body"),
		),
	)
}

// Handle processes the create_person tool call.
func (t *CreatePersonTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	path, err := t.manager.CreatePerson(name,
		req.GetString("role", ""), req.GetString("team", ""), req.GetString("content", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create person: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Person profile created: %s", path)), nil
}

// ─── UpdatePersonTool ───────────────────────────────────────────────────────

// UpdatePersonTool handles the update_person MCP tool.
type UpdatePersonTool struct {
	manager *knowledge.Manager
}

// NewUpdatePersonTool creates an UpdatePersonTool with the given manager.
func NewUpdatePersonTool(manager *knowledge.Manager) *UpdatePersonTool {
	return &UpdatePersonTool{manager: manager}
}

// Definition returns the MCP tool definition for update_person.
func (t *UpdatePersonTool) Definition() mcp.Tool {
	return mcp.NewTool("update_person",
		mcp.WithDescription(
			"Update a person profile. Only provided fields change; the updated date is bumped.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Person ID (filename without .md)"),
		),
		mcp.WithString("role",
			mcp.Description("New role"),
		),
		mcp.WithString("team",
			mcp.Description("New team"),
		),
		mcp.WithString("content",
			mcp.Description("New profile body"),
		),
		mcp.WithString("expertise_areas",
			mcp.Description("Comma-separated knowledge wikilinks (replaces existing list)"),
		),
	)
}

// Handle processes the update_person tool call.
func (t *UpdatePersonTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	upd := knowledge.PersonUpdate{ExpertiseAreas: listArg(req, "expertise_areas")}
	if v := req.GetString("role", ""); v != "" {
		upd.Role = &v
	}
	if v := req.GetString("team", ""); v != "" {
		upd.Team = &v
	}
	if v := req.GetString("content", ""); v != "" {
		upd.Content = &v
	}

	ok, err := t.manager.UpdatePerson(id, upd)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update person: %v", err)), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("person %q not found", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Person profile %q updated", id)), nil
}

// ─── LinkPersonKnowledgeTool ────────────────────────────────────────────────

// LinkPersonKnowledgeTool handles the link_person_to_knowledge MCP tool.
type LinkPersonKnowledgeTool struct {
	manager *knowledge.Manager
}

// NewLinkPersonKnowledgeTool creates a LinkPersonKnowledgeTool with the given manager.
func NewLinkPersonKnowledgeTool(manager *knowledge.Manager) *LinkPersonKnowledgeTool {
	return &LinkPersonKnowledgeTool{manager: manager}
}

// Definition returns the MCP tool definition for link_person_to_knowledge.
func (t *LinkPersonKnowledgeTool) Definition() mcp.Tool {
	return mcp.NewTool("link_person_to_knowledge",
		mcp.WithDescription(
			"Link a person to a knowledge document bidirectionally: the document joins the person's "+
				"expertise areas and the person joins the document's related people.",
		),
		mcp.WithString("person_id",
			mcp.Required(),
			mcp.Description("Person ID"),
		),
		mcp.WithString("knowledge_id",
			mcp.Required(),
			mcp.Description("Knowledge document ID"),
		),
	)
}

// Handle processes the link_person_to_knowledge tool call.
func (t *LinkPersonKnowledgeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	personID := req.GetString("person_id", "")
	knowledgeID := req.GetString("knowledge_id", "")
	if personID == "" || knowledgeID == "" {
		return mcp.NewToolResultError("'person_id' and 'knowledge_id' are required"), nil
	}

	ok, err := t.manager.LinkPersonToKnowledge(personID, knowledgeID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to link: %v", err)), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf(
			"person %q or knowledge document %q not found", personID, knowledgeID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Linked %s to %s", personID, knowledgeID)), nil
}

// ─── LinkPeopleTool ─────────────────────────────────────────────────────────

// LinkPeopleTool handles the link_people MCP tool.
type LinkPeopleTool struct {
	manager *knowledge.Manager
}

// NewLinkPeopleTool creates a LinkPeopleTool with the given manager.
func NewLinkPeopleTool(manager *knowledge.Manager) *LinkPeopleTool {
	return &LinkPeopleTool{manager: manager}
}

// Definition returns the MCP tool definition for link_people.
func (t *LinkPeopleTool) Definition() mcp.Tool {
	return mcp.NewTool("link_people",
		mcp.WithDescription(
			"Record a reciprocal relationship between two people via their related_people lists.",
		),
		mcp.WithString("first_id",
			mcp.Required(),
			mcp.Description("First person ID"),
		),
		mcp.WithString("second_id",
			mcp.Required(),
			mcp.Description("Second person ID"),
		),
	)
}

// Handle processes the link_people tool call.
func (t *LinkPeopleTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	firstID := req.GetString("first_id", "")
	secondID := req.GetString("second_id", "")
	if firstID == "" || secondID == "" {
		return mcp.NewToolResultError("'first_id' and 'second_id' are required"), nil
	}

	ok, err := t.manager.LinkPeople(firstID, secondID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to link people: %v", err)), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("person %q or %q not found", firstID, secondID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Linked %s and %s", firstID, secondID)), nil
}

// ─── FindExpertiseTool ──────────────────────────────────────────────────────

// FindExpertiseTool handles the find_expertise MCP tool.
type FindExpertiseTool struct {
	manager *knowledge.Manager
}

// NewFindExpertiseTool creates a FindExpertiseTool with the given manager.
func NewFindExpertiseTool(manager *knowledge.Manager) *FindExpertiseTool {
	return &FindExpertiseTool{manager: manager}
}

// Definition returns the MCP tool definition for find_expertise.
func (t *FindExpertiseTool) Definition() mcp.Tool {
	return mcp.NewTool("find_expertise",
		mcp.WithDescription(
			"Find people with expertise in a topic, ranked by how strongly their profile connects to it.",
		),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Topic or knowledge area to search for"),
		),
	)
}

// Handle processes the find_expertise tool call.
func (t *FindExpertiseTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic := req.GetString("topic", "")
	if topic == "" {
		return mcp.NewToolResultError("'topic' is required"), nil
	}

	matches, err := t.manager.FindExpertise(topic)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to search expertise: %v", err)), nil
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No one has recorded expertise in %q.", topic)), nil
	}
	return jsonResult(matches), nil
}
