package knowledge

import (
	"os"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(t.TempDir())
	m.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	return m
}

func TestCreate_WritesFrontmatterDocument(t *testing.T) {
	m := newTestManager(t)

	path, err := m.Create("Go Basics", "Goroutines and channels.", []string{"go", "concurrency"}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	if !strings.HasPrefix(text, "---\n") {
		t.Errorf("document should start with frontmatter: %q", text[:20])
	}
	if !strings.Contains(text, "title: Go Basics") {
		t.Errorf("missing title in frontmatter:\n%s", text)
	}
	if !strings.Contains(text, "Goroutines and channels.") {
		t.Errorf("missing body:\n%s", text)
	}

	doc, err := m.Get("Go Basics")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc == nil {
		t.Fatal("document not found after Create")
	}
	if doc.Meta.CreatedDate != "2026-03-02" || doc.Meta.UpdatedDate != "2026-03-02" {
		t.Errorf("dates = %s/%s", doc.Meta.CreatedDate, doc.Meta.UpdatedDate)
	}
	if len(doc.Meta.Tags) != 2 || doc.Meta.TimeInvested != 0 {
		t.Errorf("meta = %+v", doc.Meta)
	}
}

func TestCreate_ExistingTitleIsNoOp(t *testing.T) {
	m := newTestManager(t)

	first, _ := m.Create("Go Basics", "original", nil, nil)
	second, err := m.Create("Go Basics", "replacement", nil, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first != second {
		t.Errorf("paths differ: %q vs %q", first, second)
	}

	doc, _ := m.Get("Go Basics")
	if doc.Content != "original" {
		t.Errorf("existing document was overwritten: %q", doc.Content)
	}
}

func TestCreate_SanitizesTitleForFilename(t *testing.T) {
	m := newTestManager(t)

	path, err := m.Create(`API: "v2" design?`, "notes", nil, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if strings.ContainsAny(path[len(m.baseDir):], `:"?`) {
		t.Errorf("filename not sanitized: %q", path)
	}

	// The sanitized document is still findable by its sanitized ID.
	docs, _ := m.List()
	if len(docs) != 1 {
		t.Fatalf("docs = %v", docs)
	}
	if docs[0].Meta.Title != `API: "v2" design?` {
		t.Errorf("original title not preserved in frontmatter: %q", docs[0].Meta.Title)
	}
}

func TestGet_UnknownID(t *testing.T) {
	m := newTestManager(t)

	doc, err := m.Get("Missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc != nil {
		t.Errorf("expected nil for unknown document, got %+v", doc)
	}
}

func TestUpdate(t *testing.T) {
	m := newTestManager(t)
	m.Create("Go Basics", "original", []string{"go"}, nil)

	content := "rewritten"
	minutes := 45
	ok, err := m.Update("Go Basics", DocumentUpdate{
		Content:      &content,
		Tags:         []string{"golang", "basics"},
		TimeInvested: &minutes,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !ok {
		t.Fatal("expected true for known document")
	}

	doc, _ := m.Get("Go Basics")
	if doc.Content != "rewritten" {
		t.Errorf("content = %q", doc.Content)
	}
	if len(doc.Meta.Tags) != 2 || doc.Meta.Tags[0] != "golang" {
		t.Errorf("tags = %v", doc.Meta.Tags)
	}
	if doc.Meta.TimeInvested != 45 {
		t.Errorf("time invested = %d", doc.Meta.TimeInvested)
	}
}

func TestUpdate_PartialLeavesOtherFieldsAlone(t *testing.T) {
	m := newTestManager(t)
	m.Create("Go Basics", "original", []string{"go"}, nil)

	content := "new body"
	ok, _ := m.Update("Go Basics", DocumentUpdate{Content: &content})
	if !ok {
		t.Fatal("update failed")
	}

	doc, _ := m.Get("Go Basics")
	if len(doc.Meta.Tags) != 1 || doc.Meta.Tags[0] != "go" {
		t.Errorf("tags changed by content-only update: %v", doc.Meta.Tags)
	}
}

func TestUpdate_UnknownID(t *testing.T) {
	m := newTestManager(t)

	ok, err := m.Update("Missing", DocumentUpdate{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if ok {
		t.Error("expected false for unknown document")
	}
}

func TestAddTimeInvested_Accumulates(t *testing.T) {
	m := newTestManager(t)
	m.Create("Go Basics", "notes", nil, nil)

	m.AddTimeInvested("Go Basics", 30)
	ok, err := m.AddTimeInvested("Go Basics", 45)
	if err != nil {
		t.Fatalf("AddTimeInvested: %v", err)
	}
	if !ok {
		t.Fatal("expected true")
	}

	doc, _ := m.Get("Go Basics")
	if doc.Meta.TimeInvested != 75 {
		t.Errorf("time invested = %d, want 75", doc.Meta.TimeInvested)
	}
}

func TestList_EmptyWorkspace(t *testing.T) {
	m := newTestManager(t)

	docs, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("docs = %v", docs)
	}
}

func TestSearch_RanksTitleAboveContent(t *testing.T) {
	m := newTestManager(t)
	m.Create("Redis Caching", "How to cache with Redis.", []string{"redis"}, nil)
	m.Create("Deployment Notes", "We use redis for session storage.", nil, nil)
	m.Create("Unrelated", "Nothing to see.", nil, nil)

	results, err := m.Search("redis", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %v", results)
	}
	if results[0].ID != "Redis Caching" {
		t.Errorf("top result = %q, want title match first", results[0].ID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores = %d vs %d", results[0].Score, results[1].Score)
	}
	if results[1].Snippet == "" {
		t.Error("content match should carry a snippet")
	}
}

func TestSearch_CapsResults(t *testing.T) {
	m := newTestManager(t)
	m.Create("Alpha note", "shared term", nil, nil)
	m.Create("Beta note", "shared term", nil, nil)
	m.Create("Gamma note", "shared term", nil, nil)

	results, _ := m.Search("shared term", 2)
	if len(results) != 2 {
		t.Errorf("results = %d, want capped at 2", len(results))
	}
}

func TestRelated_TraversesWikilinkGraph(t *testing.T) {
	m := newTestManager(t)
	m.Create("A", "Start here, see [[B]].", nil, nil)
	m.Create("B", "Continues in [[C]].", []string{"middle"}, nil)
	m.Create("C", "The end.", nil, nil)

	depth1, err := m.Related("A", 1)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(depth1) != 1 || depth1[0].ID != "B" || depth1[0].Depth != 1 {
		t.Errorf("depth-1 related = %v", depth1)
	}

	depth2, _ := m.Related("A", 2)
	if len(depth2) != 2 {
		t.Fatalf("depth-2 related = %v", depth2)
	}
	if depth2[1].ID != "C" || depth2[1].Depth != 2 {
		t.Errorf("second hop = %+v", depth2[1])
	}
}

func TestRelated_CyclesTerminate(t *testing.T) {
	m := newTestManager(t)
	m.Create("A", "Points at [[B]].", nil, nil)
	m.Create("B", "Points back at [[A]].", nil, nil)

	related, err := m.Related("A", 5)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(related) != 1 || related[0].ID != "B" {
		t.Errorf("cyclic graph related = %v", related)
	}
}

func TestRelated_UnknownID(t *testing.T) {
	m := newTestManager(t)

	related, err := m.Related("Missing", 1)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(related) != 0 {
		t.Errorf("related = %v", related)
	}
}

func TestAddWikilink(t *testing.T) {
	m := newTestManager(t)
	m.Create("A", "Body.", nil, nil)

	ok, err := m.AddWikilink("A", "B", "See also")
	if err != nil {
		t.Fatalf("AddWikilink: %v", err)
	}
	if !ok {
		t.Fatal("expected true")
	}

	doc, _ := m.Get("A")
	if !strings.Contains(doc.Content, "See also [[B]]") {
		t.Errorf("content = %q", doc.Content)
	}

	// Linking again is a no-op.
	m.AddWikilink("A", "B", "")
	doc, _ = m.Get("A")
	if strings.Count(doc.Content, "[[B]]") != 1 {
		t.Errorf("duplicate link added: %q", doc.Content)
	}
}

func TestFrontmatterRoundTrip_PreservesSpecialTitles(t *testing.T) {
	m := newTestManager(t)
	m.Create("Notes: a tricky #title", "body text", []string{"it's --- tagged"}, nil)

	docs, _ := m.List()
	if len(docs) != 1 {
		t.Fatalf("docs = %v", docs)
	}
	if docs[0].Meta.Title != "Notes: a tricky #title" {
		t.Errorf("title = %q", docs[0].Meta.Title)
	}
	// Tag sanitization strips YAML-hostile characters.
	if len(docs[0].Meta.Tags) != 1 || strings.Contains(docs[0].Meta.Tags[0], "---") {
		t.Errorf("tags = %v", docs[0].Meta.Tags)
	}
}
