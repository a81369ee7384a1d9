// Package knowledge manages the markdown knowledge base: documents with
// YAML frontmatter under Knowledge/ and person profiles under People/,
// cross-referenced with wikilinks.
package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/workosdev/workos/internal/wikilink"
)

const (
	// KnowledgeDir holds knowledge documents under the workspace base.
	KnowledgeDir = "Knowledge"
	// PeopleDir holds person profiles under the workspace base.
	PeopleDir = "People"

	dateLayout = "2006-01-02"
)

// DocMeta is the YAML frontmatter of a knowledge document.
type DocMeta struct {
	Title         string   `yaml:"title" json:"title"`
	CreatedDate   string   `yaml:"created_date" json:"created_date"`
	UpdatedDate   string   `yaml:"updated_date" json:"updated_date"`
	Tags          []string `yaml:"tags" json:"tags"`
	RelatedPeople []string `yaml:"related_people" json:"related_people"`
	TimeInvested  int      `yaml:"time_invested" json:"time_invested"`
}

// Document is a knowledge document with its parsed frontmatter and body.
type Document struct {
	ID      string  `json:"id"`
	Path    string  `json:"path"`
	Meta    DocMeta `json:"metadata"`
	Content string  `json:"content"`
}

// DocumentUpdate lists the fields Update may change. Nil pointers and nil
// slices leave the current value untouched.
type DocumentUpdate struct {
	Content       *string
	Tags          []string
	RelatedPeople []string
	TimeInvested  *int
}

// Manager provides CRUD, search, and graph operations over the knowledge
// base. Documents live as individual markdown files; every operation reads
// and writes whole files.
type Manager struct {
	baseDir  string
	resolver *wikilink.Resolver
	now      func() time.Time
}

// NewManager returns a manager rooted at baseDir.
func NewManager(baseDir string) *Manager {
	return &Manager{
		baseDir:  baseDir,
		resolver: wikilink.NewResolver(baseDir),
		now:      time.Now,
	}
}

// Resolver exposes the wikilink resolver for link validation tools.
func (m *Manager) Resolver() *wikilink.Resolver {
	return m.resolver
}

func (m *Manager) knowledgePath() string {
	return filepath.Join(m.baseDir, KnowledgeDir)
}

func (m *Manager) today() string {
	return m.now().UTC().Format(dateLayout)
}

// Create writes a new knowledge document and returns its path. Creating a
// title that already exists is a no-op returning the existing path.
func (m *Manager) Create(title, content string, tags, relatedPeople []string) (string, error) {
	if err := os.MkdirAll(m.knowledgePath(), 0o755); err != nil {
		return "", fmt.Errorf("creating knowledge directory: %w", err)
	}

	path := filepath.Join(m.knowledgePath(), sanitizeFilename(title)+".md")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	cleanTags := make([]string, 0, len(tags))
	for _, tag := range tags {
		if clean := sanitizeTag(tag); clean != "" {
			cleanTags = append(cleanTags, clean)
		}
	}
	if relatedPeople == nil {
		relatedPeople = []string{}
	}

	now := m.today()
	meta := DocMeta{
		Title:         title,
		CreatedDate:   now,
		UpdatedDate:   now,
		Tags:          cleanTags,
		RelatedPeople: relatedPeople,
	}
	data, err := encodeDocument(meta, content)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Get returns a document by ID (filename without .md, case-insensitive),
// or nil if it does not exist.
func (m *Manager) Get(id string) (*Document, error) {
	path := m.resolver.Resolve(id)
	if path == "" {
		return nil, nil
	}
	return m.readDocument(path)
}

func (m *Manager) readDocument(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc := &Document{
		ID:   strings.TrimSuffix(filepath.Base(path), ".md"),
		Path: path,
	}
	doc.Content = decodeDocument(raw, &doc.Meta)
	if doc.Meta.Title == "" {
		doc.Meta.Title = doc.ID
	}
	return doc, nil
}

// Update applies changes to an existing document and bumps its updated
// date. Returns false when the document does not exist.
func (m *Manager) Update(id string, upd DocumentUpdate) (bool, error) {
	return m.rewrite(id, func(doc *Document) {
		if upd.Content != nil {
			doc.Content = *upd.Content
		}
		if upd.Tags != nil {
			tags := make([]string, 0, len(upd.Tags))
			for _, tag := range upd.Tags {
				if clean := sanitizeTag(tag); clean != "" {
					tags = append(tags, clean)
				}
			}
			doc.Meta.Tags = tags
		}
		if upd.RelatedPeople != nil {
			doc.Meta.RelatedPeople = upd.RelatedPeople
		}
		if upd.TimeInvested != nil {
			doc.Meta.TimeInvested = *upd.TimeInvested
		}
	})
}

// AddTimeInvested adds minutes to a document's running time_invested
// total. Returns false when the document does not exist.
func (m *Manager) AddTimeInvested(id string, minutes int) (bool, error) {
	return m.rewrite(id, func(doc *Document) {
		doc.Meta.TimeInvested += minutes
	})
}

// rewrite loads a document, applies mutate, stamps updated_date, and
// writes the file back.
func (m *Manager) rewrite(id string, mutate func(*Document)) (bool, error) {
	doc, err := m.Get(id)
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, nil
	}

	mutate(doc)
	doc.Meta.UpdatedDate = m.today()

	data, err := encodeDocument(doc.Meta, doc.Content)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(doc.Path, data, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", doc.Path, err)
	}
	return true, nil
}

// List returns every knowledge document, sorted by ID.
func (m *Manager) List() ([]Document, error) {
	entries, err := os.ReadDir(m.knowledgePath())
	if err != nil {
		if os.IsNotExist(err) {
			return []Document{}, nil
		}
		return nil, fmt.Errorf("reading knowledge directory: %w", err)
	}

	docs := []Document{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		doc, err := m.readDocument(filepath.Join(m.knowledgePath(), entry.Name()))
		if err != nil {
			continue
		}
		docs = append(docs, *doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// SearchResult is one scored hit from Search.
type SearchResult struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Path    string   `json:"path"`
	Score   int      `json:"score"`
	Tags    []string `json:"tags"`
	Snippet string   `json:"snippet"`
}

// Search scores documents against a case-insensitive query: title match 10
// points, tag match 5, content occurrences up to 5, wikilink connections
// up to 3. Results sort by score descending, capped at maxResults
// (default 10).
func (m *Manager) Search(query string, maxResults int) ([]SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	q := strings.ToLower(query)

	docs, err := m.List()
	if err != nil {
		return nil, err
	}

	results := []SearchResult{}
	for _, doc := range docs {
		score := 0
		if strings.Contains(strings.ToLower(doc.Meta.Title), q) {
			score += 10
		}
		for _, tag := range doc.Meta.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				score += 5
				break
			}
		}
		body := strings.ToLower(doc.Content)
		if occurrences := strings.Count(body, q); occurrences > 0 {
			if occurrences > 5 {
				occurrences = 5
			}
			score += occurrences
		}

		backlinks, err := m.resolver.Backlinks(doc.ID)
		if err != nil {
			return nil, err
		}
		connections := len(wikilink.Parse(doc.Content)) + len(backlinks)
		if connections > 3 {
			connections = 3
		}
		score += connections

		if score > 0 {
			results = append(results, SearchResult{
				ID:      doc.ID,
				Title:   doc.Meta.Title,
				Path:    doc.Path,
				Score:   score,
				Tags:    doc.Meta.Tags,
				Snippet: extractSnippet(doc.Content, q),
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// extractSnippet returns ~100 characters of context around the first query
// match, or the opening of the text when nothing matches.
func extractSnippet(text, query string) string {
	const contextChars = 100
	lower := strings.ToLower(text)
	pos := strings.Index(lower, query)
	if pos < 0 || query == "" {
		if len(text) > contextChars*2 {
			return strings.TrimSpace(text[:contextChars*2]) + "..."
		}
		return strings.TrimSpace(text)
	}

	start := pos - contextChars
	if start < 0 {
		start = 0
	}
	end := pos + len(query) + contextChars
	if end > len(text) {
		end = len(text)
	}
	snippet := strings.TrimSpace(text[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(text) {
		snippet += "..."
	}
	return snippet
}

// RelatedDoc is one document reached by traversing outgoing wikilinks.
type RelatedDoc struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Path  string   `json:"path"`
	Depth int      `json:"depth"`
	Tags  []string `json:"tags"`
}

// Related walks the outgoing wikilink graph from a document, breadth
// first, up to the given depth (default 1). The starting document is not
// included. Unknown IDs yield an empty result.
func (m *Manager) Related(id string, depth int) ([]RelatedDoc, error) {
	if depth <= 0 {
		depth = 1
	}
	if m.resolver.Resolve(id) == "" {
		return []RelatedDoc{}, nil
	}

	type queued struct {
		id    string
		depth int
	}
	visited := map[string]bool{}
	queue := []queued{{id: id}}
	related := []RelatedDoc{}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		key := strings.ToLower(current.id)
		if visited[key] || current.depth > depth {
			continue
		}
		visited[key] = true

		path := m.resolver.Resolve(current.id)
		if path == "" {
			continue
		}
		doc, err := m.readDocument(path)
		if err != nil {
			continue
		}

		if current.depth > 0 {
			related = append(related, RelatedDoc{
				ID:    doc.ID,
				Title: doc.Meta.Title,
				Path:  doc.Path,
				Depth: current.depth,
				Tags:  doc.Meta.Tags,
			})
		}
		if current.depth < depth {
			for _, link := range wikilink.Parse(doc.Content) {
				if !visited[strings.ToLower(link.Target)] {
					queue = append(queue, queued{id: link.Target, depth: current.depth + 1})
				}
			}
		}
	}
	return related, nil
}

// AddWikilink appends a wikilink to the source document's body unless an
// equivalent link already exists. Returns false when the source is
// unknown.
func (m *Manager) AddWikilink(sourceID, target, context string) (bool, error) {
	doc, err := m.Get(sourceID)
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, nil
	}

	for _, link := range wikilink.Parse(doc.Content) {
		if strings.EqualFold(link.Target, target) {
			return true, nil
		}
	}

	line := fmt.Sprintf("[[%s]]", target)
	if context != "" {
		line = context + " " + line
	}
	content := doc.Content + "\n\n" + line + "\n"
	return m.rewrite(sourceID, func(d *Document) { d.Content = content })
}
