// Package wikilink parses and resolves [[wikilink]] references between
// markdown documents in the workspace.
//
// Supported syntax: [[Target]] and [[Target|display text]]. Resolution is
// filename-based and case-insensitive; no markdown parsing beyond the link
// pattern itself.
package wikilink

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var pattern = regexp.MustCompile(`\[\[([^\]|]+)(?:\|([^\]]+))?\]\]`)

// Link is one parsed wikilink occurrence.
type Link struct {
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// String renders the link back in wikilink syntax.
func (l Link) String() string {
	if l.Label != "" {
		return fmt.Sprintf("[[%s|%s]]", l.Target, l.Label)
	}
	return fmt.Sprintf("[[%s]]", l.Target)
}

// Parse extracts all wikilinks from markdown content, in document order.
func Parse(content string) []Link {
	var links []Link
	for _, match := range pattern.FindAllStringSubmatch(content, -1) {
		link := Link{Target: strings.TrimSpace(match[1])}
		if match[2] != "" {
			link.Label = strings.TrimSpace(match[2])
		}
		links = append(links, link)
	}
	return links
}

// Backlink records that one document links to another.
type Backlink struct {
	Source     string `json:"source"`
	SourcePath string `json:"source_path"`
	Context    string `json:"context"`
}

// BrokenLink is a wikilink whose target does not resolve to a document.
type BrokenLink struct {
	Link   string `json:"link"`
	Target string `json:"target"`
	Source string `json:"source"`
}

// Resolver maps wikilink targets to markdown files under a base directory.
// Search order: Knowledge/, People/, then the base directory itself.
type Resolver struct {
	baseDir string
}

// NewResolver returns a resolver rooted at baseDir.
func NewResolver(baseDir string) *Resolver {
	return &Resolver{baseDir: baseDir}
}

func (r *Resolver) searchDirs() []string {
	return []string{
		filepath.Join(r.baseDir, "Knowledge"),
		filepath.Join(r.baseDir, "People"),
		r.baseDir,
	}
}

// Resolve finds the file for a wikilink target. An exact filename match
// wins; otherwise a case-insensitive match is accepted. Returns "" when
// nothing matches.
func (r *Resolver) Resolve(target string) string {
	normalized := strings.TrimSpace(target)
	for _, dir := range r.searchDirs() {
		exact := filepath.Join(dir, normalized+".md")
		if _, err := os.Stat(exact); err == nil {
			return exact
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasSuffix(name, ".md") {
				continue
			}
			stem := strings.TrimSuffix(name, ".md")
			if strings.EqualFold(stem, normalized) {
				return filepath.Join(dir, name)
			}
		}
	}
	return ""
}

// Backlinks scans every markdown document for links pointing at the target
// (case-insensitive), with a snippet of surrounding context per hit.
func (r *Resolver) Backlinks(target string) ([]Backlink, error) {
	backlinks := []Backlink{}
	err := r.walkDocs(func(path, content string) {
		for _, link := range Parse(content) {
			if !strings.EqualFold(link.Target, target) {
				continue
			}
			backlinks = append(backlinks, Backlink{
				Source:     docID(path),
				SourcePath: path,
				Context:    extractContext(content, link.String()),
			})
		}
	})
	return backlinks, err
}

// Validate checks every wikilink in one document and reports the ones that
// don't resolve. A missing document yields a single broken-link record for
// the document itself.
func (r *Resolver) Validate(docPath string) ([]BrokenLink, error) {
	data, err := os.ReadFile(docPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []BrokenLink{{Target: docID(docPath), Source: docPath}}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", docPath, err)
	}
	return r.brokenLinks(docPath, string(data)), nil
}

// ValidateAll checks every document in the workspace.
func (r *Resolver) ValidateAll() ([]BrokenLink, error) {
	broken := []BrokenLink{}
	err := r.walkDocs(func(path, content string) {
		broken = append(broken, r.brokenLinks(path, content)...)
	})
	return broken, err
}

func (r *Resolver) brokenLinks(docPath, content string) []BrokenLink {
	broken := []BrokenLink{}
	for _, link := range Parse(content) {
		if r.Resolve(link.Target) == "" {
			broken = append(broken, BrokenLink{
				Link:   link.String(),
				Target: link.Target,
				Source: docPath,
			})
		}
	}
	return broken
}

// walkDocs visits every readable markdown file in the search directories.
// Unreadable files are skipped.
func (r *Resolver) walkDocs(visit func(path, content string)) error {
	seen := map[string]bool{}
	for _, dir := range r.searchDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if seen[path] {
				continue
			}
			seen[path] = true
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			visit(path, string(data))
		}
	}
	return nil
}

func docID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".md")
}

// extractContext returns up to 100 characters around the link, newlines
// flattened.
func extractContext(content, linkStr string) string {
	pos := strings.Index(content, linkStr)
	if pos < 0 {
		return ""
	}
	const contextChars = 100
	start := pos - contextChars
	if start < 0 {
		start = 0
	}
	end := pos + len(linkStr) + contextChars
	if end > len(content) {
		end = len(content)
	}
	snippet := strings.TrimSpace(strings.ReplaceAll(content[start:end], "\n", " "))
	return "..." + snippet + "..."
}
