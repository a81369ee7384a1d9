package timelog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// SystemDir is the hidden directory under the workspace base where
	// analytics state lives.
	SystemDir = ".system"
	// TimeFile is the single JSON document holding all time data.
	TimeFile = "time_analytics.json"
	// DocumentVersion is written into every saved document.
	DocumentVersion = "1.0"
)

// Store defines the persistence contract for the time document.
// Abstracted for testability (DIP).
type Store interface {
	Load() (*Document, error)
	Save(doc *Document) error
}

// FileStore implements Store over a single JSON file. There is no locking:
// concurrent writers would race and silently lose updates. Acceptable for a
// single-user local tool.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store rooted at baseDir. The document
// lives at <baseDir>/.system/time_analytics.json.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{path: filepath.Join(baseDir, SystemDir, TimeFile)}
}

// Path returns the absolute path of the backing file.
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the whole document. A missing file or undecodable JSON yields
// an empty default document rather than an error: the system degrades to
// "no data", it never refuses to start.
func (fs *FileStore) Load() (*Document, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		return emptyDocument(), nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return emptyDocument(), nil
	}
	if doc.Entries == nil {
		doc.Entries = []Entry{}
	}
	if doc.Version == "" {
		doc.Version = DocumentVersion
	}
	return &doc, nil
}

// Save writes the whole document, creating the .system directory on first
// use.
func (fs *FileStore) Save(doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o755); err != nil {
		return fmt.Errorf("creating system directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling time document: %w", err)
	}

	return os.WriteFile(fs.path, data, 0o644)
}

func emptyDocument() *Document {
	return &Document{Entries: []Entry{}, Version: DocumentVersion}
}
