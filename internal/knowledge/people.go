package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PersonMeta is the YAML frontmatter of a person profile.
type PersonMeta struct {
	Name                 string   `yaml:"name" json:"name"`
	Role                 string   `yaml:"role,omitempty" json:"role,omitempty"`
	Team                 string   `yaml:"team,omitempty" json:"team,omitempty"`
	CreatedDate          string   `yaml:"created_date" json:"created_date"`
	UpdatedDate          string   `yaml:"updated_date" json:"updated_date"`
	ExpertiseAreas       []string `yaml:"expertise_areas" json:"expertise_areas"`
	RelatedPeople        []string `yaml:"related_people" json:"related_people"`
	CollaborationMinutes int      `yaml:"total_collaboration_time" json:"total_collaboration_time"`
}

// Person is a person profile with its parsed frontmatter and body.
type Person struct {
	ID      string     `json:"id"`
	Path    string     `json:"path"`
	Meta    PersonMeta `json:"metadata"`
	Content string     `json:"content"`
}

// PersonUpdate lists the fields UpdatePerson may change. Nil pointers and
// nil slices leave the current value untouched.
type PersonUpdate struct {
	Content        *string
	Role           *string
	Team           *string
	ExpertiseAreas []string
	RelatedPeople  []string
}

func (m *Manager) peoplePath() string {
	return filepath.Join(m.baseDir, PeopleDir)
}

// CreatePerson writes a new person profile and returns its path. Creating
// a name that already exists is a no-op returning the existing path.
func (m *Manager) CreatePerson(name, role, team, content string) (string, error) {
	if err := os.MkdirAll(m.peoplePath(), 0o755); err != nil {
		return "", fmt.Errorf("creating people directory: %w", err)
	}

	path := filepath.Join(m.peoplePath(), sanitizeFilename(name)+".md")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if content == "" {
		content = fmt.Sprintf("# %s\n\n## Overview\n", name)
	}
	now := m.today()
	meta := PersonMeta{
		Name:           name,
		Role:           role,
		Team:           team,
		CreatedDate:    now,
		UpdatedDate:    now,
		ExpertiseAreas: []string{},
		RelatedPeople:  []string{},
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

// GetPerson returns a profile by ID (filename without .md,
// case-insensitive), or nil if it does not exist.
func (m *Manager) GetPerson(id string) (*Person, error) {
	path := m.personFile(id)
	if path == "" {
		return nil, nil
	}
	return m.readPerson(path)
}

// personFile resolves an ID to a file under People/ only, so a knowledge
// document with the same name never shadows a person.
func (m *Manager) personFile(id string) string {
	path := m.resolver.Resolve(id)
	if path == "" || filepath.Base(filepath.Dir(path)) != PeopleDir {
		return ""
	}
	return path
}

func (m *Manager) readPerson(path string) (*Person, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	person := &Person{
		ID:   strings.TrimSuffix(filepath.Base(path), ".md"),
		Path: path,
	}
	person.Content = decodeDocument(raw, &person.Meta)
	if person.Meta.Name == "" {
		person.Meta.Name = person.ID
	}
	return person, nil
}

// UpdatePerson applies changes to an existing profile and bumps its
// updated date. Returns false when the profile does not exist.
func (m *Manager) UpdatePerson(id string, upd PersonUpdate) (bool, error) {
	return m.rewritePerson(id, func(p *Person) {
		if upd.Content != nil {
			p.Content = *upd.Content
		}
		if upd.Role != nil {
			p.Meta.Role = *upd.Role
		}
		if upd.Team != nil {
			p.Meta.Team = *upd.Team
		}
		if upd.ExpertiseAreas != nil {
			p.Meta.ExpertiseAreas = upd.ExpertiseAreas
		}
		if upd.RelatedPeople != nil {
			p.Meta.RelatedPeople = upd.RelatedPeople
		}
	})
}

// AddCollaborationTime adds minutes to a profile's running collaboration
// total. Returns false when the profile does not exist.
func (m *Manager) AddCollaborationTime(id string, minutes int) (bool, error) {
	return m.rewritePerson(id, func(p *Person) {
		p.Meta.CollaborationMinutes += minutes
	})
}

func (m *Manager) rewritePerson(id string, mutate func(*Person)) (bool, error) {
	person, err := m.GetPerson(id)
	if err != nil {
		return false, err
	}
	if person == nil {
		return false, nil
	}

	mutate(person)
	person.Meta.UpdatedDate = m.today()

	data, err := encodeDocument(person.Meta, person.Content)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(person.Path, data, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", person.Path, err)
	}
	return true, nil
}

// ListPeople returns every person profile, sorted by ID.
func (m *Manager) ListPeople() ([]Person, error) {
	entries, err := os.ReadDir(m.peoplePath())
	if err != nil {
		if os.IsNotExist(err) {
			return []Person{}, nil
		}
		return nil, fmt.Errorf("reading people directory: %w", err)
	}

	people := []Person{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		person, err := m.readPerson(filepath.Join(m.peoplePath(), entry.Name()))
		if err != nil {
			continue
		}
		people = append(people, *person)
	}
	sort.Slice(people, func(i, j int) bool { return people[i].ID < people[j].ID })
	return people, nil
}

// LinkPersonToKnowledge creates a bidirectional link: the knowledge doc
// joins the person's expertise areas, and the person joins the doc's
// related people, both as wikilinks. Returns false when either side does
// not exist.
func (m *Manager) LinkPersonToKnowledge(personID, knowledgeID string) (bool, error) {
	person, err := m.GetPerson(personID)
	if err != nil {
		return false, err
	}
	doc, err := m.Get(knowledgeID)
	if err != nil {
		return false, err
	}
	if person == nil || doc == nil {
		return false, nil
	}

	knowledgeLink := fmt.Sprintf("[[%s]]", doc.ID)
	if !containsString(person.Meta.ExpertiseAreas, knowledgeLink) {
		if _, err := m.rewritePerson(personID, func(p *Person) {
			p.Meta.ExpertiseAreas = append(p.Meta.ExpertiseAreas, knowledgeLink)
		}); err != nil {
			return false, err
		}
	}

	personLink := fmt.Sprintf("[[%s]]", person.ID)
	if !containsString(doc.Meta.RelatedPeople, personLink) {
		if _, err := m.rewrite(knowledgeID, func(d *Document) {
			d.Meta.RelatedPeople = append(d.Meta.RelatedPeople, personLink)
		}); err != nil {
			return false, err
		}
	}
	return true, nil
}

// LinkPeople records a reciprocal relationship between two profiles via
// their related_people lists. Returns false when either profile does not
// exist.
func (m *Manager) LinkPeople(firstID, secondID string) (bool, error) {
	first, err := m.GetPerson(firstID)
	if err != nil {
		return false, err
	}
	second, err := m.GetPerson(secondID)
	if err != nil {
		return false, err
	}
	if first == nil || second == nil {
		return false, nil
	}

	addRelated := func(id, link string) error {
		_, err := m.rewritePerson(id, func(p *Person) {
			if !containsString(p.Meta.RelatedPeople, link) {
				p.Meta.RelatedPeople = append(p.Meta.RelatedPeople, link)
			}
		})
		return err
	}
	if err := addRelated(firstID, fmt.Sprintf("[[%s]]", second.ID)); err != nil {
		return false, err
	}
	if err := addRelated(secondID, fmt.Sprintf("[[%s]]", first.ID)); err != nil {
		return false, err
	}
	return true, nil
}

// ExpertiseMatch is one person matched by FindExpertise.
type ExpertiseMatch struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Role           string   `json:"role,omitempty"`
	Team           string   `json:"team,omitempty"`
	ExpertiseAreas []string `json:"expertise_areas"`
	MatchCount     int      `json:"match_count"`
}

// FindExpertise finds people connected to a topic: one point per matching
// expertise area plus one for a body mention, ranked by match count.
func (m *Manager) FindExpertise(topic string) ([]ExpertiseMatch, error) {
	people, err := m.ListPeople()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(topic)

	matches := []ExpertiseMatch{}
	for _, person := range people {
		count := 0
		for _, area := range person.Meta.ExpertiseAreas {
			clean := strings.NewReplacer("[[", "", "]]", "").Replace(area)
			if strings.Contains(strings.ToLower(clean), q) {
				count++
			}
		}
		if strings.Contains(strings.ToLower(person.Content), q) {
			count++
		}
		if count > 0 {
			matches = append(matches, ExpertiseMatch{
				ID:             person.ID,
				Name:           person.Meta.Name,
				Role:           person.Meta.Role,
				Team:           person.Meta.Team,
				ExpertiseAreas: person.Meta.ExpertiseAreas,
				MatchCount:     count,
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].MatchCount > matches[j].MatchCount })
	return matches, nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
