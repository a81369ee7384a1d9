package knowledge

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	multiSpace           = regexp.MustCompile(`\s+`)
)

// sanitizeFilename makes a title safe to use as a markdown filename:
// invalid characters become spaces, runs of whitespace collapse, and the
// result is capped at 200 characters.
func sanitizeFilename(title string) string {
	name := invalidFilenameChars.ReplaceAllString(title, " ")
	name = multiSpace.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	if len(name) > 200 {
		name = strings.TrimSpace(name[:200])
	}
	return name
}

// sanitizeTag strips characters that would break the YAML frontmatter.
func sanitizeTag(tag string) string {
	tag = strings.ReplaceAll(tag, "---", "-")
	tag = strings.ReplaceAll(tag, "'", "")
	tag = strings.ReplaceAll(tag, `"`, "")
	return strings.TrimSpace(tag)
}

// encodeDocument renders YAML frontmatter followed by the markdown body.
// Line endings in the body are normalized to LF.
func encodeDocument(meta interface{}, body string) ([]byte, error) {
	fm, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encoding frontmatter: %w", err)
	}
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	return []byte("---\n" + string(fm) + "---\n\n" + body), nil
}

// decodeDocument splits a markdown document into frontmatter and body and
// unmarshals the frontmatter into meta. A document without frontmatter (or
// with malformed YAML) decodes as body-only, leaving meta zero-valued.
func decodeDocument(raw []byte, meta interface{}) (body string) {
	content := string(raw)
	if !strings.HasPrefix(content, "---") {
		return strings.TrimSpace(content)
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return strings.TrimSpace(content)
	}
	if err := yaml.Unmarshal([]byte(parts[1]), meta); err != nil {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(parts[2])
}
