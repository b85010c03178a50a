// Package frontmatter reads the YAML header of synced notes.
package frontmatter

import (
	"strconv"
	"strings"
	"time"

	"github.com/taigrr/raindrop-sync/internal/types"
	"gopkg.in/yaml.v3"
)

// RaindropIDKey is the frontmatter key carrying a note's bookmark id.
const RaindropIDKey = "raindropId"

// LastUpdatedKey is the frontmatter key carrying the bookmark's last
// update time as the service reported it.
const LastUpdatedKey = "raindropLastUpdated"

// Handler parses frontmatter.
type Handler struct{}

// New creates a new Handler.
func New() *Handler {
	return &Handler{}
}

// Header is the subset of the file-view frontmatter the sync reads back.
type Header struct {
	RaindropID  int
	LastUpdated string
}

// Parse splits content into frontmatter and body. Content without a
// well-formed header is returned whole with empty frontmatter.
func (h *Handler) Parse(content string) types.ParsedNote {
	result := types.ParsedNote{
		Frontmatter:     make(map[string]any),
		Content:         content,
		OriginalContent: content,
	}

	yamlContent, body, ok := split(content)
	if !ok {
		return result
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(yamlContent), &fm); err != nil {
		return result
	}
	if fm != nil {
		result.Frontmatter = fm
	}
	result.Content = body
	return result
}

// ParseHeader decodes the sync fields of the header. ok is false when the
// note has no header or the header carries no bookmark id.
func (h *Handler) ParseHeader(content string) (Header, bool) {
	yamlContent, _, ok := split(content)
	if !ok {
		return Header{}, false
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(yamlContent), &raw); err != nil {
		return Header{}, false
	}
	id, ok := RaindropID(raw)
	if !ok {
		return Header{}, false
	}

	header := Header{RaindropID: id}
	header.LastUpdated = timestamp(raw[LastUpdatedKey])
	return header, true
}

// RaindropID returns the bookmark id recorded in fm.
func RaindropID(fm map[string]any) (int, bool) {
	id, ok := toInt(fm[RaindropIDKey])
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// timestamp reads a time value that YAML may have decoded either as text
// or, when unquoted, as a time.
func timestamp(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

// split returns the YAML between the opening and closing --- lines and the
// body after it.
func split(content string) (yamlContent, body string, ok bool) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, "---\n") {
		return "", "", false
	}
	rest := content[4:]

	if strings.HasPrefix(rest, "---\n") {
		return "", rest[4:], true
	}
	end := strings.Index(rest, "\n---\n")
	if end == -1 {
		if strings.HasSuffix(rest, "\n---") {
			return rest[:len(rest)-4], "", true
		}
		return "", "", false
	}
	return rest[:end], rest[end+5:], true
}
