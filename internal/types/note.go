// Package types defines the data structures shared across raindrop-sync.
package types

type (
	// ParsedNote represents a parsed markdown note with frontmatter.
	ParsedNote struct {
		Frontmatter     map[string]any `json:"frontmatter"`
		Content         string         `json:"content"`
		OriginalContent string         `json:"originalContent"`
	}

	// NoteInfo describes a markdown file tracked by the metadata index.
	NoteInfo struct {
		Path        string `json:"path"`
		Size        int64  `json:"size"`
		Modified    int64  `json:"modified"` // timestamp in milliseconds
		RaindropID  int    `json:"raindropId,omitempty"`
		LastUpdated string `json:"lastUpdated,omitempty"` // raindropLastUpdated header
	}
)
