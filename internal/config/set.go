package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// settable maps user-facing keys to setters.
var settable = map[string]func(c *Settings, v string) error{
	"apiToken":                    func(c *Settings, v string) error { c.APIToken = v; return nil },
	"apiBaseUrl":                  func(c *Settings, v string) error { c.APIBaseURL = v; return nil },
	"logLevel":                    func(c *Settings, v string) error { c.LogLevel = v; return nil },
	"listViewFolder":              func(c *Settings, v string) error { c.ListViewFolder = v; return nil },
	"fileViewFolder":              func(c *Settings, v string) error { c.FileViewFolder = v; return nil },
	"fileViewIndexFolder":         func(c *Settings, v string) error { c.FileViewIndexFolder = v; return nil },
	"fileViewFilenameTemplate":    func(c *Settings, v string) error { c.FileViewFilenameTemplate = v; return nil },
	"fileViewDateFormat":          func(c *Settings, v string) error { c.FileViewDateFormat = v; return nil },
	"listTemplate":                func(c *Settings, v string) error { c.ListTemplate = v; return nil },
	"fileViewTemplate":            func(c *Settings, v string) error { c.FileViewTemplate = v; return nil },
	"cascadeSelection":            boolSetter(func(c *Settings) *bool { return &c.CascadeSelection }),
	"useMarkdownHighlights":       boolSetter(func(c *Settings) *bool { return &c.UseMarkdownHighlights }),
	"useColoredHighlights":        boolSetter(func(c *Settings) *bool { return &c.UseColoredHighlights }),
	"onlyBookmarksWithHighlights": boolSetter(func(c *Settings) *bool { return &c.OnlyBookmarksWithHighlights }),
	"fileViewColumns.cover":       boolSetter(func(c *Settings) *bool { return &c.FileViewColumns.Cover }),
	"fileViewColumns.tags":        boolSetter(func(c *Settings) *bool { return &c.FileViewColumns.Tags }),
	"fileViewColumns.highlights":  boolSetter(func(c *Settings) *bool { return &c.FileViewColumns.Highlights }),
	"fileViewColumns.notes":       boolSetter(func(c *Settings) *bool { return &c.FileViewColumns.Notes }),
	"fileViewColumns.type":        boolSetter(func(c *Settings) *bool { return &c.FileViewColumns.Type }),
	"ignoredPatterns":             func(c *Settings, v string) error { c.IgnoredPatterns = splitList(v); return nil },
}

func boolSetter(field func(c *Settings) *bool) func(c *Settings, v string) error {
	return func(c *Settings, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		*field(c) = b
		return nil
	}
}

// splitList parses a comma separated value. An empty value clears the list.
func splitList(v string) []string {
	var out []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Set assigns a setting by its file key. List settings take a comma
// separated value.
func (c *Settings) Set(key, value string) error {
	setter, ok := settable[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (available: %v)", key, SettableKeys())
	}
	return setter(c, value)
}

// SettableKeys lists the keys accepted by Set.
func SettableKeys() []string {
	keys := make([]string, 0, len(settable))
	for k := range settable {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResetTemplate restores one of the templates to its default.
func (c *Settings) ResetTemplate(which string) error {
	switch which {
	case "list":
		c.ListTemplate = DefaultListTemplate
	case "file":
		c.FileViewTemplate = DefaultFileViewTemplate
	case "filename":
		c.FileViewFilenameTemplate = DefaultFilenameTemplate
	default:
		return fmt.Errorf("unknown template %q: use list, file or filename", which)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Settings) Redacted() Settings {
	out := *c
	if out.APIToken != "" {
		out.APIToken = "********"
	}
	return out
}
