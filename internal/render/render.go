// Package render compiles the user templates and provides the helpers and
// data contexts they are rendered against.
package render

import (
	"fmt"
	"html"
	"strconv"
	"time"

	"github.com/aymerick/raymond"
	"github.com/taigrr/raindrop-sync/internal/types"
)

// Options are the settings the helpers depend on.
type Options struct {
	MarkdownHighlights bool
	ColoredHighlights  bool
	DateFormat         string         // token format for creationDate, YYYY-MM-DD when empty
	Location           *time.Location // zone for custom date tokens, time.Local when nil
}

// Renderer compiles templates bound to a fixed set of options.
type Renderer struct {
	opts Options
}

// Template is a compiled template with the helpers registered.
type Template struct {
	tpl *raymond.Template
}

// New returns a renderer for opts.
func New(opts Options) *Renderer {
	if opts.DateFormat == "" {
		opts.DateFormat = defaultDateFormat
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Renderer{opts: opts}
}

// Compile parses source and registers the helpers on it.
func (r *Renderer) Compile(source string) (*Template, error) {
	tpl, err := raymond.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	tpl.RegisterHelpers(r.helpers())
	return &Template{tpl: tpl}, nil
}

// Render executes the template against data.
func (t *Template) Render(data any) (string, error) {
	out, err := t.tpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return out, nil
}

// Filename renders the filename template for b and sanitizes the result.
// Entities produced by escaping are decoded first. A name that sanitizes
// to nothing falls back to the bookmark id.
func (r *Renderer) Filename(t *Template, b types.Bookmark) (string, error) {
	out, err := t.Render(r.FilenameContext(b))
	if err != nil {
		return "", err
	}
	name := SanitizeFilename(html.UnescapeString(out))
	if name == "" {
		name = strconv.Itoa(b.ID)
	}
	return name, nil
}
