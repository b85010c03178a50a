package render

import (
	"regexp"
	"strings"
	"time"

	"github.com/aymerick/raymond"
	"github.com/ncruces/go-strftime"
	"github.com/taigrr/raindrop-sync/internal/types"
	"github.com/taigrr/raindrop-sync/internal/uri"
)

const (
	defaultDateFormat = "YYYY-MM-DD"

	// Continuation paragraphs become nested list items at these depths.
	textIndent      = "            - "
	highlightIndent = "        - "
)

// highlightClasses maps service colors to the CSS classes of the vault
// theme. Unknown colors use yellow.
var highlightClasses = map[string]string{
	"red":    "coral",
	"green":  "green",
	"yellow": "yellow",
	"blue":   "blue",
}

var paragraphBreak = regexp.MustCompile(`\n+`)

// dateTokens are matched left to right, longest first.
var dateTokens = []struct{ token, directive string }{
	{"YYYY", "%Y"},
	{"MM", "%m"},
	{"DD", "%d"},
	{"HH", "%H"},
	{"mm", "%M"},
}

func (r *Renderer) helpers() map[string]any {
	return map[string]any{
		"formatDate": func(date any) string {
			s := toString(date)
			t, ok := parseTime(s)
			if !ok {
				return s
			}
			return t.UTC().Format(time.DateOnly)
		},
		"formatCustomDate": func(date, format any) string {
			f, _ := format.(string)
			return r.FormatCustomDate(toString(date), f)
		},
		"formatTags": func(tags any) string {
			return FormatTags(toStrings(tags))
		},
		"formatText": func(text any) raymond.SafeString {
			return raymond.SafeString(FormatText(toString(text)))
		},
		"formatHighlightText": func(h any) raymond.SafeString {
			in := toHighlight(h)
			if in == nil {
				return ""
			}
			return raymond.SafeString(r.FormatHighlight(in))
		},
		"raindropUrl": func(b any) string {
			id := bookmarkID(b)
			if id == 0 {
				return ""
			}
			return uri.RaindropItemURL(id)
		},
		"raindropLink": func(b any) raymond.SafeString {
			id := bookmarkID(b)
			if id == 0 {
				return ""
			}
			return raymond.SafeString(uri.RaindropItemLink(id))
		},
		"creationDate": func(options *raymond.Options) string {
			return r.FormatCustomDate(options.ValueStr("created"), options.HashStr("format"))
		},
	}
}

// FormatCustomDate replaces the YYYY, MM, DD, HH and mm tokens of format
// with the components of date in the configured zone. An empty format
// means YYYY-MM-DD; an unparsable date is returned unchanged.
func (r *Renderer) FormatCustomDate(date, format string) string {
	if date == "" {
		return ""
	}
	if format == "" {
		format = defaultDateFormat
	}
	t, ok := parseTime(date)
	if !ok {
		return date
	}
	return strftime.Format(strftimeLayout(format), t.In(r.opts.Location))
}

// FormatTags prefixes every tag with # and joins them with spaces.
func FormatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = "#" + tag
	}
	return strings.Join(out, " ")
}

// FormatText escapes # and turns every paragraph after the first into a
// nested list item.
func FormatText(text string) string {
	if text == "" {
		return ""
	}
	escaped := escapeHashes(text)
	paras := paragraphs(escaped)
	if len(paras) <= 1 {
		return escaped
	}
	return paras[0] + "\n" + indentEach(paras[1:], textIndent, func(p string) string { return p })
}

// FormatHighlight renders a highlight with FormatText's paragraph rules,
// wrapping each paragraph in a highlight marker.
func (r *Renderer) FormatHighlight(h HighlightInput) string {
	text, color := h.highlight()
	if !r.opts.MarkdownHighlights {
		return text
	}
	if text == "" {
		return ""
	}

	escaped := escapeHashes(text)
	paras := paragraphs(escaped)
	wrap := func(s string) string { return r.wrapHighlight(s, color) }
	if len(paras) <= 1 {
		return wrap(escaped)
	}
	return wrap(paras[0]) + "\n" + indentEach(paras[1:], highlightIndent, wrap)
}

func (r *Renderer) wrapHighlight(s, color string) string {
	if r.opts.ColoredHighlights && color != "" {
		class, ok := highlightClasses[color]
		if !ok {
			class = highlightClasses["yellow"]
		}
		return `<mark class="` + class + `">` + s + "</mark>"
	}
	return "==" + s + "=="
}

func escapeHashes(s string) string {
	return strings.ReplaceAll(s, "#", `\#`)
}

func paragraphs(s string) []string {
	var out []string
	for _, p := range paragraphBreak.Split(s, -1) {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func indentEach(paras []string, prefix string, fn func(string) string) string {
	lines := make([]string, len(paras))
	for i, p := range paras {
		lines[i] = prefix + fn(p)
	}
	return strings.Join(lines, "\n")
}

// strftimeLayout translates the token format into a strftime layout.
func strftimeLayout(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); {
		matched := false
		for _, tok := range dateTokens {
			if strings.HasPrefix(format[i:], tok.token) {
				b.WriteString(tok.directive)
				i += len(tok.token)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if format[i] == '%' {
			b.WriteString("%%")
		} else {
			b.WriteByte(format[i])
		}
		i++
	}
	return b.String()
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return raymond.Str(v)
	}
}

func toStrings(v any) []string {
	switch tags := v.(type) {
	case []string:
		return tags
	case []any:
		out := make([]string, 0, len(tags))
		for _, t := range tags {
			out = append(out, toString(t))
		}
		return out
	default:
		return nil
	}
}

func toHighlight(v any) HighlightInput {
	switch h := v.(type) {
	case *HighlightView:
		if h == nil {
			return nil
		}
		return *h
	case HighlightInput:
		return h
	case string:
		return BareHighlight(h)
	default:
		return nil
	}
}

func bookmarkID(v any) int {
	switch b := v.(type) {
	case map[string]any:
		for _, key := range []string{"id", "_id", "raindropId"} {
			if id, ok := b[key].(int); ok && id != 0 {
				return id
			}
		}
	case types.Bookmark:
		return b.ID
	case *types.Bookmark:
		if b != nil {
			return b.ID
		}
	}
	return 0
}
