package render

import "github.com/taigrr/raindrop-sync/internal/types"

// HighlightInput is what formatHighlightText accepts: either a bare text
// or a highlight with its color.
type HighlightInput interface {
	highlight() (text, color string)
}

// BareHighlight is highlight text with no color.
type BareHighlight string

func (b BareHighlight) highlight() (string, string) { return string(b), "" }

// HighlightView is the template view of a highlight.
type HighlightView struct {
	ID      string `handlebars:"id"`
	Text    string
	Note    string
	Color   string
	Created string
}

func (h HighlightView) highlight() (string, string) { return h.Text, h.Color }

// BookmarkContext builds the data a bookmark template renders against.
// extra is merged last, so it can add computed fields like collectionPath.
// The service's original _id and collection.$id names are kept for
// templates written against the raw API shape. Slices have no length
// property here, so tagCount and highlightCount stand in for tags.length
// and highlights.length.
func BookmarkContext(b types.Bookmark, extra map[string]any) map[string]any {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	highlights := make([]HighlightView, 0, len(b.Highlights))
	for _, h := range b.Highlights {
		highlights = append(highlights, HighlightView{
			ID:      h.ID,
			Text:    h.Text,
			Note:    h.Note,
			Color:   h.Color,
			Created: h.Created,
		})
	}

	ctx := map[string]any{
		"id":             b.ID,
		"_id":            b.ID,
		"title":          b.Title,
		"excerpt":        b.Excerpt,
		"note":           b.Note,
		"link":           b.Link,
		"cover":          b.Cover,
		"created":        b.Created,
		"lastUpdate":     b.LastUpdate,
		"type":           b.Type,
		"domain":         b.Domain,
		"collectionId":   b.CollectionID,
		"collection":     map[string]any{"$id": b.CollectionID},
		"tags":           tags,
		"tagCount":       len(tags),
		"highlights":     highlights,
		"highlightCount": len(highlights),
	}
	for k, v := range extra {
		ctx[k] = v
	}
	return ctx
}

// FilenameContext builds the data the filename template renders against:
// the bookmark fields plus raindropId, an Untitled fallback title and the
// creation date formatted with the configured date format.
func (r *Renderer) FilenameContext(b types.Bookmark) map[string]any {
	title := b.Title
	if title == "" {
		title = "Untitled"
	}
	return BookmarkContext(b, map[string]any{
		"raindropId":   b.ID,
		"title":        title,
		"creationDate": r.FormatCustomDate(b.Created, r.opts.DateFormat),
	})
}
