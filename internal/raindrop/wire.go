package raindrop

import "github.com/taigrr/raindrop-sync/internal/types"

// ref is the service's {"$id": n} reference shape.
type ref struct {
	ID int `json:"$id"`
}

type wireCollection struct {
	ID     int      `json:"_id"`
	Title  string   `json:"title"`
	Parent *ref     `json:"parent"`
	Cover  []string `json:"cover"`
}

type wireHighlight struct {
	ID          string `json:"_id"`
	Text        string `json:"text"`
	Note        string `json:"note"`
	Color       string `json:"color"`
	Created     string `json:"created"`
	RaindropRef int    `json:"raindropRef"`
}

type wireItem struct {
	ID         int             `json:"_id"`
	Title      string          `json:"title"`
	Excerpt    string          `json:"excerpt"`
	Note       string          `json:"note"`
	Link       string          `json:"link"`
	Cover      string          `json:"cover"`
	Created    string          `json:"created"`
	LastUpdate string          `json:"lastUpdate"`
	Type       string          `json:"type"`
	Domain     string          `json:"domain"`
	Collection *ref            `json:"collection"`
	Tags       []string        `json:"tags"`
	Highlights []wireHighlight `json:"highlights"`
}

type collectionsResponse struct {
	Items []wireCollection `json:"items"`
}

type highlightsResponse struct {
	Items []wireHighlight `json:"items"`
}

type itemsResponse struct {
	Items []wireItem `json:"items"`
}

type itemResponse struct {
	Item *wireItem `json:"item"`
}

func (w wireCollection) toCollection() types.Collection {
	c := types.Collection{
		ID:        w.ID,
		Title:     w.Title,
		CoverURLs: w.Cover,
	}
	if w.Parent != nil {
		id := w.Parent.ID
		c.ParentID = &id
	}
	return c
}

func (w wireItem) toBookmark() types.Bookmark {
	b := types.Bookmark{
		ID:         w.ID,
		Title:      w.Title,
		Excerpt:    w.Excerpt,
		Note:       w.Note,
		Link:       w.Link,
		Cover:      w.Cover,
		Created:    w.Created,
		LastUpdate: w.LastUpdate,
		Type:       w.Type,
		Domain:     w.Domain,
		Tags:       w.Tags,
	}
	if w.Collection != nil {
		b.CollectionID = w.Collection.ID
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	b.Highlights = make([]types.Highlight, 0, len(w.Highlights))
	for _, h := range w.Highlights {
		b.Highlights = append(b.Highlights, types.Highlight{
			ID:      h.ID,
			Text:    h.Text,
			Note:    h.Note,
			Created: h.Created,
			Color:   h.Color,
		})
	}
	return b
}
