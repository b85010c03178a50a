package types

const (
	// UnsortedCollectionID is the synthetic collection holding bookmarks
	// that belong to no collection. It never appears in the remote list.
	UnsortedCollectionID = 0

	// UnsortedTitle names the synthetic collection in output.
	UnsortedTitle = "Unsorted"
)

type (
	// Collection is a remote folder-like grouping of bookmarks.
	Collection struct {
		ID        int      `json:"id"`
		Title     string   `json:"title"`
		ParentID  *int     `json:"parentId,omitempty"`
		CoverURLs []string `json:"cover,omitempty"`
	}

	// Bookmark is a saved link with its notes and highlights.
	// Timestamps are kept as the ISO 8601 strings the service returns.
	Bookmark struct {
		ID           int         `json:"id"`
		Title        string      `json:"title"`
		Excerpt      string      `json:"excerpt"`
		Note         string      `json:"note"`
		Link         string      `json:"link"`
		Cover        string      `json:"cover,omitempty"`
		Created      string      `json:"created"`
		LastUpdate   string      `json:"lastUpdate"`
		Type         string      `json:"type"`
		Domain       string      `json:"domain"`
		CollectionID int         `json:"collectionId"`
		Tags         []string    `json:"tags"`
		Highlights   []Highlight `json:"highlights"`
	}

	// Highlight is an excerpt of a bookmark's content.
	Highlight struct {
		ID      string `json:"id"`
		Text    string `json:"text"`
		Note    string `json:"note"`
		Created string `json:"created"`
		Color   string `json:"color,omitempty"`
	}
)

// HasParent reports whether the collection references a parent.
func (c Collection) HasParent() bool {
	return c.ParentID != nil
}

// UpdatedAt returns the last-updated timestamp, falling back to creation.
func (b Bookmark) UpdatedAt() string {
	if b.LastUpdate != "" {
		return b.LastUpdate
	}
	return b.Created
}
