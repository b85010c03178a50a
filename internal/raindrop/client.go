// Package raindrop is a read-only client for the Raindrop.io REST API.
package raindrop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/taigrr/raindrop-sync/internal/types"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// unsortedRemoteID is the service's id for bookmarks without a collection.
const unsortedRemoteID = -1

// pageSize is the largest page the listing endpoint accepts.
const pageSize = 50

// Client fetches collections, bookmarks and highlights.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	base   *http.Client
	logger *log.Logger
}

// WithHTTPClient sets the client whose transport carries the requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.base = hc }
}

// WithLogger sets the logger used for skipped items.
func WithLogger(l *log.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// New returns a client for baseURL authenticating with token.
func New(baseURL, token string, opts ...Option) *Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	ctx := context.Background()
	if o.base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.base)
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: oauth2.NewClient(ctx, src),
		logger:     o.logger,
	}
}

// Collections fetches root and nested collections concurrently and merges
// them by id. A later duplicate replaces the earlier one in place.
func (c *Client) Collections(ctx context.Context) ([]types.Collection, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	var roots, children collectionsResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.get(gctx, "collections", "/collections", nil, &roots)
	})
	g.Go(func() error {
		return c.get(gctx, "child collections", "/collections/childrens", nil, &children)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	position := make(map[int]int)
	var out []types.Collection
	for _, w := range append(roots.Items, children.Items...) {
		col := w.toCollection()
		if i, ok := position[col.ID]; ok {
			out[i] = col
			continue
		}
		position[col.ID] = len(out)
		out = append(out, col)
	}
	return out, nil
}

// Bookmarks fetches the bookmarks of a collection. Collection 0 is the
// synthetic Unsorted collection. since is an RFC 3339 cutoff; empty means
// everything. With highlightsOnly, only bookmarks that carry highlights are
// returned, fetched one by one; items that fail individually are skipped.
func (c *Client) Bookmarks(ctx context.Context, collectionID int, since string, highlightsOnly bool) ([]types.Bookmark, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	remoteID := collectionID
	if collectionID == types.UnsortedCollectionID {
		remoteID = unsortedRemoteID
	}

	if highlightsOnly {
		return c.highlightedBookmarks(ctx, remoteID, since)
	}

	query := url.Values{}
	query.Set("perpage", strconv.Itoa(pageSize))
	if since != "" {
		query.Set("search", "lastUpdate:>"+dayOf(since))
	}

	var resp itemsResponse
	if err := c.get(ctx, "raindrops", "/raindrops/"+strconv.Itoa(remoteID), query, &resp); err != nil {
		return nil, err
	}

	out := make([]types.Bookmark, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, item.toBookmark())
	}
	return out, nil
}

func (c *Client) highlightedBookmarks(ctx context.Context, remoteID int, since string) ([]types.Bookmark, error) {
	var highlights highlightsResponse
	if err := c.get(ctx, "highlights", "/highlights/"+strconv.Itoa(remoteID), nil, &highlights); err != nil {
		return nil, err
	}
	c.logger.Debug("fetched highlights", "collection", remoteID, "count", len(highlights.Items))

	var ids []int
	seen := make(map[int]bool)
	for _, h := range highlights.Items {
		if h.RaindropRef == 0 || seen[h.RaindropRef] {
			continue
		}
		seen[h.RaindropRef] = true
		ids = append(ids, h.RaindropRef)
	}

	out := make([]types.Bookmark, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var resp itemResponse
		if err := c.get(ctx, "raindrop", "/raindrop/"+strconv.Itoa(id), nil, &resp); err != nil {
			c.logger.Warn("skipping bookmark", "id", id, "err", err)
			continue
		}
		if resp.Item == nil {
			continue
		}

		b := resp.Item.toBookmark()
		if since != "" {
			if updated := b.UpdatedAt(); updated != "" && updated < since {
				continue
			}
		}
		out = append(out, b)
	}
	return out, nil
}

// HighlightedBookmarkIDs returns the ids of every bookmark that carries at
// least one highlight.
func (c *Client) HighlightedBookmarkIDs(ctx context.Context) (map[int]bool, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	var resp highlightsResponse
	if err := c.get(ctx, "highlights", "/highlights", nil, &resp); err != nil {
		return nil, err
	}

	ids := make(map[int]bool)
	for _, h := range resp.Items {
		if h.RaindropRef != 0 {
			ids[h.RaindropRef] = true
		}
	}
	return ids, nil
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &RemoteError{Op: op, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// dayOf truncates an RFC 3339 timestamp to its date.
func dayOf(ts string) string {
	if len(ts) > 10 {
		return ts[:10]
	}
	return ts
}
