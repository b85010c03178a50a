// Package syncer runs the list-view and file-view syncs, the index
// generator and the file renamer against a vault.
package syncer

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/taigrr/raindrop-sync/internal/config"
	"github.com/taigrr/raindrop-sync/internal/metaindex"
	"github.com/taigrr/raindrop-sync/internal/render"
	"github.com/taigrr/raindrop-sync/internal/tree"
	"github.com/taigrr/raindrop-sync/internal/types"
	"github.com/taigrr/raindrop-sync/internal/uri"
)

// timestampLayout matches the service's own timestamps so stored markers
// compare lexically against them.
const timestampLayout = "2006-01-02T15:04:05.000Z"

type (
	// Remote fetches data from the bookmarking service.
	Remote interface {
		Collections(ctx context.Context) ([]types.Collection, error)
		Bookmarks(ctx context.Context, collectionID int, since string, highlightsOnly bool) ([]types.Bookmark, error)
		HighlightedBookmarkIDs(ctx context.Context) (map[int]bool, error)
	}

	// Vault is the storage the documents are written to.
	Vault interface {
		WriteFile(path, content string) error
		AppendFile(path, content string) error
		MoveNote(params types.MoveNoteParams) error
		EnsureDir(path string) error
		HasFiles(path string) bool
	}

	// Index finds the note that carries a bookmark id.
	Index interface {
		Refresh(ctx context.Context) (metaindex.RefreshStats, error)
		Lookup(ctx context.Context, raindropID int) (types.NoteInfo, bool, error)
		Put(ctx context.Context, path string, raindropID int) error
		Remove(ctx context.Context, path string) error
	}

	// SettingsStore loads and persists the configuration record.
	SettingsStore interface {
		Load() (*config.Settings, error)
		Save(cfg *config.Settings) error
	}
)

// Deps are the collaborators of a Service. Index may be nil; operations
// that need it then fail with ErrCollaboratorMissing.
type Deps struct {
	Remote   Remote
	Vault    Vault
	Index    Index
	Settings SettingsStore
	Notifier Notifier
	Logger   *log.Logger
	Now      func() time.Time
	Location *time.Location
}

// Service runs one operation at a time.
type Service struct {
	mu       sync.Mutex
	remote   Remote
	vault    Vault
	index    Index
	settings SettingsStore
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
	location *time.Location
}

// Result describes a finished operation.
type Result struct {
	RunID   string   `json:"runId"`
	Items   int      `json:"items"`
	Renamed int      `json:"renamed,omitempty"`
	Written []string `json:"written,omitempty"`
	Notices []string `json:"notices"`
}

// New creates a Service.
func New(d Deps) *Service {
	s := &Service{
		remote:   d.Remote,
		vault:    d.Vault,
		index:    d.Index,
		settings: d.Settings,
		notifier: d.Notifier,
		logger:   d.Logger,
		now:      d.Now,
		location: d.Location,
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.location == nil {
		s.location = time.Local
	}
	return s
}

// run carries the per-operation state.
type run struct {
	svc    *Service
	cfg    *config.Settings
	log    *log.Logger
	result Result
}

func (r *run) notify(msg string) {
	r.result.Notices = append(r.result.Notices, msg)
	r.svc.notifier.Notify(msg)
	r.log.Info(msg)
}

func (r *run) wrote(path string) {
	r.result.Written = append(r.result.Written, path)
}

// operation names one public entry point and its notices.
type operation struct {
	name        string
	noSelection string
	failure     string
}

var (
	opListView = operation{"sync-list", "No collections selected to sync.",
		"A critical error occurred during sync. Check your settings and connection."}
	opFileView = operation{"sync-file", "No collections selected to sync.",
		"A critical error occurred during file sync. Check your settings and connection."}
	opIndex = operation{"regenerate-index", "No collections selected for index.",
		"A critical error occurred during index generation. Check your settings and connection."}
	opRename = operation{"rename-files", "No collections selected.",
		"A critical error occurred during file rename. Check your settings and connection."}
)

// execute guards, prepares and reports one operation. Failures are logged
// in full and shown as a single generic notice.
func (s *Service) execute(ctx context.Context, op operation, fn func(ctx context.Context, r *run) error) (Result, error) {
	if !s.mu.TryLock() {
		s.notifier.Notify("A sync is already running.")
		return Result{}, ErrSyncInProgress
	}
	defer s.mu.Unlock()

	id := newRunID(s.now())
	r := &run{svc: s, log: s.logger.With("run", id, "op", op.name)}
	r.result.RunID = id

	cfg, err := s.settings.Load()
	if err != nil {
		r.log.Error("failed to load settings", "err", err)
		r.notify(op.failure)
		return r.result, err
	}
	r.cfg = cfg

	if len(cfg.CollectionIDs) == 0 {
		r.notify(op.noSelection)
		return r.result, &ConfigError{Reason: "no collections selected"}
	}
	if cfg.APIToken == "" {
		r.notify("Raindrop API token is not set.")
		return r.result, &ConfigError{Reason: "no API token configured"}
	}

	if err := fn(ctx, r); err != nil {
		var cfgErr *ConfigError
		if errors.Is(err, ErrCollaboratorMissing) || errors.As(err, &cfgErr) {
			return r.result, err
		}
		r.log.Error("operation failed", "err", err)
		r.notify(op.failure)
		return r.result, err
	}
	return r.result, nil
}

// markSynced records the completion time of a sync mode.
func (s *Service) markSynced(r *run, set func(cfg *config.Settings, ts string)) error {
	set(r.cfg, s.now().UTC().Format(timestampLayout))
	return s.settings.Save(r.cfg)
}

func (s *Service) renderer(cfg *config.Settings) *render.Renderer {
	return render.New(render.Options{
		MarkdownHighlights: cfg.UseMarkdownHighlights,
		ColoredHighlights:  cfg.UseColoredHighlights,
		DateFormat:         cfg.FileViewDateFormat,
		Location:           s.location,
	})
}

// highlightFilter returns the ids of highlighted bookmarks when the
// highlight-only filter is on, nil otherwise.
func (s *Service) highlightFilter(ctx context.Context, cfg *config.Settings) (map[int]bool, error) {
	if !cfg.OnlyBookmarksWithHighlights {
		return nil, nil
	}
	return s.remote.HighlightedBookmarkIDs(ctx)
}

// fetch returns the bookmarks of one collection, narrowed by filter.
func (s *Service) fetch(ctx context.Context, r *run, collectionID int, since string, filter map[int]bool) ([]types.Bookmark, error) {
	bookmarks, err := s.remote.Bookmarks(ctx, collectionID, since, r.cfg.OnlyBookmarksWithHighlights)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return bookmarks, nil
	}
	var kept []types.Bookmark
	for _, b := range bookmarks {
		if filter[b.ID] {
			kept = append(kept, b)
		}
	}
	return kept, nil
}

// collectionTitle names the collection a bookmark belongs to, falling back
// to Unsorted.
func collectionTitle(t *tree.Tree, id int) string {
	if n, ok := t.Index[id]; ok {
		return n.Title()
	}
	return types.UnsortedTitle
}

// collectionLink returns the wiki link target of a collection's heading in
// its root's index note, or "" for unknown collections.
func collectionLink(t *tree.Tree, id int) string {
	n, ok := t.Index[id]
	if !ok {
		return ""
	}
	root, _ := t.RootOf(id)
	return uri.NoteHeadingTarget(indexNoteName(root), n.Title())
}

// indexNoteName is the file name, without extension, of a root's index
// note. Titles that sanitize to nothing fall back to the collection id.
func indexNoteName(root *tree.Node) string {
	if name := render.SanitizeFilename(root.Title()); name != "" {
		return name
	}
	return strconv.Itoa(root.ID())
}

// maxHeadingLevel is the deepest markdown heading. Deeper collections reuse
// it so their TOC links still resolve.
const maxHeadingLevel = 6

func heading(depth int, title string) string {
	return strings.Repeat("#", min(depth, maxHeadingLevel)) + " " + title + "\n\n"
}

func joinPath(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}
