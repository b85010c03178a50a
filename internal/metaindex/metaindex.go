// Package metaindex keeps a SQLite cache of which vault note carries which
// bookmark id, read from the notes' frontmatter.
package metaindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/taigrr/raindrop-sync/internal/frontmatter"
	"github.com/taigrr/raindrop-sync/internal/pathfilter"
	"github.com/taigrr/raindrop-sync/internal/types"
	_ "modernc.org/sqlite"
)

// DefaultFile is the database location relative to the vault root.
var DefaultFile = filepath.Join(pathfilter.StateDir, "index.db")

// Index maps vault notes to bookmark ids.
type Index struct {
	db         *sql.DB
	path       string
	vaultPath  string
	pathFilter *pathfilter.PathFilter
	fm         *frontmatter.Handler
	logger     *log.Logger
}

// RefreshStats summarizes a Refresh.
type RefreshStats struct {
	Scanned int
	Parsed  int
	Removed int
	Tracked int
}

type scanned struct {
	relPath  string
	fullPath string
	modified int64
	size     int64
}

type row struct {
	modified int64
	size     int64
}

// Open opens or creates the index for vaultPath. An empty dbPath uses
// DefaultFile inside the vault.
func Open(ctx context.Context, vaultPath, dbPath string, pf *pathfilter.PathFilter, logger *log.Logger) (*Index, error) {
	absVault, err := filepath.Abs(vaultPath)
	if err != nil {
		return nil, err
	}
	if dbPath == "" {
		dbPath = filepath.Join(absVault, DefaultFile)
	}
	if pf == nil {
		pf = pathfilter.New(nil)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	db.SetMaxOpenConns(1)

	idx := &Index{
		db:         db,
		path:       dbPath,
		vaultPath:  absVault,
		pathFilter: pf,
		fm:         frontmatter.New(),
		logger:     logger,
	}
	if err := idx.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

// Path returns the database file path.
func (i *Index) Path() string {
	return i.path
}

// Close releases the database.
func (i *Index) Close() error {
	if i == nil || i.db == nil {
		return nil
	}
	return i.db.Close()
}

// schemaVersion is bumped whenever the notes table changes. The table is a
// cache, so an outdated one is dropped and rebuilt by the next Refresh.
const schemaVersion = "2"

func (i *Index) init(ctx context.Context) error {
	stmts := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := i.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize index: %w", err)
		}
	}

	var version string
	err := i.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'schemaVersion'`).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read index schema version: %w", err)
	}
	if version != schemaVersion {
		i.logger.Debug("rebuilding index", "from", version, "to", schemaVersion)
		stmts = []string{`DROP TABLE IF EXISTS notes;`}
	} else {
		stmts = nil
	}
	stmts = append(stmts,
		`CREATE TABLE IF NOT EXISTS notes (
			path TEXT PRIMARY KEY,
			raindrop_id INTEGER NOT NULL DEFAULT 0,
			last_updated TEXT NOT NULL DEFAULT '',
			mod_time INTEGER NOT NULL,
			size INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_raindrop ON notes(raindrop_id);`,
		`INSERT INTO meta(key, value) VALUES ('schemaVersion', '`+schemaVersion+`')
			ON CONFLICT(key) DO UPDATE SET value = excluded.value;`,
	)
	for _, stmt := range stmts {
		if _, err := i.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize index: %w", err)
		}
	}
	return nil
}

// Refresh brings the index in line with the vault. Only notes whose
// modification time or size changed are re-read; rows for vanished notes
// are dropped.
func (i *Index) Refresh(ctx context.Context) (RefreshStats, error) {
	var stats RefreshStats

	known, err := i.rows(ctx)
	if err != nil {
		return stats, err
	}

	files := i.findMarkdownFiles()
	stats.Scanned = len(files)

	var changed []scanned
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f.relPath] = true
		if r, ok := known[f.relPath]; ok && r.modified == f.modified && r.size == f.size {
			continue
		}
		changed = append(changed, f)
	}

	headers := i.parseAll(ctx, changed)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	stats.Parsed = len(changed)

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to begin index update: %w", err)
	}
	defer tx.Rollback()

	for n, f := range changed {
		if err := upsert(ctx, tx, f.relPath, headers[n], f.modified, f.size); err != nil {
			return stats, err
		}
	}
	for path := range known {
		if present[path] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE path = ?`, path); err != nil {
			return stats, fmt.Errorf("failed to drop %s from index: %w", path, err)
		}
		stats.Removed++
	}
	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit index update: %w", err)
	}

	if err := i.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes WHERE raindrop_id != 0`).Scan(&stats.Tracked); err != nil {
		return stats, fmt.Errorf("failed to count tracked notes: %w", err)
	}

	i.logger.Debug("index refreshed", "scanned", stats.Scanned, "parsed", stats.Parsed, "removed", stats.Removed)
	return stats, nil
}

// parseAll reads the sync header of every file with a pool of workers.
// The result is aligned with files; a zero Header means no bookmark id.
func (i *Index) parseAll(ctx context.Context, files []scanned) []frontmatter.Header {
	headers := make([]frontmatter.Header, len(files))
	if len(files) == 0 {
		return headers
	}

	jobs := make(chan int, len(files))
	for n := range files {
		jobs <- n
	}
	close(jobs)

	numWorkers := max(min(runtime.NumCPU(), len(files)), 1)
	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for n := range jobs {
				if ctx.Err() != nil {
					return
				}
				content, err := os.ReadFile(files[n].fullPath)
				if err != nil {
					i.logger.Warn("skipping unreadable note", "path", files[n].relPath, "err", err)
					continue
				}
				if header, ok := i.fm.ParseHeader(string(content)); ok {
					headers[n] = header
				}
			}
		})
	}
	wg.Wait()
	return headers
}

// findMarkdownFiles walks the vault, skipping filtered folders.
func (i *Index) findMarkdownFiles() []scanned {
	var files []scanned
	_ = filepath.WalkDir(i.vaultPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == i.vaultPath {
			return nil
		}
		rel := filepath.ToSlash(path[len(i.vaultPath)+1:])

		if d.IsDir() {
			if !i.pathFilter.IsAllowed(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !i.pathFilter.IsNote(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, scanned{
			relPath:  rel,
			fullPath: path,
			modified: info.ModTime().UnixMilli(),
			size:     info.Size(),
		})
		return nil
	})
	sort.Slice(files, func(a, b int) bool { return files[a].relPath < files[b].relPath })
	return files
}

func (i *Index) rows(ctx context.Context) (map[string]row, error) {
	rs, err := i.db.QueryContext(ctx, `SELECT path, mod_time, size FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	defer rs.Close()

	out := make(map[string]row)
	for rs.Next() {
		var (
			path string
			r    row
		)
		if err := rs.Scan(&path, &r.modified, &r.size); err != nil {
			return nil, err
		}
		out[path] = r
	}
	return out, rs.Err()
}

// Lookup returns the note recorded for raindropID. A row whose file has
// disappeared is dropped and reported as not found.
func (i *Index) Lookup(ctx context.Context, raindropID int) (types.NoteInfo, bool, error) {
	if raindropID == 0 {
		return types.NoteInfo{}, false, nil
	}

	var n types.NoteInfo
	err := i.db.QueryRowContext(ctx, `
		SELECT path, raindrop_id, last_updated, mod_time, size FROM notes
		WHERE raindrop_id = ? ORDER BY path LIMIT 1`, raindropID,
	).Scan(&n.Path, &n.RaindropID, &n.LastUpdated, &n.Modified, &n.Size)
	if errors.Is(err, sql.ErrNoRows) {
		return types.NoteInfo{}, false, nil
	}
	if err != nil {
		return types.NoteInfo{}, false, fmt.Errorf("failed to look up bookmark %d: %w", raindropID, err)
	}

	if _, err := os.Stat(filepath.Join(i.vaultPath, filepath.FromSlash(n.Path))); err != nil {
		if err := i.Remove(ctx, n.Path); err != nil {
			return types.NoteInfo{}, false, err
		}
		return types.NoteInfo{}, false, nil
	}
	return n, true, nil
}

// Put records that the note at path carries raindropID. The note's
// raindropLastUpdated header is read back so later syncs can tell whether
// it is current.
func (i *Index) Put(ctx context.Context, path string, raindropID int) error {
	path = filepath.ToSlash(strings.TrimPrefix(path, "/"))
	fullPath := filepath.Join(i.vaultPath, filepath.FromSlash(path))
	info, err := os.Stat(fullPath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	header := frontmatter.Header{RaindropID: raindropID}
	if parsed, ok := i.fm.ParseHeader(string(content)); ok && parsed.RaindropID == raindropID {
		header.LastUpdated = parsed.LastUpdated
	}
	return upsert(ctx, i.db, path, header, info.ModTime().UnixMilli(), info.Size())
}

// Remove forgets the note at path.
func (i *Index) Remove(ctx context.Context, path string) error {
	path = filepath.ToSlash(strings.TrimPrefix(path, "/"))
	if _, err := i.db.ExecContext(ctx, `DELETE FROM notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to drop %s from index: %w", path, err)
	}
	return nil
}

// Notes lists the notes that carry a bookmark id, ordered by path.
func (i *Index) Notes(ctx context.Context) ([]types.NoteInfo, error) {
	rs, err := i.db.QueryContext(ctx,
		`SELECT path, raindrop_id, last_updated, mod_time, size FROM notes WHERE raindrop_id != 0 ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rs.Close()

	var notes []types.NoteInfo
	for rs.Next() {
		var n types.NoteInfo
		if err := rs.Scan(&n.Path, &n.RaindropID, &n.LastUpdated, &n.Modified, &n.Size); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rs.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, path string, header frontmatter.Header, modified, size int64) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO notes(path, raindrop_id, last_updated, mod_time, size) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			raindrop_id = excluded.raindrop_id,
			last_updated = excluded.last_updated,
			mod_time = excluded.mod_time,
			size = excluded.size;
	`, path, header.RaindropID, header.LastUpdated, modified, size)
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", path, err)
	}
	return nil
}
