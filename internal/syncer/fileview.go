package syncer

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/taigrr/raindrop-sync/internal/config"
	"github.com/taigrr/raindrop-sync/internal/render"
	"github.com/taigrr/raindrop-sync/internal/tree"
	"github.com/taigrr/raindrop-sync/internal/types"
)

// SyncFileView writes one note per bookmark under the file-view folder and
// regenerates the index. With incremental set only bookmarks updated since
// the last file-view sync are written, and notes whose expected filename
// changed are moved.
func (s *Service) SyncFileView(ctx context.Context, incremental bool) (Result, error) {
	return s.execute(ctx, opFileView, func(ctx context.Context, r *run) error {
		if incremental && r.cfg.LastSyncFileView == "" {
			r.notify("First sync, running a full sync.")
			incremental = false
		}
		if incremental && s.index == nil {
			r.notify("The metadata index is required for incremental sync in File View.")
			return ErrCollaboratorMissing
		}
		if incremental {
			r.notify("Syncing new Raindrop bookmark files...")
		} else {
			r.notify("Syncing Raindrop bookmark files...")
		}

		collections, err := s.remote.Collections(ctx)
		if err != nil {
			return err
		}
		rnd := s.renderer(r.cfg)
		tpl, err := rnd.Compile(r.cfg.FileViewTemplate)
		if err != nil {
			return err
		}
		nameTpl, err := rnd.Compile(r.cfg.FileViewFilenameTemplate)
		if err != nil {
			return err
		}
		filter, err := s.highlightFilter(ctx, r.cfg)
		if err != nil {
			return err
		}

		fv := &fileView{
			svc: s, run: r, collections: collections, tree: tree.Build(collections),
			rnd: rnd, tpl: tpl, nameTpl: nameTpl, filter: filter,
		}
		if err := s.vault.EnsureDir(r.cfg.FileViewFolder); err != nil {
			return err
		}
		if incremental {
			done, err := fv.incremental(ctx)
			if err != nil || !done {
				return err
			}
		} else if err := fv.full(ctx); err != nil {
			return err
		}

		s.regenerateAfter(ctx, r, fv.tree)

		if incremental {
			r.notify(fmt.Sprintf("Incremental sync complete (File View). %d items synced.", r.result.Items))
		} else {
			r.notify(fmt.Sprintf("Sync complete (File View). %d items synced.", r.result.Items))
		}
		return s.markSynced(r, func(cfg *config.Settings, ts string) { cfg.LastSyncFileView = ts })
	})
}

type fileView struct {
	svc         *Service
	run         *run
	collections []types.Collection
	tree        *tree.Tree
	rnd         *render.Renderer
	tpl         *render.Template
	nameTpl     *render.Template
	filter      map[int]bool
}

// note renders the content and expected filename of one bookmark.
func (fv *fileView) note(b types.Bookmark, collectionPath string) (content, filename string, err error) {
	content, err = fv.tpl.Render(render.BookmarkContext(b, map[string]any{"collectionPath": collectionPath}))
	if err != nil {
		return "", "", err
	}
	name, err := fv.rnd.Filename(fv.nameTpl, b)
	if err != nil {
		return "", "", err
	}
	return content, name + ".md", nil
}

// write stores one note and records it in the index when there is one.
func (fv *fileView) write(ctx context.Context, p, content string, id int) error {
	if err := fv.svc.vault.WriteFile(p, content); err != nil {
		return err
	}
	fv.run.wrote(p)
	if fv.svc.index == nil {
		return nil
	}
	return fv.svc.index.Put(ctx, p, id)
}

// writeCollection writes every bookmark of one collection into folder.
func (fv *fileView) writeCollection(ctx context.Context, folder, collectionPath string, bookmarks []types.Bookmark) error {
	for _, b := range bookmarks {
		cp := collectionPath
		if cp == "" {
			cp = collectionLink(fv.tree, b.CollectionID)
		}
		content, name, err := fv.note(b, cp)
		if err != nil {
			fv.run.log.Warn("failed to render bookmark", "id", b.ID, "err", err)
			continue
		}
		if err := fv.write(ctx, joinPath(folder, name), content, b.ID); err != nil {
			return err
		}
		fv.run.result.Items++
	}
	return nil
}

func (fv *fileView) full(ctx context.Context) error {
	cfg := fv.run.cfg
	selected := cfg.SelectedSet()

	for _, c := range fv.collections {
		if !selected[c.ID] {
			continue
		}
		bookmarks, err := fv.svc.fetch(ctx, fv.run, c.ID, "", fv.filter)
		if err != nil {
			return err
		}
		if len(bookmarks) == 0 {
			continue
		}
		folder := joinPath(cfg.FileViewFolder, render.SanitizeFolder(c.Title))
		if err := fv.writeCollection(ctx, folder, "", bookmarks); err != nil {
			return err
		}
	}

	if !selected[types.UnsortedCollectionID] {
		return nil
	}
	bookmarks, err := fv.svc.fetch(ctx, fv.run, types.UnsortedCollectionID, "", fv.filter)
	if err != nil {
		return err
	}
	folder := joinPath(cfg.FileViewFolder, types.UnsortedTitle)
	return fv.writeCollection(ctx, folder, types.UnsortedTitle, bookmarks)
}

// incremental reports false when there was nothing new to write.
func (fv *fileView) incremental(ctx context.Context) (bool, error) {
	cfg := fv.run.cfg

	var pending []types.Bookmark
	for _, id := range cfg.CollectionIDs {
		bookmarks, err := fv.svc.fetch(ctx, fv.run, id, cfg.LastSyncFileView, fv.filter)
		if err != nil {
			return false, err
		}
		pending = append(pending, bookmarks...)
	}
	if len(pending) == 0 {
		fv.run.notify("No new items to sync.")
		return false, nil
	}

	if _, err := fv.svc.index.Refresh(ctx); err != nil {
		return false, err
	}

	for _, b := range pending {
		content, name, err := fv.note(b, collectionLink(fv.tree, b.CollectionID))
		if err != nil {
			fv.run.log.Warn("failed to render bookmark", "id", b.ID, "err", err)
			continue
		}
		folder := joinPath(cfg.FileViewFolder, render.SanitizeFolder(collectionTitle(fv.tree, b.CollectionID)))
		target := joinPath(folder, name)

		existing, found, err := fv.svc.index.Lookup(ctx, b.ID)
		if err != nil {
			return false, err
		}
		switch {
		case !found:
			err = fv.write(ctx, target, content, b.ID)
		case path.Base(existing.Path) != name:
			fv.run.log.Debug("moving renamed note", "from", existing.Path, "to", target)
			err = fv.move(ctx, existing.Path, target, content, b.ID)
		case current(existing.LastUpdated, b.LastUpdate):
			fv.run.log.Debug("note is current", "id", b.ID, "path", existing.Path)
			continue
		default:
			err = fv.write(ctx, existing.Path, content, b.ID)
		}
		if err != nil {
			return false, err
		}
		fv.run.result.Items++
	}
	return true, nil
}

// move renames the note at from to the new expected filename, replacing
// any stale file there, then rewrites it. The note keeps its creation time,
// which the index tables sort by.
func (fv *fileView) move(ctx context.Context, from, to, content string, id int) error {
	if err := fv.svc.vault.MoveNote(types.MoveNoteParams{OldPath: from, NewPath: to, Overwrite: true}); err != nil {
		return err
	}
	if err := fv.svc.index.Remove(ctx, from); err != nil {
		return err
	}
	return fv.write(ctx, to, content, id)
}

// current reports whether a note's recorded raindropLastUpdated is the same
// instant as the bookmark's update time.
func current(recorded, updated string) bool {
	if recorded == "" || updated == "" {
		return false
	}
	if recorded == updated {
		return true
	}
	a, errA := time.Parse(time.RFC3339Nano, recorded)
	b, errB := time.Parse(time.RFC3339Nano, updated)
	return errA == nil && errB == nil && a.Equal(b)
}
