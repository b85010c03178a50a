package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/taigrr/raindrop-sync/internal/filesystem"
	"github.com/taigrr/raindrop-sync/internal/render"
	"github.com/taigrr/raindrop-sync/internal/tree"
	"github.com/taigrr/raindrop-sync/internal/types"
)

// RenameFiles moves existing file-view notes to the path the current
// filename template produces. Bookmarks without a note are left alone.
func (s *Service) RenameFiles(ctx context.Context) (Result, error) {
	return s.execute(ctx, opRename, func(ctx context.Context, r *run) error {
		if s.index == nil {
			r.notify("The metadata index is required to rename files.")
			return ErrCollaboratorMissing
		}
		r.notify("Starting file rename process...")

		collections, err := s.remote.Collections(ctx)
		if err != nil {
			return err
		}
		t := tree.Build(collections)
		rnd := s.renderer(r.cfg)
		nameTpl, err := rnd.Compile(r.cfg.FileViewFilenameTemplate)
		if err != nil {
			return err
		}
		if _, err := s.index.Refresh(ctx); err != nil {
			return err
		}

		rn := &renamer{svc: s, run: r, rnd: rnd, nameTpl: nameTpl}
		for _, id := range r.cfg.CollectionIDs {
			if id == types.UnsortedCollectionID {
				continue
			}
			title := "Unknown"
			if n, ok := t.Index[id]; ok {
				title = n.Title()
			}
			if err := rn.collection(ctx, id, joinPath(r.cfg.FileViewFolder, render.SanitizeFolder(title))); err != nil {
				return err
			}
		}
		if r.cfg.IsSelected(types.UnsortedCollectionID) {
			folder := joinPath(r.cfg.FileViewFolder, types.UnsortedTitle)
			if err := rn.collection(ctx, types.UnsortedCollectionID, folder); err != nil {
				return err
			}
		}

		r.notify(fmt.Sprintf("File rename complete. %d files renamed.", r.result.Renamed))
		s.regenerateAfter(ctx, r, t)
		return nil
	})
}

type renamer struct {
	svc     *Service
	run     *run
	rnd     *render.Renderer
	nameTpl *render.Template
}

// collection moves the notes of one collection's bookmarks into folder.
func (rn *renamer) collection(ctx context.Context, id int, folder string) error {
	bookmarks, err := rn.svc.remote.Bookmarks(ctx, id, "", rn.run.cfg.OnlyBookmarksWithHighlights)
	if err != nil {
		return err
	}
	for _, b := range bookmarks {
		rn.run.result.Items++
		name, err := rn.rnd.Filename(rn.nameTpl, b)
		if err != nil {
			rn.run.log.Warn("failed to render filename", "id", b.ID, "err", err)
			continue
		}
		target := joinPath(folder, name+".md")

		entry, found, err := rn.svc.index.Lookup(ctx, b.ID)
		if err != nil {
			return err
		}
		existing := entry.Path
		if !found || existing == target {
			continue
		}

		err = rn.svc.vault.MoveNote(types.MoveNoteParams{OldPath: existing, NewPath: target})
		if errors.Is(err, filesystem.ErrExists) {
			rn.run.log.Warn("rename target already exists", "id", b.ID, "from", existing, "to", target)
			continue
		}
		if err != nil {
			return err
		}
		if err := rn.svc.index.Remove(ctx, existing); err != nil {
			return err
		}
		if err := rn.svc.index.Put(ctx, target, b.ID); err != nil {
			return err
		}
		rn.run.log.Debug("renamed note", "from", existing, "to", target)
		rn.run.result.Renamed++
	}
	return nil
}
