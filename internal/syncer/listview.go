package syncer

import (
	"context"
	"fmt"
	"strings"

	"github.com/taigrr/raindrop-sync/internal/config"
	"github.com/taigrr/raindrop-sync/internal/render"
	"github.com/taigrr/raindrop-sync/internal/tree"
	"github.com/taigrr/raindrop-sync/internal/types"
	"github.com/taigrr/raindrop-sync/internal/uri"
)

// SyncListView writes one document per root collection, or with
// incremental set one dated document holding the bookmarks updated since
// the last list-view sync.
func (s *Service) SyncListView(ctx context.Context, incremental bool) (Result, error) {
	return s.execute(ctx, opListView, func(ctx context.Context, r *run) error {
		if incremental && r.cfg.LastSyncListView == "" {
			r.notify("First sync, running a full sync.")
			incremental = false
		}
		if incremental {
			r.notify("Syncing new Raindrop bookmarks...")
		} else {
			r.notify("Syncing Raindrop bookmarks...")
		}

		collections, err := s.remote.Collections(ctx)
		if err != nil {
			return err
		}
		t := tree.Build(collections)
		tpl, err := s.renderer(r.cfg).Compile(r.cfg.ListTemplate)
		if err != nil {
			return err
		}
		filter, err := s.highlightFilter(ctx, r.cfg)
		if err != nil {
			return err
		}

		lv := &listView{svc: s, run: r, tree: t, tpl: tpl, filter: filter}
		if incremental {
			done, err := lv.incremental(ctx)
			if err != nil || !done {
				return err
			}
			r.notify(fmt.Sprintf("Incremental sync complete. %d items synced.", r.result.Items))
		} else {
			if err := lv.full(ctx); err != nil {
				return err
			}
			r.notify(fmt.Sprintf("Sync complete. %d items synced.", r.result.Items))
		}

		return s.markSynced(r, func(cfg *config.Settings, ts string) { cfg.LastSyncListView = ts })
	})
}

type listView struct {
	svc    *Service
	run    *run
	tree   *tree.Tree
	tpl    *render.Template
	filter map[int]bool
}

// renderAll renders each bookmark trimmed, one per line. A bookmark whose
// render fails is logged and left out.
func (lv *listView) renderAll(bookmarks []types.Bookmark) string {
	var parts []string
	for _, b := range bookmarks {
		out, err := lv.tpl.Render(render.BookmarkContext(b, nil))
		if err != nil {
			lv.run.log.Warn("failed to render bookmark", "id", b.ID, "err", err)
			continue
		}
		parts = append(parts, strings.TrimSpace(out))
	}
	return strings.Join(parts, "\n")
}

// incremental reports false when there was nothing new to write.
func (lv *listView) incremental(ctx context.Context) (bool, error) {
	cfg := lv.run.cfg

	var (
		order  []string
		groups = map[string][]types.Bookmark{}
		total  int
	)
	for _, id := range cfg.CollectionIDs {
		bookmarks, err := lv.svc.fetch(ctx, lv.run, id, cfg.LastSyncListView, lv.filter)
		if err != nil {
			return false, err
		}
		for _, b := range bookmarks {
			title := collectionTitle(lv.tree, b.CollectionID)
			if _, ok := groups[title]; !ok {
				order = append(order, title)
			}
			groups[title] = append(groups[title], b)
			total++
		}
	}
	if total == 0 {
		lv.run.notify("No new items to sync.")
		return false, nil
	}

	now := lv.svc.now()
	var sb strings.Builder
	fmt.Fprintf(&sb, "# New Raindrop Items - %s\n\n", now.In(lv.svc.location).Format("2006-01-02 15:04:05"))
	for _, title := range order {
		fmt.Fprintf(&sb, "## %s\n\n", title)
		sb.WriteString(lv.renderAll(groups[title]))
		sb.WriteString("\n\n")
	}

	// Later runs on the same day add their own section to the day's document.
	name := fmt.Sprintf("Incremental Sync - %s.md", now.UTC().Format("2006-01-02"))
	path := joinPath(cfg.ListViewFolder, name)
	if err := lv.svc.vault.AppendFile(path, strings.TrimRight(sb.String(), "\n")+"\n"); err != nil {
		return false, err
	}
	lv.run.wrote(path)
	lv.run.result.Items = total
	return true, nil
}

func (lv *listView) full(ctx context.Context) error {
	cfg := lv.run.cfg
	selected := cfg.SelectedSet()

	if err := lv.svc.vault.EnsureDir(cfg.ListViewFolder); err != nil {
		return err
	}

	for _, root := range lv.tree.Roots {
		if len(tree.CollectSelected(root, selected)) == 0 {
			continue
		}

		plan := tree.Plan(root, selected)
		fetched := make(map[int][]types.Bookmark, len(plan))
		for _, step := range plan {
			if !step.Selected {
				continue
			}
			bookmarks, err := lv.svc.fetch(ctx, lv.run, step.Node.ID(), "", lv.filter)
			if err != nil {
				return err
			}
			fetched[step.Node.ID()] = bookmarks
		}

		toc, content := lv.assemble(root, 1, selected, fetched)
		if content == "" {
			continue
		}

		doc := "# Table of Contents\n" + toc + "---\n\n" + content
		path := joinPath(cfg.ListViewFolder, render.SanitizeTitle(root.Title())+".md")
		if err := lv.svc.vault.WriteFile(path, strings.TrimRight(doc, "\n")+"\n"); err != nil {
			return err
		}
		lv.run.wrote(path)
	}

	if !selected[types.UnsortedCollectionID] {
		return nil
	}
	bookmarks, err := lv.svc.fetch(ctx, lv.run, types.UnsortedCollectionID, "", lv.filter)
	if err != nil {
		return err
	}
	if len(bookmarks) == 0 {
		return nil
	}
	lv.run.result.Items += len(bookmarks)
	path := joinPath(cfg.ListViewFolder, types.UnsortedTitle+".md")
	if err := lv.svc.vault.WriteFile(path, "# Unsorted\n\n"+lv.renderAll(bookmarks)+"\n"); err != nil {
		return err
	}
	lv.run.wrote(path)
	return nil
}

// assemble renders node and its subtree, returning its TOC entries and
// content. A node that is not selected gets no heading, but its selected
// descendants are still emitted. TOC entries are in pre-order, indented by
// depth.
func (lv *listView) assemble(node *tree.Node, depth int, selected map[int]bool, fetched map[int][]types.Bookmark) (toc, content string) {
	var childTOC, children strings.Builder
	for _, child := range node.Children {
		t, c := lv.assemble(child, depth+1, selected, fetched)
		childTOC.WriteString(t)
		children.WriteString(c)
	}
	if !selected[node.ID()] {
		return childTOC.String(), children.String()
	}

	bookmarks := fetched[node.ID()]
	if len(bookmarks) == 0 && strings.TrimSpace(children.String()) == "" {
		return "", ""
	}

	title := render.SanitizeTitle(node.Title())
	var sb strings.Builder
	sb.WriteString(heading(depth, title))
	if len(bookmarks) > 0 {
		lv.run.result.Items += len(bookmarks)
		sb.WriteString(lv.renderAll(bookmarks))
		sb.WriteString("\n\n")
	}
	sb.WriteString(children.String())

	entry := fmt.Sprintf("%s- %s\n", strings.Repeat("  ", depth-1), uri.HeadingLink(title))
	return entry + childTOC.String(), sb.String()
}
