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

// GenerateIndex rewrites the index notes that embed a dataview table per
// collection folder of the file view.
func (s *Service) GenerateIndex(ctx context.Context) (Result, error) {
	return s.execute(ctx, opIndex, func(ctx context.Context, r *run) error {
		collections, err := s.remote.Collections(ctx)
		if err != nil {
			return err
		}
		return s.generateIndex(r, tree.Build(collections))
	})
}

// regenerateAfter runs the index generator as the last step of another
// operation. Its failure is reported but does not fail that operation.
func (s *Service) regenerateAfter(ctx context.Context, r *run, t *tree.Tree) {
	if err := ctx.Err(); err != nil {
		r.log.Warn("skipping index generation", "err", err)
		return
	}
	if err := s.generateIndex(r, t); err != nil {
		r.log.Error("index generation failed", "err", err)
		r.notify(opIndex.failure)
	}
}

func (s *Service) generateIndex(r *run, t *tree.Tree) error {
	r.notify("Generating Raindrop file view index...")

	cfg := r.cfg
	if err := s.vault.EnsureDir(cfg.FileViewFolder); err != nil {
		return err
	}
	if err := s.vault.EnsureDir(cfg.FileViewIndexFolder); err != nil {
		return err
	}

	ix := &indexer{svc: s, cfg: cfg, selected: cfg.SelectedSet(), columns: dataviewColumns(cfg.FileViewColumns)}
	for _, root := range t.Roots {
		toc, content := ix.node(root, 1)
		if content == "" {
			continue
		}
		p := joinPath(cfg.FileViewIndexFolder, indexNoteName(root)+".md")
		doc := "# Table of Contents\n" + toc + "---\n\n" + content
		if err := s.vault.WriteFile(p, strings.TrimRight(doc, "\n")+"\n"); err != nil {
			return err
		}
		r.wrote(p)
	}

	if ix.selected[types.UnsortedCollectionID] {
		folder := joinPath(cfg.FileViewFolder, types.UnsortedTitle)
		if s.vault.HasFiles(folder) {
			p := joinPath(cfg.FileViewIndexFolder, types.UnsortedTitle+".md")
			if err := s.vault.WriteFile(p, strings.TrimSpace(ix.table(folder))+"\n"); err != nil {
				return err
			}
			r.wrote(p)
		}
	}

	r.notify("File view index regenerated.")
	return nil
}

type indexer struct {
	svc      *Service
	cfg      *config.Settings
	selected map[int]bool
	columns  string
}

// node returns the TOC entries and content for n and its subtree. Children
// are visited alphabetically. A collection gets a heading when its folder
// holds files or a descendant produced content, and a table only when its
// own folder holds files.
func (ix *indexer) node(n *tree.Node, depth int) (toc, content string) {
	var childTOC, children strings.Builder
	for _, child := range tree.Sorted(n.Children) {
		t, c := ix.node(child, depth+1)
		childTOC.WriteString(t)
		children.WriteString(c)
	}
	if !ix.selected[n.ID()] {
		return childTOC.String(), children.String()
	}

	folder := joinPath(ix.cfg.FileViewFolder, render.SanitizeFolder(n.Title()))
	hasFiles := ix.svc.vault.HasFiles(folder)
	if !hasFiles && strings.TrimSpace(children.String()) == "" {
		return "", ""
	}

	var sb strings.Builder
	sb.WriteString(heading(depth, n.Title()))
	if hasFiles {
		sb.WriteString(ix.table(folder))
	}
	sb.WriteString(children.String())

	entry := fmt.Sprintf("%s- %s\n", strings.Repeat("  ", depth-1), uri.HeadingLink(n.Title()))
	return entry + childTOC.String(), sb.String()
}

// table returns the dataview block listing the notes in folder.
func (ix *indexer) table(folder string) string {
	return "\n```dataview\nTABLE WITHOUT ID\n    " + ix.columns +
		"\nFROM \"" + folder + "\"\nSORT file.ctime DESC\n```\n\n"
}

// dataviewColumns returns the enabled table columns. Title and Detail are
// always present.
func dataviewColumns(c config.Columns) string {
	var cols []string
	if c.Cover {
		cols = append(cols, `choice(length(cover) > 0, "<img src='" + cover + "' width='60'>", "") as "Cover"`)
	}
	cols = append(cols, `elink(url, title) as "Title"`)
	if c.Tags {
		cols = append(cols, `tags as "Tags"`)
	}
	if c.Highlights {
		cols = append(cols, `choice(hasHighlights, "✅", "❌") as "Highlights"`)
	}
	if c.Notes {
		cols = append(cols, `choice(hasNotes, "✅", "❌") as "Notes"`)
	}
	if c.Type {
		cols = append(cols, `raindropType as "Type"`)
	}
	cols = append(cols, `link(file.path, "show") as "Detail"`)
	return strings.Join(cols, ",\n    ")
}
