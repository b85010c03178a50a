package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/taigrr/raindrop-sync/internal/filesystem"
	"github.com/taigrr/raindrop-sync/internal/frontmatter"
	"github.com/taigrr/raindrop-sync/internal/metaindex"
	"github.com/taigrr/raindrop-sync/internal/pathfilter"
	"github.com/taigrr/raindrop-sync/internal/uri"
	"gopkg.in/yaml.v3"
)

func (a *app) noteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note ID",
		Short: "Show the file view note synced for a bookmark id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid bookmark id %q", args[0])
			}

			cfg, err := a.store.Load()
			if err != nil {
				return err
			}
			pf := pathfilter.New(cfg.PathFilterConfig())
			idx, err := metaindex.Open(cmd.Context(), a.vaultPath, "", pf, a.logger)
			if err != nil {
				return err
			}
			defer idx.Close()
			if _, err := idx.Refresh(cmd.Context()); err != nil {
				return err
			}
			entry, ok, err := idx.Lookup(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no note carries %s %d", frontmatter.RaindropIDKey, id)
			}

			path := entry.Path
			note, err := filesystem.New(a.vaultPath, pf, frontmatter.New()).ReadNote(path)
			if err != nil {
				return err
			}
			header, err := yaml.Marshal(note.Frontmatter)
			if err != nil {
				return fmt.Errorf("failed to encode frontmatter: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n%s\n\n%s", path, uri.ObsidianURI(a.vaultPath, path), header)
			return nil
		},
	}
}
