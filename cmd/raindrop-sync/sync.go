package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/taigrr/raindrop-sync/internal/syncer"
	"github.com/taigrr/raindrop-sync/internal/uri"
)

func (a *app) syncCmd() *cobra.Command {
	var incremental, links bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync selected collections into the vault",
	}
	cmd.PersistentFlags().BoolVar(&incremental, "incremental", false, "only sync bookmarks updated since the last sync")
	cmd.PersistentFlags().BoolVar(&links, "links", false, "print obsidian:// links to the written notes")

	list := &cobra.Command{
		Use:   "list",
		Short: "Write one document per collection tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, links, func(ctx context.Context, svc *syncer.Service) (syncer.Result, error) {
				return svc.SyncListView(ctx, incremental)
			})
		},
	}
	file := &cobra.Command{
		Use:   "file",
		Short: "Write one note per bookmark and regenerate the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, links, func(ctx context.Context, svc *syncer.Service) (syncer.Result, error) {
				return svc.SyncFileView(ctx, incremental)
			})
		},
	}
	cmd.AddCommand(list, file)
	return cmd
}

func (a *app) indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Regenerate the file view index notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, false, func(ctx context.Context, svc *syncer.Service) (syncer.Result, error) {
				return svc.GenerateIndex(ctx)
			})
		},
	}
}

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename",
		Short: "Move file view notes to the names the filename template produces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, false, func(ctx context.Context, svc *syncer.Service) (syncer.Result, error) {
				return svc.RenameFiles(ctx)
			})
		},
	}
}

// run executes one operation with notices printed as they happen.
func (a *app) run(cmd *cobra.Command, links bool, op func(context.Context, *syncer.Service) (syncer.Result, error)) error {
	out := cmd.OutOrStdout()
	svc, closeFn, err := a.service(cmd.Context(), syncer.NewWriterNotifier(out))
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := op(cmd.Context(), svc)
	if err != nil {
		return err
	}
	a.logger.Debug("operation finished", "run", res.RunID, "items", res.Items, "written", len(res.Written))
	if links {
		printLinks(out, a.vaultPath, res.Written)
	}
	return nil
}

func printLinks(w io.Writer, vaultPath string, paths []string) {
	for _, p := range paths {
		fmt.Fprintln(w, uri.ObsidianURI(vaultPath, p))
	}
}
