package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/taigrr/raindrop-sync/internal/metaindex"
	"github.com/taigrr/raindrop-sync/internal/pathfilter"
)

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show when each view was last synced and what the index tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := a.store.Load()
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Vault:       %s\n", a.vaultPath)
			fmt.Fprintf(out, "Settings:    %s\n", a.store.Path)
			fmt.Fprintf(out, "Selected:    %d collections\n", len(cfg.CollectionIDs))
			printLastSync(out, "List view:  ", cfg.LastSyncListView)
			printLastSync(out, "File view:  ", cfg.LastSyncFileView)

			idx, err := metaindex.Open(cmd.Context(), a.vaultPath, "", pathfilter.New(cfg.PathFilterConfig()), a.logger)
			if err != nil {
				return err
			}
			defer idx.Close()
			if _, err := idx.Refresh(cmd.Context()); err != nil {
				return err
			}
			notes, err := idx.Notes(cmd.Context())
			if err != nil {
				return err
			}
			var size int64
			for _, n := range notes {
				size += n.Size
			}
			fmt.Fprintf(out, "Indexed:     %s bookmark notes (%s)\n",
				humanize.Comma(int64(len(notes))), humanize.Bytes(uint64(size)))
			return nil
		},
	}
}

func printLastSync(w io.Writer, label, ts string) {
	if ts == "" {
		fmt.Fprintf(w, "%s never synced\n", label)
		return
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		fmt.Fprintf(w, "%s %s\n", label, ts)
		return
	}
	fmt.Fprintf(w, "%s %s (%s)\n", label, humanize.Time(t), t.Local().Format(time.DateTime))
}
