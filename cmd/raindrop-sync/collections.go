package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"
	"github.com/taigrr/raindrop-sync/internal/config"
	"github.com/taigrr/raindrop-sync/internal/tree"
	"github.com/taigrr/raindrop-sync/internal/types"
)

func (a *app) collectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"col"},
		Short:   "Show and select the collections to sync",
	}

	var cascade bool
	selectCmd := &cobra.Command{
		Use:   "select ID...",
		Short: "Add collections to the selection (0 is Unsorted)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.changeSelection(cmd, args, cascade, (*config.Settings).Select)
		},
	}
	selectCmd.Flags().BoolVar(&cascade, "cascade", false, "include every descendant (default from cascadeSelection)")

	deselectCmd := &cobra.Command{
		Use:   "deselect ID...",
		Short: "Remove collections from the selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.changeSelection(cmd, args, cascade, (*config.Settings).Deselect)
		},
	}
	deselectCmd.Flags().BoolVar(&cascade, "cascade", false, "include every descendant (default from cascadeSelection)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the collection tree with the selection marked",
			Args:  cobra.NoArgs,
			RunE:  a.listCollections,
		},
		selectCmd,
		deselectCmd,
		&cobra.Command{
			Use:   "find QUERY",
			Short: "Fuzzy search collection titles",
			Args:  cobra.ExactArgs(1),
			RunE:  a.findCollections,
		},
	)
	return cmd
}

// fetchTree loads the settings and the remote collection tree.
func (a *app) fetchTree(ctx context.Context) (*config.Settings, *tree.Tree, error) {
	cfg, err := a.store.Load()
	if err != nil {
		return nil, nil, err
	}
	collections, err := a.client(cfg).Collections(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cfg, tree.Build(collections), nil
}

func (a *app) listCollections(cmd *cobra.Command, args []string) error {
	cfg, t, err := a.fetchTree(cmd.Context())
	if err != nil {
		return err
	}
	printTree(cmd.OutOrStdout(), t, cfg.SelectedSet())
	return nil
}

// printTree writes the forest alphabetically, one collection per line,
// followed by the Unsorted pseudo collection.
func printTree(w io.Writer, t *tree.Tree, selected map[int]bool) {
	var visit func(n *tree.Node, depth int)
	visit = func(n *tree.Node, depth int) {
		fmt.Fprintf(w, "%s%s %s (%d)\n", strings.Repeat("    ", depth), mark(selected[n.ID()]), n.Title(), n.ID())
		for _, child := range tree.Sorted(n.Children) {
			visit(child, depth+1)
		}
	}
	for _, root := range tree.Sorted(t.Roots) {
		visit(root, 0)
	}
	fmt.Fprintf(w, "%s %s (%d)\n", mark(selected[types.UnsortedCollectionID]), types.UnsortedTitle, types.UnsortedCollectionID)
}

func mark(selected bool) string {
	if selected {
		return "[x]"
	}
	return "[ ]"
}

func (a *app) changeSelection(cmd *cobra.Command, args []string, cascade bool, apply func(*config.Settings, ...int)) error {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid collection id %q", arg)
		}
		ids = append(ids, id)
	}

	cfg, err := a.store.Load()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("cascade") {
		cascade = cfg.CascadeSelection
	}

	var t *tree.Tree
	if cascade {
		collections, err := a.client(cfg).Collections(cmd.Context())
		if err != nil {
			return err
		}
		t = tree.Build(collections)
		for _, id := range ids {
			ids = append(ids, t.Descendants(id)...)
		}
	}

	apply(cfg, ids...)
	if err := a.store.Save(cfg); err != nil {
		return err
	}
	if t != nil {
		printTree(cmd.OutOrStdout(), t, cfg.SelectedSet())
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Selected collections: %v\n", cfg.CollectionIDs)
	return nil
}

func (a *app) findCollections(cmd *cobra.Command, args []string) error {
	cfg, t, err := a.fetchTree(cmd.Context())
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(t.Index))
	byPath := make(map[string]int, len(t.Index))
	for id := range t.Index {
		p, _ := t.ResolvePath(id)
		paths = append(paths, p)
		byPath[p] = id
	}

	sort.Strings(paths)
	ranks := fuzzy.RankFindFold(args[0], paths)
	sort.Stable(ranks)
	if len(ranks) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No collection matches %q\n", args[0])
		return nil
	}
	for _, r := range ranks {
		id := byPath[r.Target]
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d\t%s\n", mark(cfg.IsSelected(id)), id, r.Target)
	}
	return nil
}
