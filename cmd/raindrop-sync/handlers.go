package main

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/raindrop-sync/internal/syncer"
	"github.com/taigrr/raindrop-sync/internal/tree"
)

type handlers struct {
	svc    *syncer.Service
	remote syncer.Remote
	store  syncer.SettingsStore
}

func runOutput(res syncer.Result) RunOutput {
	notices := res.Notices
	if notices == nil {
		notices = []string{}
	}
	return RunOutput{
		RunID:   res.RunID,
		Items:   res.Items,
		Renamed: res.Renamed,
		Written: res.Written,
		Notices: notices,
	}
}

// finish turns an operation result into a tool result. Errors are
// reported with the notices gathered up to the failure.
func finish(res syncer.Result, err error) (*mcp.CallToolResult, RunOutput, error) {
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, runOutput(res), err
	}
	return nil, runOutput(res), nil
}

func (h *handlers) syncList(ctx context.Context, req *mcp.CallToolRequest, input SyncInput) (*mcp.CallToolResult, RunOutput, error) {
	return finish(h.svc.SyncListView(ctx, input.Incremental))
}

func (h *handlers) syncFile(ctx context.Context, req *mcp.CallToolRequest, input SyncInput) (*mcp.CallToolResult, RunOutput, error) {
	return finish(h.svc.SyncFileView(ctx, input.Incremental))
}

func (h *handlers) regenerateIndex(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, RunOutput, error) {
	return finish(h.svc.GenerateIndex(ctx))
}

func (h *handlers) renameFiles(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, RunOutput, error) {
	return finish(h.svc.RenameFiles(ctx))
}

func (h *handlers) listCollections(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, CollectionsOutput, error) {
	cfg, err := h.store.Load()
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, CollectionsOutput{}, err
	}
	collections, err := h.remote.Collections(ctx)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, CollectionsOutput{}, err
	}
	t := tree.Build(collections)
	selected := cfg.SelectedSet()

	out := CollectionsOutput{Collections: []CollectionInfo{}, Selected: cfg.CollectionIDs}
	var visit func(n *tree.Node, depth int)
	visit = func(n *tree.Node, depth int) {
		path, _ := t.ResolvePath(n.ID())
		out.Collections = append(out.Collections, CollectionInfo{
			ID:       n.ID(),
			Title:    n.Title(),
			Path:     path,
			Depth:    depth,
			Selected: selected[n.ID()],
		})
		for _, child := range tree.Sorted(n.Children) {
			visit(child, depth+1)
		}
	}
	for _, root := range tree.Sorted(t.Roots) {
		visit(root, 1)
	}
	return nil, out, nil
}
