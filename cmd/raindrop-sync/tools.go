package main

import "github.com/modelcontextprotocol/go-sdk/mcp"

type (
	// SyncInput contains parameters for the sync tools.
	SyncInput struct {
		Incremental bool `json:"incremental,omitempty" jsonschema:"Only sync bookmarks updated since the last sync (default: false)"`
	}

	// EmptyInput is the input of tools without parameters.
	EmptyInput struct{}

	// RunOutput describes a finished operation.
	RunOutput struct {
		RunID   string   `json:"runId"`
		Items   int      `json:"items"`
		Renamed int      `json:"renamed,omitempty"`
		Written []string `json:"written,omitempty"`
		Notices []string `json:"notices"`
	}

	// CollectionInfo is one remote collection.
	CollectionInfo struct {
		ID       int    `json:"id"`
		Title    string `json:"title"`
		Path     string `json:"path"`
		Depth    int    `json:"depth"`
		Selected bool   `json:"selected"`
	}

	// CollectionsOutput contains the collection tree in display order.
	CollectionsOutput struct {
		Collections []CollectionInfo `json:"collections"`
		Selected    []int            `json:"selected"`
	}
)

func registerTools(server *mcp.Server, h *handlers) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "sync_list",
		Description: "Sync the selected collections into list view documents, one per collection tree. Set incremental=true to write a dated document with only the bookmarks updated since the last list sync.",
	}, h.syncList)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sync_file",
		Description: "Sync the selected collections as one note per bookmark and regenerate the index notes. Set incremental=true to only write bookmarks updated since the last file sync, moving notes whose filename changed.",
	}, h.syncFile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "regenerate_index",
		Description: "Rewrite the file view index notes from the collection folders present in the vault.",
	}, h.regenerateIndex)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "rename_files",
		Description: "Move existing bookmark notes to the names the current filename template produces. Never creates notes.",
	}, h.renameFiles)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_collections",
		Description: "List the remote collections as a tree in alphabetical order with their selection state.",
	}, h.listCollections)
}
