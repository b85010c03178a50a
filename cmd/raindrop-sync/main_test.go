package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/taigrr/raindrop-sync/internal/config"
	"github.com/taigrr/raindrop-sync/internal/tree"
	"github.com/taigrr/raindrop-sync/internal/types"
)

func intPtr(i int) *int { return &i }

var testCollections = []types.Collection{
	{ID: 1, Title: "Tech"},
	{ID: 2, Title: "AI", ParentID: intPtr(1)},
	{ID: 3, Title: "books"},
}

type fakeRemote struct{}

func (fakeRemote) Collections(ctx context.Context) ([]types.Collection, error) {
	return testCollections, nil
}

func (fakeRemote) Bookmarks(ctx context.Context, collectionID int, since string, highlightsOnly bool) ([]types.Bookmark, error) {
	return nil, nil
}

func (fakeRemote) HighlightedBookmarkIDs(ctx context.Context) (map[int]bool, error) {
	return nil, nil
}

func TestPrintTree(t *testing.T) {
	var buf bytes.Buffer
	printTree(&buf, tree.Build(testCollections), map[int]bool{2: true, 0: true})

	want := "[ ] books (3)\n" +
		"[ ] Tech (1)\n" +
		"    [x] AI (2)\n" +
		"[x] Unsorted (0)\n"
	if buf.String() != want {
		t.Errorf("printTree() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestPrintLastSync(t *testing.T) {
	tests := []struct {
		name string
		ts   string
		want string
	}{
		{"never", "", "List:  never synced\n"},
		{"unparsable", "yesterday", "List:  yesterday\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printLastSync(&buf, "List: ", tt.ts)
			if buf.String() != tt.want {
				t.Errorf("printLastSync() = %q, want %q", buf.String(), tt.want)
			}
		})
	}

	t.Run("parsed", func(t *testing.T) {
		var buf bytes.Buffer
		printLastSync(&buf, "List: ", "2020-01-02T03:04:05.000Z")
		if !strings.Contains(buf.String(), "ago") {
			t.Errorf("printLastSync() = %q, want a relative time", buf.String())
		}
	})
}

func TestPrintLinks(t *testing.T) {
	var buf bytes.Buffer
	printLinks(&buf, "/home/me/vault", []string{"Raindrop/My Tech.md"})

	want := "obsidian:///home/me/vault/Raindrop/My%20Tech\n"
	if buf.String() != want {
		t.Errorf("printLinks() = %q, want %q", buf.String(), want)
	}
}

func TestHandlers_ListCollections(t *testing.T) {
	store := config.NewStore(t.TempDir(), "")
	cfg := config.Default()
	cfg.CollectionIDs = []int{1}
	if err := store.Save(cfg); err != nil {
		t.Fatal(err)
	}

	h := &handlers{remote: fakeRemote{}, store: store}
	res, out, err := h.listCollections(context.Background(), nil, EmptyInput{})
	if err != nil || res != nil {
		t.Fatalf("listCollections() = %v, %v", res, err)
	}

	var got []string
	for _, c := range out.Collections {
		got = append(got, c.Path)
	}
	want := []string{"books", "Tech", "Tech > AI"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("paths = %v, want %v", got, want)
	}
	if !out.Collections[1].Selected || out.Collections[2].Selected {
		t.Errorf("selection = %+v", out.Collections)
	}
	if out.Collections[2].Depth != 2 {
		t.Errorf("AI depth = %d, want 2", out.Collections[2].Depth)
	}
}
