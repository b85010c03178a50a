package metaindex

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setupTestIndex(t *testing.T) (string, *Index) {
	t.Helper()
	vault := t.TempDir()
	idx, err := Open(context.Background(), vault, "", nil, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return vault, idx
}

func writeNote(t *testing.T, vault, rel, content string) {
	t.Helper()
	full := filepath.Join(vault, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func note(id string) string {
	return "---\ntitle: x\nraindropId: " + id + "\n---\n\nbody\n"
}

func TestOpen_CreatesDatabaseInStateDir(t *testing.T) {
	vault, idx := setupTestIndex(t)
	want := filepath.Join(vault, ".raindrop-sync", "index.db")
	if idx.Path() != want {
		t.Errorf("Path() = %q, want %q", idx.Path(), want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestIndex_RefreshAndLookup(t *testing.T) {
	vault, idx := setupTestIndex(t)
	ctx := context.Background()

	writeNote(t, vault, "Raindrop/Items/Tech/go.md", note("10"))
	writeNote(t, vault, "Raindrop/Items/Tech/rust.md", note("11"))
	writeNote(t, vault, "Journal/today.md", "# no header\n")
	writeNote(t, vault, ".obsidian/plugins/x.md", note("12"))
	writeNote(t, vault, "Raindrop/cover.png", "png")

	stats, err := idx.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if stats.Scanned != 3 || stats.Parsed != 3 || stats.Tracked != 2 {
		t.Errorf("stats = %+v, want 3 scanned, 3 parsed, 2 tracked", stats)
	}

	tests := []struct {
		id     int
		want   string
		wantOK bool
	}{
		{10, "Raindrop/Items/Tech/go.md", true},
		{11, "Raindrop/Items/Tech/rust.md", true},
		{12, "", false},
		{0, "", false},
	}
	for _, tt := range tests {
		got, ok, err := idx.Lookup(ctx, tt.id)
		if err != nil {
			t.Fatalf("Lookup(%d) error = %v", tt.id, err)
		}
		if got.Path != tt.want || ok != tt.wantOK {
			t.Errorf("Lookup(%d) = (%q, %v), want (%q, %v)", tt.id, got.Path, ok, tt.want, tt.wantOK)
		}
	}

	stats, err = idx.Refresh(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Parsed != 0 {
		t.Errorf("unchanged vault re-parsed %d notes, want 0", stats.Parsed)
	}
}

func TestIndex_RefreshPicksUpChanges(t *testing.T) {
	vault, idx := setupTestIndex(t)
	ctx := context.Background()

	writeNote(t, vault, "a.md", note("1"))
	writeNote(t, vault, "b.md", note("2"))
	if _, err := idx.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(vault, "b.md")); err != nil {
		t.Fatal(err)
	}
	writeNote(t, vault, "a.md", note("3")+"more text")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(filepath.Join(vault, "a.md"), future, future); err != nil {
		t.Fatal(err)
	}

	stats, err := idx.Refresh(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Removed != 1 || stats.Parsed != 1 {
		t.Errorf("stats = %+v, want 1 removed, 1 parsed", stats)
	}
	if _, ok, _ := idx.Lookup(ctx, 1); ok {
		t.Error("old id 1 should no longer resolve")
	}
	if got, ok, _ := idx.Lookup(ctx, 3); !ok || got.Path != "a.md" {
		t.Errorf("Lookup(3) = %q, %v", got.Path, ok)
	}
	if _, ok, _ := idx.Lookup(ctx, 2); ok {
		t.Error("deleted note should not resolve")
	}
}

func TestIndex_PutRemoveAndStaleRows(t *testing.T) {
	vault, idx := setupTestIndex(t)
	ctx := context.Background()

	writeNote(t, vault, "Raindrop/Items/Tech/go.md", note("10"))
	if err := idx.Put(ctx, "Raindrop/Items/Tech/go.md", 10); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if got, ok, _ := idx.Lookup(ctx, 10); !ok || got.Path != "Raindrop/Items/Tech/go.md" {
		t.Errorf("Lookup after Put = %q, %v", got.Path, ok)
	}

	if err := idx.Remove(ctx, "Raindrop/Items/Tech/go.md"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := idx.Lookup(ctx, 10); ok {
		t.Error("Lookup after Remove should miss")
	}

	if err := idx.Put(ctx, "Raindrop/Items/Tech/go.md", 10); err != nil {
		t.Fatal(err)
	}
	os.Remove(filepath.Join(vault, "Raindrop", "Items", "Tech", "go.md"))
	if _, ok, err := idx.Lookup(ctx, 10); ok || err != nil {
		t.Errorf("Lookup of a vanished file = %v, %v; want miss", ok, err)
	}

	if err := idx.Put(ctx, "missing.md", 5); err == nil {
		t.Error("Put() of a missing file should fail")
	}
}

func TestIndex_RecordsLastUpdated(t *testing.T) {
	vault, idx := setupTestIndex(t)
	ctx := context.Background()

	synced := "---\nraindropId: 10\nraindropLastUpdated: \"2024-04-01T00:00:00.000Z\"\n---\n"
	writeNote(t, vault, "refreshed.md", synced)
	if _, err := idx.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	got, ok, err := idx.Lookup(ctx, 10)
	if err != nil || !ok || got.LastUpdated != "2024-04-01T00:00:00.000Z" {
		t.Errorf("Lookup(10) after Refresh = %+v, %v, %v", got, ok, err)
	}

	tests := []struct {
		name    string
		content string
		id      int
		want    string
	}{
		{"header read back", strings.Replace(synced, "10", "11", 1), 11, "2024-04-01T00:00:00.000Z"},
		{"no timestamp", note("12"), 12, ""},
		{"header for another id", synced, 13, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel := tt.name + ".md"
			writeNote(t, vault, rel, tt.content)
			if err := idx.Put(ctx, rel, tt.id); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			got, ok, err := idx.Lookup(ctx, tt.id)
			if err != nil || !ok {
				t.Fatalf("Lookup(%d) = %v, %v", tt.id, ok, err)
			}
			if got.LastUpdated != tt.want {
				t.Errorf("LastUpdated = %q, want %q", got.LastUpdated, tt.want)
			}
		})
	}
}

func TestOpen_RebuildsOutdatedSchema(t *testing.T) {
	vault := t.TempDir()
	ctx := context.Background()

	idx, err := Open(ctx, vault, "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := idx.db.ExecContext(ctx, `UPDATE meta SET value = '1' WHERE key = 'schemaVersion'`); err != nil {
		t.Fatal(err)
	}
	writeNote(t, vault, "a.md", note("1"))
	if err := idx.Put(ctx, "a.md", 1); err != nil {
		t.Fatal(err)
	}
	idx.Close()

	idx, err = Open(ctx, vault, "", nil, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer idx.Close()
	if _, ok, _ := idx.Lookup(ctx, 1); ok {
		t.Error("rows from an outdated schema should be dropped")
	}
	if _, err := idx.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if got, ok, _ := idx.Lookup(ctx, 1); !ok || got.Path != "a.md" {
		t.Errorf("Lookup(1) after Refresh = %q, %v", got.Path, ok)
	}
}

func TestIndex_Notes(t *testing.T) {
	vault, idx := setupTestIndex(t)
	ctx := context.Background()

	writeNote(t, vault, "b.md", note("2"))
	writeNote(t, vault, "a.md", note("1"))
	writeNote(t, vault, "plain.md", "text")
	if _, err := idx.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	notes, err := idx.Notes(ctx)
	if err != nil {
		t.Fatalf("Notes() error = %v", err)
	}
	if len(notes) != 2 || notes[0].Path != "a.md" || notes[0].RaindropID != 1 || notes[1].Path != "b.md" {
		t.Errorf("Notes() = %+v", notes)
	}
}
