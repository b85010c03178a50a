package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestStore_LoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(TokenEnv, "")
	store := NewStore(t.TempDir(), "")

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ListViewFolder != "Raindrop" {
		t.Errorf("ListViewFolder = %q, want %q", cfg.ListViewFolder, "Raindrop")
	}
	if cfg.FileViewFilenameTemplate != DefaultFilenameTemplate {
		t.Errorf("FileViewFilenameTemplate = %q", cfg.FileViewFilenameTemplate)
	}
	if !cfg.FileViewColumns.Cover || !cfg.FileViewColumns.Type {
		t.Errorf("FileViewColumns = %+v, want all enabled", cfg.FileViewColumns)
	}
}

func TestStore_LoadMergesOverDefaults(t *testing.T) {
	t.Setenv(TokenEnv, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	legacy := `apiToken: abc
collectionIds: [3, 1]
fileViewFilenameTemplate: ""
fileViewColumns:
  cover: false
`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewStore(dir, path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIToken != "abc" {
		t.Errorf("APIToken = %q, want %q", cfg.APIToken, "abc")
	}
	if cfg.FileViewFilenameTemplate != DefaultFilenameTemplate {
		t.Errorf("empty filename template should be backfilled, got %q", cfg.FileViewFilenameTemplate)
	}
	if cfg.FileViewColumns.Cover {
		t.Error("FileViewColumns.Cover should be false")
	}
	if !cfg.FileViewColumns.Tags {
		t.Error("FileViewColumns.Tags should keep its default")
	}
	if cfg.ListTemplate != DefaultListTemplate {
		t.Error("ListTemplate should keep its default")
	}
	if !cfg.IsSelected(3) || !cfg.IsSelected(1) || cfg.IsSelected(2) {
		t.Errorf("CollectionIDs = %v", cfg.CollectionIDs)
	}
}

func TestStore_SaveRoundTrip(t *testing.T) {
	t.Setenv(TokenEnv, "")
	for _, name := range []string{"settings.yaml", "settings.toml"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			store := NewStore(dir, filepath.Join(dir, name))

			cfg := Default()
			cfg.Select(7, 0, 7)
			cfg.LastSyncFileView = "2024-05-01T10:00:00Z"
			cfg.UseColoredHighlights = false
			if err := store.Save(cfg); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := store.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(got.CollectionIDs) != 2 || got.CollectionIDs[0] != 0 || got.CollectionIDs[1] != 7 {
				t.Errorf("CollectionIDs = %v, want [0 7]", got.CollectionIDs)
			}
			if got.LastSyncFileView != cfg.LastSyncFileView {
				t.Errorf("LastSyncFileView = %q", got.LastSyncFileView)
			}
			if got.UseColoredHighlights {
				t.Error("UseColoredHighlights should be false")
			}
			if got.FileViewTemplate != DefaultFileViewTemplate {
				t.Error("FileViewTemplate did not survive the round trip")
			}
		})
	}
}

func TestStore_SaveDoesNotPersistEnvToken(t *testing.T) {
	t.Setenv(TokenEnv, "from-env")
	dir := t.TempDir()
	store := NewStore(dir, "")

	cfg, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIToken != "from-env" {
		t.Fatalf("APIToken = %q, want env token", cfg.APIToken)
	}
	if err := store.Save(cfg); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(store.Path)
	if strings.Contains(string(data), "from-env") {
		t.Error("environment token should not be written to disk")
	}
}

func TestSettings_Set(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(c *Settings) bool
	}{
		{"string", "listViewFolder", "Bookmarks", false, func(c *Settings) bool { return c.ListViewFolder == "Bookmarks" }},
		{"bool", "onlyBookmarksWithHighlights", "true", false, func(c *Settings) bool { return c.OnlyBookmarksWithHighlights }},
		{"nested bool", "fileViewColumns.notes", "false", false, func(c *Settings) bool { return !c.FileViewColumns.Notes }},
		{"list", "ignoredPatterns", "Private/**, *.draft.md", false, func(c *Settings) bool {
			return slices.Equal(c.IgnoredPatterns, []string{"Private/**", "*.draft.md"})
		}},
		{"clear list", "ignoredPatterns", "", false, func(c *Settings) bool { return c.IgnoredPatterns == nil }},
		{"bad bool", "useColoredHighlights", "maybe", true, nil},
		{"unknown key", "nope", "x", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := cfg.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Set(%q, %q) did not apply", tt.key, tt.value)
			}
		})
	}
}

func TestSettings_PathFilterConfig(t *testing.T) {
	cfg := Default()
	if got := cfg.PathFilterConfig(); len(got.IgnoredPatterns) != 0 {
		t.Errorf("default IgnoredPatterns = %v, want none", got.IgnoredPatterns)
	}

	cfg.IgnoredPatterns = []string{"Private/**"}
	got := cfg.PathFilterConfig()
	got.IgnoredPatterns[0] = "changed"
	if cfg.IgnoredPatterns[0] != "Private/**" {
		t.Error("PathFilterConfig() shares the settings slice")
	}
}

func TestSettings_SelectDeselect(t *testing.T) {
	cfg := Default()
	cfg.Select(5, 2, 5, 9)
	cfg.Deselect(2)

	want := []int{5, 9}
	if len(cfg.CollectionIDs) != len(want) {
		t.Fatalf("CollectionIDs = %v, want %v", cfg.CollectionIDs, want)
	}
	for i, id := range want {
		if cfg.CollectionIDs[i] != id {
			t.Errorf("CollectionIDs[%d] = %d, want %d", i, cfg.CollectionIDs[i], id)
		}
	}
}

func TestSettings_Redacted(t *testing.T) {
	cfg := Default()
	cfg.APIToken = "secret"
	if got := cfg.Redacted().APIToken; got == "secret" {
		t.Error("Redacted() leaked the token")
	}
	if cfg.APIToken != "secret" {
		t.Error("Redacted() must not modify the receiver")
	}
}
