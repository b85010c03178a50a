package uri

import "testing"

func TestRaindropItemURL(t *testing.T) {
	if got := RaindropItemURL(42); got != "https://app.raindrop.io/my/0/item/42" {
		t.Errorf("RaindropItemURL() = %q", got)
	}
	if got := RaindropItemLink(42); got != "[View Raindrop](https://app.raindrop.io/my/0/item/42)" {
		t.Errorf("RaindropItemLink() = %q", got)
	}
}

func TestWikiLinks(t *testing.T) {
	if got := HeadingLink("Tech"); got != "[[#Tech]]" {
		t.Errorf("HeadingLink() = %q", got)
	}
	if got := NoteHeadingTarget("tech", "AI"); got != "tech#AI" {
		t.Errorf("NoteHeadingTarget() = %q", got)
	}
}

func TestObsidianURI(t *testing.T) {
	tests := []struct {
		name      string
		vaultPath string
		notePath  string
		want      string
	}{
		{
			name:      "synced item",
			vaultPath: "/Users/test/vault",
			notePath:  "Raindrop/Items/Tech/go.md",
			want:      "obsidian:///Users/test/vault/Raindrop/Items/Tech/go",
		},
		{
			name:      "leading slash in note path",
			vaultPath: "/Users/test/vault",
			notePath:  "/Raindrop/Tech.md",
			want:      "obsidian:///Users/test/vault/Raindrop/Tech",
		},
		{
			name:      "list document with spaces",
			vaultPath: "/Users/test/my vault",
			notePath:  "Raindrop/Incremental Sync - 2024-05-01.md",
			want:      "obsidian:///Users/test/my%20vault/Raindrop/Incremental%20Sync%20-%202024-05-01",
		},
		{
			name:      "non markdown keeps extension",
			vaultPath: "/Users/test/vault",
			notePath:  "Raindrop/cover.png",
			want:      "obsidian:///Users/test/vault/Raindrop/cover.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ObsidianURI(tt.vaultPath, tt.notePath); got != tt.want {
				t.Errorf("ObsidianURI() = %q, want %q", got, tt.want)
			}
		})
	}
}
