package render

import (
	"strings"
	"testing"
	"time"

	"github.com/taigrr/raindrop-sync/internal/config"
	"github.com/taigrr/raindrop-sync/internal/types"
)

func defaultRenderer() *Renderer {
	return New(Options{MarkdownHighlights: true, ColoredHighlights: true, Location: time.UTC})
}

func TestFormatText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"single paragraph", "plain note", "plain note"},
		{"hash escaped", "see #go and #rust", `see \#go and \#rust`},
		{"two paragraphs", "first\n\nsecond", "first\n" + textIndent + "second"},
		{"blank paragraphs dropped", "a\n  \nb\nc", "a\n" + textIndent + "b\n" + textIndent + "c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatText(tt.in); got != tt.want {
				t.Errorf("FormatText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatHighlight(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		in   HighlightInput
		want string
	}{
		{"red maps to coral", Options{MarkdownHighlights: true, ColoredHighlights: true}, HighlightView{Text: "x", Color: "red"}, `<mark class="coral">x</mark>`},
		{"unknown color falls back to yellow", Options{MarkdownHighlights: true, ColoredHighlights: true}, HighlightView{Text: "x", Color: "purple"}, `<mark class="yellow">x</mark>`},
		{"no color uses plain marker", Options{MarkdownHighlights: true, ColoredHighlights: true}, HighlightView{Text: "x"}, "==x=="},
		{"bare text", Options{MarkdownHighlights: true, ColoredHighlights: true}, BareHighlight("x"), "==x=="},
		{"colors disabled", Options{MarkdownHighlights: true}, HighlightView{Text: "x", Color: "red"}, "==x=="},
		{"markdown disabled", Options{ColoredHighlights: true}, HighlightView{Text: "#x", Color: "red"}, "#x"},
		{"hash escaped", Options{MarkdownHighlights: true}, BareHighlight("a #b"), `==a \#b==`},
		{
			"paragraphs wrapped and nested",
			Options{MarkdownHighlights: true, ColoredHighlights: true},
			HighlightView{Text: "one\n\ntwo", Color: "blue"},
			`<mark class="blue">one</mark>` + "\n" + highlightIndent + `<mark class="blue">two</mark>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.opts).FormatHighlight(tt.in); got != tt.want {
				t.Errorf("FormatHighlight() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatTags(t *testing.T) {
	if got := FormatTags(nil); got != "" {
		t.Errorf("FormatTags(nil) = %q", got)
	}
	if got := FormatTags([]string{"go", "web"}); got != "#go #web" {
		t.Errorf("FormatTags() = %q", got)
	}
}

func TestFormatCustomDate(t *testing.T) {
	r := defaultRenderer()
	tests := []struct {
		date, format, want string
	}{
		{"2024-03-09T07:05:00Z", "YYYY/MM/DD HH:mm", "2024/03/09 07:05"},
		{"2024-03-09T07:05:00.123Z", "", "2024-03-09"},
		{"2024-03-09T07:05:00Z", "DD.MM.YYYY 100%", "09.03.2024 100%"},
		{"not a date", "YYYY", "not a date"},
		{"", "YYYY", ""},
	}
	for _, tt := range tests {
		if got := r.FormatCustomDate(tt.date, tt.format); got != tt.want {
			t.Errorf("FormatCustomDate(%q, %q) = %q, want %q", tt.date, tt.format, got, tt.want)
		}
	}

	tokyo := time.FixedZone("JST", 9*3600)
	r = New(Options{Location: tokyo})
	if got := r.FormatCustomDate("2024-03-09T20:00:00Z", "YYYY-MM-DD HH"); got != "2024-03-10 05" {
		t.Errorf("FormatCustomDate in JST = %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Cool, Article!", "my_cool_article"},
		{"  my   cool, ARTICLE! ", "_my_cool_article_"},
		{"a/b\\c", "a-b-c"},
		{"Café Über", "cafe_uber"},
		{"日本語", ""},
		{strings.Repeat("x", 120), strings.Repeat("x", MaxFilenameLength)},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFolderAndTitle(t *testing.T) {
	if got := SanitizeFolder(`Dev: C/C++ "Notes"`); got != `Dev- C-C++ -Notes-` {
		t.Errorf("SanitizeFolder() = %q", got)
	}
	if got := SanitizeTitle(`Dev: C/C++ "Notes"?`); got != `Dev CC++ Notes` {
		t.Errorf("SanitizeTitle() = %q", got)
	}
}

func testBookmark() types.Bookmark {
	return types.Bookmark{
		ID:           42,
		Title:        "Go & Friends",
		Excerpt:      "An <em>excerpt</em>",
		Note:         "first\nsecond #tag",
		Link:         "https://go.dev",
		Cover:        "https://go.dev/cover.png",
		Created:      "2024-03-09T07:05:00Z",
		LastUpdate:   "2024-04-01T00:00:00Z",
		Type:         "link",
		Domain:       "go.dev",
		CollectionID: 1,
		Tags:         []string{"go", "lang"},
		Highlights: []types.Highlight{
			{ID: "h1", Text: "fast builds", Color: "red", Note: "agreed"},
			{ID: "h2", Text: "simple"},
		},
	}
}

func TestTemplate_ListDefault(t *testing.T) {
	r := defaultRenderer()
	tpl, err := r.Compile(config.DefaultListTemplate)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	out, err := tpl.Render(BookmarkContext(testBookmark(), nil))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{
		"- [Go &amp; Friends](https://go.dev) (*go.dev*)",
		"[View Raindrop](https://app.raindrop.io/my/0/item/42)",
		"_Tags_: #go #lang",
		"first\n" + textIndent + `second \#tag`,
		`<mark class="coral">fast builds</mark>`,
		"*Note*: agreed",
		"==simple==",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered list item missing %q\n%s", want, out)
		}
	}
}

func TestTemplate_FileDefault(t *testing.T) {
	r := defaultRenderer()
	tpl, err := r.Compile(config.DefaultFileViewTemplate)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	out, err := tpl.Render(BookmarkContext(testBookmark(), map[string]any{"collectionPath": "tech#Tech"}))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{
		"raindropId: 42\n",
		"raindropCollectionId: 1\n",
		`tags: ["go", "lang"]`,
		"hasHighlights: true\n",
		"hasNotes: true\n",
		`collection: "[[tech#Tech]]"`,
		`raindropUrl: "https://app.raindrop.io/my/0/item/42"`,
		"> An <em>excerpt</em>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered file missing %q\n%s", want, out)
		}
	}
}

func TestTemplate_LegacyFieldNames(t *testing.T) {
	tpl, err := defaultRenderer().Compile("{{_id}}/{{collection.$id}}")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	out, err := tpl.Render(BookmarkContext(testBookmark(), nil))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "42/1" {
		t.Errorf("Render() = %q, want %q", out, "42/1")
	}
}

func TestTemplate_Counts(t *testing.T) {
	tpl, err := defaultRenderer().Compile("{{#if tagCount}}{{tagCount}} tags{{/if}}|{{#if highlightCount}}{{highlightCount}} highlights{{/if}}")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	tests := []struct {
		name string
		b    types.Bookmark
		want string
	}{
		{"populated", testBookmark(), "2 tags|2 highlights"},
		{"empty", types.Bookmark{ID: 1, Title: "bare"}, "|"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tpl.Render(BookmarkContext(tt.b, nil))
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if out != tt.want {
				t.Errorf("Render() = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestTemplate_MalformedIsIndependent(t *testing.T) {
	r := defaultRenderer()
	if _, err := r.Compile("{{#if title}}unclosed"); err == nil {
		t.Error("Compile() should fail on an unclosed block")
	}

	tpl, err := r.Compile("{{formatCustomDate}}")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if _, err := tpl.Render(BookmarkContext(testBookmark(), nil)); err == nil {
		t.Error("Render() should report a helper called without arguments")
	}

	oneArg, err := r.Compile("{{formatCustomDate created}}")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if out, err := oneArg.Render(BookmarkContext(testBookmark(), nil)); err != nil || out != "2024-03-09" {
		t.Errorf("Render() without a format = %q, %v; want the YYYY-MM-DD fallback", out, err)
	}

	ok, err := r.Compile("{{title}}")
	if err != nil {
		t.Fatal(err)
	}
	if out, err := ok.Render(BookmarkContext(testBookmark(), nil)); err != nil || out != "Go &amp; Friends" {
		t.Errorf("Render() = %q, %v", out, err)
	}
}

func TestRenderer_Filename(t *testing.T) {
	r := New(Options{DateFormat: "YYYY-MM-DD", Location: time.UTC})

	tests := []struct {
		name     string
		template string
		mutate   func(b *types.Bookmark)
		want     string
	}{
		{"title", config.DefaultFilenameTemplate, nil, "go__friends"},
		{"date and id", "{{creationDate}} {{raindropId}}", nil, "2024-03-09_42"},
		{"hash format", `{{creationDate format="YYYYMM"}}-{{domain}}`, nil, "202403-godev"},
		{"untitled", "{{title}}", func(b *types.Bookmark) { b.Title = "" }, "untitled"},
		{"empty falls back to id", "{{title}}", func(b *types.Bookmark) { b.Title = "日本" }, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, err := r.Compile(tt.template)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			b := testBookmark()
			if tt.mutate != nil {
				tt.mutate(&b)
			}
			got, err := r.Filename(tpl, b)
			if err != nil {
				t.Fatalf("Filename() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Filename() = %q, want %q", got, tt.want)
			}
		})
	}
}
