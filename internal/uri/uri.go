// Package uri builds the links written into synced notes.
package uri

import (
	"net/url"
	"strconv"
	"strings"
)

// RaindropAppBase is the web app prefix for single bookmark pages.
const RaindropAppBase = "https://app.raindrop.io/my/0/item/"

// RaindropItemURL returns the web app link for a bookmark id.
func RaindropItemURL(id int) string {
	return RaindropAppBase + strconv.Itoa(id)
}

// RaindropItemLink returns the markdown link to a bookmark in the web app.
func RaindropItemLink(id int) string {
	return "[View Raindrop](" + RaindropItemURL(id) + ")"
}

// HeadingLink returns a wiki link to a heading in the same note.
func HeadingLink(heading string) string {
	return "[[#" + heading + "]]"
}

// NoteHeadingTarget returns the target of a wiki link to heading inside
// note, without brackets.
func NoteHeadingTarget(note, heading string) string {
	return note + "#" + heading
}

// ObsidianURI returns the obsidian:/// URI opening a vault note by its
// absolute path. The .md extension is dropped.
func ObsidianURI(vaultPath, notePath string) string {
	absolutePath := vaultPath + "/" + strings.TrimPrefix(notePath, "/")
	absolutePath = strings.TrimSuffix(absolutePath, ".md")

	parts := strings.Split(absolutePath, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	encodedPath := strings.TrimPrefix(strings.Join(parts, "/"), "/")

	return "obsidian:///" + encodedPath
}
