package render

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxFilenameLength caps sanitized filenames.
const MaxFilenameLength = 80

var (
	pathIllegal     = regexp.MustCompile(`[\\/:"*?<>|]`)
	slashes         = regexp.MustCompile(`[\\/]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	filenameIllegal = regexp.MustCompile(`[^a-z0-9_-]`)
)

// SanitizeFolder replaces characters that are illegal in folder names
// with '-', preserving case and spacing.
func SanitizeFolder(name string) string {
	return pathIllegal.ReplaceAllString(name, "-")
}

// SanitizeTitle removes characters that are illegal in file names. It is
// used for list-view headings and document names.
func SanitizeTitle(name string) string {
	return pathIllegal.ReplaceAllString(name, "")
}

// SanitizeFilename produces a lowercase token of [a-z0-9_-]: slashes become
// '-', accents are folded, whitespace runs become '_', everything else is
// dropped.
func SanitizeFilename(name string) string {
	s := slashes.ReplaceAllString(name, "-")
	s = strings.ToLower(foldMarks(s))
	s = whitespaceRuns.ReplaceAllString(s, "_")
	s = filenameIllegal.ReplaceAllString(s, "")
	if len(s) > MaxFilenameLength {
		s = s[:MaxFilenameLength]
	}
	return s
}

func foldMarks(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
