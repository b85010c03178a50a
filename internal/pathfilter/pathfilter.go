// Package pathfilter decides which vault paths the sync may read or write.
package pathfilter

import (
	"regexp"
	"strings"

	"github.com/taigrr/raindrop-sync/internal/types"
)

// StateDir holds the tool's own files inside the vault.
const StateDir = ".raindrop-sync"

var defaultIgnored = []string{
	".obsidian/**",
	".trash/**",
	".git/**",
	StateDir + "/**",
	StateDir + ".*",
	"node_modules/**",
	"**/.DS_Store",
	".DS_Store",
	"Thumbs.db",
}

var extensionPattern = regexp.MustCompile(`^[a-zA-Z0-9]{1,10}$`)

// PathFilter filters vault-relative paths by glob and extension.
type PathFilter struct {
	ignored           []*regexp.Regexp
	allowedExtensions []string
}

// New creates a PathFilter. Markdown files are always allowed; config adds
// patterns and extensions on top of the defaults.
func New(config *types.PathFilterConfig) *PathFilter {
	patterns := append([]string(nil), defaultIgnored...)
	pf := &PathFilter{allowedExtensions: []string{".md", ".markdown"}}

	if config != nil {
		patterns = append(patterns, config.IgnoredPatterns...)
		pf.allowedExtensions = append(pf.allowedExtensions, config.AllowedExtensions...)
	}

	for _, p := range patterns {
		if re := compileGlob(p); re != nil {
			pf.ignored = append(pf.ignored, re)
		}
	}
	return pf
}

// compileGlob turns a glob into an anchored regex. ** crosses directories,
// * and ? do not.
func compileGlob(pattern string) *regexp.Regexp {
	expr := regexp.QuoteMeta(strings.ReplaceAll(pattern, "\\", "/"))
	expr = strings.ReplaceAll(expr, `\*\*`, ".*")
	expr = strings.ReplaceAll(expr, `\*`, "[^/]*")
	expr = strings.ReplaceAll(expr, `\?`, "[^/]")

	re, err := regexp.Compile("^" + expr + "$")
	if err != nil {
		return nil
	}
	return re
}

// IsAllowed reports whether path may be touched. Directories pass the
// extension check.
func (pf *PathFilter) IsAllowed(path string) bool {
	normalized := strings.TrimPrefix(strings.ReplaceAll(path, "\\", "/"), "./")

	for _, re := range pf.ignored {
		if re.MatchString(normalized) {
			return false
		}
	}

	if !isFile(normalized) {
		return true
	}
	lower := strings.ToLower(normalized)
	for _, ext := range pf.allowedExtensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// IsNote reports whether path is an allowed markdown file.
func (pf *PathFilter) IsNote(path string) bool {
	lower := strings.ToLower(path)
	return (strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")) && pf.IsAllowed(path)
}

// isFile reports whether the last path component carries an extension.
func isFile(path string) bool {
	if strings.HasSuffix(path, "/") {
		return false
	}
	last := path[strings.LastIndex(path, "/")+1:]
	dot := strings.LastIndex(last, ".")
	if dot <= 0 {
		return false
	}
	return extensionPattern.MatchString(last[dot+1:])
}
