// Package filesystem provides vault-rooted file operations for the sync.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/taigrr/raindrop-sync/internal/frontmatter"
	"github.com/taigrr/raindrop-sync/internal/pathfilter"
	"github.com/taigrr/raindrop-sync/internal/types"
)

var (
	// ErrExists is returned when a move would replace an existing file.
	ErrExists = errors.New("target file already exists")

	// ErrAccessDenied is returned for paths rejected by the path filter.
	ErrAccessDenied = errors.New("access denied")
)

// Service reads and writes files under the vault root.
type Service struct {
	vaultPath          string
	pathFilter         *pathfilter.PathFilter
	frontmatterHandler *frontmatter.Handler
}

// New creates a Service rooted at vaultPath.
func New(vaultPath string, pf *pathfilter.PathFilter, fh *frontmatter.Handler) *Service {
	absPath, _ := filepath.Abs(vaultPath)
	if pf == nil {
		pf = pathfilter.New(nil)
	}
	if fh == nil {
		fh = frontmatter.New()
	}
	return &Service{
		vaultPath:          absPath,
		pathFilter:         pf,
		frontmatterHandler: fh,
	}
}

// ResolvePath resolves a vault-relative path and rejects anything that
// escapes the vault.
func (s *Service) ResolvePath(relativePath string) (string, error) {
	normalized := strings.TrimPrefix(strings.TrimSpace(relativePath), "/")

	absPath, err := filepath.Abs(filepath.Join(s.vaultPath, normalized))
	if err != nil {
		return "", err
	}

	relPath, err := filepath.Rel(s.vaultPath, absPath)
	if err != nil {
		return "", err
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal not allowed: %s", relativePath)
	}

	return absPath, nil
}

func (s *Service) resolveAllowed(path string) (string, error) {
	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return "", err
	}
	if !s.pathFilter.IsAllowed(path) {
		return "", fmt.Errorf("%w: %s", ErrAccessDenied, path)
	}
	return fullPath, nil
}

// ReadNote reads a note and splits off its frontmatter.
func (s *Service) ReadNote(path string) (types.ParsedNote, error) {
	fullPath, err := s.resolveAllowed(path)
	if err != nil {
		return types.ParsedNote{}, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.ParsedNote{}, fmt.Errorf("file not found: %s", path)
		}
		return types.ParsedNote{}, fmt.Errorf("failed to read file: %s - %w", path, err)
	}

	return s.frontmatterHandler.Parse(string(content)), nil
}

// WriteFile writes content to path, creating parent folders.
func (s *Service) WriteFile(path, content string) error {
	fullPath, err := s.resolveAllowed(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %s - %w", path, err)
	}
	return nil
}

// AppendFile adds content to the end of path, creating the file and its
// parent folders when missing. Content added to a non-empty file is set
// off by a blank line.
func (s *Service) AppendFile(path, content string) (err error) {
	fullPath, err := s.resolveAllowed(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open file: %s - %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %s - %w", path, cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %s - %w", path, err)
	}
	if info.Size() > 0 {
		content = "\n" + content
	}
	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("failed to append to file: %s - %w", path, err)
	}
	return nil
}

// EnsureDir creates a vault folder and its parents.
func (s *Service) EnsureDir(path string) error {
	fullPath, err := s.resolveAllowed(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(fullPath, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %s - %w", path, err)
	}
	return nil
}

// MoveNote renames a note, creating the destination folder. An existing
// target is only replaced when Overwrite is set.
func (s *Service) MoveNote(params types.MoveNoteParams) error {
	oldFullPath, err := s.resolveAllowed(params.OldPath)
	if err != nil {
		return err
	}
	newFullPath, err := s.resolveAllowed(params.NewPath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(oldFullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("source file not found: %s", params.OldPath)
		}
		return fmt.Errorf("failed to stat source file: %w", err)
	}
	if !params.Overwrite {
		if _, err := os.Stat(newFullPath); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, params.NewPath)
		}
	}

	if err := os.MkdirAll(filepath.Dir(newFullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.Rename(oldFullPath, newFullPath); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", params.OldPath, params.NewPath, err)
	}
	return nil
}

// ListDirectory lists the allowed files and folders directly in path.
func (s *Service) ListDirectory(path string) (types.DirectoryListing, error) {
	if path == "." {
		path = ""
	}

	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return types.DirectoryListing{}, err
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.DirectoryListing{}, fmt.Errorf("directory not found: %s", path)
		}
		return types.DirectoryListing{}, fmt.Errorf("failed to list directory: %s - %w", path, err)
	}

	var files, directories []string
	for _, entry := range entries {
		entryPath := entry.Name()
		if path != "" {
			entryPath = path + "/" + entry.Name()
		}
		if !s.pathFilter.IsAllowed(entryPath) {
			continue
		}

		if entry.IsDir() {
			directories = append(directories, entry.Name())
		} else if entry.Type().IsRegular() {
			files = append(files, entry.Name())
		}
	}

	sort.Strings(files)
	sort.Strings(directories)

	return types.DirectoryListing{
		Files:       files,
		Directories: directories,
	}, nil
}

// HasFiles reports whether the folder exists and directly contains at least
// one allowed file.
func (s *Service) HasFiles(path string) bool {
	if !s.IsDirectory(path) {
		return false
	}
	listing, err := s.ListDirectory(path)
	if err != nil {
		return false
	}
	return len(listing.Files) > 0
}

// IsDirectory checks if a path is a folder.
func (s *Service) IsDirectory(path string) bool {
	fullPath, err := s.resolveAllowed(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}
