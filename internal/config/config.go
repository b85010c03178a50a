// Package config loads and persists the raindrop-sync settings record.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/taigrr/raindrop-sync/internal/types"
	"gopkg.in/yaml.v3"
)

// DefaultAPIBaseURL is the Raindrop REST endpoint.
const DefaultAPIBaseURL = "https://api.raindrop.io/rest/v1"

// DefaultFileName is the settings file created at the vault root.
const DefaultFileName = ".raindrop-sync.yaml"

// TokenEnv overrides an empty apiToken.
const TokenEnv = "RAINDROP_TOKEN"

// Settings is the persisted, user-editable configuration record.
type Settings struct {
	APIToken   string `yaml:"apiToken" toml:"apiToken"`
	APIBaseURL string `yaml:"apiBaseUrl" toml:"apiBaseUrl"`
	LogLevel   string `yaml:"logLevel" toml:"logLevel"`

	ListViewFolder      string  `yaml:"listViewFolder" toml:"listViewFolder"`
	FileViewFolder      string  `yaml:"fileViewFolder" toml:"fileViewFolder"`
	FileViewIndexFolder string  `yaml:"fileViewIndexFolder" toml:"fileViewIndexFolder"`
	FileViewColumns     Columns `yaml:"fileViewColumns" toml:"fileViewColumns"`

	CollectionIDs    []int `yaml:"collectionIds" toml:"collectionIds"`
	CascadeSelection bool  `yaml:"cascadeSelection" toml:"cascadeSelection"`

	ListTemplate             string `yaml:"listTemplate" toml:"listTemplate"`
	FileViewTemplate         string `yaml:"fileViewTemplate" toml:"fileViewTemplate"`
	FileViewFilenameTemplate string `yaml:"fileViewFilenameTemplate" toml:"fileViewFilenameTemplate"`
	FileViewDateFormat       string `yaml:"fileViewDateFormat" toml:"fileViewDateFormat"`

	UseMarkdownHighlights       bool `yaml:"useMarkdownHighlights" toml:"useMarkdownHighlights"`
	UseColoredHighlights        bool `yaml:"useColoredHighlights" toml:"useColoredHighlights"`
	OnlyBookmarksWithHighlights bool `yaml:"onlyBookmarksWithHighlights" toml:"onlyBookmarksWithHighlights"`

	// Vault globs the sync never reads or writes, on top of the built-in ones.
	IgnoredPatterns []string `yaml:"ignoredPatterns,omitempty" toml:"ignoredPatterns,omitempty"`

	// RFC 3339 timestamps of the last successful sync per mode.
	LastSyncListView string `yaml:"lastSyncListView,omitempty" toml:"lastSyncListView,omitempty"`
	LastSyncFileView string `yaml:"lastSyncFileView,omitempty" toml:"lastSyncFileView,omitempty"`
}

// Columns toggles the columns of the generated index tables.
type Columns struct {
	Cover      bool `yaml:"cover" toml:"cover"`
	Tags       bool `yaml:"tags" toml:"tags"`
	Highlights bool `yaml:"highlights" toml:"highlights"`
	Notes      bool `yaml:"notes" toml:"notes"`
	Type       bool `yaml:"type" toml:"type"`
}

// Default returns the hardcoded defaults every loaded file is merged over.
func Default() *Settings {
	return &Settings{
		APIBaseURL:          DefaultAPIBaseURL,
		LogLevel:            "info",
		ListViewFolder:      "Raindrop",
		FileViewFolder:      "Raindrop/Items",
		FileViewIndexFolder: "Raindrop/Index",
		FileViewColumns: Columns{
			Cover:      true,
			Tags:       true,
			Highlights: true,
			Notes:      true,
			Type:       true,
		},
		CollectionIDs:            []int{},
		CascadeSelection:         true,
		ListTemplate:             DefaultListTemplate,
		FileViewTemplate:         DefaultFileViewTemplate,
		FileViewFilenameTemplate: DefaultFilenameTemplate,
		FileViewDateFormat:       DefaultDateFormat,
		UseMarkdownHighlights:    true,
		UseColoredHighlights:     true,
	}
}

// Store reads and writes the settings file at Path.
type Store struct {
	Path string
}

// NewStore returns a store for path, defaulting to the vault-root file.
func NewStore(vaultPath, path string) *Store {
	if path == "" {
		path = filepath.Join(vaultPath, DefaultFileName)
	}
	return &Store{Path: path}
}

// Load reads the settings file merged over Default. A missing file yields
// the defaults.
func (s *Store) Load() (*Settings, error) {
	cfg := Default()

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if s.isTOML() {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", s.Path, err)
	}

	cfg.backfill()
	cfg.applyEnv()
	return cfg, nil
}

// Save persists the full record. The token taken from the environment is
// never written back.
func (s *Store) Save(cfg *Settings) error {
	out := *cfg
	if envToken := os.Getenv(TokenEnv); envToken != "" && out.APIToken == envToken {
		out.APIToken = ""
	}

	data, err := s.Marshal(&out)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal encodes cfg in the store's file format.
func (s *Store) Marshal(cfg *Settings) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if s.isTOML() {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func (s *Store) isTOML() bool {
	return strings.EqualFold(filepath.Ext(s.Path), ".toml")
}

// backfill restores fields that older settings files may carry empty.
func (c *Settings) backfill() {
	def := Default()
	if c.FileViewFilenameTemplate == "" {
		c.FileViewFilenameTemplate = def.FileViewFilenameTemplate
	}
	if c.FileViewDateFormat == "" {
		c.FileViewDateFormat = def.FileViewDateFormat
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = def.APIBaseURL
	}
	if c.CollectionIDs == nil {
		c.CollectionIDs = []int{}
	}
}

func (c *Settings) applyEnv() {
	if c.APIToken == "" {
		c.APIToken = os.Getenv(TokenEnv)
	}
}

// IsSelected reports whether id is in the selection.
func (c *Settings) IsSelected(id int) bool {
	return slices.Contains(c.CollectionIDs, id)
}

// SelectedSet returns the selection as a set.
func (c *Settings) SelectedSet() map[int]bool {
	set := make(map[int]bool, len(c.CollectionIDs))
	for _, id := range c.CollectionIDs {
		set[id] = true
	}
	return set
}

// Select adds ids to the selection, keeping it sorted and unique.
func (c *Settings) Select(ids ...int) {
	set := c.SelectedSet()
	for _, id := range ids {
		set[id] = true
	}
	c.CollectionIDs = sortedKeys(set)
}

// Deselect removes ids from the selection.
func (c *Settings) Deselect(ids ...int) {
	set := c.SelectedSet()
	for _, id := range ids {
		delete(set, id)
	}
	c.CollectionIDs = sortedKeys(set)
}

func sortedKeys(set map[int]bool) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// PathFilterConfig returns the vault path filter settings.
func (c *Settings) PathFilterConfig() *types.PathFilterConfig {
	return &types.PathFilterConfig{IgnoredPatterns: slices.Clone(c.IgnoredPatterns)}
}
