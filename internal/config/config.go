package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
)

const (
	// FileName is the project configuration file at the book root.
	FileName = "book.yaml"
	// DescriptionFileName describes one source directory.
	DescriptionFileName = "index.yaml"
	// CacheDirName is the hidden directory holding the build cache and history.
	CacheDirName = ".bookbuilder-cache"
)

// Book is the project configuration read from book.yaml.
type Book struct {
	Title   string   `yaml:"title"`
	Authors []string `yaml:"authors,omitempty"`
	// BaseURL is prepended to absolute links, e.g. "/my-book". No trailing slash.
	BaseURL string `yaml:"base_url"`
	SrcDir  string `yaml:"src_dir"`
	SiteDir string `yaml:"site_dir"`
	// OutputExt replaces the source extension of every rendered document.
	OutputExt string `yaml:"output_ext"`
	// Includes are copied verbatim from the source directory into the site.
	Includes []string `yaml:"includes,omitempty"`
	Copies   []Copy   `yaml:"copies,omitempty"`
	// Converts are rendered but kept out of the navigation (e.g. 404 pages).
	Converts        []string      `yaml:"converts,omitempty"`
	UseDefaultTheme bool          `yaml:"use_default_theme"`
	FoldLevel       *int          `yaml:"fold_level,omitempty"`
	Concurrency     int           `yaml:"concurrency,omitempty"`
	Convert         ConvertConfig `yaml:"convert"`
	Logging         LoggingConfig `yaml:"logging"`
}

// Copy is a project-root-relative file or directory copy into the site.
type Copy struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// ConvertConfig configures the external conversion command.
type ConvertConfig struct {
	Command      string          `yaml:"command"`
	Args         []string        `yaml:"args,omitempty"`
	EmbeddedFlag string          `yaml:"embedded_flag"`
	Options      []ConvertOption `yaml:"options,omitempty"`
}

// ConvertOption is one flag with zero or more arguments. A flag with several
// arguments is passed once per argument: `-a x -a y`.
type ConvertOption struct {
	Flag string   `yaml:"flag"`
	Args []string `yaml:"args,omitempty"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// SrcPath returns the absolute source directory for a project rooted at root.
func (b *Book) SrcPath(root string) string {
	return filepath.Join(root, b.SrcDir)
}

// SitePath returns the absolute site directory for a project rooted at root.
func (b *Book) SitePath(root string) string {
	return filepath.Join(root, b.SiteDir)
}

// CachePath returns the cache directory for a project rooted at root.
func CachePath(root string) string {
	return filepath.Join(root, CacheDirName)
}

// Load reads book.yaml at path, expands ${VAR} references, applies defaults and validates the result.
func Load(path string) (*Book, error) {
	loadEnvFiles(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.NewError(derrors.CategoryNotFound, "configuration file not found").
				WithContext("path", path).
				Fatal().
				Build()
		}
		return nil, derrors.ConfigError("failed to read config file").WithCause(err).WithContext("path", path).Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes book.yaml content, expanding environment variables first.
func Parse(data []byte) (*Book, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Book
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, derrors.ConfigError("failed to parse book.yaml").WithCause(err).Build()
	}
	if err := ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
