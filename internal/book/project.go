package book

import (
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
)

// Project is a loaded book: its root, configuration and document tree.
// It is not modified after Open returns.
type Project struct {
	Root   string
	Config *config.Book
	Tree   *Node
}

// SrcDir returns the absolute source directory.
func (p *Project) SrcDir() string { return p.Config.SrcPath(p.Root) }

// SiteDir returns the absolute site directory.
func (p *Project) SiteDir() string { return p.Config.SitePath(p.Root) }

// CacheDir returns the absolute cache directory.
func (p *Project) CacheDir() string { return config.CachePath(p.Root) }

// Rel returns path relative to the source directory using forward slashes.
func (p *Project) Rel(path string) (string, error) {
	rel, err := filepath.Rel(p.SrcDir(), path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// ConvertPaths returns the absolute paths of the convert-only documents.
func (p *Project) ConvertPaths() []string {
	paths := make([]string, 0, len(p.Config.Converts))
	for _, c := range p.Config.Converts {
		paths = append(paths, filepath.Join(p.SrcDir(), c))
	}
	return paths
}

// Open loads book.yaml from root and the document tree of its source directory.
// Entry-level problems are returned as LoadErrors; the error is set for an
// unreadable configuration, root description or root summary.
func Open(root string, logger *slog.Logger) (*Project, []LoadError, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, derrors.FileSystemError("cannot resolve book root").WithCause(err).Build()
	}

	cfg, err := config.Load(filepath.Join(abs, config.FileName))
	if err != nil {
		return nil, nil, err
	}

	p := &Project{Root: abs, Config: cfg}
	loader, err := NewLoader(p.SrcDir())
	if err != nil {
		return nil, nil, err
	}
	tree, loadErrs, err := loader.WithLogger(logger).Load(filepath.Join(p.SrcDir(), config.DescriptionFileName))
	if err != nil {
		return nil, loadErrs, err
	}
	p.Tree = tree
	return p, loadErrs, nil
}
