package book

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
)

// Loader reads index.yaml files into a document tree rooted at a source directory.
type Loader struct {
	srcRoot  string
	resolved string
	logger   *slog.Logger
}

// NewLoader creates a loader for the source directory srcRoot.
func NewLoader(srcRoot string) (*Loader, error) {
	abs, err := filepath.Abs(srcRoot)
	if err != nil {
		return nil, derrors.FileSystemError("cannot resolve source directory").WithCause(err).Build()
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, derrors.StructureError("source directory not found").
			WithCause(err).
			WithContext("path", abs).
			Fatal().
			Build()
	}
	return &Loader{srcRoot: abs, resolved: resolved, logger: slog.Default()}, nil
}

// WithLogger sets the logger used for debug output.
func (l *Loader) WithLogger(logger *slog.Logger) *Loader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Load reads the description at descriptionPath and everything below it. Bad entries are
// skipped and reported as LoadErrors; the returned error is set only when the description
// itself is unreadable or its summary is missing.
func (l *Loader) Load(descriptionPath string) (*Node, []LoadError, error) {
	abs, err := filepath.Abs(descriptionPath)
	if err != nil {
		return nil, nil, derrors.FileSystemError("cannot resolve description path").WithCause(err).Build()
	}
	desc, err := config.ReadDescription(abs)
	if err != nil {
		return nil, nil, derrors.StructureError("cannot load the root description").
			WithCause(err).
			Fatal().
			Build()
	}

	var errs []LoadError
	active := map[string]bool{}
	node, err := l.loadDir(filepath.Dir(abs), abs, desc, active, &errs)
	if err != nil {
		return nil, errs, derrors.StructureError("cannot load the root description").
			WithCause(err).
			Fatal().
			Build()
	}
	return node, errs, nil
}

func (l *Loader) loadDir(dir, descPath string, desc *config.Description, active map[string]bool, errs *[]LoadError) (*Node, error) {
	resolvedDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, LoadError{Description: descPath, Err: fmt.Errorf("%w: %w", ErrMissingItem, err)}
	}
	active[resolvedDir] = true
	defer delete(active, resolvedDir)

	summary, err := l.resolve(dir, desc.Summary.Path)
	if err != nil {
		if errors.Is(err, ErrMissingItem) || desc.Summary.Path == "" {
			err = ErrMissingSummary
		}
		return nil, LoadError{Description: descPath, Declared: desc.Summary.Path, Err: err}
	}
	if info, statErr := os.Stat(summary); statErr != nil || !info.Mode().IsRegular() {
		return nil, LoadError{Description: descPath, Declared: desc.Summary.Path, Err: ErrMissingSummary}
	}

	node := &Node{Name: desc.Summary.Name, Path: summary, Dir: dir}

	for _, item := range desc.Items {
		declared := item.DeclaredPath()
		record := func(err error) {
			*errs = append(*errs, LoadError{Description: descPath, Declared: declared, Err: err})
		}

		if (item.File == nil) == (item.Dir == "") {
			record(ErrInvalidItem)
			continue
		}

		target, err := l.resolve(dir, declared)
		if err != nil {
			record(err)
			continue
		}
		info, err := os.Stat(target)
		if err != nil {
			record(ErrMissingItem)
			continue
		}

		if item.File != nil {
			if !info.Mode().IsRegular() {
				record(fmt.Errorf("%w: expected a regular file", ErrUnexpectedKind))
				continue
			}
			node.Children = append(node.Children, &Node{Name: item.File.Name, Path: target})
			continue
		}

		if !info.IsDir() {
			record(fmt.Errorf("%w: expected a directory", ErrUnexpectedKind))
			continue
		}
		child, err := l.loadChild(target, active, errs)
		if err != nil {
			var le LoadError
			if errors.As(err, &le) {
				*errs = append(*errs, le)
			} else {
				record(err)
			}
			continue
		}
		node.Children = append(node.Children, child)
	}

	l.logger.Debug("Loaded directory description",
		logfields.Path(descPath),
		logfields.Count(len(node.Children)))
	return node, nil
}

func (l *Loader) loadChild(dir string, active map[string]bool, errs *[]LoadError) (*Node, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingItem, err)
	}
	if active[resolved] {
		return nil, ErrCycle
	}

	descPath := filepath.Join(dir, config.DescriptionFileName)
	if info, err := os.Stat(descPath); err != nil || !info.Mode().IsRegular() {
		return nil, ErrNoDescription
	}
	desc, err := config.ReadDescription(descPath)
	if err != nil {
		return nil, LoadError{Description: descPath, Err: fmt.Errorf("%w: %w", ErrInvalidDescription, err)}
	}
	return l.loadDir(dir, descPath, desc, active, errs)
}

// resolve joins declared onto dir and checks that the target, after following
// symlinks, stays inside the source directory.
func (l *Loader) resolve(dir, declared string) (string, error) {
	if declared == "" {
		return "", ErrMissingItem
	}
	if filepath.IsAbs(declared) {
		return "", ErrNotRelative
	}
	target := filepath.Join(dir, declared)
	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		return "", ErrMissingItem
	}
	rel, err := filepath.Rel(l.resolved, resolved)
	if err != nil || !filepath.IsLocal(rel) {
		return "", ErrOutsideSource
	}
	lexical, err := filepath.Rel(l.srcRoot, target)
	if err != nil || !filepath.IsLocal(lexical) {
		return "", ErrOutsideSource
	}
	return target, nil
}
