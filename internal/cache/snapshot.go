package cache

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
)

// Entry is the recorded modification time of one source file.
type Entry struct {
	Path    string
	ModTime time.Time
}

// Snapshot is the set of entries for every file under a source directory.
type Snapshot struct {
	entries map[string]time.Time
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{entries: make(map[string]time.Time)}
}

// Set records the modification time of rel.
func (s *Snapshot) Set(rel string, modTime time.Time) {
	s.entries[rel] = modTime
}

// Get returns the recorded modification time of rel.
func (s *Snapshot) Get(rel string) (time.Time, bool) {
	t, ok := s.entries[rel]
	return t, ok
}

// Has reports whether rel is recorded.
func (s *Snapshot) Has(rel string) bool {
	_, ok := s.entries[rel]
	return ok
}

// Len returns the number of entries.
func (s *Snapshot) Len() int { return len(s.entries) }

// Entries returns all entries sorted by path.
func (s *Snapshot) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for p, t := range s.entries {
		out = append(out, Entry{Path: p, ModTime: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Without returns a copy of s lacking the given paths.
func (s *Snapshot) Without(paths ...string) *Snapshot {
	out := &Snapshot{entries: make(map[string]time.Time, len(s.entries))}
	for p, t := range s.entries {
		out.entries[p] = t
	}
	for _, p := range paths {
		delete(out.entries, p)
	}
	return out
}

// Capture walks every file below sourceRoot and records its modification time.
// Keys are relative to sourceRoot and slash-separated. Directory symlinks are
// followed when their target stays inside sourceRoot and is not one of the
// directories being walked; dangling links are ignored.
func Capture(sourceRoot string) (*Snapshot, error) {
	snap := NewSnapshot()
	resolved, err := filepath.EvalSymlinks(sourceRoot)
	if err == nil {
		c := &capturer{root: sourceRoot, resolvedRoot: resolved, snap: snap, active: make(map[string]bool)}
		err = c.walk(sourceRoot, resolved)
	}
	if err != nil {
		return nil, derrors.FileSystemError("cannot read source file metadata").
			WithCause(err).
			WithContext("path", sourceRoot).
			Fatal().
			Build()
	}
	return snap, nil
}

type capturer struct {
	root         string
	resolvedRoot string
	snap         *Snapshot
	active       map[string]bool
}

// walk records the files of dir, whose symlink-free location is resolved.
func (c *capturer) walk(dir, resolved string) error {
	c.active[resolved] = true
	defer delete(c.active, resolved)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.Type()&fs.ModeSymlink == 0 {
			if e.IsDir() {
				if err := c.walk(path, filepath.Join(resolved, e.Name())); err != nil {
					return err
				}
				continue
			}
			if err := c.record(path); err != nil {
				return err
			}
			continue
		}

		target, err := filepath.EvalSymlinks(path)
		if err != nil {
			continue
		}
		info, err := os.Stat(target)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			if err := c.record(path); err != nil {
				return err
			}
			continue
		}
		rel, err := filepath.Rel(c.resolvedRoot, target)
		if err != nil || (rel != "." && !filepath.IsLocal(rel)) || c.active[target] {
			continue
		}
		if err := c.walk(path, target); err != nil {
			return err
		}
	}
	return nil
}

func (c *capturer) record(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return err
	}
	c.snap.Set(filepath.ToSlash(rel), info.ModTime())
	return nil
}
