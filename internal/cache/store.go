package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
)

const (
	IndexFileName   = "index.json"
	ArtifactsDir    = "artifacts"
	HistoryFileName = "history.db"

	// FormatVersion is bumped whenever the index layout changes; older indexes are discarded.
	FormatVersion = 1
)

// ErrArtifactMissing means the index claims a document is up to date but the mirror has
// no rendered output for it.
var ErrArtifactMissing = derrors.CacheError("cached output missing").
	WithHint("run `bookbuilder clear` to reset the build cache").
	UserAction().
	Build()

type indexFile struct {
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	Entries   []indexEntry `json:"entries"`
}

type indexEntry struct {
	Path    string `json:"path"`
	ModTime int64  `json:"mtime_ns"`
}

// Store owns the cache directory: the snapshot index and the artifact mirror.
type Store struct {
	dir       string
	outputExt string
	logger    *slog.Logger
}

// NewStore creates a store rooted at dir. outputExt is the extension of rendered files.
func NewStore(dir, outputExt string) *Store {
	return &Store{dir: dir, outputExt: outputExt, logger: slog.Default()}
}

// WithLogger sets a custom logger.
func (s *Store) WithLogger(logger *slog.Logger) *Store {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

// IndexPath returns the location of the persisted snapshot.
func (s *Store) IndexPath() string { return filepath.Join(s.dir, IndexFileName) }

// HistoryPath returns the location of the build history database.
func (s *Store) HistoryPath() string { return filepath.Join(s.dir, HistoryFileName) }

// LoadPrevious returns the persisted snapshot, or nil when there is none, when force is
// set, or when the index cannot be decoded. A broken index only costs a full rebuild.
func (s *Store) LoadPrevious(force bool) *Snapshot {
	if force {
		s.logger.Debug("Forced rebuild, ignoring cache index")
		return nil
	}
	data, err := os.ReadFile(s.IndexPath())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Cannot read cache index, starting fresh", logfields.Path(s.IndexPath()), logfields.Error(err))
		}
		return nil
	}

	var idx indexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		s.logger.Warn("Corrupted cache index, starting fresh", logfields.Path(s.IndexPath()), logfields.Error(err))
		return nil
	}
	if idx.Version != FormatVersion {
		s.logger.Warn("Unknown cache index version, starting fresh",
			logfields.Path(s.IndexPath()),
			slog.Int("version", idx.Version))
		return nil
	}

	snap := NewSnapshot()
	for _, e := range idx.Entries {
		snap.Set(e.Path, time.Unix(0, e.ModTime))
	}
	return snap
}

// Save replaces the persisted index with snap.
func (s *Store) Save(snap *Snapshot) error {
	idx := indexFile{Version: FormatVersion, CreatedAt: time.Now().UTC()}
	for _, e := range snap.Entries() {
		idx.Entries = append(idx.Entries, indexEntry{Path: e.Path, ModTime: e.ModTime.UnixNano()})
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return derrors.CacheError("cannot encode cache index").WithCause(err).Fatal().Build()
	}
	if err := writeFileAtomic(s.IndexPath(), data); err != nil {
		return derrors.CacheError("cannot persist cache index").
			WithCause(err).
			WithContext("path", s.IndexPath()).
			Fatal().
			Build()
	}
	s.logger.Debug("Saved cache index", logfields.Path(s.IndexPath()), logfields.Count(snap.Len()))
	return nil
}

// OutputRel maps a source-relative path onto its output path by replacing the extension.
func OutputRel(rel, ext string) string {
	return strings.TrimSuffix(rel, filepath.Ext(rel)) + ext
}

// ArtifactPath returns where the rendered output of the source document rel is mirrored.
func (s *Store) ArtifactPath(rel string) string {
	return filepath.Join(s.dir, ArtifactsDir, filepath.FromSlash(OutputRel(rel, s.outputExt)))
}

// ReadArtifact returns the mirrored output of rel.
func (s *Store) ReadArtifact(rel string) (string, error) {
	data, err := os.ReadFile(s.ArtifactPath(rel))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrArtifactMissing.WithContext("path", rel)
		}
		return "", derrors.CacheError("cannot read cached output").WithCause(err).WithContext("path", rel).Build()
	}
	return string(data), nil
}

// WriteArtifact mirrors the rendered output of rel.
func (s *Store) WriteArtifact(rel, text string) error {
	if err := writeFileAtomic(s.ArtifactPath(rel), []byte(text)); err != nil {
		return derrors.CacheError("cannot mirror rendered output").WithCause(err).WithContext("path", rel).Build()
	}
	return nil
}

// Clear removes the index and the artifact mirror. Build history is kept.
func (s *Store) Clear() error {
	for _, p := range []string{s.IndexPath(), filepath.Join(s.dir, ArtifactsDir)} {
		if err := os.RemoveAll(p); err != nil {
			return derrors.CacheError("cannot clear build cache").WithCause(err).WithContext("path", p).Build()
		}
	}
	s.logger.Info("Cleared build cache", logfields.Dir(s.dir))
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
