package site

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// copyPath copies a file or a directory tree from src to dst, creating parents.
func copyPath(src, dst string) (int, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			return 0, err
		}
		return 1, copyFile(src, dst, info.Mode())
	}

	if err := os.MkdirAll(dst, 0o750); err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, entry := range entries {
		n, err := copyPath(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name()))
		count += n
		if err != nil {
			return count, err
		}
	}
	return count, nil
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm()|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// copyMissing copies every file of fsys below dst, keeping files that already exist.
// It returns the number of files written.
func copyMissing(fsys fs.FS, dst string) (int, error) {
	written := 0
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if _, err := os.Lstat(target); err == nil {
			return nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", path.Clean(p), err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil { // #nosec G306 -- published site files
			return err
		}
		written++
		return nil
	})
	return written, err
}
