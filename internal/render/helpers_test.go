package render

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookbuilder/internal/book"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func openProject(t *testing.T, files map[string]string) *book.Project {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, files)
	p, errs, err := book.Open(root, nil)
	require.NoError(t, err)
	require.Empty(t, errs)
	return p
}

// fakeConverter echoes a fixed body and records what it was asked to do.
type fakeConverter struct {
	mu       sync.Mutex
	body     string
	requests []Request
}

func (f *fakeConverter) Convert(_ context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if req.Embedded {
		return f.body, nil
	}
	return "<html><body>" + f.body + "</body></html>", nil
}

func (f *fakeConverter) Clone() Converter { return f }
