package commands

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookbuilder/internal/cache"
	"git.home.luguber.info/inful/bookbuilder/internal/config"
	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
)

func testGlobal(t *testing.T) (*Global, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &Global{Logger: slog.Default(), Stdout: stdout, Stderr: stderr}, stdout, stderr
}

func writeMarkdownBook(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"book.yaml":      "title: CLI Book\nlogging:\n  level: warn\n",
		"src/index.yaml": "summary: {name: Home, path: index.md}\nitems:\n  - file: {name: Guide, path: guide.md}\n",
		"src/index.md":   "# Home\n",
		"src/guide.md":   "# Guide\n\nSome *text*.\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func TestBuildCmd_BuildsAndRecordsHistory(t *testing.T) {
	root := writeMarkdownBook(t)
	g, stdout, _ := testGlobal(t)
	cli := &CLI{}
	metricsFile := filepath.Join(t.TempDir(), "bookbuilder.prom")

	cmd := &BuildCmd{Dir: root, Progress: "none", MetricsFile: metricsFile}
	require.NoError(t, cmd.Run(g, cli))

	html, err := os.ReadFile(filepath.Join(root, "site", "guide.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<em>text</em>")

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "bookbuilder_build_outcomes_total")

	// root discovery from a sub-directory, with the timing summary
	cli.Verbose = true
	require.NoError(t, (&BuildCmd{Dir: filepath.Join(root, "src"), Progress: "none"}).Run(g, cli))
	assert.Contains(t, stdout.String(), "rendered 0, reused 2, failed 0")

	stdout.Reset()
	require.NoError(t, (&HistoryCmd{Dir: root, Limit: 10}).Run(g, cli))
	out := stdout.String()
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "cli")
	assert.Contains(t, out, "completed")
}

func TestBuildCmd_NoBook(t *testing.T) {
	g, _, _ := testGlobal(t)
	err := (&BuildCmd{Dir: t.TempDir(), Progress: "none"}).Run(g, &CLI{})
	require.ErrorIs(t, err, config.ErrRootNotFound)
	assert.Equal(t, 3, derrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestHistoryCmd_Empty(t *testing.T) {
	root := writeMarkdownBook(t)
	g, stdout, _ := testGlobal(t)
	require.NoError(t, (&HistoryCmd{Dir: root, Limit: 5}).Run(g, &CLI{}))
	assert.Equal(t, "No builds recorded yet\n", stdout.String())
}

func TestCleanAndClearCmd(t *testing.T) {
	root := writeMarkdownBook(t)
	g, _, _ := testGlobal(t)
	cli := &CLI{}
	require.NoError(t, (&BuildCmd{Dir: root, Progress: "none"}).Run(g, cli))
	require.NoError(t, os.WriteFile(filepath.Join(root, "site", ".nojekyll"), nil, 0o600))

	require.NoError(t, (&CleanCmd{Dir: root}).Run(g, cli))
	assert.NoFileExists(t, filepath.Join(root, "site", "index.html"))
	assert.FileExists(t, filepath.Join(root, "site", ".nojekyll"))

	index := filepath.Join(root, config.CacheDirName, cache.IndexFileName)
	require.FileExists(t, index)
	require.NoError(t, (&ClearCmd{Dir: root}).Run(g, cli))
	assert.NoFileExists(t, index)
	assert.NoDirExists(t, filepath.Join(root, config.CacheDirName, cache.ArtifactsDir))
}

func TestInitCmd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "new-book")
	g, stdout, _ := testGlobal(t)

	require.NoError(t, (&InitCmd{Dir: dir}).Run(g, &CLI{}))
	assert.Contains(t, stdout.String(), "Initialized book in")
	assert.FileExists(t, filepath.Join(dir, "book.yaml"))
	assert.FileExists(t, filepath.Join(dir, ".gitignore"))
	assert.FileExists(t, filepath.Join(dir, "src", "index.yaml"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "book.yaml"), []byte("title: Mine\n"), 0o600))
	stdout.Reset()
	require.NoError(t, (&InitCmd{Dir: dir}).Run(g, &CLI{}))
	assert.Contains(t, stdout.String(), "Nothing written")
	data, err := os.ReadFile(filepath.Join(dir, "book.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "title: Mine\n", string(data))
}

func TestPresetCmd(t *testing.T) {
	g, stdout, _ := testGlobal(t)
	require.NoError(t, (&PresetCmd{Name: "index"}).Run(g, &CLI{}))
	assert.Contains(t, stdout.String(), "summary:")

	err := (&PresetCmd{Name: "chapter"}).Run(g, &CLI{})
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
}

func TestLogLevel(t *testing.T) {
	t.Setenv(LogLevelEnv, "")
	cli := &CLI{}
	assert.Equal(t, slog.LevelInfo, cli.logLevel(""))
	assert.Equal(t, slog.LevelError, cli.logLevel(config.LogLevelError))

	t.Setenv(LogLevelEnv, "debug")
	assert.Equal(t, slog.LevelDebug, cli.logLevel(config.LogLevelError))

	cli.Verbose = true
	t.Setenv(LogLevelEnv, "error")
	assert.Equal(t, slog.LevelDebug, cli.logLevel(config.LogLevelError))
}
