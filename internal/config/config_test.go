package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeFile(t, path, "title: My Book\nbase_url: /my-book/\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "My Book", cfg.Title)
	assert.Equal(t, "/my-book", cfg.BaseURL)
	assert.Equal(t, "src", cfg.SrcDir)
	assert.Equal(t, "site", cfg.SiteDir)
	assert.Equal(t, ".html", cfg.OutputExt)
	assert.Equal(t, "asciidoctor", cfg.Convert.Command)
	assert.Equal(t, "--embedded", cfg.Convert.EmbeddedFlag)
	assert.Equal(t, runtime.NumCPU(), cfg.Concurrency)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Nil(t, cfg.FoldLevel)
	assert.Equal(t, filepath.Join(dir, "src"), cfg.SrcPath(dir))
	assert.Equal(t, filepath.Join(dir, "site"), cfg.SitePath(dir))
}

func TestLoad_FullFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeFile(t, path, `
title: Full
authors: [ana, bo]
src_dir: docs
site_dir: public
output_ext: htm
includes: [static]
copies:
  - {from: CNAME, to: CNAME}
converts: [404.adoc]
use_default_theme: true
fold_level: 1
concurrency: 3
convert:
  command: asciidoctor
  args: [-r, asciidoctor-diagram]
  options:
    - flag: -a
      args: ["imagesdir={base_url}/static/img", "sectnums"]
    - flag: --trace
logging:
  level: DEBUG
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "bo"}, cfg.Authors)
	assert.Equal(t, ".htm", cfg.OutputExt)
	assert.Equal(t, []Copy{{From: "CNAME", To: "CNAME"}}, cfg.Copies)
	require.NotNil(t, cfg.FoldLevel)
	assert.Equal(t, 1, *cfg.FoldLevel)
	assert.Equal(t, 3, cfg.Concurrency)
	require.Len(t, cfg.Convert.Options, 2)
	assert.Equal(t, []string{"imagesdir={base_url}/static/img", "sectnums"}, cfg.Convert.Options[0].Args)
	assert.Empty(t, cfg.Convert.Options[1].Args)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("BOOK_BASE", "/from-env")
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeFile(t, path, "title: t\nbase_url: ${BOOK_BASE}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from-env", cfg.BaseURL)
}

func TestLoad_DotEnvDoesNotOverride(t *testing.T) {
	t.Setenv("BOOK_TITLE", "process")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "BOOK_TITLE=dotenv\nBOOK_SITE_DIR_TEST=public\n")
	t.Cleanup(func() { _ = os.Unsetenv("BOOK_SITE_DIR_TEST") })
	path := filepath.Join(dir, FileName)
	writeFile(t, path, "title: ${BOOK_TITLE}\nsite_dir: ${BOOK_SITE_DIR_TEST}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "process", cfg.Title)
	assert.Equal(t, "public", cfg.SiteDir)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), FileName))
		require.Error(t, err)
		assert.True(t, derrors.HasCategory(err, derrors.CategoryNotFound))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		writeFile(t, path, "title: [unclosed\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Book)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Book) {}},
		{name: "absolute src", mutate: func(b *Book) { b.SrcDir = "/abs/src" }, wantErr: true},
		{name: "escaping site", mutate: func(b *Book) { b.SiteDir = "../out" }, wantErr: true},
		{name: "site is root", mutate: func(b *Book) { b.SiteDir = "." }, wantErr: true},
		{name: "site equals src", mutate: func(b *Book) { b.SiteDir = "src/" }, wantErr: true},
		{name: "site is cache", mutate: func(b *Book) { b.SiteDir = CacheDirName }, wantErr: true},
		{name: "nested site", mutate: func(b *Book) { b.SiteDir = "build/site" }},
		{name: "src inside site", mutate: func(b *Book) { b.SiteDir, b.SrcDir = "book", "book/src" }, wantErr: true},
		{name: "src deep inside site", mutate: func(b *Book) { b.SiteDir, b.SrcDir = "out/", "./out/a/b" }, wantErr: true},
		{name: "site inside cache", mutate: func(b *Book) { b.SiteDir = CacheDirName + "/site" }, wantErr: true},
		{name: "site inside src", mutate: func(b *Book) { b.SiteDir = "src/out" }},
		{name: "site shares a prefix with src", mutate: func(b *Book) { b.SiteDir, b.SrcDir = "doc", "docs" }},
		{name: "incomplete copy", mutate: func(b *Book) { b.Copies = []Copy{{From: "a"}} }, wantErr: true},
		{name: "empty option flag", mutate: func(b *Book) { b.Convert.Options = []ConvertOption{{Flag: " "}} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Book{}
			require.NoError(t, ApplyDefaults(cfg))
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNormalizeLogging(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel(" Warning "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("verbose"))
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat("JSON"))
	assert.Equal(t, LogFormatText, NormalizeLogFormat(""))
}
