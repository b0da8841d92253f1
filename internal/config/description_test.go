package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
)

func TestReadDescription(t *testing.T) {
	path := filepath.Join(t.TempDir(), DescriptionFileName)
	writeFile(t, path, `
summary:
  name: Preface
  path: index.adoc
items:
  - file: {name: "", path: intro.adoc}
  - dir: part1
  - file:
      name: Outro
      path: outro.md
`)

	desc, err := ReadDescription(path)
	require.NoError(t, err)
	assert.Equal(t, DescriptionFile{Name: "Preface", Path: "index.adoc"}, desc.Summary)
	require.Len(t, desc.Items, 3)
	assert.Equal(t, "intro.adoc", desc.Items[0].DeclaredPath())
	assert.Equal(t, "part1", desc.Items[1].DeclaredPath())
	assert.Nil(t, desc.Items[1].File)
	assert.Equal(t, "Outro", desc.Items[2].File.Name)
}

func TestReadDescription_Errors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), DescriptionFileName)
		_, err := ReadDescription(path)
		require.Error(t, err)
		assert.True(t, derrors.HasCategory(err, derrors.CategoryStructure))
	})

	t.Run("malformed names the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), DescriptionFileName)
		writeFile(t, path, "items: {not: [a list\n")
		_, err := ReadDescription(path)
		require.Error(t, err)
		classified, ok := derrors.AsClassified(err)
		require.True(t, ok)
		got, _ := classified.Context().GetString("path")
		assert.Equal(t, path, got)
	})
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "title: t\n")
	nested := filepath.Join(root, "src", "part1")
	writeFile(t, filepath.Join(nested, "a.adoc"), "= A\n")

	got, err := FindRoot(nested)
	require.NoError(t, err)
	want, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindRoot_NotFound(t *testing.T) {
	_, err := FindRoot(t.TempDir())
	require.ErrorIs(t, err, ErrRootNotFound)
}
