package errors

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("accessors", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			Fatal().
			WithContext("file", "book.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())

		file, ok := err.Context().GetString("file")
		require.True(t, ok)
		assert.Equal(t, "book.yaml", file)
	})

	t.Run("detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		assert.True(t, IsClassified(err))
		assert.True(t, HasCategory(err, CategoryConfig))
		assert.True(t, err.IsFatal())
		assert.False(t, err.NeedsUserAction())
		assert.False(t, IsClassified(errors.New("plain")))
	})

	t.Run("message", func(t *testing.T) {
		err := WrapError(errors.New("permission denied"), CategoryFileSystem, "cannot write site").Build()
		assert.Equal(t, "cannot write site: permission denied", err.Error())

		hinted := CacheError("cached output missing").WithHint("run `bookbuilder clear`").Build()
		assert.Equal(t, "cached output missing (run `bookbuilder clear`)", hinted.Error())
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("fluent API", func(t *testing.T) {
		original := errors.New("exit status 1")
		err := WrapError(original, CategoryRender, "converter failed").
			Warning().
			NextBuild().
			WithContext("path", "src/a.adoc").
			Build()

		assert.Equal(t, CategoryRender, err.Category())
		assert.Equal(t, SeverityWarning, err.Severity())
		assert.Equal(t, RetryNextBuild, err.RetryStrategy())
		assert.Same(t, original, err.Cause())
		assert.ErrorIs(t, err, original)
	})

	t.Run("constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			fatal    bool
			retry    RetryStrategy
		}{
			{"config", ConfigError("x"), CategoryConfig, true, RetryNever},
			{"validation", ValidationError("x"), CategoryValidation, true, RetryNever},
			{"structure", StructureError("x"), CategoryStructure, false, RetryNever},
			{"render", RenderError("x"), CategoryRender, false, RetryNextBuild},
			{"template", TemplateError("x"), CategoryTemplate, false, RetryNextBuild},
			{"cache", CacheError("x"), CategoryCache, false, RetryNever},
			{"filesystem", FileSystemError("x"), CategoryFileSystem, false, RetryNever},
			{"history", HistoryError("x"), CategoryHistory, false, RetryNever},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				assert.Equal(t, tt.category, err.Category())
				assert.Equal(t, tt.fatal, err.IsFatal())
				assert.Equal(t, tt.retry, err.RetryStrategy())
			})
		}
	})

	t.Run("builds are independent", func(t *testing.T) {
		b := CacheError("artifact missing").UserAction()
		first := b.Build()
		second := b.WithContext("path", "a.adoc").Build()

		assert.True(t, first.NeedsUserAction())
		_, ok := first.Context().GetString("path")
		assert.False(t, ok)
		got, _ := second.Context().GetString("path")
		assert.Equal(t, "a.adoc", got)
	})
}

func TestWithContextCopies(t *testing.T) {
	base := StructureError("missing summary").WithContext("path", "a").Build()
	derived := base.WithContext("path", "b")

	got, _ := base.Context().GetString("path")
	assert.Equal(t, "a", got)
	got, _ = derived.Context().GetString("path")
	assert.Equal(t, "b", got)
}

func TestUnwrapThroughFmt(t *testing.T) {
	inner := TemplateError("bad template").Build()
	wrapped := fmt.Errorf("render page: %w", inner)

	classified, ok := AsClassified(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, classified)
	assert.Equal(t, CategoryTemplate, CategoryOf(wrapped))
	assert.Equal(t, CategoryInternal, CategoryOf(errors.New("plain")))
}

func TestSentinelMatching(t *testing.T) {
	sentinel := NewError(CategoryNotFound, "book root not found").Build()
	err := sentinel.WithContext("dir", "/tmp")

	assert.ErrorIs(t, err, sentinel)
	assert.ErrorIs(t, fmt.Errorf("load: %w", err), sentinel)
	assert.NotErrorIs(t, StructureError("book root not found").Build(), sentinel)
}

func TestDiagnostics(t *testing.T) {
	t.Run("empty prints nothing", func(t *testing.T) {
		d := NewDiagnostics("while loading the book")
		var buf bytes.Buffer
		n, err := d.WriteTo(&buf)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.True(t, d.Empty())
	})

	t.Run("count prefixed listing", func(t *testing.T) {
		d := NewDiagnostics("while building")
		d.Add(errors.New("a.adoc: exit status 1"))
		d.Add(nil)
		d.Add(RenderError("conversion failed").WithCause(errors.New("exit status 1")).Build())

		var buf bytes.Buffer
		_, err := d.WriteTo(&buf)
		require.NoError(t, err)
		assert.Equal(t, "2 errors while building:\n- a.adoc: exit status 1\n- conversion failed: exit status 1\n", buf.String())
	})

	t.Run("singular warning", func(t *testing.T) {
		d := NewWarnings("while reading the cache")
		d.Add(errors.New("index corrupted"))
		assert.Equal(t, "1 warning while reading the cache:", d.Header())
	})
}
