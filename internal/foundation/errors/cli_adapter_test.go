package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("invalid input").Build(), expected: 2},
		{name: "not found", err: NewError(CategoryNotFound, "no book.yaml").Build(), expected: 3},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "structure", err: StructureError("missing summary").Build(), expected: 9},
		{name: "cache", err: CacheError("unwritable").Build(), expected: 10},
		{name: "render", err: RenderError("converter failed").Build(), expected: 11},
		{name: "filesystem", err: FileSystemError("copy failed").Build(), expected: 11},
		{name: "history", err: HistoryError("locked").Build(), expected: 12},
		{name: "internal", err: NewError(CategoryInternal, "bug").Build(), expected: 13},
		{name: "unknown category", err: NewError("other", "x").Build(), expected: 1},
		{name: "wrapped classified", err: fmt.Errorf("build: %w", ConfigError("x").Build()), expected: 7},
		{name: "plain error", err: errors.New("boom"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	t.Run("message cause and hint", func(t *testing.T) {
		adapter := NewCLIErrorAdapter(false, nil)
		err := WrapError(errors.New("no such file"), CategoryCache, "artifact missing").
			WithHint("run `bookbuilder clear`").
			Build()
		assert.Equal(t, "Error: artifact missing: no such file (run `bookbuilder clear`)", adapter.FormatError(err))
	})

	t.Run("verbose shows classification", func(t *testing.T) {
		adapter := NewCLIErrorAdapter(true, nil)
		err := ConfigError("site_dir must differ from the book root").Build()
		assert.Equal(t, "Error [config/fatal]: site_dir must differ from the book root", adapter.FormatError(err))
	})

	t.Run("plain", func(t *testing.T) {
		adapter := NewCLIErrorAdapter(true, nil)
		assert.Equal(t, "Error: boom", adapter.FormatError(errors.New("boom")))
		assert.Empty(t, adapter.FormatError(nil))
	})
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var stderr, logs bytes.Buffer
	adapter := NewCLIErrorAdapter(true, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.stderr = &stderr
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(nil)
	assert.Equal(t, -1, code)

	adapter.HandleError(CacheError("index unwritable").UserAction().WithContext("path", ".bookbuilder-cache").Build())
	assert.Equal(t, 10, code)
	assert.Equal(t, "Error [cache/error]: index unwritable\n", stderr.String())
	assert.Contains(t, logs.String(), "user_action=true")
	assert.Contains(t, logs.String(), "path=.bookbuilder-cache")
}
