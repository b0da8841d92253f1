package walk

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
)

// Progress receives render completions. All calls come from a single goroutine.
type Progress interface {
	Start(total int)
	Advance(done, total int, path string)
	Finish()
}

// NopProgress ignores progress.
type NopProgress struct{}

func (NopProgress) Start(int)                {}
func (NopProgress) Advance(int, int, string) {}
func (NopProgress) Finish()                  {}

// LogProgress logs each completion at debug level.
type LogProgress struct {
	Logger *slog.Logger
}

func (p LogProgress) Start(total int) {
	p.logger().Info("Rendering documents", logfields.Count(total))
}

func (p LogProgress) Advance(done, total int, path string) {
	p.logger().Debug("Rendered document", logfields.Path(path), slog.String("progress", fmt.Sprintf("%d/%d", done, total)))
}

func (LogProgress) Finish() {}

func (p LogProgress) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// BarProgress redraws a one-line progress bar on w, typically a terminal.
type BarProgress struct {
	W     io.Writer
	Width int
}

func (p BarProgress) Start(total int) { p.draw(0, total) }

func (p BarProgress) Advance(done, total int, _ string) { p.draw(done, total) }

func (p BarProgress) Finish() { _, _ = fmt.Fprintln(p.W) }

func (p BarProgress) draw(done, total int) {
	width := p.Width
	if width <= 0 {
		width = 30
	}
	filled := width
	if total > 0 {
		filled = done * width / total
	}
	_, _ = fmt.Fprintf(p.W, "\r[%s%s] %d/%d", strings.Repeat("#", filled), strings.Repeat(" ", width-filled), done, total)
}
