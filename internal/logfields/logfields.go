package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyPath       = "path"
	KeyDir        = "dir"
	KeyCount      = "count"
	KeyRendered   = "rendered"
	KeyReused     = "reused"
	KeyFailed     = "failed"
	KeyDurationMS = "duration_ms"
	KeyWorkers    = "workers"
	KeyCommand    = "command"
	KeyAddr       = "addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Dir(d string) slog.Attr          { return slog.String(KeyDir, d) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Rendered(n int) slog.Attr        { return slog.Int(KeyRendered, n) }
func Reused(n int) slog.Attr          { return slog.Int(KeyReused, n) }
func Failed(n int) slog.Attr          { return slog.Int(KeyFailed, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Workers(n int) slog.Attr         { return slog.Int(KeyWorkers, n) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
