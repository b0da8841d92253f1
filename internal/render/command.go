package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
)

// ConversionError is a failed run of the conversion command.
type ConversionError struct {
	Command  string
	Path     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("%s failed on %s: %v", e.Command, e.Path, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\n" + s
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

// CommandConverter runs an external converter (asciidoctor by default) as
//
//	command <src> -o - -B <src_dir> [args...] [options...] [embedded_flag]
//
// and reads the HTML from its standard output.
type CommandConverter struct {
	Command      string
	Args         []string
	EmbeddedFlag string
	Options      []config.ConvertOption
	SrcDir       string
	DstDir       string
	BaseURL      string
	Logger       *slog.Logger
}

// NewCommandConverter configures the converter from book.yaml.
func NewCommandConverter(cfg config.ConvertConfig, srcDir, dstDir, baseURL string) *CommandConverter {
	c := &CommandConverter{
		Command:      cfg.Command,
		Args:         cfg.Args,
		EmbeddedFlag: cfg.EmbeddedFlag,
		Options:      cfg.Options,
		SrcDir:       srcDir,
		DstDir:       dstDir,
		BaseURL:      baseURL,
		Logger:       slog.Default(),
	}
	return c.Clone().(*CommandConverter)
}

// Clone deep-copies the argument lists.
func (c *CommandConverter) Clone() Converter {
	out := *c
	out.Args = append([]string(nil), c.Args...)
	out.Options = make([]config.ConvertOption, len(c.Options))
	for i, opt := range c.Options {
		out.Options[i] = config.ConvertOption{Flag: opt.Flag, Args: append([]string(nil), opt.Args...)}
	}
	return &out
}

// CommandArgs returns the arguments passed to the command for src.
func (c *CommandConverter) CommandArgs(src string, embedded bool) []string {
	expand := strings.NewReplacer(
		"{base_url}", c.BaseURL,
		"{src_dir}", c.SrcDir,
		"{dst_dir}", c.DstDir,
	).Replace

	args := []string{src, "-o", "-", "-B", c.SrcDir}
	for _, a := range c.Args {
		args = append(args, expand(a))
	}
	for _, opt := range c.Options {
		if len(opt.Args) == 0 {
			args = append(args, opt.Flag)
			continue
		}
		// -a x -a y
		for _, a := range opt.Args {
			args = append(args, opt.Flag, expand(a))
		}
	}
	if embedded && c.EmbeddedFlag != "" {
		args = append(args, c.EmbeddedFlag)
	}
	return args
}

// Convert runs the command on req.Path.
func (c *CommandConverter) Convert(ctx context.Context, req Request) (string, error) {
	// #nosec G204 -- the command is configured by the book owner
	cmd := exec.CommandContext(ctx, c.Command, c.CommandArgs(req.Path, req.Embedded)...)
	cmd.Dir = c.SrcDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		convErr := &ConversionError{Command: c.Command, Path: req.Path, Stderr: stderr.String(), Err: err, ExitCode: -1}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			convErr.ExitCode = exitErr.ExitCode()
		}
		return "", convErr
	}
	if s := strings.TrimSpace(stderr.String()); s != "" && c.Logger != nil {
		c.Logger.Warn("Converter reported warnings", logfields.Path(req.Path), logfields.Command(c.Command), slog.String("stderr", s))
	}
	return stdout.String(), nil
}
