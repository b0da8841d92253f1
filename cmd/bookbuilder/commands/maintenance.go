package commands

import (
	"fmt"
	"strings"

	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/bookbuilder/internal/site"
	"git.home.luguber.info/inful/bookbuilder/internal/theme"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct {
	Dir string `arg:"" optional:"" default:"." help:"Directory inside the book"`
}

func (c *CleanCmd) Run(g *Global, root *CLI) error {
	bk, err := openBook(g, root, c.Dir)
	if err != nil {
		return err
	}
	siteDir := bk.cfg.SitePath(bk.root)
	problems := derrors.NewDiagnostics("while cleaning the site")
	for _, e := range site.Clean(siteDir) {
		problems.Add(e)
	}
	if !problems.Empty() {
		_, _ = problems.WriteTo(g.Stderr)
		return derrors.FileSystemError("site directory only partly cleaned").WithContext("path", siteDir).Build()
	}
	_, _ = fmt.Fprintf(g.Stdout, "Cleaned %s\n", siteDir)
	return nil
}

// ClearCmd implements the 'clear' command.
type ClearCmd struct {
	Dir string `arg:"" optional:"" default:"." help:"Directory inside the book"`
}

func (c *ClearCmd) Run(g *Global, root *CLI) error {
	bk, err := openBook(g, root, c.Dir)
	if err != nil {
		return err
	}
	return bk.cacheStore(g.Logger).Clear()
}

// InitCmd implements the 'init' command.
type InitCmd struct {
	Dir   string `arg:"" help:"Directory of the new book (created if missing)"`
	Force bool   `help:"Overwrite existing files"`
}

func (i *InitCmd) Run(g *Global, _ *CLI) error {
	written, err := theme.WriteSkeleton(i.Dir, i.Force)
	if err != nil {
		return derrors.FileSystemError("cannot write project skeleton").WithCause(err).WithContext("dir", i.Dir).Build()
	}
	if len(written) == 0 {
		_, _ = fmt.Fprintf(g.Stdout, "Nothing written; %s already holds a book (use --force to overwrite)\n", i.Dir)
		return nil
	}
	_, _ = fmt.Fprintf(g.Stdout, "Initialized book in %s\n", i.Dir)
	for _, p := range written {
		_, _ = fmt.Fprintf(g.Stdout, "  %s\n", p)
	}
	return nil
}

// PresetCmd implements the 'preset' command.
type PresetCmd struct {
	Name string `arg:"" help:"Preset to print (article, book, index)"`
}

func (p *PresetCmd) Run(g *Global, _ *CLI) error {
	data, err := theme.Preset(strings.ToLower(p.Name))
	if err != nil {
		return derrors.ValidationError(err.Error()).Build()
	}
	_, err = g.Stdout.Write(data)
	return err
}
