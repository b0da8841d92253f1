package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/bookbuilder/internal/book"
	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/bookbuilder/internal/site"
	"git.home.luguber.info/inful/bookbuilder/internal/walk"
)

// BuildService is the canonical interface for building a book.
type BuildService interface {
	// Run executes the pipeline: load -> snapshot -> render -> assemble.
	// The error is set only for hard failures; per-document problems are in the result.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains the inputs of one build.
type BuildRequest struct {
	// Root is the book root (the directory holding book.yaml).
	Root string

	// Force ignores the previous cache snapshot and renders everything.
	Force bool

	// Trigger records what started the build (cli, watch, schedule).
	Trigger string

	// Progress receives render completions. Nil means no progress output.
	Progress walk.Progress
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	BuildID string
	Status  BuildStatus

	Project    *book.Project
	LoadErrors []book.LoadError
	Navigation []error
	Walk       *walk.Result
	Site       *site.Report

	// FailedStage names the stage of a hard failure.
	FailedStage string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Diagnostics returns the non-empty groups of non-fatal problems in pipeline order.
func (r *BuildResult) Diagnostics() []*derrors.Diagnostics {
	load := derrors.NewDiagnostics("while loading the book")
	for _, e := range r.LoadErrors {
		load.Add(e)
	}
	nav := derrors.NewWarnings("while building the navigation")
	for _, e := range r.Navigation {
		nav.Add(e)
	}
	groups := []*derrors.Diagnostics{load, nav}
	if r.Walk != nil {
		groups = append(groups, r.Walk.Diagnostics())
	}
	if r.Site != nil {
		groups = append(groups, r.Site.Problems)
	}

	out := groups[:0]
	for _, g := range groups {
		if !g.Empty() {
			out = append(out, g)
		}
	}
	return out
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates every document was built.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusWarning indicates the site was assembled but some entries or
	// documents failed.
	BuildStatusWarning BuildStatus = "warning"

	// BuildStatusFailed indicates a hard failure; the site may be incomplete.
	BuildStatusFailed BuildStatus = "failed"
)

// IsSuccess reports whether the site was assembled.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess || s == BuildStatusWarning
}
