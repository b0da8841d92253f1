package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/bookbuilder/internal/eventstore"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Dir   string `arg:"" optional:"" default:"." help:"Directory inside the book"`
	Limit int    `short:"n" help:"Number of builds to show" default:"10"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	bk, err := openBook(g, root, h.Dir)
	if err != nil {
		return err
	}
	store, err := eventstore.NewSQLiteStore(bk.historyPath())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	projection := eventstore.NewBuildHistoryProjection(store, h.Limit)
	if err := projection.Rebuild(context.Background()); err != nil {
		return err
	}
	builds := projection.GetHistory(h.Limit)
	if len(builds) == 0 {
		_, _ = fmt.Fprintln(g.Stdout, "No builds recorded yet")
		return nil
	}

	tw := tabwriter.NewWriter(g.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tBUILD\tTRIGGER\tSTATUS\tRENDERED\tREUSED\tFAILED\tDURATION\tVERSION")
	for _, b := range builds {
		status := b.Status
		if b.ErrorStage != "" {
			status += " (" + b.ErrorStage + ")"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			b.StartedAt.Local().Format(time.DateTime), shortID(b.BuildID), b.Trigger, status,
			b.Rendered, b.Reused, b.Failed, b.Duration.Round(time.Millisecond), b.Version)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
