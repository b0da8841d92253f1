// Package eventstore records build history as events in SQLite and replays them
// into summaries.
package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Build statuses of a BuildSummary.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusWarning   = "warning" // completed with failed documents
	StatusFailed    = "failed"
)

// BuildSummary is a read model of one build.
type BuildSummary struct {
	BuildID      string        `json:"build_id"`
	Status       string        `json:"status"`
	Trigger      string        `json:"trigger,omitempty"`
	Version      string        `json:"version,omitempty"`
	Force        bool          `json:"force"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Rendered     int           `json:"rendered"`
	Reused       int           `json:"reused"`
	Failed       int           `json:"failed"`
	ErrorStage   string        `json:"error_stage,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// BuildHistoryProjection maintains an in-memory view of build history,
// reconstructed from events stored in the event store.
type BuildHistoryProjection struct {
	mu      sync.RWMutex
	store   Store
	builds  map[string]*BuildSummary
	history []*BuildSummary // newest first
	maxSize int
}

// NewBuildHistoryProjection creates a projection keeping at most maxHistorySize
// finished builds (100 when not positive).
func NewBuildHistoryProjection(store Store, maxHistorySize int) *BuildHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &BuildHistoryProjection{
		store:   store,
		builds:  make(map[string]*BuildSummary),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from all events in the store.
func (p *BuildHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.Since(ctx, time.Time{})
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.builds = make(map[string]*BuildSummary)
	p.history = nil
	for _, event := range events {
		p.applyEventLocked(event)
	}
	sort.SliceStable(p.history, func(i, j int) bool {
		return p.history[i].StartedAt.After(p.history[j].StartedAt)
	})
	p.trimLocked()
	return nil
}

// Apply processes a single event and updates the projection.
func (p *BuildHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
	p.trimLocked()
}

func (p *BuildHistoryProjection) applyEventLocked(event Event) {
	buildID := event.BuildID()
	if buildID == "" {
		return
	}

	summary, exists := p.builds[buildID]
	if !exists {
		summary = &BuildSummary{BuildID: buildID, Status: StatusRunning, StartedAt: event.Timestamp()}
		p.builds[buildID] = summary
	}

	switch event.Type() {
	case TypeBuildStarted:
		summary.StartedAt = event.Timestamp()
		summary.Status = StatusRunning
		summary.Version = event.Metadata()[MetaVersion]
		var meta BuildStartedMeta
		if err := json.Unmarshal(event.Payload(), &meta); err == nil {
			summary.Trigger = meta.Trigger
			summary.Force = meta.Force
		}

	case TypeBuildCompleted:
		p.finishLocked(summary, event.Timestamp())
		summary.Status = StatusCompleted
		var counts BuildCounts
		if err := json.Unmarshal(event.Payload(), &counts); err == nil {
			summary.Rendered = counts.Rendered
			summary.Reused = counts.Reused
			summary.Failed = counts.Failed
			if counts.Failed > 0 {
				summary.Status = StatusWarning
			}
		}

	case TypeBuildFailed:
		p.finishLocked(summary, event.Timestamp())
		summary.Status = StatusFailed
		var payload struct {
			Stage string `json:"stage"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.ErrorStage = payload.Stage
			summary.ErrorMessage = payload.Error
		}
	}
}

func (p *BuildHistoryProjection) finishLocked(summary *BuildSummary, at time.Time) {
	summary.CompletedAt = &at
	summary.Duration = at.Sub(summary.StartedAt)
	for _, h := range p.history {
		if h.BuildID == summary.BuildID {
			return
		}
	}
	p.history = append([]*BuildSummary{summary}, p.history...)
}

// trimLocked bounds the history and forgets finished builds that fell out of it.
func (p *BuildHistoryProjection) trimLocked() {
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	keep := make(map[string]struct{}, len(p.history))
	for _, h := range p.history {
		keep[h.BuildID] = struct{}{}
	}
	for id, summary := range p.builds {
		if summary.Status == StatusRunning {
			continue
		}
		if _, ok := keep[id]; !ok {
			delete(p.builds, id)
		}
	}
}

// GetHistory returns up to limit finished builds, newest first. A limit of zero or
// less returns all of them.
func (p *BuildHistoryProjection) GetHistory(limit int) []BuildSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	n := len(p.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]BuildSummary, n)
	for i := range n {
		out[i] = *p.history[i]
	}
	return out
}

// GetBuild returns the summary for a specific build.
func (p *BuildHistoryProjection) GetBuild(buildID string) (BuildSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	summary, ok := p.builds[buildID]
	if !ok {
		return BuildSummary{}, false
	}
	return *summary, true
}

// GetActiveBuild returns a build that started but has not finished, if any.
func (p *BuildHistoryProjection) GetActiveBuild() (BuildSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, summary := range p.builds {
		if summary.Status == StatusRunning {
			return *summary, true
		}
	}
	return BuildSummary{}, false
}
