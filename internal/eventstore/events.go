package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/bookbuilder/internal/version"
)

// Event type names as stored in the events table.
const (
	TypeBuildStarted   = "BuildStarted"
	TypeBuildCompleted = "BuildCompleted"
	TypeBuildFailed    = "BuildFailed"
)

// BuildStartedMeta describes how a build was requested.
type BuildStartedMeta struct {
	Root    string `json:"root"`
	Force   bool   `json:"force"`
	Trigger string `json:"trigger"` // cli, watch, schedule
}

// BuildStarted is emitted when a build begins.
type BuildStarted struct {
	record
	Meta BuildStartedMeta
}

// NewBuildStarted creates a BuildStarted event.
func NewBuildStarted(buildID string, meta BuildStartedMeta) (*BuildStarted, error) {
	payload, err := marshalPayload(buildID, TypeBuildStarted, meta)
	if err != nil {
		return nil, err
	}
	return &BuildStarted{record: newRecord(buildID, TypeBuildStarted, payload), Meta: meta}, nil
}

// BuildCounts are the per-document results of a finished build.
type BuildCounts struct {
	Rendered   int   `json:"rendered"`
	Reused     int   `json:"reused"`
	Failed     int   `json:"failed"`
	DurationMS int64 `json:"duration_ms"`
}

// BuildCompleted is emitted when a build ran to the end, possibly with per-document
// failures.
type BuildCompleted struct {
	record
	Counts BuildCounts
}

// NewBuildCompleted creates a BuildCompleted event.
func NewBuildCompleted(buildID string, counts BuildCounts) (*BuildCompleted, error) {
	payload, err := marshalPayload(buildID, TypeBuildCompleted, counts)
	if err != nil {
		return nil, err
	}
	return &BuildCompleted{record: newRecord(buildID, TypeBuildCompleted, payload), Counts: counts}, nil
}

// BuildFailed is emitted when a build stopped on a hard failure.
type BuildFailed struct {
	record
	Stage string
	Error string
}

// NewBuildFailed creates a BuildFailed event.
func NewBuildFailed(buildID, stage, message string) (*BuildFailed, error) {
	payload, err := marshalPayload(buildID, TypeBuildFailed, map[string]string{
		"stage": stage,
		"error": message,
	})
	if err != nil {
		return nil, err
	}
	return &BuildFailed{record: newRecord(buildID, TypeBuildFailed, payload), Stage: stage, Error: message}, nil
}

func newRecord(buildID, kind string, payload []byte) record {
	return record{
		buildID:  buildID,
		kind:     kind,
		at:       time.Now(),
		payload:  payload,
		metadata: map[string]string{MetaVersion: version.Version},
	}
}

func marshalPayload(buildID, eventType string, v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, errors.HistoryError("failed to marshal "+eventType+" payload").
			WithCause(err).
			WithContext("build_id", buildID).
			Build()
	}
	return payload, nil
}
