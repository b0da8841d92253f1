package eventstore

import "time"

// MetaVersion is the metadata key holding the bookbuilder version that wrote an event.
const MetaVersion = "version"

// Event is one entry of a build's history.
type Event interface {
	// ID is assigned by the store; it is zero for events not read back from one.
	ID() int64
	BuildID() string
	Type() string
	Timestamp() time.Time
	// Payload is the JSON body of the event.
	Payload() []byte
	Metadata() map[string]string
}

// record is the stored shape of every event. Typed events embed it.
type record struct {
	id       int64
	buildID  string
	kind     string
	at       time.Time
	payload  []byte
	metadata map[string]string
}

func (r *record) ID() int64                   { return r.id }
func (r *record) BuildID() string             { return r.buildID }
func (r *record) Type() string                { return r.kind }
func (r *record) Timestamp() time.Time        { return r.at }
func (r *record) Payload() []byte             { return r.payload }
func (r *record) Metadata() map[string]string { return r.metadata }
