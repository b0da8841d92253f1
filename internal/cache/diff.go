package cache

// Diff pairs the previous build's snapshot (nil on a first or forced build) with the
// current one.
type Diff struct {
	previous *Snapshot
	current  *Snapshot
}

// NewDiff creates a diff. previous may be nil.
func NewDiff(previous, current *Snapshot) *Diff {
	return &Diff{previous: previous, current: current}
}

// HasPrevious reports whether a previous snapshot was available.
func (d *Diff) HasPrevious() bool { return d.previous != nil }

// Current returns the snapshot captured for this build.
func (d *Diff) Current() *Snapshot { return d.current }

// Tracked reports whether rel exists in the current snapshot. NeedsBuild is only
// meaningful for tracked paths.
func (d *Diff) Tracked(rel string) bool { return d.current.Has(rel) }

// NeedsBuild reports whether rel must be rendered: there is no previous snapshot, rel is
// new, or its modification time changed in either direction.
func (d *Diff) NeedsBuild(rel string) bool {
	if d.previous == nil {
		return true
	}
	prev, ok := d.previous.Get(rel)
	if !ok {
		return true
	}
	cur, _ := d.current.Get(rel)
	return !prev.Equal(cur)
}
