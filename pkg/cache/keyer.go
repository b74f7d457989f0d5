package cache

import "time"

// Keyer derives cache keys. Implementations must be deterministic: equal
// inputs always yield equal keys.
type Keyer interface {
	// ScheduleKey identifies a parsed and expanded schedule by the hash of
	// its source bytes.
	ScheduleKey(sourceHash string, opts ScheduleKeyOpts) string

	// LayoutKey identifies a computed layout.
	LayoutKey(scheduleHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered layout document.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// ScheduleKeyOpts lists the inputs that change how a source file is parsed.
type ScheduleKeyOpts struct {
	Format   string `json:"format"`
	Timezone string `json:"timezone,omitempty"`
}

// LayoutKeyOpts lists the inputs that change the computed layout.
type LayoutKeyOpts struct {
	TrackMergeGap time.Duration `json:"track_merge_gap"`
	FrameMergeGap time.Duration `json:"frame_merge_gap"`
}

// ArtifactKeyOpts lists the inputs that change a rendered document.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer produces keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ScheduleKey implements Keyer.
func (DefaultKeyer) ScheduleKey(sourceHash string, opts ScheduleKeyOpts) string {
	return hashKey("schedule", sourceHash, opts)
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(scheduleHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", scheduleHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
