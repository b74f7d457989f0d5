package timeline

import (
	"cmp"
	"time"
)

// Unassigned marks an AssignedSession whose column has not been chosen yet.
const Unassigned = -1

// Default merge gaps.
const (
	// DefaultTrackMergeGap joins two events of the same track into one
	// session when the idle time between them is shorter than this.
	DefaultTrackMergeGap = 5 * time.Minute

	// DefaultFrameMergeGap is the gap used when grouping sessions of all
	// tracks into frames. Zero means sessions must overlap to share a frame.
	DefaultFrameMergeGap = time.Duration(0)
)

// Track is a named lane, typically a room.
type Track struct {
	ID   string
	Name string

	// Priority orders tracks when no earlier column applies. Lower sorts first.
	Priority int
}

// compareTracks orders tracks by priority, then by ID.
func compareTracks(a, b Track) int {
	if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Event is a single scheduled occurrence on one track.
type Event struct {
	ID       string
	TrackID  string
	Start    time.Time
	Duration time.Duration
}

// End returns Start + Duration.
func (e Event) End() time.Time { return e.Start.Add(e.Duration) }

// Session is a run of one track's events that render as a single block.
type Session struct {
	Track  Track
	Events []Event // ascending by Start
	Start  time.Time
	End    time.Time
}

// Duration returns the wall-clock span of the session.
func (s Session) Duration() time.Duration { return s.End.Sub(s.Start) }

// AssignedSession is a session placed in a column of a frame.
type AssignedSession struct {
	Session Session
	Column  int
}

// Frame is a window of time during which at least one track is continuously
// active. Frames never overlap.
type Frame struct {
	Start time.Time
	End   time.Time
	Items []AssignedSession
}

// Duration returns the wall-clock span of the frame.
func (f Frame) Duration() time.Duration { return f.End.Sub(f.Start) }

// Column returns the column of trackID in f.
func (f Frame) Column(trackID string) (int, bool) {
	for _, it := range f.Items {
		if it.Session.Track.ID == trackID {
			return it.Column, true
		}
	}
	return 0, false
}

// Options configures Compute.
type Options struct {
	// TrackMergeGap is the tolerance used when grouping one track's events
	// into sessions.
	TrackMergeGap time.Duration

	// FrameMergeGap is the tolerance used when grouping all sessions into
	// frames.
	FrameMergeGap time.Duration
}

// DefaultOptions returns the reference merge gaps.
func DefaultOptions() Options {
	return Options{
		TrackMergeGap: DefaultTrackMergeGap,
		FrameMergeGap: DefaultFrameMergeGap,
	}
}

// WarningCode identifies a recoverable input problem.
type WarningCode string

// WarningUnknownTrack is reported for events whose TrackID names no track.
const WarningUnknownTrack WarningCode = "UNKNOWN_TRACK"

// Warning describes an input that was excluded from the layout.
type Warning struct {
	Code    WarningCode
	EventID string
	TrackID string
	Message string
}

// Result is the output of Compute.
type Result struct {
	Frames     []Frame
	MaxColumns int

	// Warnings lists recoverable input problems, one per dropped event.
	Warnings []Warning

	// Dropped holds the events that were excluded, in input order.
	Dropped []Event
}

// EventCount returns the number of events placed in the result.
func (r Result) EventCount() int {
	n := 0
	for _, f := range r.Frames {
		for _, it := range f.Items {
			n += len(it.Session.Events)
		}
	}
	return n
}
