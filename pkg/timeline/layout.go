package timeline

import (
	"fmt"
	"slices"
	"sort"
	"time"
)

// Compute lays out events on their tracks and returns the column-assigned
// frame sequence.
//
// Events whose TrackID matches no track are left out and reported in
// Result.Warnings and Result.Dropped. When several tracks share an ID the
// first one wins. Zero tracks or zero events yield an empty Result.
//
// Compute is pure: it keeps no state between calls and does not modify its
// arguments, so it is safe to call concurrently.
func Compute(tracks []Track, events []Event, opts Options) Result {
	var res Result

	byID := make(map[string]Track, len(tracks))
	for _, t := range tracks {
		if _, dup := byID[t.ID]; !dup {
			byID[t.ID] = t
		}
	}

	perTrack := make(map[string][]Event, len(byID))
	for _, e := range events {
		if _, ok := byID[e.TrackID]; !ok {
			res.Dropped = append(res.Dropped, e)
			res.Warnings = append(res.Warnings, Warning{
				Code:    WarningUnknownTrack,
				EventID: e.ID,
				TrackID: e.TrackID,
				Message: fmt.Sprintf("event %q references unknown track %q", e.ID, e.TrackID),
			})
			continue
		}
		perTrack[e.TrackID] = append(perTrack[e.TrackID], e)
	}

	ordered := make([]Track, 0, len(byID))
	for _, t := range byID {
		ordered = append(ordered, t)
	}
	slices.SortFunc(ordered, compareTracks)

	var sessions []Session
	for _, t := range ordered {
		sessions = append(sessions, GroupSessions(t, perTrack[t.ID], opts.TrackMergeGap)...)
	}

	raw := GroupFrames(sessions, opts.FrameMergeGap)
	frames := make([]Frame, len(raw))
	for i, g := range raw {
		frames[i] = Recombine(g)
	}

	res.MaxColumns = MaxColumns(frames)
	res.Frames = AssignColumns(frames, res.MaxColumns)
	return res
}

// FrameAt returns the index of the frame whose [Start, End) window contains t.
// If no frame contains t it returns the index of the first frame starting
// after t (len(r.Frames) when there is none) and false.
func (r Result) FrameAt(t time.Time) (int, bool) {
	i := sort.Search(len(r.Frames), func(i int) bool {
		return r.Frames[i].End.After(t)
	})
	if i < len(r.Frames) && !t.Before(r.Frames[i].Start) {
		return i, true
	}
	return i, false
}
