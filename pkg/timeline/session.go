package timeline

import (
	"slices"
	"time"
)

// GroupSessions merges one track's events into sessions. Two events share a
// session when the second starts less than gap after the latest end seen so
// far. Events are expected to belong to track; their TrackID is not checked.
func GroupSessions(track Track, events []Event, gap time.Duration) []Session {
	groups := GroupIntervals(events, eventSpan, gap)
	sessions := make([]Session, len(groups))
	for i, g := range groups {
		sessions[i] = Session{
			Track:  track,
			Events: g.Items,
			Start:  g.Start,
			End:    g.End,
		}
	}
	return sessions
}

// GroupFrames merges sessions of all tracks into raw frames. Track identity
// is ignored: a raw frame may hold several sessions of the same track.
func GroupFrames(sessions []Session, gap time.Duration) []Group[Session] {
	return GroupIntervals(sessions, sessionSpan, gap)
}

// Recombine collapses a raw frame into one session per track. A track ends
// up with several sessions in one raw frame when another track bridges the
// idle time between them; those sessions are merged into a single session
// spanning all of them. Items are ordered by track priority, then ID, and
// carry Unassigned columns.
func Recombine(raw Group[Session]) Frame {
	byTrack := make(map[string]*Session, len(raw.Items))
	var order []string
	for _, s := range raw.Items {
		merged, ok := byTrack[s.Track.ID]
		if !ok {
			c := s
			c.Events = slices.Clone(s.Events)
			byTrack[s.Track.ID] = &c
			order = append(order, s.Track.ID)
			continue
		}
		if s.Start.Before(merged.Start) {
			merged.Start = s.Start
		}
		if s.End.After(merged.End) {
			merged.End = s.End
		}
		merged.Events = append(merged.Events, s.Events...)
	}

	items := make([]AssignedSession, 0, len(order))
	for _, id := range order {
		s := byTrack[id]
		slices.SortStableFunc(s.Events, func(a, b Event) int {
			return a.Start.Compare(b.Start)
		})
		items = append(items, AssignedSession{Session: *s, Column: Unassigned})
	}
	slices.SortStableFunc(items, func(a, b AssignedSession) int {
		return compareTracks(a.Session.Track, b.Session.Track)
	})

	return Frame{Start: raw.Start, End: raw.End, Items: items}
}
