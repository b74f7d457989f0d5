// Package timeline computes multi-lane schedule layouts for tracks of
// timed events.
//
// # Overview
//
// Given a set of [Track] values (rooms, stages) and a flat list of [Event]
// values, [Compute] produces a sequence of [Frame] values. A frame is a
// window of time during which at least one track is continuously busy; the
// frames partition the timeline and never overlap. Inside a frame each busy
// track owns exactly one [AssignedSession], placed in a column.
//
// Columns are stable: a track that is busy in two consecutive frames keeps
// its column, so a viewer scrolling forward in time does not see lanes jump.
//
// # Stages
//
// The computation runs in five steps, each exposed on its own:
//
//  1. [GroupSessions]: per track, merge events separated by less than
//     Options.TrackMergeGap into sessions.
//  2. [GroupFrames]: across all tracks, merge sessions into raw frames using
//     Options.FrameMergeGap (zero by default, i.e. overlap only).
//  3. [Recombine]: within a raw frame, merge sessions belonging to the same
//     track into one.
//  4. [MaxColumns]: the widest frame determines the column count.
//  5. [AssignColumns]: carry columns over from the previous frame and give
//     the remaining tracks the lowest free columns.
//
// Steps 1 and 2 share one primitive, [GroupIntervals], which is generic over
// the item type.
//
// # Ordering
//
// Whenever tracks compete for a column they are ordered by Track.Priority,
// then Track.ID. Events with identical start times keep their input order.
// The output is therefore fully determined by the input.
//
// # Example
//
//	tracks := []timeline.Track{{ID: "a", Priority: 0}, {ID: "b", Priority: 1}}
//	events := []timeline.Event{
//	    {ID: "e1", TrackID: "a", Start: t0, Duration: time.Hour},
//	    {ID: "e2", TrackID: "b", Start: t0, Duration: time.Hour},
//	}
//	res := timeline.Compute(tracks, events, timeline.DefaultOptions())
//	// res.Frames[0].Items[0] is track a in column 0, Items[1] is b in column 1
//
// # Concurrency
//
// Compute and the stage functions are pure and may be called from any number
// of goroutines.
package timeline
