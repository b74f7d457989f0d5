// Package schedule defines the on-disk and on-the-wire formats for conference
// programs and their computed layouts.
//
// # Schedules
//
// A [Schedule] lists tracks (rooms) and events. It can be read from and
// written to JSON, YAML, TOML and iCalendar:
//
//	s, err := schedule.ReadFile("program.yaml")
//	if err != nil {
//	    return err
//	}
//	expanded, err := s.Expand(time.UTC)
//	tracks, events := expanded.ToTimeline()
//	res := timeline.Compute(tracks, events, timeline.DefaultOptions())
//
// Events may carry an RFC 5545 recurrence rule ("FREQ=DAILY;COUNT=3"), which
// [Schedule.Expand] turns into concrete occurrences. Events without an ID get
// a deterministic one derived from their track, start and title.
//
// # Layouts
//
// [Layout] is the serialized form of a [timeline.Result] enriched with
// titles and track names. It is what `confgrid layout` writes, what the HTTP
// API returns, and what the cache stores.
//
// # Formats
//
// The format is chosen from the file extension: .json, .yaml/.yml, .toml and
// .ics. Layout files support .json and .yaml/.yml.
package schedule
