// Package pkg provides the core libraries for confgrid schedule layouts.
//
// # Overview
//
// Confgrid takes a schedule of parallel tracks (rooms, stages, channels)
// and lays it out as a sequence of frames. Inside a frame every busy track
// owns one column, and a track that stays busy across frames keeps its
// column. The pkg directory is organized into four areas:
//
//  1. [timeline] - The layout engine (grouping, recombination, columns)
//  2. [schedule] - Schedule and layout documents and their codecs
//  3. [pipeline] - Orchestration (load → layout → render) with caching
//  4. [server] - The pipeline over HTTP
//
// # Architecture
//
// The typical data flow:
//
//	JSON / YAML / TOML / iCalendar
//	         ↓
//	    [schedule] package (decode, validate, expand recurrences)
//	         ↓
//	    [timeline] package (sessions → frames → columns)
//	         ↓
//	    [schedule.Layout] (JSON or YAML)
//
// # Quick Start
//
//	import (
//	    "github.com/confgrid/confgrid/pkg/schedule"
//	    "github.com/confgrid/confgrid/pkg/timeline"
//	)
//
//	// 1. Read and expand the schedule
//	s, _ := schedule.ReadFile("program.yaml")
//	s, _ = s.Expand(time.UTC)
//
//	// 2. Compute the layout
//	tracks, events := s.ToTimeline()
//	opts := timeline.DefaultOptions()
//	res := timeline.Compute(tracks, events, opts)
//
//	// 3. Serialize it
//	l := schedule.NewLayout(s, res, opts)
//	_ = schedule.WriteLayoutFile(l, "program.layout.json")
//
// # Main Packages
//
// ## Core Domain Logic
//
// [timeline] - Pure layout engine. [timeline.GroupIntervals] merges time
// intervals; on top of it sit track sessions, raw frames, recombination
// and column assignment. [timeline.Compute] runs all stages and
// [timeline.Validate] re-checks a result.
//
// [schedule] - Schedules (tracks plus events with optional RRULE
// recurrences), iCalendar import and export, and the serialized [schedule.Layout].
//
// ## Infrastructure
//
// [pipeline] - The load → layout → render pipeline shared by the CLI and
// the HTTP server. [pipeline.Runner] adds content-addressed caching.
//
// [cache] - File, Redis and no-op cache backends plus the key scheme.
//
// [server] - chi router exposing the pipeline as a JSON API.
//
// [observability] - Hook interfaces for pipeline, cache and HTTP events.
//
// [errors] - Error codes and input validation helpers.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/timeline/...  # Specific package
//	go test -run Example        # Examples only
//
// Redis tests need CONFGRID_TEST_REDIS_URL and are skipped otherwise.
//
// [timeline]: https://pkg.go.dev/github.com/confgrid/confgrid/pkg/timeline
// [schedule]: https://pkg.go.dev/github.com/confgrid/confgrid/pkg/schedule
// [pipeline]: https://pkg.go.dev/github.com/confgrid/confgrid/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/confgrid/confgrid/pkg/server
// [cache]: https://pkg.go.dev/github.com/confgrid/confgrid/pkg/cache
// [observability]: https://pkg.go.dev/github.com/confgrid/confgrid/pkg/observability
// [errors]: https://pkg.go.dev/github.com/confgrid/confgrid/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/confgrid/confgrid/pkg/buildinfo
package pkg
