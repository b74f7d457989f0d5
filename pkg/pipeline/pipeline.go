// Package pipeline provides the schedule layout pipeline for confgrid.
//
// This package implements the complete load → layout → render pipeline that
// is shared by the CLI and the HTTP server, so both entry points cache,
// validate and log in the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode a schedule (JSON, YAML, TOML or iCalendar) and expand
//     recurring events into occurrences
//  2. Layout: Compute frames and columns with the timeline engine
//  3. Render: Encode the layout in the requested formats (JSON, YAML)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Source = "program.yaml"
//	opts.Data = data
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out := result.Artifacts["json"]
//
// Run individual stages:
//
//	s, err := runner.Load(ctx, opts)
//	l, err := runner.Layout(ctx, s, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/confgrid/confgrid/pkg/cache"
	apperr "github.com/confgrid/confgrid/pkg/errors"
	"github.com/confgrid/confgrid/pkg/schedule"
	"github.com/confgrid/confgrid/pkg/timeline"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultTrackMergeGap is the per-track session gap.
	DefaultTrackMergeGap = timeline.DefaultTrackMergeGap

	// DefaultFrameMergeGap is the cross-track frame gap.
	DefaultFrameMergeGap = timeline.DefaultFrameMergeGap

	// MaxSourceSize bounds the size of a schedule document.
	MaxSourceSize = 8 << 20
)

// Format constants for output formats.
const (
	FormatJSON = schedule.FormatJSON
	FormatYAML = schedule.FormatYAML
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatYAML: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the schedule pipeline.
// This struct supports JSON serialization for API requests.
//
// The zero value uses zero merge gaps; start from DefaultOptions to get the
// reference gaps.
type Options struct {
	// Load options
	Source      string `json:"source,omitempty"` // File name or label, used for format detection and logs
	Data        []byte `json:"-"`
	InputFormat string `json:"input_format,omitempty"` // Derived from Source when empty
	Timezone    string `json:"timezone,omitempty"`     // Used for recurrence and floating iCalendar times
	Refresh     bool   `json:"refresh,omitempty"`

	// Layout options
	TrackMergeGap time.Duration `json:"track_merge_gap"`
	FrameMergeGap time.Duration `json:"frame_merge_gap"`
	Verify        bool          `json:"verify,omitempty"` // Re-check layout invariants after Compute

	// Render options
	Formats []string `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// DefaultOptions returns options with the reference merge gaps.
func DefaultOptions() Options {
	return Options{
		TrackMergeGap: DefaultTrackMergeGap,
		FrameMergeGap: DefaultFrameMergeGap,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Schedule is the loaded schedule with recurrences expanded.
	Schedule *schedule.Schedule

	// ScheduleHash is the content hash of the expanded schedule.
	ScheduleHash string

	// Layout is the computed layout.
	Layout schedule.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TrackCount int
	EventCount int
	FrameCount int
	MaxColumns int
	Dropped    int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the expanded schedule came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperr.New(apperr.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, yaml)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateInputFormat checks that a schedule format is supported.
func ValidateInputFormat(format string) error {
	for _, f := range schedule.Formats {
		if f == format {
			return nil
		}
	}
	return apperr.New(apperr.ErrCodeUnsupported, "unsupported schedule format %q", format)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading.
func (o *Options) ValidateForLoad() error {
	if len(o.Data) == 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "schedule data is required")
	}
	if len(o.Data) > MaxSourceSize {
		return apperr.New(apperr.ErrCodeInvalidInput, "schedule is %d bytes, limit is %d", len(o.Data), MaxSourceSize)
	}
	if o.InputFormat == "" {
		if o.Source == "" {
			return apperr.New(apperr.ErrCodeInvalidInput, "input format or source name is required")
		}
		format, err := schedule.FormatFromPath(o.Source)
		if err != nil {
			return err
		}
		o.InputFormat = format
	}
	if err := ValidateInputFormat(o.InputFormat); err != nil {
		return err
	}
	if _, err := o.Location(); err != nil {
		return err
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := apperr.ValidateMergeGap("track merge gap", o.TrackMergeGap); err != nil {
		return err
	}
	return apperr.ValidateMergeGap("frame merge gap", o.FrameMergeGap)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// Location resolves Timezone.
func (o *Options) Location() (*time.Location, error) {
	return apperr.ValidateTimezone(o.Timezone)
}

// TimelineOptions returns the engine options.
func (o *Options) TimelineOptions() timeline.Options {
	return timeline.Options{
		TrackMergeGap: o.TrackMergeGap,
		FrameMergeGap: o.FrameMergeGap,
	}
}

// ScheduleKeyOpts returns cache key options for loading.
func (o *Options) ScheduleKeyOpts() cache.ScheduleKeyOpts {
	return cache.ScheduleKeyOpts{
		Format:   o.InputFormat,
		Timezone: o.Timezone,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		TrackMergeGap: o.TrackMergeGap,
		FrameMergeGap: o.FrameMergeGap,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format}
}
