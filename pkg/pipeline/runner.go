package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/confgrid/confgrid/pkg/cache"
	"github.com/confgrid/confgrid/pkg/observability"
	"github.com/confgrid/confgrid/pkg/schedule"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	s, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Schedule = s
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.TrackCount = len(s.Tracks)
	result.Stats.EventCount = len(s.Events)
	result.CacheInfo.LoadHit = loadHit

	if data, err := schedule.Marshal(s, schedule.FormatJSON); err == nil {
		result.ScheduleHash = cache.Hash(data)
	}

	r.Logger.Info("loaded schedule",
		"tracks", len(s.Tracks),
		"events", len(s.Events),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	layout, layoutHit, err := r.LayoutWithCacheInfo(ctx, s, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.FrameCount = len(layout.Frames)
	result.Stats.MaxColumns = layout.MaxColumns
	result.Stats.Dropped = len(layout.Warnings)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"frames", len(layout.Frames),
		"columns", layout.MaxColumns,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo decodes and expands a schedule with caching and returns cache hit info.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (s *schedule.Schedule, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Source, opts.InputFormat)
	start := time.Now()
	defer func() {
		n := 0
		if s != nil {
			n = len(s.Events)
		}
		hooks.OnLoadComplete(ctx, opts.Source, n, time.Since(start), err)
	}()

	cacheKey := r.Keyer.ScheduleKey(cache.Hash(opts.Data), opts.ScheduleKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, ok := r.get(ctx, "schedule", cacheKey); ok {
			cached, err := schedule.Read(bytes.NewReader(data), schedule.FormatJSON)
			if err == nil {
				return cached, true, nil
			}
			r.Logger.Debug("discarding unreadable cache entry", "key", cacheKey, "error", err)
		}
	}

	s, err = Load(opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := schedule.Marshal(s, schedule.FormatJSON); err == nil {
		r.set(ctx, "schedule", cacheKey, data, cache.TTLSchedule)
	}
	return s, false, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*schedule.Schedule, error) {
	s, _, err := r.LoadWithCacheInfo(ctx, opts)
	return s, err
}

// LayoutWithCacheInfo computes a layout with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, s *schedule.Schedule, opts Options) (l schedule.Layout, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return schedule.Layout{}, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(s.Tracks), len(s.Events))
	start := time.Now()
	defer func() {
		hooks.OnLayoutComplete(ctx, len(l.Frames), l.MaxColumns, time.Since(start), err)
	}()

	scheduleData, err := schedule.Marshal(s, schedule.FormatJSON)
	if err != nil {
		return schedule.Layout{}, false, fmt.Errorf("serialize schedule for cache key: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(scheduleData), opts.LayoutKeyOpts())

	// Verify bypasses the cache.
	if !opts.Refresh && !opts.Verify {
		if data, ok := r.get(ctx, "layout", cacheKey); ok {
			cached, err := schedule.UnmarshalLayout(data)
			if err == nil {
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}

	l, err = GenerateLayout(s, opts)
	if err != nil {
		return schedule.Layout{}, false, err
	}

	if data, err := schedule.MarshalLayout(l); err == nil {
		r.set(ctx, "layout", cacheKey, data, cache.TTLLayout)
	}
	return l, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, s *schedule.Schedule, opts Options) (schedule.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, s, opts)
	return l, err
}

// RenderWithCacheInfo encodes a layout with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l schedule.Layout, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	layoutData, err := schedule.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	artifacts = make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, ok := r.get(ctx, "artifact", r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)))
			if !ok {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(l, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		r.set(ctx, "artifact", r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l schedule.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// get reads a cache entry. Backend errors count as misses.
func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return nil, false
}

// set writes a cache entry. Failures are logged and otherwise ignored.
func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
