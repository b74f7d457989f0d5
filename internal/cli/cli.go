// Package cli implements the confgrid command-line interface.
//
// The main commands are:
//   - layout: compute a multi-column layout from a schedule file
//   - show: print the frames of a schedule or layout as a table
//   - browse: step through a layout interactively
//   - import: convert an iCalendar feed into a schedule file
//   - serve: expose the layout pipeline over HTTP
//   - cache, config: manage the local cache and configuration file
//
// All commands accept --verbose (-v) for debug logging and --config to
// point at a configuration file other than the default. Loggers travel
// through context.Context.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/confgrid/confgrid/internal/config"
	"github.com/confgrid/confgrid/pkg/buildinfo"
	"github.com/confgrid/confgrid/pkg/cache"
	"github.com/confgrid/confgrid/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "confgrid"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Confgrid lays out multi-track schedules as columns",
		Long: `Confgrid turns schedules of parallel tracks (rooms, stages, channels) into
frames of columns: every track keeps its column while it stays busy, so a
program can be read top to bottom without lanes jumping around.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/confgrid/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the file named by --config, or the default one.
func (c *CLI) loadConfig() (*config.Config, error) {
	path, err := c.resolveConfigPath()
	if err != nil {
		return config.Default(), nil
	}
	return config.Load(path)
}

func (c *CLI) resolveConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.Path()
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	ch, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, nil, c.Logger), nil
}

func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil && cfg.Cache.Dir == "" && cfg.Cache.Backend == cache.BackendFile {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, cfg.CacheOptions(dir))
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/confgrid/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineFlags are the layout flags shared by layout, show and browse.
// Flags left unset fall back to the config file.
type pipelineFlags struct {
	trackGap time.Duration
	frameGap time.Duration
	timezone string
	verify   bool
	noCache  bool
	refresh  bool
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&f.trackGap, "track-gap", pipeline.DefaultTrackMergeGap, "merge events of one track separated by less than this")
	cmd.Flags().DurationVar(&f.frameGap, "frame-gap", pipeline.DefaultFrameMergeGap, "merge sessions of different tracks separated by less than this")
	cmd.Flags().StringVar(&f.timezone, "tz", "", "IANA zone for recurrences and floating times (default: config or UTC)")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "re-check layout invariants after computing")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

// options merges the configuration with the flags the user set.
func (f *pipelineFlags) options(cmd *cobra.Command, cfg *config.Config) (pipeline.Options, error) {
	track, frame, err := cfg.Gaps()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		TrackMergeGap: track,
		FrameMergeGap: frame,
		Timezone:      cfg.Timezone,
		Verify:        f.verify,
		Refresh:       f.refresh,
	}
	if cmd.Flags().Changed("track-gap") {
		opts.TrackMergeGap = f.trackGap
	}
	if cmd.Flags().Changed("frame-gap") {
		opts.FrameMergeGap = f.frameGap
	}
	if cmd.Flags().Changed("tz") {
		opts.Timezone = f.timezone
	}
	return opts, nil
}
