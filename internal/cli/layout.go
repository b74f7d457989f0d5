package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	apperr "github.com/confgrid/confgrid/pkg/errors"
	"github.com/confgrid/confgrid/pkg/pipeline"
	"github.com/confgrid/confgrid/pkg/schedule"
)

// layoutCommand creates the layout command for computing schedule layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		output string
		format string
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "layout [schedule]",
		Short: "Compute the column layout of a schedule",
		Long: `Compute the column layout of a schedule.

The schedule may be JSON, YAML, TOML or iCalendar; the format follows the
file extension. Recurring events are expanded first. The result is written
to <schedule>.layout.json (or .yaml with -f yaml) unless -o is given; use
-o - to write to stdout.

With --watch the layout is recomputed every time the schedule changes.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]

			if output != "" && output != "-" && !cmd.Flags().Changed("format") {
				if f, err := schedule.FormatFromPath(output); err == nil {
					format = f
				}
			}
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			if output == "" {
				output = schedule.LayoutPath(input, format)
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, cfg)
			if err != nil {
				return err
			}
			opts.Formats = []string{format}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cfg, flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			build := func(ctx context.Context) error {
				return c.runLayout(ctx, cmd, runner, input, output, opts)
			}
			if err := build(ctx); err != nil {
				if !watch {
					return err
				}
				printError("%s", apperr.UserMessage(err))
			}
			if !watch {
				return nil
			}
			return c.watchFile(ctx, input, build)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <schedule>.layout.<format>, - for stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatJSON, "output format: json, yaml")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "recompute when the schedule changes")
	flags.register(cmd)

	return cmd
}

// runLayout loads the schedule, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, cmd *cobra.Command, runner *pipeline.Runner, input, output string, opts pipeline.Options) error {
	spinner := newSpinnerWithContext(ctx, "Reading "+input+"...")
	spinner.Start()

	data, err := readSource(input)
	if err != nil {
		spinner.Stop()
		return err
	}
	opts.Source = input
	opts.Data = data

	spinner.Update("Computing layout...")
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}

	if ctx.Err() != nil {
		spinner.Stop()
		return ctx.Err()
	}

	artifact := res.Artifacts[opts.Formats[0]]
	if output == "-" {
		spinner.Stop()
		_, err := cmd.OutOrStdout().Write(artifact)
		return err
	}
	spinner.Update("Writing " + output + "...")
	err = os.WriteFile(output, artifact, 0o644)
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(res.Stats.FrameCount, res.Stats.MaxColumns, res.Stats.EventCount, res.CacheInfo.LayoutHit)
	if n := len(res.Layout.Warnings); n > 0 {
		printWarning("%s left out", plural(n, "event"))
		for _, w := range res.Layout.Warnings {
			printDetail("%s", w.Message)
		}
	}
	printNewline()
	printNextStep("Browse", appName+" browse "+output)

	return nil
}

// readSource reads a schedule file into memory.
func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "schedule %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
