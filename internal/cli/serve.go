package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confgrid/confgrid/pkg/server"
)

// serveCommand creates the serve command that exposes the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		listen  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

POST a schedule to /v1/layout (JSON, YAML, TOML or iCalendar, chosen by
Content-Type or ?format=) and receive its layout. Merge gaps and the time
zone default to the config file and can be overridden per request with
?track_gap=, ?frame_gap= and ?tz=.

The server stops gracefully on Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			track, frame, err := cfg.Gaps()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("listen") {
				listen = cfg.Server.Listen
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := server.New(runner, c.Logger, server.Defaults{
				TrackMergeGap: track,
				FrameMergeGap: frame,
				Timezone:      cfg.Timezone,
			})

			printInfo("Serving on %s", StyleLink.Render("http://"+listen))
			printDetail("cache: %s", cacheLabel(cfg.Cache.Backend, noCache))
			return srv.ListenAndServe(ctx, listen)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "127.0.0.1:8080", "address to listen on (default: config server.listen)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func cacheLabel(backend string, disabled bool) string {
	if disabled {
		return "disabled"
	}
	return backend
}
