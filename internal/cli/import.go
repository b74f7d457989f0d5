package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperr "github.com/confgrid/confgrid/pkg/errors"
	"github.com/confgrid/confgrid/pkg/schedule"
)

// importCommand creates the import command that converts calendars into
// schedule files.
func (c *CLI) importCommand() *cobra.Command {
	var (
		output       string
		name         string
		timezone     string
		defaultTrack string
		expand       bool
	)

	cmd := &cobra.Command{
		Use:   "import [calendar.ics]",
		Short: "Convert an iCalendar feed into a schedule file",
		Long: `Convert an iCalendar feed into a schedule file.

Every VEVENT becomes an event. Its track is the X-CONFGRID-TRACK property
when present, otherwise the event's LOCATION; events without either go to
--default-track. Floating times are read in --tz.

Any other schedule format is accepted too, which makes import a format
converter: the output format follows the extension of -o (default
<input>.yaml).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if output == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + ".yaml"
			}
			if _, err := schedule.FormatFromPath(output); err != nil {
				return err
			}

			loc, err := apperr.ValidateTimezone(timezone)
			if err != nil {
				return err
			}

			s, err := readSchedule(input, schedule.ICSOptions{
				Name:         name,
				DefaultTrack: defaultTrack,
				Location:     loc,
			})
			if err != nil {
				return err
			}
			if expand {
				if s, err = s.Expand(loc); err != nil {
					return err
				}
			}

			if err := schedule.WriteFile(s, output); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			printSuccess("Imported %s", plural(len(s.Events), "event"))
			printFile(output)
			printDetail("%s", plural(len(s.Tracks), "track"))
			printNewline()
			printNextStep("Lay out", appName+" layout "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output schedule file (default: <input>.yaml)")
	cmd.Flags().StringVar(&name, "name", "", "schedule name (default: calendar name)")
	cmd.Flags().StringVar(&timezone, "tz", "", "IANA zone for floating times (default: UTC)")
	cmd.Flags().StringVar(&defaultTrack, "default-track", schedule.DefaultICSTrack, "track for events without a location")
	cmd.Flags().BoolVar(&expand, "expand", false, "expand recurring events into occurrences")

	return cmd
}

// readSchedule reads any schedule format. iCalendar input is parsed with
// opts; the result is always validated.
func readSchedule(path string, opts schedule.ICSOptions) (*schedule.Schedule, error) {
	format, err := schedule.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if format != schedule.FormatICS {
		return schedule.ReadFile(path)
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "calendar %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	s, err := schedule.ParseICS(f, opts)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	s.FillIDs()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
