package pipeline

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/confgrid/confgrid/pkg/schedule"
)

// Load decodes opts.Data and expands recurring events into occurrences.
// opts must have passed ValidateForLoad.
func Load(opts Options) (*schedule.Schedule, error) {
	loc, err := opts.Location()
	if err != nil {
		return nil, err
	}

	var s *schedule.Schedule
	if opts.InputFormat == schedule.FormatICS {
		// Floating iCalendar times are read in the requested zone.
		s, err = schedule.ParseICS(bytes.NewReader(opts.Data), schedule.ICSOptions{Location: loc})
		if err == nil {
			s.FillIDs()
			err = s.Validate()
		}
	} else {
		s, err = schedule.Read(bytes.NewReader(opts.Data), opts.InputFormat)
	}
	if err != nil {
		return nil, err
	}

	if s.Name == "" && opts.Source != "" {
		base := filepath.Base(opts.Source)
		s.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	expanded, err := s.Expand(loc)
	if err != nil {
		return nil, err
	}
	if opts.Logger != nil && len(expanded.Events) != len(s.Events) {
		opts.Logger.Debug("expanded recurrences",
			"events", len(s.Events),
			"occurrences", len(expanded.Events))
	}
	return expanded, nil
}
