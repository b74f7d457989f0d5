package pipeline

import (
	"fmt"

	apperr "github.com/confgrid/confgrid/pkg/errors"
	"github.com/confgrid/confgrid/pkg/schedule"
	"github.com/confgrid/confgrid/pkg/timeline"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout computes the frame layout of an expanded schedule.
//
// Events on unknown tracks are dropped and reported both in the layout's
// warnings and on opts.Logger. With opts.Verify set the result is re-checked
// against the layout invariants before it is returned.
func GenerateLayout(s *schedule.Schedule, opts Options) (l schedule.Layout, err error) {
	tracks, events := s.ToTimeline()
	topts := opts.TimelineOptions()

	// Compute panics when a column runs out.
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = apperr.Wrap(apperr.ErrCodeInternal, e, "compute layout")
				return
			}
			err = apperr.New(apperr.ErrCodeInternal, "compute layout: %v", r)
		}
	}()

	res := timeline.Compute(tracks, events, topts)
	if opts.Verify {
		if err := timeline.Validate(res, events); err != nil {
			return schedule.Layout{}, fmt.Errorf("verify layout: %w", err)
		}
	}

	if opts.Logger != nil {
		for _, w := range res.Warnings {
			opts.Logger.Warn("dropped event",
				"event", w.EventID,
				"track", w.TrackID)
		}
	}
	return schedule.NewLayout(s, res, topts), nil
}
