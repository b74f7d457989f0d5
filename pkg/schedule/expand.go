package schedule

import (
	"time"

	"github.com/teambition/rrule-go"

	apperr "github.com/confgrid/confgrid/pkg/errors"
)

// MaxOccurrences caps the number of occurrences a single recurring event may
// produce.
const MaxOccurrences = 1000

// Expand returns a copy of s in which every recurring event is replaced by
// its occurrences. Occurrence IDs are "<id>@<start>" with the start in
// RFC 3339 UTC. Recurrence is evaluated in loc, so a daily 09:00 rule keeps
// its wall-clock time across DST changes; nil means UTC.
//
// A rule with no COUNT, no UNTIL and no Event.Until, or one that yields more
// than MaxOccurrences, is rejected with INVALID_SCHEDULE.
func (s *Schedule) Expand(loc *time.Location) (*Schedule, error) {
	if loc == nil {
		loc = time.UTC
	}
	out := &Schedule{
		Name:   s.Name,
		Tracks: append([]Track(nil), s.Tracks...),
		Events: make([]Event, 0, len(s.Events)),
	}
	for _, e := range s.Events {
		if e.RRule == "" {
			out.Events = append(out.Events, e)
			continue
		}
		occ, err := expandEvent(e, loc)
		if err != nil {
			return nil, err
		}
		out.Events = append(out.Events, occ...)
	}
	return out, nil
}

func expandEvent(e Event, loc *time.Location) ([]Event, error) {
	r, err := rrule.StrToRRule(e.RRule)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidSchedule, err, "event %q has invalid rrule %q", e.ID, e.RRule)
	}
	start := e.Start.In(loc)
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range e.Except {
		set.ExDate(ex.In(loc))
	}

	next := set.Iterator()
	var out []Event
	for {
		t, ok := next()
		if !ok {
			break
		}
		if e.Until != nil && t.After(*e.Until) {
			break
		}
		if len(out) == MaxOccurrences {
			if e.Until == nil {
				return nil, apperr.New(apperr.ErrCodeInvalidSchedule,
					"event %q: rrule %q is unbounded, add COUNT, UNTIL or until", e.ID, e.RRule)
			}
			return nil, apperr.New(apperr.ErrCodeInvalidSchedule,
				"event %q: rrule %q yields more than %d occurrences", e.ID, e.RRule, MaxOccurrences)
		}
		occ := e
		occ.ID = e.ID + "@" + t.UTC().Format(time.RFC3339)
		occ.Start = t
		occ.RRule = ""
		occ.Until = nil
		occ.Except = nil
		out = append(out, occ)
	}
	return out, nil
}
