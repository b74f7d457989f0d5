package schedule

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	apperr "github.com/confgrid/confgrid/pkg/errors"
	"github.com/confgrid/confgrid/pkg/timeline"
)

// Schedule is a conference program: a set of tracks and the events held on
// them.
type Schedule struct {
	Name   string  `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Tracks []Track `json:"tracks" yaml:"tracks" toml:"tracks"`
	Events []Event `json:"events" yaml:"events" toml:"events"`
}

// Track is a room or stage.
type Track struct {
	ID       string `json:"id" yaml:"id" toml:"id"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Priority int    `json:"priority,omitempty" yaml:"priority,omitempty" toml:"priority,omitempty"`
}

// Event is a talk, workshop or break. Start must carry a zone offset.
type Event struct {
	ID              string    `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Track           string    `json:"track" yaml:"track" toml:"track"`
	Title           string    `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Start           time.Time `json:"start" yaml:"start" toml:"start"`
	DurationSeconds int64     `json:"duration_seconds" yaml:"duration_seconds" toml:"duration_seconds"`

	// RRule is an RFC 5545 recurrence rule without the "RRULE:" prefix.
	RRule string `json:"rrule,omitempty" yaml:"rrule,omitempty" toml:"rrule,omitempty"`

	// Until bounds an RRule that has neither COUNT nor UNTIL.
	Until *time.Time `json:"until,omitempty" yaml:"until,omitempty" toml:"until,omitempty"`

	// Except lists occurrence starts removed from the recurrence.
	Except []time.Time `json:"except,omitempty" yaml:"except,omitempty" toml:"except,omitempty"`
}

// maxDurationSeconds is the longest duration a time.Duration can hold.
const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

// Duration returns the event length.
func (e Event) Duration() time.Duration {
	return time.Duration(e.DurationSeconds) * time.Second
}

// End returns Start plus Duration.
func (e Event) End() time.Time {
	return e.Start.Add(e.Duration())
}

// eventNamespace seeds the name-based UUIDs given to events without an ID.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://confgrid.dev/ns/event"))

// FillIDs assigns an ID to every event that has none. The ID is a version 5
// UUID over track, start and title, so re-reading the same file yields the
// same IDs.
func (s *Schedule) FillIDs() {
	for i := range s.Events {
		e := &s.Events[i]
		if e.ID != "" {
			continue
		}
		name := strings.Join([]string{e.Track, e.Start.UTC().Format(time.RFC3339Nano), e.Title}, "|")
		e.ID = uuid.NewSHA1(eventNamespace, []byte(name)).String()
	}
}

// Validate checks the schedule for structural errors.
//
// Unknown track references are not errors here: the layout engine drops
// such events with a warning.
func (s *Schedule) Validate() error {
	tracks := make(map[string]bool, len(s.Tracks))
	for _, t := range s.Tracks {
		if err := apperr.ValidateID("track", t.ID); err != nil {
			return err
		}
		if tracks[t.ID] {
			return apperr.New(apperr.ErrCodeDuplicateTrack, "track %q defined more than once", t.ID)
		}
		tracks[t.ID] = true
	}

	events := make(map[string]bool, len(s.Events))
	for i, e := range s.Events {
		if err := apperr.ValidateID("event", e.ID); err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidSchedule, err, "event #%d", i+1)
		}
		if events[e.ID] {
			return apperr.New(apperr.ErrCodeDuplicateEvent, "event %q defined more than once", e.ID)
		}
		events[e.ID] = true

		if e.Start.IsZero() {
			return apperr.New(apperr.ErrCodeInvalidSchedule, "event %q has no start time", e.ID)
		}
		if e.DurationSeconds < 0 {
			return apperr.New(apperr.ErrCodeInvalidDuration, "event %q has negative duration %ds", e.ID, e.DurationSeconds)
		}
		if e.DurationSeconds > maxDurationSeconds {
			return apperr.New(apperr.ErrCodeInvalidDuration, "event %q duration %ds is out of range", e.ID, e.DurationSeconds)
		}
		if e.RRule != "" {
			if _, err := rrule.StrToRRule(e.RRule); err != nil {
				return apperr.Wrap(apperr.ErrCodeInvalidSchedule, err, "event %q has invalid rrule %q", e.ID, e.RRule)
			}
		} else if e.Until != nil || len(e.Except) > 0 {
			return apperr.New(apperr.ErrCodeInvalidSchedule, "event %q sets until or except without rrule", e.ID)
		}
	}
	return nil
}

// ToTimeline converts the schedule into layout engine input. Recurrence
// rules are ignored; call Expand first to materialize them.
func (s *Schedule) ToTimeline() ([]timeline.Track, []timeline.Event) {
	tracks := make([]timeline.Track, len(s.Tracks))
	for i, t := range s.Tracks {
		tracks[i] = timeline.Track{ID: t.ID, Name: t.Name, Priority: t.Priority}
	}
	events := make([]timeline.Event, len(s.Events))
	for i, e := range s.Events {
		events[i] = timeline.Event{
			ID:       e.ID,
			TrackID:  e.Track,
			Start:    e.Start,
			Duration: e.Duration(),
		}
	}
	return tracks, events
}

// Track returns the track with the given ID.
func (s *Schedule) Track(id string) (Track, bool) {
	for _, t := range s.Tracks {
		if t.ID == id {
			return t, true
		}
	}
	return Track{}, false
}
