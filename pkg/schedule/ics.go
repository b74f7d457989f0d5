package schedule

import (
	"errors"
	"io"
	"strings"
	"time"
	"unicode"

	ical "github.com/arran4/golang-ical"

	apperr "github.com/confgrid/confgrid/pkg/errors"
)

// propTrack carries the track ID through an export/import round trip.
const propTrack ical.ComponentProperty = "X-CONFGRID-TRACK"

// DefaultICSTrack receives events that have no LOCATION.
const DefaultICSTrack = "main"

// ICSOptions controls ParseICS.
type ICSOptions struct {
	// Name overrides the calendar's X-WR-CALNAME.
	Name string

	// DefaultTrack receives events without a location. Defaults to
	// DefaultICSTrack.
	DefaultTrack string

	// Location interprets floating times. Defaults to UTC.
	Location *time.Location
}

// ParseICS converts an iCalendar stream into a schedule.
//
// Each VEVENT becomes an event. Its track is X-CONFGRID-TRACK when present,
// otherwise a slug of LOCATION; tracks are prioritized in order of first
// appearance. RRULE and EXDATE are kept for Expand. All-day events span 24
// hours.
func ParseICS(r io.Reader, opts ICSOptions) (*Schedule, error) {
	if opts.DefaultTrack == "" {
		opts.DefaultTrack = DefaultICSTrack
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "parse icalendar")
	}

	s := &Schedule{Name: opts.Name}
	if s.Name == "" {
		for _, p := range cal.CalendarProperties {
			if p.IANAToken == string(ical.PropertyXWRCalName) {
				s.Name = p.Value
			}
		}
	}

	seen := make(map[string]bool)
	addTrack := func(id, name string) {
		if seen[id] {
			return
		}
		seen[id] = true
		s.Tracks = append(s.Tracks, Track{ID: id, Name: name, Priority: len(s.Tracks)})
	}

	for i, ve := range cal.Events() {
		e, trackName, err := parseVEvent(ve, opts)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "vevent #%d", i+1)
		}
		if e.Track == "" {
			e.Track = opts.DefaultTrack
			trackName = ""
		}
		addTrack(e.Track, trackName)
		s.Events = append(s.Events, e)
	}
	return s, nil
}

func parseVEvent(ve *ical.VEvent, opts ICSOptions) (Event, string, error) {
	var e Event
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		e.ID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		e.Title = p.Value
	}

	var trackName string
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		trackName = strings.TrimSpace(p.Value)
		e.Track = slug(trackName)
	}
	if p := ve.GetProperty(propTrack); p != nil && p.Value != "" {
		e.Track = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return e, "", err
	}
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	start = inFloating(start, dtStart, opts.Location)
	e.Start = start

	allDay := dtStart != nil && !strings.Contains(dtStart.Value, "T")
	if end, err := ve.GetEndAt(); err == nil {
		end = inFloating(end, ve.GetProperty(ical.ComponentPropertyDtEnd), opts.Location)
		if end.After(start) {
			e.DurationSeconds = int64(end.Sub(start) / time.Second)
		}
	}
	if e.DurationSeconds == 0 && allDay {
		e.DurationSeconds = int64(24 * time.Hour / time.Second)
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		e.RRule = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			t, err := parseICSTime(part, opts.Location)
			if err != nil {
				return e, "", err
			}
			e.Except = append(e.Except, t)
		}
	}
	return e, trackName, nil
}

// inFloating re-reads a floating time (no TZID, no trailing Z) as wall-clock
// time in loc.
func inFloating(t time.Time, p *ical.IANAProperty, loc *time.Location) time.Time {
	if p == nil || strings.HasSuffix(p.Value, "Z") {
		return t
	}
	if _, ok := p.ICalParameters[string(ical.ParameterTzid)]; ok {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

// parseICSTime parses a DATE or DATE-TIME value as found in EXDATE.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

// slug lowercases s and replaces runs of non-alphanumerics with '-'.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func writeICS(w io.Writer, s *Schedule) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//confgrid//schedule//EN")
	if s.Name != "" {
		cal.SetXWRCalName(s.Name)
	}

	for _, e := range s.Events {
		ve := cal.AddEvent(e.ID)
		// DTSTAMP is pinned to the start so exports are reproducible.
		ve.SetDtStampTime(e.Start.UTC())
		ve.SetStartAt(e.Start.UTC())
		ve.SetEndAt(e.End().UTC())
		if e.Title != "" {
			ve.SetSummary(e.Title)
		}
		location := e.Track
		if t, ok := s.Track(e.Track); ok && t.Name != "" {
			location = t.Name
		}
		ve.SetLocation(location)
		ve.SetProperty(propTrack, e.Track)
		if e.RRule != "" {
			ve.SetProperty(ical.ComponentPropertyRrule, e.RRule)
		}
		for _, ex := range e.Except {
			ve.AddProperty(ical.ComponentPropertyExdate, ex.UTC().Format("20060102T150405Z"))
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}
