package schedule

import (
	"testing"
	"time"

	apperr "github.com/confgrid/confgrid/pkg/errors"
)

func TestExpand(t *testing.T) {
	until := day.Add(75*time.Hour + time.Minute)
	s := &Schedule{
		Name:   "conf",
		Tracks: []Track{{ID: "main"}},
		Events: []Event{
			{ID: "talk", Track: "main", Start: day, DurationSeconds: 1800},
			{ID: "standup", Track: "main", Start: day, DurationSeconds: 900, RRule: "FREQ=DAILY;COUNT=3"},
			{ID: "lunch", Track: "main", Start: day.Add(3 * time.Hour), DurationSeconds: 3600, RRule: "FREQ=DAILY", Until: &until,
				Except: []time.Time{day.Add(27 * time.Hour)}},
		},
	}

	out, err := s.Expand(time.UTC)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}

	want := []string{
		"talk",
		"standup@2025-06-12T09:00:00Z",
		"standup@2025-06-13T09:00:00Z",
		"standup@2025-06-14T09:00:00Z",
		"lunch@2025-06-12T12:00:00Z",
		"lunch@2025-06-14T12:00:00Z",
		"lunch@2025-06-15T12:00:00Z",
	}
	if len(out.Events) != len(want) {
		t.Fatalf("event count = %d, want %d: %+v", len(out.Events), len(want), out.Events)
	}
	for i, e := range out.Events {
		if e.ID != want[i] {
			t.Errorf("event %d ID = %q, want %q", i, e.ID, want[i])
		}
		if e.RRule != "" || e.Until != nil || e.Except != nil {
			t.Errorf("event %d still carries recurrence: %+v", i, e)
		}
	}
	if got := out.Events[3].Duration(); got != 15*time.Minute {
		t.Errorf("occurrence duration = %v, want 15m", got)
	}
	if len(s.Events) != 3 || s.Events[1].RRule == "" {
		t.Error("Expand modified its receiver")
	}
	if err := out.Validate(); err != nil {
		t.Errorf("expanded schedule invalid: %v", err)
	}
}

func TestExpandKeepsWallClockAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	start := time.Date(2025, 3, 29, 9, 0, 0, 0, berlin)
	s := &Schedule{Events: []Event{{ID: "k", Track: "a", Start: start, DurationSeconds: 60, RRule: "FREQ=DAILY;COUNT=2"}}}

	out, err := s.Expand(berlin)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range out.Events {
		if h := e.Start.In(berlin).Hour(); h != 9 {
			t.Errorf("%s starts at %02d:00 local, want 09:00", e.ID, h)
		}
	}
}

func TestExpandRejectsUnbounded(t *testing.T) {
	s := &Schedule{Events: []Event{{ID: "forever", Track: "a", Start: day, DurationSeconds: 60, RRule: "FREQ=HOURLY"}}}

	if _, err := s.Expand(nil); !apperr.Is(err, apperr.ErrCodeInvalidSchedule) {
		t.Errorf("Expand() error = %v, want %s", err, apperr.ErrCodeInvalidSchedule)
	}
}
