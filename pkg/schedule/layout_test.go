package schedule

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperr "github.com/confgrid/confgrid/pkg/errors"
	"github.com/confgrid/confgrid/pkg/timeline"
)

func computeFixture(t *testing.T) (*Schedule, timeline.Result) {
	t.Helper()
	s, err := ReadFile(filepath.Join("testdata", "program.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	s, err = s.Expand(time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	s.Events = append(s.Events, Event{ID: "stray", Track: "ghost", Start: day, DurationSeconds: 60})
	tracks, events := s.ToTimeline()
	return s, timeline.Compute(tracks, events, timeline.DefaultOptions())
}

func TestNewLayout(t *testing.T) {
	s, res := computeFixture(t)

	l := NewLayout(s, res, timeline.DefaultOptions())

	if l.Name != "GopherDay 2025" {
		t.Errorf("Name = %q", l.Name)
	}
	if l.MaxColumns != 2 {
		t.Errorf("MaxColumns = %d, want 2", l.MaxColumns)
	}
	if l.TrackMergeGapSeconds != 300 || l.FrameMergeGapSeconds != 0 {
		t.Errorf("gaps = %d/%d, want 300/0", l.TrackMergeGapSeconds, l.FrameMergeGapSeconds)
	}
	// opening+generics+coffee overlap on day one; coffee repeats on day two.
	if len(l.Frames) != 2 {
		t.Fatalf("frame count = %d, want 2", len(l.Frames))
	}

	first := l.Frames[0]
	if len(first.Items) != 2 || first.Items[0].Track != "main" || first.Items[1].Track != "lab" {
		t.Fatalf("frame 0 items = %+v", first.Items)
	}
	main := first.Items[0]
	if len(main.Events) != 2 || main.Events[0].Title != "Opening Keynote" || main.Events[1].Title != "Coffee" {
		t.Errorf("main session events = %+v", main.Events)
	}
	if len(l.Warnings) != 1 || l.Warnings[0].EventID != "stray" || l.Warnings[0].Code != string(timeline.WarningUnknownTrack) {
		t.Errorf("warnings = %+v", l.Warnings)
	}
	if got := l.TrackName("lab"); got != "Workshop Lab" {
		t.Errorf("TrackName(lab) = %q", got)
	}
	if got := l.Title("generics"); got != "Generics Workshop" {
		t.Errorf("Title(generics) = %q", got)
	}
	if got := l.Title("unknown"); got != "unknown" {
		t.Errorf("Title(unknown) = %q, want fallback to ID", got)
	}
}

func TestLayoutResultRoundTrip(t *testing.T) {
	s, res := computeFixture(t)
	l := NewLayout(s, res, timeline.DefaultOptions())

	back := l.Result()

	if err := timeline.Validate(back, nil); err != nil {
		t.Fatalf("Validate(Result()) = %v", err)
	}
	if back.MaxColumns != res.MaxColumns || len(back.Frames) != len(res.Frames) {
		t.Fatalf("Result() shape differs: %d/%d vs %d/%d", back.MaxColumns, len(back.Frames), res.MaxColumns, len(res.Frames))
	}
	if back.EventCount() != res.EventCount() {
		t.Errorf("EventCount() = %d, want %d", back.EventCount(), res.EventCount())
	}
	if got := back.Frames[0].Items[1].Session.Track; got.Name != "Workshop Lab" || got.Priority != 1 {
		t.Errorf("reconstructed track = %+v", got)
	}
	if l.Options() != timeline.DefaultOptions() {
		t.Errorf("Options() = %+v", l.Options())
	}
}

func TestLayoutEncodeDecode(t *testing.T) {
	s, res := computeFixture(t)
	l := NewLayout(s, res, timeline.DefaultOptions())

	for _, format := range LayoutFormats {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeLayout(&buf, l, format); err != nil {
				t.Fatalf("EncodeLayout() error: %v", err)
			}
			got, err := DecodeLayout(&buf, format)
			if err != nil {
				t.Fatalf("DecodeLayout() error: %v", err)
			}
			if len(got.Frames) != len(l.Frames) || got.MaxColumns != l.MaxColumns {
				t.Errorf("decoded layout differs: %+v", got)
			}
			if !got.Frames[1].Start.Equal(l.Frames[1].Start) {
				t.Errorf("frame 1 start = %v, want %v", got.Frames[1].Start, l.Frames[1].Start)
			}
		})
	}
}

func TestUnmarshalLayoutRejectsInconsistent(t *testing.T) {
	data := []byte(`{
  "max_columns": 1,
  "frames": [
    {"start": "2025-06-12T09:00:00Z", "end": "2025-06-12T10:00:00Z",
     "items": [{"column": 0, "track": "a", "start": "2025-06-12T09:00:00Z", "end": "2025-06-12T10:00:00Z", "events": []},
               {"column": 0, "track": "b", "start": "2025-06-12T09:00:00Z", "end": "2025-06-12T10:00:00Z", "events": []}]}
  ]
}`)
	_, err := UnmarshalLayout(data)
	if !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
		t.Errorf("UnmarshalLayout() error = %v, want %s", err, apperr.ErrCodeInvalidFormat)
	}
}

func TestLayoutFiles(t *testing.T) {
	s, res := computeFixture(t)
	l := NewLayout(s, res, timeline.DefaultOptions())
	dir := t.TempDir()

	path := LayoutPath(filepath.Join(dir, "program.yaml"), FormatYAML)
	if want := filepath.Join(dir, "program.layout.yaml"); path != want {
		t.Errorf("LayoutPath() = %q, want %q", path, want)
	}
	if !IsLayoutPath(path) {
		t.Errorf("IsLayoutPath(%q) = false", path)
	}
	if IsLayoutPath("program.yaml") {
		t.Error("IsLayoutPath(program.yaml) = true")
	}

	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile() error: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile() error: %v", err)
	}
	if got.Name != l.Name || len(got.Frames) != len(l.Frames) {
		t.Errorf("read layout differs")
	}

	if err := WriteLayoutFile(l, filepath.Join(dir, "x.layout.toml")); !apperr.Is(err, apperr.ErrCodeUnsupported) {
		t.Errorf("WriteLayoutFile(toml) error = %v, want %s", err, apperr.ErrCodeUnsupported)
	}
	if _, err := ReadLayoutFile(filepath.Join(dir, "missing.layout.json")); !apperr.Is(err, apperr.ErrCodeFileNotFound) {
		t.Errorf("ReadLayoutFile(missing) error = %v", err)
	}
	if !strings.HasSuffix(LayoutPath("talks.json", FormatJSON), "talks.layout.json") {
		t.Error("LayoutPath(json) has wrong suffix")
	}
}
