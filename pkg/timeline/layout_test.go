package timeline

import (
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"
	"time"
)

func TestComputeTwoParallelTracks(t *testing.T) {
	tracks := []Track{{ID: "a", Priority: 0}, {ID: "b", Priority: 1}}
	events := []Event{ev("e2", "b", 0, 60), ev("e1", "a", 0, 60)}

	res := Compute(tracks, events, DefaultOptions())

	if len(res.Frames) != 1 {
		t.Fatalf("frame count = %d, want 1", len(res.Frames))
	}
	f := res.Frames[0]
	if !f.Start.Equal(at(0)) || !f.End.Equal(at(60)) {
		t.Errorf("frame = [%v, %v), want [%v, %v)", f.Start, f.End, at(0), at(60))
	}
	if len(f.Items) != 2 {
		t.Fatalf("item count = %d, want 2", len(f.Items))
	}
	if f.Items[0].Session.Track.ID != "a" || f.Items[0].Column != 0 {
		t.Errorf("item 0 = %s/%d, want a/0", f.Items[0].Session.Track.ID, f.Items[0].Column)
	}
	if f.Items[1].Session.Track.ID != "b" || f.Items[1].Column != 1 {
		t.Errorf("item 1 = %s/%d, want b/1", f.Items[1].Session.Track.ID, f.Items[1].Column)
	}
	if res.MaxColumns != 2 {
		t.Errorf("MaxColumns = %d, want 2", res.MaxColumns)
	}
}

func TestComputeBridgedGapRecombines(t *testing.T) {
	tracks := []Track{{ID: "a", Priority: 0}, {ID: "b", Priority: 1}}
	events := []Event{
		ev("a1", "a", 0, 30),
		ev("a2", "a", 40, 30),
		ev("b1", "b", 20, 30),
	}

	res := Compute(tracks, events, DefaultOptions())

	if len(res.Frames) != 1 {
		t.Fatalf("frame count = %d, want 1", len(res.Frames))
	}
	f := res.Frames[0]
	if !f.Start.Equal(at(0)) || !f.End.Equal(at(70)) {
		t.Errorf("frame = [%v, %v), want [%v, %v)", f.Start, f.End, at(0), at(70))
	}
	if len(f.Items) != 2 {
		t.Fatalf("item count = %d, want 2", len(f.Items))
	}

	a := f.Items[0].Session
	if a.Track.ID != "a" || !a.Start.Equal(at(0)) || !a.End.Equal(at(70)) {
		t.Errorf("track a session = %s [%v, %v)", a.Track.ID, a.Start, a.End)
	}
	if got, want := eventIDs(a.Events), []string{"a1", "a2"}; !equalStrings(got, want) {
		t.Errorf("track a events = %v, want %v", got, want)
	}

	b := f.Items[1].Session
	if b.Track.ID != "b" || !b.Start.Equal(at(20)) || !b.End.Equal(at(50)) {
		t.Errorf("track b session = %s [%v, %v)", b.Track.ID, b.Start, b.End)
	}
}

func TestComputeReturningTrackIsAssignedFresh(t *testing.T) {
	tracks := []Track{{ID: "a", Priority: 0}, {ID: "b", Priority: 1}, {ID: "c", Priority: 2}}
	events := []Event{
		ev("a1", "a", 0, 60),
		ev("b1", "b", 0, 60),
		ev("c1", "c", 120, 60),
		ev("c2", "c", 240, 60),
		ev("a2", "a", 240, 60),
	}

	res := Compute(tracks, events, DefaultOptions())

	if len(res.Frames) != 3 {
		t.Fatalf("frame count = %d, want 3", len(res.Frames))
	}
	if col, _ := res.Frames[0].Column("a"); col != 0 {
		t.Errorf("frame 0 column of a = %d, want 0", col)
	}
	if _, ok := res.Frames[1].Column("a"); ok {
		t.Error("track a should be absent from frame 1")
	}
	if col, _ := res.Frames[1].Column("c"); col != 0 {
		t.Errorf("frame 1 column of c = %d, want 0", col)
	}
	if col, _ := res.Frames[2].Column("c"); col != 0 {
		t.Errorf("frame 2 column of c = %d, want 0 (carried over)", col)
	}
	if col, _ := res.Frames[2].Column("a"); col != 1 {
		t.Errorf("frame 2 column of a = %d, want 1 (lowest free, not restored)", col)
	}
}

func TestComputeMaxColumnsIsPeakConcurrency(t *testing.T) {
	tracks := []Track{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	events := []Event{
		ev("a1", "a", 0, 60),
		ev("b1", "b", 0, 60),
		ev("b2", "b", 90, 60),
		ev("c1", "c", 90, 60),
	}

	res := Compute(tracks, events, DefaultOptions())

	if res.MaxColumns != 2 {
		t.Errorf("MaxColumns = %d, want 2", res.MaxColumns)
	}
	if len(res.Frames) != 2 {
		t.Fatalf("frame count = %d, want 2", len(res.Frames))
	}
	if col, _ := res.Frames[1].Column("b"); col != 1 {
		t.Errorf("frame 1 column of b = %d, want 1", col)
	}
	if col, _ := res.Frames[1].Column("c"); col != 0 {
		t.Errorf("frame 1 column of c = %d, want 0", col)
	}
}

func TestComputeEmpty(t *testing.T) {
	tests := []struct {
		name   string
		tracks []Track
		events []Event
	}{
		{"NoInput", nil, nil},
		{"TracksWithoutEvents", []Track{{ID: "a"}, {ID: "b"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute(tt.tracks, tt.events, DefaultOptions())
			if len(res.Frames) != 0 {
				t.Errorf("frame count = %d, want 0", len(res.Frames))
			}
			if res.MaxColumns != 0 {
				t.Errorf("MaxColumns = %d, want 0", res.MaxColumns)
			}
			if len(res.Warnings) != 0 {
				t.Errorf("warnings = %v, want none", res.Warnings)
			}
		})
	}
}

func TestComputeDropsUnknownTrack(t *testing.T) {
	tracks := []Track{{ID: "a"}}
	events := []Event{ev("a1", "a", 0, 30), ev("x1", "ghost", 0, 30)}

	res := Compute(tracks, events, DefaultOptions())

	if len(res.Warnings) != 1 {
		t.Fatalf("warning count = %d, want 1", len(res.Warnings))
	}
	w := res.Warnings[0]
	if w.Code != WarningUnknownTrack || w.EventID != "x1" || w.TrackID != "ghost" {
		t.Errorf("warning = %+v", w)
	}
	if len(res.Dropped) != 1 || res.Dropped[0].ID != "x1" {
		t.Errorf("dropped = %v, want [x1]", eventIDs(res.Dropped))
	}
	if got := res.EventCount(); got != 1 {
		t.Errorf("EventCount() = %d, want 1", got)
	}
	if err := Validate(res, events); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestComputeOnlyUnknownTracks(t *testing.T) {
	res := Compute(nil, []Event{ev("x1", "ghost", 0, 30)}, DefaultOptions())

	if len(res.Frames) != 0 || res.MaxColumns != 0 {
		t.Errorf("got %d frames, %d columns, want none", len(res.Frames), res.MaxColumns)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("warning count = %d, want 1", len(res.Warnings))
	}
}

func TestComputeDuplicateTrackFirstWins(t *testing.T) {
	tracks := []Track{{ID: "a", Name: "first", Priority: 5}, {ID: "a", Name: "second", Priority: 0}}

	res := Compute(tracks, []Event{ev("a1", "a", 0, 30)}, DefaultOptions())

	if got := res.Frames[0].Items[0].Session.Track.Name; got != "first" {
		t.Errorf("track name = %q, want first", got)
	}
}

func TestComputeTrackMergeGapOption(t *testing.T) {
	tracks := []Track{{ID: "a"}}
	events := []Event{ev("a1", "a", 0, 30), ev("a2", "a", 40, 30)}

	tests := []struct {
		name       string
		opts       Options
		wantFrames int
	}{
		{"DefaultSplits", DefaultOptions(), 2},
		{"WideTrackGapMerges", Options{TrackMergeGap: 15 * time.Minute}, 1},
		{"WideFrameGapMerges", Options{TrackMergeGap: 0, FrameMergeGap: 15 * time.Minute}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute(tracks, events, tt.opts)
			if got := len(res.Frames); got != tt.wantFrames {
				t.Errorf("frame count = %d, want %d", got, tt.wantFrames)
			}
		})
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	tracks, events := randomSchedule(rand.New(rand.NewPCG(7, 11)), 6, 80)

	first := Compute(tracks, events, DefaultOptions())
	second := Compute(tracks, events, DefaultOptions())

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated Compute calls produced different results")
	}
}

func TestComputeIndependentOfTrackOrder(t *testing.T) {
	tracks, events := randomSchedule(rand.New(rand.NewPCG(3, 5)), 5, 60)
	reversed := make([]Track, len(tracks))
	for i, tr := range tracks {
		reversed[len(tracks)-1-i] = tr
	}

	a := Compute(tracks, events, DefaultOptions())
	b := Compute(reversed, events, DefaultOptions())

	if !reflect.DeepEqual(a.Frames, b.Frames) {
		t.Error("track input order changed the layout")
	}
}

func TestComputeProperties(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		t.Run(fmt.Sprintf("seed%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed*31))
			tracks, events := randomSchedule(rng, 1+rng.IntN(8), rng.IntN(120))

			res := Compute(tracks, events, DefaultOptions())

			if err := Validate(res, events); err != nil {
				t.Fatal(err)
			}
			if got, want := res.EventCount(), len(events); got != want {
				t.Errorf("EventCount() = %d, want %d", got, want)
			}
		})
	}
}

func TestFrameAt(t *testing.T) {
	tracks := []Track{{ID: "a"}}
	events := []Event{ev("a1", "a", 0, 30), ev("a2", "a", 60, 30)}
	res := Compute(tracks, events, DefaultOptions())

	tests := []struct {
		name   string
		minute int
		want   int
		found  bool
	}{
		{"BeforeAll", -10, 0, false},
		{"StartOfFirst", 0, 0, true},
		{"InsideFirst", 15, 0, true},
		{"EndOfFirstIsExclusive", 30, 1, false},
		{"Between", 45, 1, false},
		{"InsideSecond", 75, 1, true},
		{"AfterAll", 120, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := res.FrameAt(at(tt.minute))
			if got != tt.want || found != tt.found {
				t.Errorf("FrameAt(%d) = (%d, %v), want (%d, %v)", tt.minute, got, found, tt.want, tt.found)
			}
		})
	}
}

// randomSchedule builds a schedule where each track's events do not overlap.
func randomSchedule(rng *rand.Rand, trackCount, eventCount int) ([]Track, []Event) {
	tracks := make([]Track, trackCount)
	for i := range tracks {
		tracks[i] = Track{ID: fmt.Sprintf("room-%02d", i), Priority: rng.IntN(3)}
	}
	cursor := make([]int, trackCount)
	events := make([]Event, 0, eventCount)
	for i := 0; i < eventCount; i++ {
		tr := rng.IntN(trackCount)
		start := cursor[tr] + rng.IntN(90)
		length := 10 + rng.IntN(50)
		cursor[tr] = start + length
		events = append(events, ev(fmt.Sprintf("ev-%03d", i), tracks[tr].ID, start, length))
	}
	rng.Shuffle(len(events), func(i, j int) { events[i], events[j] = events[j], events[i] })
	return tracks, events
}
