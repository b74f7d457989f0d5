package timeline_test

import (
	"fmt"
	"time"

	"github.com/confgrid/confgrid/pkg/timeline"
)

func ExampleCompute() {
	t0 := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)

	// Two rooms, with a keynote in the main hall overlapping a workshop
	tracks := []timeline.Track{
		{ID: "main", Name: "Main Hall", Priority: 0},
		{ID: "lab", Name: "Lab", Priority: 1},
	}
	events := []timeline.Event{
		{ID: "keynote", TrackID: "main", Start: t0, Duration: time.Hour},
		{ID: "workshop", TrackID: "lab", Start: t0.Add(30 * time.Minute), Duration: time.Hour},
		{ID: "lunch-talk", TrackID: "main", Start: t0.Add(3 * time.Hour), Duration: 30 * time.Minute},
	}

	res := timeline.Compute(tracks, events, timeline.DefaultOptions())

	fmt.Println("columns:", res.MaxColumns)
	for i, f := range res.Frames {
		fmt.Printf("frame %d %s-%s\n", i, f.Start.Format("15:04"), f.End.Format("15:04"))
		for _, it := range f.Items {
			fmt.Printf("  col %d: %s (%d events)\n", it.Column, it.Session.Track.Name, len(it.Session.Events))
		}
	}
	// Output:
	// columns: 2
	// frame 0 09:00-10:30
	//   col 0: Main Hall (1 events)
	//   col 1: Lab (1 events)
	// frame 1 12:00-12:30
	//   col 0: Main Hall (1 events)
}

func ExampleGroupIntervals() {
	type slot struct {
		name       string
		start, end int
	}
	t0 := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	hour := func(h int) time.Time { return t0.Add(time.Duration(h) * time.Hour) }

	slots := []slot{{"c", 8, 9}, {"a", 1, 3}, {"b", 2, 5}}
	groups := timeline.GroupIntervals(slots, func(s slot) (time.Time, time.Time) {
		return hour(s.start), hour(s.end)
	}, 0)

	for _, g := range groups {
		var names []string
		for _, s := range g.Items {
			names = append(names, s.name)
		}
		fmt.Println(g.Start.Hour(), g.End.Hour(), names)
	}
	// Output:
	// 1 5 [a b]
	// 8 9 [c]
}

func ExampleResult_FrameAt() {
	t0 := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)
	res := timeline.Compute(
		[]timeline.Track{{ID: "main"}},
		[]timeline.Event{
			{ID: "a", TrackID: "main", Start: t0, Duration: time.Hour},
			{ID: "b", TrackID: "main", Start: t0.Add(2 * time.Hour), Duration: time.Hour},
		},
		timeline.DefaultOptions(),
	)

	fmt.Println(res.FrameAt(t0.Add(30 * time.Minute)))
	fmt.Println(res.FrameAt(t0.Add(90 * time.Minute)))
	// Output:
	// 0 true
	// 1 false
}
