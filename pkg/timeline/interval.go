package timeline

import (
	"slices"
	"time"
)

// Group is a maximal run of intervals merged by GroupIntervals.
type Group[T any] struct {
	Start time.Time // start of the first item
	End   time.Time // latest end across items
	Items []T       // ascending by start
}

// GroupIntervals merges items into maximal runs.
//
// Items are stably sorted by start. Walking them in order, an item joins the
// current group when it starts strictly before the group's end plus gap;
// otherwise it opens a new group. Items with equal starts keep their input
// order. The input slice is not modified.
func GroupIntervals[T any](items []T, span func(T) (start, end time.Time), gap time.Duration) []Group[T] {
	if len(items) == 0 {
		return nil
	}
	if gap < 0 {
		gap = 0
	}

	type spanned struct {
		item       T
		start, end time.Time
	}
	sorted := make([]spanned, len(items))
	for i, it := range items {
		s, e := span(it)
		sorted[i] = spanned{item: it, start: s, end: e}
	}
	slices.SortStableFunc(sorted, func(a, b spanned) int {
		return a.start.Compare(b.start)
	})

	var groups []Group[T]
	cur := Group[T]{Start: sorted[0].start, End: sorted[0].end, Items: []T{sorted[0].item}}
	for _, s := range sorted[1:] {
		if s.start.Before(cur.End.Add(gap)) {
			cur.Items = append(cur.Items, s.item)
			if s.end.After(cur.End) {
				cur.End = s.end
			}
			continue
		}
		groups = append(groups, cur)
		cur = Group[T]{Start: s.start, End: s.end, Items: []T{s.item}}
	}
	return append(groups, cur)
}

func eventSpan(e Event) (time.Time, time.Time) { return e.Start, e.End() }

func sessionSpan(s Session) (time.Time, time.Time) { return s.Start, s.End }
