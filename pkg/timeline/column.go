package timeline

import (
	"slices"

	apperr "github.com/confgrid/confgrid/pkg/errors"
)

// MaxColumns returns the largest number of items in any frame, or 0.
func MaxColumns(frames []Frame) int {
	n := 0
	for _, f := range frames {
		n = max(n, len(f.Items))
	}
	return n
}

// AssignColumns gives every item a column in [0, maxColumns).
//
// The first frame is laid out by track priority, then ID. In each later
// frame a track present in the previous frame keeps its column; the
// remaining tracks, again ordered by priority and ID, take the lowest free
// columns. A track that skips a frame is treated as new when it returns.
//
// maxColumns must be at least MaxColumns(frames). If a frame runs out of free
// columns AssignColumns panics; this indicates a caller bug, not bad input.
//
// The input frames are not modified. Items of each returned frame are sorted
// by column.
func AssignColumns(frames []Frame, maxColumns int) []Frame {
	out := make([]Frame, 0, len(frames))
	var prev map[string]int
	for i, f := range frames {
		next := assignFrame(f, prev, maxColumns, i)
		prev = make(map[string]int, len(next.Items))
		for _, it := range next.Items {
			prev[it.Session.Track.ID] = it.Column
		}
		out = append(out, next)
	}
	return out
}

func assignFrame(f Frame, prev map[string]int, maxColumns, index int) Frame {
	items := slices.Clone(f.Items)
	used := make(map[int]bool, len(items))
	var pending []int
	for i := range items {
		if col, ok := prev[items[i].Session.Track.ID]; ok {
			items[i].Column = col
			used[col] = true
			continue
		}
		items[i].Column = Unassigned
		pending = append(pending, i)
	}

	slices.SortStableFunc(pending, func(a, b int) int {
		return compareTracks(items[a].Session.Track, items[b].Session.Track)
	})

	free := make([]int, 0, maxColumns)
	for c := 0; c < maxColumns; c++ {
		if !used[c] {
			free = append(free, c)
		}
	}
	if len(pending) > len(free) {
		panic(apperr.New(apperr.ErrCodeInternal,
			"frame %d: %d unplaced tracks but only %d free columns (max columns %d)",
			index, len(pending), len(free), maxColumns))
	}
	for n, i := range pending {
		items[i].Column = free[n]
	}

	slices.SortFunc(items, func(a, b AssignedSession) int {
		return a.Column - b.Column
	})
	return Frame{Start: f.Start, End: f.End, Items: items}
}
