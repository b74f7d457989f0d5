package timeline

import (
	apperr "github.com/confgrid/confgrid/pkg/errors"
)

// Validate checks the structural guarantees of a Result: frames are ordered
// and disjoint, each track appears once per frame, columns are unique and
// within [0, MaxColumns), and a track present in consecutive frames keeps its
// column. If events is non-nil, Validate also checks that every event not in
// r.Dropped is placed exactly once.
//
// A non-nil error means Compute is broken; the error carries ErrCodeInternal.
func Validate(r Result, events []Event) error {
	if got := MaxColumns(r.Frames); got != r.MaxColumns {
		return invariant("max columns %d, largest frame has %d items", r.MaxColumns, got)
	}

	var prev map[string]int
	for i, f := range r.Frames {
		if f.End.Before(f.Start) {
			return invariant("frame %d ends before it starts", i)
		}
		if i > 0 && f.Start.Before(r.Frames[i-1].End) {
			return invariant("frame %d overlaps frame %d", i, i-1)
		}

		cols := make(map[int]string, len(f.Items))
		cur := make(map[string]int, len(f.Items))
		for _, it := range f.Items {
			id := it.Session.Track.ID
			if _, dup := cur[id]; dup {
				return invariant("frame %d: track %q appears twice", i, id)
			}
			if it.Column < 0 || it.Column >= r.MaxColumns {
				return invariant("frame %d: track %q column %d out of range [0, %d)", i, id, it.Column, r.MaxColumns)
			}
			if other, dup := cols[it.Column]; dup {
				return invariant("frame %d: tracks %q and %q share column %d", i, other, id, it.Column)
			}
			if was, ok := prev[id]; ok && was != it.Column {
				return invariant("frame %d: track %q moved from column %d to %d", i, id, was, it.Column)
			}
			cols[it.Column] = id
			cur[id] = it.Column
		}
		prev = cur
	}

	if events == nil {
		return nil
	}
	seen := make(map[string]int, len(events))
	for _, f := range r.Frames {
		for _, it := range f.Items {
			for _, e := range it.Session.Events {
				seen[e.ID]++
			}
		}
	}
	dropped := make(map[string]bool, len(r.Dropped))
	for _, e := range r.Dropped {
		dropped[e.ID] = true
	}
	for _, e := range events {
		if dropped[e.ID] {
			continue
		}
		if n := seen[e.ID]; n != 1 {
			return invariant("event %q placed %d times", e.ID, n)
		}
	}
	return nil
}

func invariant(format string, args ...any) error {
	return apperr.New(apperr.ErrCodeInternal, format, args...)
}
