package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperr "github.com/confgrid/confgrid/pkg/errors"
	"github.com/confgrid/confgrid/pkg/timeline"
)

// =============================================================================
// Layout - Serialized Layout Result
// =============================================================================

// Layout is the serialization format of a computed schedule layout.
//
// Frames are ordered by start; inside a frame items are ordered by column.
// Every item's events are ordered by start.
type Layout struct {
	Name       string `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	MaxColumns int    `json:"max_columns" yaml:"max_columns" bson:"max_columns"`

	// Merge gaps used to compute the layout, in seconds.
	TrackMergeGapSeconds int64 `json:"track_merge_gap_seconds" yaml:"track_merge_gap_seconds" bson:"track_merge_gap_seconds"`
	FrameMergeGapSeconds int64 `json:"frame_merge_gap_seconds" yaml:"frame_merge_gap_seconds" bson:"frame_merge_gap_seconds"`

	Tracks   []Track         `json:"tracks" yaml:"tracks" bson:"tracks"`
	Frames   []LayoutFrame   `json:"frames" yaml:"frames" bson:"frames"`
	Warnings []LayoutWarning `json:"warnings,omitempty" yaml:"warnings,omitempty" bson:"warnings,omitempty"`
}

// LayoutFrame is one frame of a layout.
type LayoutFrame struct {
	Start time.Time    `json:"start" yaml:"start" bson:"start"`
	End   time.Time    `json:"end" yaml:"end" bson:"end"`
	Items []LayoutItem `json:"items" yaml:"items" bson:"items"`
}

// LayoutItem is one track's session placed in a column.
type LayoutItem struct {
	Column int           `json:"column" yaml:"column" bson:"column"`
	Track  string        `json:"track" yaml:"track" bson:"track"`
	Start  time.Time     `json:"start" yaml:"start" bson:"start"`
	End    time.Time     `json:"end" yaml:"end" bson:"end"`
	Events []LayoutEvent `json:"events" yaml:"events" bson:"events"`
}

// LayoutEvent is an event inside a session.
type LayoutEvent struct {
	ID    string    `json:"id" yaml:"id" bson:"id"`
	Title string    `json:"title,omitempty" yaml:"title,omitempty" bson:"title,omitempty"`
	Start time.Time `json:"start" yaml:"start" bson:"start"`
	End   time.Time `json:"end" yaml:"end" bson:"end"`
}

// LayoutWarning reports an event that was left out of the layout.
type LayoutWarning struct {
	Code    string `json:"code" yaml:"code" bson:"code"`
	EventID string `json:"event_id" yaml:"event_id" bson:"event_id"`
	TrackID string `json:"track_id" yaml:"track_id" bson:"track_id"`
	Message string `json:"message" yaml:"message" bson:"message"`
}

// NewLayout builds a Layout from a result computed over s. Titles and track
// metadata come from s, which may be nil.
func NewLayout(s *Schedule, res timeline.Result, opts timeline.Options) Layout {
	l := Layout{
		MaxColumns:           res.MaxColumns,
		TrackMergeGapSeconds: int64(opts.TrackMergeGap / time.Second),
		FrameMergeGapSeconds: int64(opts.FrameMergeGap / time.Second),
		Frames:               make([]LayoutFrame, len(res.Frames)),
	}

	titles := make(map[string]string)
	if s != nil {
		l.Name = s.Name
		l.Tracks = append([]Track(nil), s.Tracks...)
		for _, e := range s.Events {
			if e.Title != "" {
				titles[e.ID] = e.Title
			}
		}
	}

	for i, f := range res.Frames {
		lf := LayoutFrame{Start: f.Start, End: f.End, Items: make([]LayoutItem, len(f.Items))}
		for j, it := range f.Items {
			li := LayoutItem{
				Column: it.Column,
				Track:  it.Session.Track.ID,
				Start:  it.Session.Start,
				End:    it.Session.End,
				Events: make([]LayoutEvent, len(it.Session.Events)),
			}
			for k, e := range it.Session.Events {
				li.Events[k] = LayoutEvent{ID: e.ID, Title: titles[e.ID], Start: e.Start, End: e.End()}
			}
			lf.Items[j] = li
		}
		l.Frames[i] = lf
	}

	for _, w := range res.Warnings {
		l.Warnings = append(l.Warnings, LayoutWarning{
			Code:    string(w.Code),
			EventID: w.EventID,
			TrackID: w.TrackID,
			Message: w.Message,
		})
	}
	return l
}

// Result converts the layout back into a timeline.Result. Tracks missing
// from l.Tracks are reconstructed with their ID only.
func (l Layout) Result() timeline.Result {
	tracks := make(map[string]timeline.Track, len(l.Tracks))
	for _, t := range l.Tracks {
		tracks[t.ID] = timeline.Track{ID: t.ID, Name: t.Name, Priority: t.Priority}
	}

	res := timeline.Result{MaxColumns: l.MaxColumns, Frames: make([]timeline.Frame, len(l.Frames))}
	for i, lf := range l.Frames {
		f := timeline.Frame{Start: lf.Start, End: lf.End, Items: make([]timeline.AssignedSession, len(lf.Items))}
		for j, li := range lf.Items {
			tr, ok := tracks[li.Track]
			if !ok {
				tr = timeline.Track{ID: li.Track}
			}
			sess := timeline.Session{Track: tr, Start: li.Start, End: li.End, Events: make([]timeline.Event, len(li.Events))}
			for k, e := range li.Events {
				sess.Events[k] = timeline.Event{ID: e.ID, TrackID: li.Track, Start: e.Start, Duration: e.End.Sub(e.Start)}
			}
			f.Items[j] = timeline.AssignedSession{Session: sess, Column: li.Column}
		}
		res.Frames[i] = f
	}
	for _, w := range l.Warnings {
		res.Warnings = append(res.Warnings, timeline.Warning{
			Code:    timeline.WarningCode(w.Code),
			EventID: w.EventID,
			TrackID: w.TrackID,
			Message: w.Message,
		})
	}
	return res
}

// Options returns the merge gaps the layout was computed with.
func (l Layout) Options() timeline.Options {
	return timeline.Options{
		TrackMergeGap: time.Duration(l.TrackMergeGapSeconds) * time.Second,
		FrameMergeGap: time.Duration(l.FrameMergeGapSeconds) * time.Second,
	}
}

// Title returns the title of the event with the given ID, or the ID itself.
func (l Layout) Title(eventID string) string {
	for _, f := range l.Frames {
		for _, it := range f.Items {
			for _, e := range it.Events {
				if e.ID == eventID && e.Title != "" {
					return e.Title
				}
			}
		}
	}
	return eventID
}

// TrackName returns the display name of a track, falling back to its ID.
func (l Layout) TrackName(id string) string {
	for _, t := range l.Tracks {
		if t.ID == id && t.Name != "" {
			return t.Name
		}
	}
	return id
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// LayoutFormats lists the formats a layout can be written in.
var LayoutFormats = []string{FormatJSON, FormatYAML}

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// EncodeLayout writes l in the given format (json or yaml).
func EncodeLayout(w io.Writer, l Layout, format string) error {
	switch format {
	case FormatJSON:
		data, err := MarshalLayout(l)
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(l); err != nil {
			return err
		}
		return enc.Close()
	default:
		return apperr.New(apperr.ErrCodeUnsupported, "unsupported layout format %q", format)
	}
}

// UnmarshalLayout deserializes JSON bytes into a Layout and checks that the
// frames form a valid layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	return DecodeLayout(bytes.NewReader(data), FormatJSON)
}

// DecodeLayout reads a layout in the given format and checks that the frames
// form a valid layout.
func DecodeLayout(r io.Reader, format string) (Layout, error) {
	var l Layout
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&l); err != nil {
			return Layout{}, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "unmarshal layout")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&l); err != nil {
			return Layout{}, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "unmarshal layout")
		}
	default:
		return Layout{}, apperr.New(apperr.ErrCodeUnsupported, "unsupported layout format %q", format)
	}

	if err := timeline.Validate(l.Result(), nil); err != nil {
		return Layout{}, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "inconsistent layout")
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to path, choosing JSON or YAML by extension.
func WriteLayoutFile(l Layout, path string) error {
	format, err := layoutFormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := EncodeLayout(&buf, l, format); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// ReadLayoutFile reads a Layout from a JSON or YAML file.
func ReadLayoutFile(path string) (Layout, error) {
	format, err := layoutFormatFromPath(path)
	if err != nil {
		return Layout{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layout{}, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "layout %s not found", path)
		}
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()
	return DecodeLayout(f, format)
}

// IsLayoutPath reports whether path names a layout file ("*.layout.json",
// "*.layout.yaml").
func IsLayoutPath(path string) bool {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.HasSuffix(base, ".layout")
}

// LayoutPath returns the layout file name for a schedule path:
// "program.yaml" becomes "program.layout.<format>".
func LayoutPath(schedulePath, format string) string {
	dir := filepath.Dir(schedulePath)
	base := strings.TrimSuffix(filepath.Base(schedulePath), filepath.Ext(schedulePath))
	return filepath.Join(dir, base+".layout."+format)
}

func layoutFormatFromPath(path string) (string, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return "", err
	}
	if format != FormatJSON && format != FormatYAML {
		return "", apperr.New(apperr.ErrCodeUnsupported, "layouts can only be stored as json or yaml, not %s", format)
	}
	return format, nil
}
