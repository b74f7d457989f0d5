package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/confgrid/confgrid/pkg/buildinfo"
	apperr "github.com/confgrid/confgrid/pkg/errors"
	"github.com/confgrid/confgrid/pkg/pipeline"
	"github.com/confgrid/confgrid/pkg/schedule"
)

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

// handleLayout handles POST /v1/layout
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = formatFromContentType(r.Header.Get("Content-Type"))
	}
	s.serveLayout(w, r, format)
}

// handleLayoutICS handles POST /v1/layout/ics
func (s *Server) handleLayoutICS(w http.ResponseWriter, r *http.Request) {
	s.serveLayout(w, r, schedule.FormatICS)
}

func (s *Server) serveLayout(w http.ResponseWriter, r *http.Request, format string) {
	opts, err := s.options(r, format)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, pipeline.MaxSourceSize)
	opts.Data, err = io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, string(apperr.ErrCodeInvalidInput), "schedule exceeds size limit")
			return
		}
		writeError(w, r, http.StatusBadRequest, string(apperr.ErrCodeInvalidInput), "read body: "+err.Error())
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			opts.Logger.Error("layout failed", "error", err)
		}
		writeAppError(w, r, err)
		return
	}

	output := opts.Formats[0]
	w.Header().Set("Content-Type", contentTypes[output])
	w.Header().Set("X-Cache-Layout", hitOrMiss(res.CacheInfo.LayoutHit))
	w.Header().Set("X-Layout-Frames", strconv.Itoa(res.Stats.FrameCount))
	w.Header().Set("X-Layout-Dropped", strconv.Itoa(res.Stats.Dropped))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[output])
}

// options builds pipeline options from the server defaults and the query.
func (s *Server) options(r *http.Request, format string) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Source:      "request",
		InputFormat: format,
		Timezone:    s.defaults.Timezone,
		Verify:      q.Get("verify") == "true",
		Logger:      s.logger.With("request_id", RequestIDFromContext(r.Context())),
	}
	if format == "" {
		return opts, apperr.New(apperr.ErrCodeUnsupported, "cannot infer schedule format from Content-Type %q, set ?format=", r.Header.Get("Content-Type"))
	}

	var err error
	if opts.TrackMergeGap, err = apperr.ParseMergeGap("track_gap", q.Get("track_gap"), s.defaults.TrackMergeGap); err != nil {
		return opts, err
	}
	if opts.FrameMergeGap, err = apperr.ParseMergeGap("frame_gap", q.Get("frame_gap"), s.defaults.FrameMergeGap); err != nil {
		return opts, err
	}
	if tz := q.Get("tz"); tz != "" {
		opts.Timezone = tz
	}

	output := q.Get("output")
	if output == "" {
		output = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(output); err != nil {
		return opts, err
	}
	opts.Formats = []string{output}
	return opts, nil
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatYAML: "application/yaml",
}

// formatFromContentType maps a media type to a schedule format.
func formatFromContentType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	switch mt {
	case "application/json":
		return schedule.FormatJSON
	case "application/yaml", "application/x-yaml", "text/yaml":
		return schedule.FormatYAML
	case "application/toml":
		return schedule.FormatTOML
	case "text/calendar":
		return schedule.FormatICS
	}
	return ""
}

func hitOrMiss(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case apperr.IsClientError(err):
		return http.StatusBadRequest
	case apperr.Is(err, apperr.ErrCodeNotFound), apperr.Is(err, apperr.ErrCodeFileNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError writes err with the status derived from its code. Messages
// of internal errors are not exposed.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(apperr.GetCode(err))
	if code == "" {
		code = string(apperr.ErrCodeInternal)
	}
	msg := apperr.UserMessage(err)
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeError(w, r, status, code, msg)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, errorResponse{
		Code:      code,
		Message:   msg,
		RequestID: RequestIDFromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
