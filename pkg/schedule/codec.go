package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	apperr "github.com/confgrid/confgrid/pkg/errors"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatICS  = "ics"
)

// Formats lists every schedule format in a stable order.
var Formats = []string{FormatJSON, FormatYAML, FormatTOML, FormatICS}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".ics", ".ical":
		return FormatICS, nil
	default:
		return "", apperr.New(apperr.ErrCodeUnsupported, "cannot infer schedule format from %q (want .json, .yaml, .toml or .ics)", path)
	}
}

// Read decodes a schedule, fills missing event IDs and validates it.
func Read(r io.Reader, format string) (*Schedule, error) {
	s, err := decode(r, format)
	if err != nil {
		return nil, err
	}
	s.FillIDs()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadFile reads a schedule from path, choosing the format by extension.
func ReadFile(path string) (*Schedule, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "schedule %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Write encodes s in the given format.
func Write(w io.Writer, s *Schedule, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(s)
	case FormatICS:
		return writeICS(w, s)
	default:
		return apperr.New(apperr.ErrCodeUnsupported, "unsupported schedule format %q", format)
	}
}

// Marshal encodes s in the given format.
func Marshal(s *Schedule, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, s, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes s to path, choosing the format by extension.
func WriteFile(s *Schedule, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(s, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func decode(r io.Reader, format string) (*Schedule, error) {
	var s Schedule
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "decode json schedule")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "decode yaml schedule")
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&s)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "decode toml schedule")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, apperr.New(apperr.ErrCodeInvalidFormat, "unknown toml keys: %v", undecoded)
		}
	case FormatICS:
		parsed, err := ParseICS(r, ICSOptions{})
		if err != nil {
			return nil, err
		}
		s = *parsed
	default:
		return nil, apperr.New(apperr.ErrCodeUnsupported, "unsupported schedule format %q", format)
	}
	return &s, nil
}
