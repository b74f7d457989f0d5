package pipeline

import (
	"testing"
	"time"

	apperr "github.com/confgrid/confgrid/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"yaml", false},
		{"ics", true},
		{"toml", true},
		{"JSON", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"json", "yaml"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"json", "svg"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateInputFormat(t *testing.T) {
	for _, f := range []string{"json", "yaml", "toml", "ics"} {
		if err := ValidateInputFormat(f); err != nil {
			t.Errorf("ValidateInputFormat(%q) = %v", f, err)
		}
	}
	if err := ValidateInputFormat("xml"); !apperr.Is(err, apperr.ErrCodeUnsupported) {
		t.Errorf("ValidateInputFormat(xml) = %v, want %s", err, apperr.ErrCodeUnsupported)
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantCode   apperr.Code
		wantFormat string
	}{
		{"MissingData", Options{Source: "a.yaml"}, apperr.ErrCodeInvalidInput, ""},
		{"FormatFromSource", Options{Source: "program.yml", Data: []byte("x")}, "", "yaml"},
		{"ExplicitFormatWins", Options{Source: "upload", InputFormat: "ics", Data: []byte("x")}, "", "ics"},
		{"NoFormatNoSource", Options{Data: []byte("x")}, apperr.ErrCodeInvalidInput, ""},
		{"UnknownExtension", Options{Source: "a.xml", Data: []byte("x")}, apperr.ErrCodeUnsupported, ""},
		{"UnknownTimezone", Options{Source: "a.json", Data: []byte("x"), Timezone: "Mars/Olympus"}, apperr.ErrCodeInvalidInput, ""},
		{"TooLarge", Options{Source: "a.json", Data: make([]byte, MaxSourceSize+1)}, apperr.ErrCodeInvalidInput, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLoad()
			if tt.wantCode != "" {
				if !apperr.Is(err, tt.wantCode) {
					t.Fatalf("ValidateForLoad() = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateForLoad() = %v", err)
			}
			if tt.opts.InputFormat != tt.wantFormat {
				t.Errorf("InputFormat = %q, want %q", tt.opts.InputFormat, tt.wantFormat)
			}
			if tt.opts.Logger == nil {
				t.Error("Logger should be defaulted")
			}
		})
	}
}

func TestOptionsValidateForLayout(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.ValidateForLayout(); err != nil {
		t.Fatalf("Default options should pass: %v", err)
	}

	opts.TrackMergeGap = -1
	if err := opts.ValidateForLayout(); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("negative track gap error = %v", err)
	}

	opts = DefaultOptions()
	opts.FrameMergeGap = -1
	if err := opts.ValidateForLayout(); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("negative frame gap error = %v", err)
	}

	opts = DefaultOptions()
	opts.TrackMergeGap = 1500 * time.Millisecond
	if err := opts.ValidateForLayout(); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("sub-second track gap error = %v", err)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	topts := opts.TimelineOptions()
	if topts.TrackMergeGap != DefaultTrackMergeGap || topts.FrameMergeGap != DefaultFrameMergeGap {
		t.Errorf("TimelineOptions() = %+v", topts)
	}
	if got := opts.LayoutKeyOpts(); got.TrackMergeGap != DefaultTrackMergeGap {
		t.Errorf("LayoutKeyOpts() = %+v", got)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := DefaultOptions()
	opts.Source = "program.toml"
	opts.Data = []byte("name = 'x'")

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalFormat := opts.InputFormat
	originalFormats := len(opts.Formats)

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.InputFormat != originalFormat {
		t.Error("InputFormat changed on second call")
	}
	if len(opts.Formats) != originalFormats {
		t.Error("Formats changed on second call")
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("Formats should be [json], got %v", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should be defaulted")
	}
}
