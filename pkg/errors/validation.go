package errors

import (
	"strings"
	"time"
	"unicode"
)

// MaxIDLength bounds track and event identifiers.
const MaxIDLength = 256

// ValidateID validates a track or event identifier. kind names the entity in
// the error message ("track", "event").
//
// IDs end up in cache keys, file names and URLs, so the rules are
// conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - No surrounding whitespace
//   - Maximum length of MaxIDLength bytes
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidSchedule, "%s id cannot be empty", kind)
	}

	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidSchedule, "%s id too long (max %d characters)", kind, MaxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSchedule, "%s id %q contains invalid control characters", kind, id)
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidSchedule, "%s id %q has leading or trailing whitespace", kind, id)
	}

	return nil
}

// ValidateMergeGap rejects negative merge gaps and gaps that are not a whole
// number of seconds. name identifies the option in the error message.
func ValidateMergeGap(name string, d time.Duration) error {
	if d < 0 {
		return New(ErrCodeInvalidInput, "%s must not be negative, got %s", name, d)
	}
	if d%time.Second != 0 {
		return New(ErrCodeInvalidInput, "%s must be a whole number of seconds, got %s", name, d)
	}
	return nil
}

// ParseMergeGap parses a Go duration string ("5m", "90s") and validates it.
// An empty string yields def.
func ParseMergeGap(name, s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, Wrap(ErrCodeInvalidDuration, err, "invalid %s %q", name, s)
	}
	if err := ValidateMergeGap(name, d); err != nil {
		return 0, err
	}
	return d, nil
}

// ValidateTimezone checks that name is a location known to the time package.
// The empty string is accepted and means UTC.
func ValidateTimezone(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, Wrap(ErrCodeInvalidInput, err, "unknown timezone %q", name)
	}
	return loc, nil
}
