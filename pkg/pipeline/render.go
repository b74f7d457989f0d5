package pipeline

import (
	"bytes"
	"fmt"

	"github.com/confgrid/confgrid/pkg/schedule"
)

// Render encodes a layout in every format of opts.Formats.
func Render(l schedule.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var buf bytes.Buffer
		if err := schedule.EncodeLayout(&buf, l, format); err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = buf.Bytes()
	}
	return artifacts, nil
}
