// color.go parses the hex colors used in themes.json.

package main

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
)

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA" into a color.NRGBA.
// The leading "#" is optional.
func ParseHexColor(s string) (color.NRGBA, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	switch len(raw) {
	case 3:
		return color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: 0xFF}, nil
	case 4:
		return color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: raw[3]}, nil
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: want 6 or 8 hex digits", s)
	}
}
