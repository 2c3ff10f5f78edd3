// config.go loads data/themes.json. Every theme prefix gets one full icon
// set, and a theme inherits any field it leaves empty from the defaults.

package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// Style holds the colors and dimensions of one icon set.
type Style struct {
	// BgColor is the background hex color (e.g. "#FF8800").
	BgColor string `json:"bg_color,omitempty"`
	// FgColor is the glyph hex color.
	FgColor string `json:"fg_color,omitempty"`
	// Size is the square image dimension in pixels.
	Size int `json:"size,omitempty"`
	// FontSize is the text size of the vlc_icon label in points at 72 DPI.
	FontSize int `json:"font_size,omitempty"`
}

// ThemeData is the top-level structure of themes.json.
type ThemeData struct {
	// Font is a local font path relative to the repo root.
	Font string `json:"font,omitempty"`
	// FontFallback is a Google Fonts spec used when Font is missing.
	FontFallback string `json:"font_fallback,omitempty"`
	// Defaults are inherited by every theme.
	Defaults Style `json:"defaults"`
	// Themes maps the asset key prefix (display.theme) to its overrides.
	// The empty key is the default icon set.
	Themes map[string]Style `json:"themes"`
}

// Resolved returns the style for theme with the defaults applied.
func (d *ThemeData) Resolved(theme string) Style {
	s := d.Defaults
	o := d.Themes[theme]
	if o.BgColor != "" {
		s.BgColor = o.BgColor
	}
	if o.FgColor != "" {
		s.FgColor = o.FgColor
	}
	if o.Size != 0 {
		s.Size = o.Size
	}
	if o.FontSize != 0 {
		s.FontSize = o.FontSize
	}
	return s
}

// LoadThemeData reads and validates a themes.json file.
func LoadThemeData(path string) (*ThemeData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var td ThemeData
	if err := json.Unmarshal(data, &td); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(td.Themes) == 0 {
		return nil, fmt.Errorf("%s defines no themes", path)
	}
	for name := range td.Themes {
		if s := td.Resolved(name); s.Size <= 0 {
			return nil, fmt.Errorf("theme %q: size must be positive", name)
		}
	}
	return &td, nil
}
