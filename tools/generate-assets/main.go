// gen-assets renders the Discord presence icons for every theme.
//
// Reads data/themes.json and writes {theme}{icon}.png into the output
// directory for vlc_icon, play_icon, pause_icon and stop_icon. The file
// names match the asset keys the daemon sends, so the output can be
// uploaded to the Discord application as is.
//
// The vlc_icon label font comes from "font" (local path) or, failing
// that, "font_fallback" (e.g. "google:Inter:800").
//
// Usage:
//
//	cd tools/generate-assets && go run .
//	cd tools/generate-assets && go run . -themes ../../data/themes.json -out ../../assets/discord
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/image/font/opentype"
)

func main() {
	themesFile := flag.String("themes", "../../data/themes.json", "Path to themes.json")
	outDir := flag.String("out", "../../assets/discord", "Output directory")
	flag.Parse()

	repoRoot, err := filepath.Abs(filepath.Join(filepath.Dir(*themesFile), ".."))
	if err != nil {
		fatalf("resolve repo root: %v", err)
	}

	td, err := LoadThemeData(*themesFile)
	if err != nil {
		fatalf("load themes: %v", err)
	}

	fontData, err := resolveFont(td, repoRoot, filepath.Join(repoRoot, "assets", "fonts", ".cache"))
	if err != nil {
		fatalf("%v", err)
	}
	otFont, err := opentype.Parse(fontData)
	if err != nil {
		fatalf("parse font: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fatalf("create output dir: %v", err)
	}

	themes := make([]string, 0, len(td.Themes))
	for name := range td.Themes {
		themes = append(themes, name)
	}
	slices.Sort(themes)

	total := 0
	for _, theme := range themes {
		fmt.Printf("[%s]\n", displayTheme(theme))
		style := td.Resolved(theme)
		for _, icon := range Icons {
			png, err := RenderIcon(style, icon, otFont)
			if err != nil {
				fatalf("render %s%s: %v", theme, icon, err)
			}
			name := theme + icon + ".png"
			if err := os.WriteFile(filepath.Join(*outDir, name), png, 0o644); err != nil {
				fatalf("write %s: %v", name, err)
			}
			fmt.Printf("  %s\n", name)
			total++
		}
	}

	fmt.Printf("Done. Generated %d assets for %d themes.\n", total, len(themes))
}

func displayTheme(theme string) string {
	if theme == "" {
		return "default"
	}
	return theme
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// resolveFont loads the local font if present, then tries the Google Fonts
// fallback.
func resolveFont(td *ThemeData, repoRoot, cacheDir string) ([]byte, error) {
	if td.Font != "" {
		path := filepath.Join(repoRoot, td.Font)
		if data, err := os.ReadFile(path); err == nil {
			fmt.Printf("font: %s (local)\n", td.Font)
			return toSFNT(path, data)
		}
	}
	if family, weight, ok := ParseGoogleFontSpec(td.FontFallback); ok {
		fmt.Printf("font: %s wght@%s (Google Fonts)\n", family, weight)
		return FetchGoogleFont(td.FontFallback, cacheDir)
	}
	return nil, errors.New(`no font configured (set "font" or "font_fallback" in themes.json)`)
}
