// google_fonts.go fetches fonts through the Google Fonts CSS API.
//
// Specs look like "google:FAMILY:WEIGHT" (e.g. "google:Inter:800"). The
// converted SFNT is cached on disk so later runs work offline.

package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tdewolff/font"
)

// fontURLRe matches url(https://fonts.gstatic.com/...) in the CSS response.
var fontURLRe = regexp.MustCompile(`url\((https://fonts\.gstatic\.com/[^)]+)\)`)

// modernUA makes the CSS API answer with WOFF2 sources.
const modernUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"

var fontHTTP = &http.Client{Timeout: 15 * time.Second}

// ParseGoogleFontSpec splits a "google:Family:Weight" spec.
func ParseGoogleFontSpec(spec string) (family, weight string, ok bool) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] != "google" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// FetchGoogleFont returns the SFNT bytes for spec, downloading and caching
// them in cacheDir on first use.
func FetchGoogleFont(spec, cacheDir string) ([]byte, error) {
	family, weight, ok := ParseGoogleFontSpec(spec)
	if !ok {
		return nil, fmt.Errorf("invalid google font spec %q: expected google:FAMILY:WEIGHT", spec)
	}

	cacheFile := filepath.Join(cacheDir, fmt.Sprintf("%s-%s.ttf", family, weight))
	if data, err := os.ReadFile(cacheFile); err == nil {
		return data, nil
	}

	css, err := get(fmt.Sprintf("https://fonts.googleapis.com/css2?family=%s:wght@%s", url.QueryEscape(family), weight), 1<<20)
	if err != nil {
		return nil, fmt.Errorf("google fonts css for %s wght@%s: %w", family, weight, err)
	}
	m := fontURLRe.FindSubmatch(css)
	if m == nil {
		return nil, fmt.Errorf("no font URL in google fonts css for %s wght@%s", family, weight)
	}
	fontURL := string(m[1])

	data, err := get(fontURL, 10<<20)
	if err != nil {
		return nil, fmt.Errorf("download font: %w", err)
	}
	if data, err = toSFNT(fontURL, data); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create font cache dir: %w", err)
	}
	if err := os.WriteFile(cacheFile, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "  warning: cache font: %v\n", err)
	}
	return data, nil
}

// get fetches u and returns at most limit bytes of a 200 response.
func get(u string, limit int64) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", modernUA)

	resp, err := fontHTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", u, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// toSFNT converts WOFF2 data to SFNT and passes anything else through.
// name is a path or URL whose extension hints at the format.
func toSFNT(name string, data []byte) ([]byte, error) {
	woff2 := strings.HasSuffix(strings.ToLower(name), ".woff2") ||
		(len(data) >= 4 && string(data[:4]) == "wOF2")
	if !woff2 {
		return data, nil
	}
	sfnt, err := font.ToSFNT(data)
	if err != nil {
		return nil, fmt.Errorf("convert woff2 to sfnt: %w", err)
	}
	return sfnt, nil
}
