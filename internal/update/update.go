// Package update looks for a newer vlccord release.
package update

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

// ManifestURL points at the release manifest, a JSON document with a
// "version" field. Set at build time with
// -ldflags "-X tools.zach/dev/vlccord/internal/update.ManifestURL=...".
var ManifestURL string

const maxManifestSize = 64 << 10

// Release describes the newest published version.
type Release struct {
	Version string
	URL     string
}

// Latest fetches the manifest at url.
func Latest(ctx context.Context, url string) (Release, error) {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = 5 * time.Second
	client.Logger = nil

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Release{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Release{}, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
	if err != nil {
		return Release{}, fmt.Errorf("read manifest: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return Release{}, fmt.Errorf("manifest is not JSON")
	}
	doc := gjson.ParseBytes(body)
	rel := Release{Version: doc.Get("version").String(), URL: doc.Get("url").String()}
	if rel.Version == "" {
		return Release{}, fmt.Errorf("manifest has no version")
	}
	return rel, nil
}

// Check logs when the manifest names a version newer than current. It is
// silent on failure and does nothing when [ManifestURL] is unset.
func Check(ctx context.Context, current string) {
	if ManifestURL == "" {
		slog.Debug("skipping version check: no manifest URL")
		return
	}
	rel, err := Latest(ctx, ManifestURL)
	if err != nil {
		slog.Debug("version check failed", "error", err)
		return
	}
	if Newer(current, rel.Version) {
		slog.Info("new version available", "current", current, "latest", rel.Version, "url", rel.URL)
	}
}

// Newer reports whether latest is a higher version than current. A
// pre-release sorts before its release. Unparseable versions are never
// newer.
func Newer(current, latest string) bool {
	a, aPre, ok := parseVersion(current)
	if !ok {
		return false
	}
	b, bPre, ok := parseVersion(latest)
	if !ok {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return aPre && !bPre
}

// parseVersion reads "v1.2.3" or "1.2.3-dev+build".
func parseVersion(s string) (v [3]int, pre bool, ok bool) {
	s = strings.TrimPrefix(s, "v")
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s, pre = s[:i], true
	}
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return v, false, false
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || p[0] == '+' {
			return v, false, false
		}
		v[i] = n
	}
	return v, pre, true
}
