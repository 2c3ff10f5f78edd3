package artwork

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"tools.zach/dev/vlccord/internal/classify"
)

// browserUserAgent is sent with searches; the result page is only served
// with thumbnails to browsers.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxSearchPage bounds how much of the result page is scanned.
const maxSearchPage = 2 << 20

// imageIDMarker precedes the first result's image id in the page markup.
var imageIDMarker = []byte("id=OIP.")

// search runs an image search for req and returns a thumbnail URL for the
// first result.
func (r *Resolver) search(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.SearchTimeout)
	defer cancel()

	hreq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, searchURL(r.opts.SearchURL, req), nil)
	if err != nil {
		return "", fmt.Errorf("build search request: %w", err)
	}
	hreq.Header.Set("User-Agent", browserUserAgent)

	resp, err := r.searchHTTP.Do(hreq)
	if err != nil {
		return "", fmt.Errorf("image search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image search: HTTP %d", resp.StatusCode)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchPage))
	if err != nil {
		return "", fmt.Errorf("read search page: %w", err)
	}
	id, ok := firstImageID(page)
	if !ok {
		return "", ErrNoArtwork
	}
	return thumbnailURL(r.opts.ThumbnailURL, id), nil
}

// searchURL builds the query "<title> <secondary> <suffix>".
func searchURL(base string, req Request) string {
	suffix := "movie poster"
	if req.Activity == classify.Listening {
		suffix = "song cover art"
	}
	terms := strings.Join(strings.Fields(req.Title+" "+req.Secondary+" "+suffix), " ")
	return base + "?q=" + url.QueryEscape(terms)
}

// firstImageID extracts "OIP.xxx" from the first "id=OIP.xxx" in page,
// ending at the next quote or ampersand.
func firstImageID(page []byte) (string, bool) {
	i := bytes.Index(page, imageIDMarker)
	if i < 0 {
		return "", false
	}
	rest := page[i+len("id="):]
	end := bytes.IndexAny(rest, `"&`)
	if end <= len("OIP.") {
		return "", false
	}
	return string(rest[:end]), true
}

func thumbnailURL(base, id string) string {
	return base + "?id=" + url.QueryEscape(id) + "&w=512&h=512&c=1"
}
