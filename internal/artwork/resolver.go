// Package artwork finds a cover image for the media being played.
//
// Sources are tried in order: a remote artwork URL reported by VLC, an
// upload of VLC's local artwork file, then an image search on the title.
// Every outcome, including failure, is cached for the life of the process.
package artwork

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"tools.zach/dev/vlccord/internal/classify"
)

// ErrNoArtwork is returned by a source that ran but found nothing.
var ErrNoArtwork = errors.New("no artwork found")

// Request describes the media to find artwork for.
type Request struct {
	// ArtworkURL is VLC's artwork_url metadata, either http(s) or file://.
	ArtworkURL string
	Activity   classify.Activity
	// Title is the cleaned display title used for searching.
	Title string
	// Secondary narrows the search: the artist for music, the release
	// year for video.
	Secondary string
}

// Options configures a [Resolver].
type Options struct {
	UploadURL     string
	SearchURL     string
	ThumbnailURL  string
	UploadTimeout time.Duration
	SearchTimeout time.Duration
	// UserAgent identifies upload requests.
	UserAgent string
}

// Resolver looks up artwork and caches results.
type Resolver struct {
	opts Options
	// searchHTTP retries idempotent lookups once. uploadHTTP never retries
	// since a POST the host already accepted would store the file twice.
	searchHTTP *retryablehttp.Client
	uploadHTTP *retryablehttp.Client
	goos       string

	uploads  *cache[string]
	searches *cache[searchKey]
}

// New returns a Resolver using opts.
func New(opts Options) *Resolver {
	search := retryablehttp.NewClient()
	search.RetryMax = 1
	search.RetryWaitMin = 200 * time.Millisecond
	search.RetryWaitMax = time.Second
	search.Logger = nil

	upload := retryablehttp.NewClient()
	upload.RetryMax = 0
	upload.Logger = nil

	return &Resolver{
		opts:       opts,
		searchHTTP: search,
		uploadHTTP: upload,
		goos:       runtime.GOOS,
		uploads:    newCache[string](),
		searches:   newCache[searchKey](),
	}
}

// Resolve returns an image URL for req, or fallback when no source
// produced one. It never fails; source errors are logged and skipped.
func (r *Resolver) Resolve(ctx context.Context, req Request, fallback string) string {
	if req.ArtworkURL != "" {
		if isRemote(req.ArtworkURL) {
			return req.ArtworkURL
		}
		if path, ok := localPath(req.ArtworkURL, r.goos); ok {
			url, err := r.uploadCached(ctx, path)
			if err == nil {
				return url
			}
			slog.Debug("artwork upload skipped", "path", path, "error", err)
		}
	}

	if req.Activity == classify.Listening || req.Activity == classify.Watching {
		url, err := r.searchCached(ctx, req)
		if err == nil {
			return url
		}
		slog.Debug("artwork search skipped", "title", req.Title, "error", err)
	}
	return fallback
}

// uploadCached uploads path once. A missing file is not cached since VLC
// may still be writing its artwork cache.
func (r *Resolver) uploadCached(ctx context.Context, path string) (string, error) {
	if url, ok := r.uploads.get(path); ok {
		if url == "" {
			return "", ErrNoArtwork
		}
		return url, nil
	}

	url, err := r.upload(ctx, path)
	if errors.Is(err, errMissingFile) {
		return "", err
	}
	if err != nil {
		slog.Warn("artwork upload failed", "path", path, "error", err)
	}
	r.uploads.put(path, url)
	return url, err
}

// searchCached searches once per (activity, title, secondary).
func (r *Resolver) searchCached(ctx context.Context, req Request) (string, error) {
	if req.Title == "" {
		return "", ErrNoArtwork
	}
	key := searchKey{Kind: req.Activity.String(), Title: req.Title, Secondary: req.Secondary}
	if url, ok := r.searches.get(key); ok {
		if url == "" {
			return "", ErrNoArtwork
		}
		return url, nil
	}

	url, err := r.search(ctx, req)
	if err != nil && !errors.Is(err, ErrNoArtwork) {
		slog.Warn("artwork search failed", "title", req.Title, "error", err)
	}
	r.searches.put(key, url)
	return url, err
}
