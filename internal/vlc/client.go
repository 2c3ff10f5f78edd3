package vlc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ///////////////////////////////////////////////
// Sentinel Errors
// ///////////////////////////////////////////////

var (
	// ErrUnreachable means nothing accepted the connection: VLC is not
	// running or its web interface is disabled.
	ErrUnreachable = errors.New("vlc unreachable")
	// ErrUnauthorized means the web interface rejected the password.
	ErrUnauthorized = errors.New("vlc rejected password")
)

// maxStatusSize caps the status document read per request.
const maxStatusSize = 1 << 20

// ///////////////////////////////////////////////
// Client
// ///////////////////////////////////////////////

// Client fetches status snapshots from one VLC instance.
type Client struct {
	url      string
	password string
	http     *http.Client
}

// NewClient returns a Client for statusURL. VLC uses basic auth with an
// empty user name.
func NewClient(statusURL, password string, timeout time.Duration) *Client {
	return &Client{
		url:      statusURL,
		password: password,
		http:     &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves and parses the current status. Connection refusal is
// reported as [ErrUnreachable]; any other failure is transient.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	req.SetBasicAuth("", c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		if isConnRefused(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
		}
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch status: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStatusSize))
	if err != nil {
		return nil, fmt.Errorf("read status: %w", err)
	}
	return Parse(body)
}
