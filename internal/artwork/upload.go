package artwork

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/go-retryablehttp"
)

// maxUploadSize bounds the artwork file sent to the host.
const maxUploadSize = 8 << 20

var errMissingFile = errors.New("artwork file missing")

// upload posts the file at path as a multipart "file" field and returns
// the URL the host answers with.
func (r *Resolver) upload(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errMissingFile
		}
		return "", fmt.Errorf("stat artwork: %w", err)
	}
	if info.IsDir() || info.Size() == 0 {
		return "", ErrNoArtwork
	}
	if info.Size() > maxUploadSize {
		return "", fmt.Errorf("artwork is %d bytes (max %d)", info.Size(), maxUploadSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read artwork: %w", err)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s is %s", ErrNoArtwork, filepath.Base(path), mt.String())
	}

	body, contentType, err := multipartFile(filepath.Base(path), mt.String(), data)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.UploadTimeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, r.opts.UploadURL, body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if r.opts.UserAgent != "" {
		req.Header.Set("User-Agent", r.opts.UserAgent)
	}

	resp, err := r.uploadHTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload artwork: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload artwork: HTTP %d", resp.StatusCode)
	}
	url := strings.TrimSpace(string(text))
	if !isRemote(url) {
		return "", fmt.Errorf("upload host returned %q", url)
	}
	return url, nil
}

// multipartFile encodes data as the single form field "file".
func multipartFile(name, contentType string, data []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write form part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
