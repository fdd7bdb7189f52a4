package imagehost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"recogstats/internal/httpx"

	_ "golang.org/x/image/webp"
)

const (
	maxImageBytes = 10 << 20
	// Decoders allocate from the header dimensions, not the payload size.
	maxImageSide   = 4096
	maxImagePixels = maxImageSide * maxImageSide
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrImageTooLarge    = errors.New("image dimensions too large")
)

// Client fetches record images. The image host rejects requests without
// the expected Referer.
type Client struct {
	http    *http.Client
	referer string
}

func NewClient(client *http.Client, referer string) *Client {
	if client == nil {
		client = httpx.ExternalHTTPClient()
	}
	return &Client{http: client, referer: referer}
}

// Fetch downloads and decodes one image.
func (c *Client) Fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.referer != "" {
		req.Header.Set("Referer", c.referer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching image %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w %d from %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("reading image %s: %w", url, err)
	}
	return decode(body, url)
}

// decode checks the declared dimensions before the full decode allocates
// the pixel buffer.
func decode(body []byte, url string) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decoding image header %s: %w", url, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxImageSide || cfg.Height > maxImageSide ||
		cfg.Width*cfg.Height > maxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d from %s", ErrImageTooLarge, cfg.Width, cfg.Height, url)
	}
	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", url, err)
	}
	return img, nil
}
