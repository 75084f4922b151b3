// Package qr fetches pre-rendered QR code images from a qrserver-style HTTP
// endpoint. The device is too small to render its own codes, so the bridge
// pulls a PNG and reduces it to a packed bitmap for the display.
package qr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"time"
)

const DefaultEndpoint = "https://api.qrserver.com/v1/create-qr-code/"

const defaultTimeout = 10 * time.Second

type Client struct {
	endpoint string
	client   *http.Client
}

func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
	}
}

// Fetch requests a size x size pixel QR code encoding text and decodes the
// PNG response.
func (c *Client) Fetch(ctx context.Context, text string, size int) (image.Image, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("Bad QR endpoint:\n%w", err)
	}
	q := u.Query()
	q.Set("data", text)
	q.Set("size", fmt.Sprintf("%dx%d", size, size))
	q.Set("format", "png")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("QR request failed:\n%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("QR endpoint returned %v", resp.Status)
	}

	i, err := png.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Couldn't decode QR image:\n%w", err)
	}
	return i, nil
}
