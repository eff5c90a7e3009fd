// Package imagehost talks to the local image-hosting service that stores
// book cover files.  The service accepts a multipart upload and answers
// with the public URL of the stored image.
package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"
)

// Client uploads cover images over HTTP.  A zero base URL disables the
// client; Upload then reports an error and callers fall back to publishing
// without a cover.
type Client struct {
	baseURL string
	client  *http.Client
}

// ErrDisabled is returned when no image host is configured.
var ErrDisabled = errors.New("image host not configured")

// New builds a Client for the given base URL using a pooled HTTP client
// with a hard request timeout.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxConnsPerHost:     100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Upload posts the file as multipart form data to <base>/upload and returns
// the hosted URL.  There is no retry; a failed upload surfaces to the
// caller, which degrades to a failure envelope.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if c == nil || c.baseURL == "" {
		return "", ErrDisabled
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("image host upload failed: %s", resp.Status)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", errors.New("image host: empty url in response")
	}
	return out.URL, nil
}
