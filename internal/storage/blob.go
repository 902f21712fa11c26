package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/estatelink/backend/internal/config"
)

// BlobStore accepts uploaded files scoped by a bucket and object path and
// returns a publicly retrievable URL.
type BlobStore interface {
	Upload(ctx context.Context, bucket, path, contentType string, data []byte) (string, error)
}

// Client is a REST blob-store client authenticated with a service key.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates a blob-store client from configuration.
func NewClient(cfg config.StorageConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Upload stores an object and returns its public URL.
func (c *Client) Upload(ctx context.Context, bucket, path, contentType string, data []byte) (string, error) {
	url := fmt.Sprintf("%s/object/%s/%s", c.baseURL, bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("blob upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("blob upload returned %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Sprintf("%s/object/public/%s/%s", c.baseURL, bucket, path), nil
}
