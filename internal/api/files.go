package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dharsanguruparan/vdocsign/internal/apperr"
)

// Fetch downloads a document file by absolute URL. Files are served outside
// the API, so no bearer token is attached.
func (c *Client) Fetch(ctx context.Context, fileURL string) ([]byte, error) {
	const op = "fetch file"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Transport(op, 0, "Failed to download document.", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Transport(op, resp.StatusCode, "Failed to download document.", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Transport(op, resp.StatusCode, "Failed to download document.", err)
	}
	return data, nil
}
