package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yaffw/watchstore/src/internal/domain"
)

// maxCatalogBytes bounds how much of a response body is decoded.
const maxCatalogBytes = 8 << 20

// HTTPCatalog fetches the catalog as a JSON array of videos from a single URL.
type HTTPCatalog struct {
	url    string
	client *http.Client
}

func NewHTTPCatalog(url string, timeout time.Duration) *HTTPCatalog {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPCatalog{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPCatalog) FetchCatalog(ctx context.Context) ([]domain.Video, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned %d", resp.StatusCode)
	}

	var videos []domain.Video
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCatalogBytes)).Decode(&videos); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	// Entries without an ID cannot be tracked.
	out := videos[:0]
	for _, v := range videos {
		if v.ID != "" {
			out = append(out, v)
		}
	}
	return out, nil
}
