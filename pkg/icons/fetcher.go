package icons

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL serves the platform's community icon images.
const DefaultBaseURL = "https://cdn.cloudflare.steamstatic.com/steamcommunity/public/images/apps"

const maxIconBytes = 4 << 20

// HTTPFetcher downloads icons over HTTP from <base>/<gameID>/<key>.
type HTTPFetcher struct {
	BaseURL string
	GameID  uint64
	Client  *http.Client
}

// NewHTTPFetcher builds a fetcher for one game with a sane timeout.
func NewHTTPFetcher(baseURL string, gameID uint64) *HTTPFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPFetcher{
		BaseURL: baseURL,
		GameID:  gameID,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch retrieves one icon's bytes.
func (f *HTTPFetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	url := fmt.Sprintf("%s/%d/%s", f.BaseURL, f.GameID, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build icon request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch icon %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("icon %s: unexpected status %d", key, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read icon %s: %w", key, err)
	}
	return data, nil
}
