package sheet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
)

const cacheKey = "sheet_csv"

// FetcherConfig holds the upstream feed settings.
type FetcherConfig struct {
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Fetcher downloads the published CSV export. Responses are cached for a
// short TTL so a burst of refresh clicks doesn't hammer the sheet
// endpoint; the TTL is well below the cadence at which new form
// submissions arrive.
type Fetcher struct {
	url    string
	client *http.Client
	cache  *cache.Cache
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	return &Fetcher{
		url:    cfg.URL,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}
}

// Fetch returns the raw CSV text of the sheet export.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	if cached, found := f.cache.Get(cacheKey); found {
		return cached.(string), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build sheet request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch sheet data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sheet endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read sheet response: %w", err)
	}

	csvText := string(body)
	f.cache.SetDefault(cacheKey, csvText)
	return csvText, nil
}
