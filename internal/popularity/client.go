package popularity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Pirikara/pipgate/internal/logger"
	"github.com/Pirikara/pipgate/internal/resolve"
)

// DefaultBaseURL is the public download-stats service endpoint.
const DefaultBaseURL = "https://pypistats.org/api"

const requestTimeout = 10 * time.Second

// Client fetches recent download counts from the stats service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a client for the given API base URL, falling back to
// the public endpoint when the URL is empty.
func NewClient(baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		log: log,
	}
}

// recentResponse mirrors the service's recent-downloads payload.
type recentResponse struct {
	Data struct {
		LastDay   int64 `json:"last_day"`
		LastWeek  int64 `json:"last_week"`
		LastMonth int64 `json:"last_month"`
	} `json:"data"`
	Package string `json:"package"`
	Type    string `json:"type"`
}

// Fetch retrieves recent download counts for a package. Requests are
// bounded by the client timeout and are not retried; failures come back
// as a NetworkError.
func (c *Client) Fetch(ctx context.Context, name string) (Stats, error) {
	canonical := resolve.CanonicalName(name)
	url := fmt.Sprintf("%s/packages/%s/recent", c.baseURL, canonical)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug("popularity_fetch", "querying stats service", map[string]interface{}{
		"package": canonical,
		"url":     url,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Stats{}, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Stats{}, &NetworkError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var payload recentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Stats{}, &NetworkError{URL: url, Err: fmt.Errorf("decode response: %w", err)}
	}
	if payload.Data.LastDay < 0 || payload.Data.LastWeek < 0 || payload.Data.LastMonth < 0 {
		return Stats{}, &NetworkError{URL: url, Err: fmt.Errorf("negative download count in response")}
	}

	stats := Stats{
		Package:   payload.Package,
		LastDay:   payload.Data.LastDay,
		LastWeek:  payload.Data.LastWeek,
		LastMonth: payload.Data.LastMonth,
		FetchedAt: time.Now().UTC(),
	}
	if stats.Package == "" {
		stats.Package = canonical
	}
	return stats, nil
}

// NetworkError wraps a failed stats service request.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("stats request %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
