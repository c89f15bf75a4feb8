package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	httpclient "github.com/trendscout/research-service/internal/http"
	"github.com/trendscout/research-service/internal/http/ratelimit"
	"github.com/trendscout/research-service/internal/scoring"
)

// ClientConfig holds the search provider connection settings. The
// provider is a RapidAPI-hosted marketplace search gateway.
type ClientConfig struct {
	BaseURL   string
	APIKey    string
	APIHost   string
	RateLimit *ratelimit.PartialConfig
}

// Client fetches raw product records from the search provider and
// normalizes them before anything downstream sees them.
type Client struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
	apiHost string
}

// NewClient creates a search client.
func NewClient(cfg ClientConfig) *Client {
	rlCfg := ratelimit.DefaultConfig()
	if cfg.RateLimit != nil {
		rlCfg = ratelimit.WithOverrides(*cfg.RateLimit)
	}
	return &Client{
		http:    httpclient.NewClient(rlCfg),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		apiHost: cfg.APIHost,
	}
}

// Configured reports whether a provider credential is present.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.baseURL != ""
}

// Search queries the provider and returns normalized products. Records
// failing the drop rule never leave this method; the caller only ever
// sees valid canonical records.
func (c *Client) Search(ctx context.Context, query string, page int) ([]scoring.Product, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("search provider not configured")
	}
	if page < 1 {
		page = 1
	}

	u := fmt.Sprintf("%s/item_search?q=%s&page=%d", c.baseURL, url.QueryEscape(query), page)

	header := http.Header{}
	header.Set("X-RapidAPI-Key", c.apiKey)
	if c.apiHost != "" {
		header.Set("X-RapidAPI-Host", c.apiHost)
	}

	body, err := c.http.GetBytes(ctx, u, header)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	items := ExtractItems(body)
	products := make([]scoring.Product, 0, len(items))
	dropped := 0
	for _, item := range items {
		p, ok := Normalize(item)
		if !ok {
			dropped++
			continue
		}
		products = append(products, p)
	}

	slog.Info("search results normalized",
		"query", query,
		"received", len(items),
		"kept", len(products),
		"dropped", dropped)

	return products, nil
}
