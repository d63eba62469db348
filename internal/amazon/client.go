package amazon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

const defaultHost = "real-time-amazon-data.p.rapidapi.com"

// Product is one listing from the search API. Text fields are sanitized
// before they reach chat output since the upstream data can carry HTML.
type Product struct {
	ASIN     string `json:"asin"`
	Title    string `json:"product_title"`
	Price    string `json:"product_price"`
	Rating   string `json:"product_star_rating"`
	URL      string `json:"product_url"`
	Photo    string `json:"product_photo"`
	IsPrime  bool   `json:"is_prime"`
	Currency string `json:"currency"`
}

// SearchResult is the outcome of one product search.
type SearchResult struct {
	Query    string    `json:"query"`
	Country  string    `json:"country"`
	Products []Product `json:"products"`
}

// Client calls the RapidAPI Amazon data endpoint. It is only used by the
// shopping-assistance handlers, never by the orchestration core.
type Client struct {
	APIKey    string
	Host      string
	HTTP      *http.Client
	sanitizer *bluemonday.Policy
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:    apiKey,
		Host:      defaultHost,
		HTTP:      &http.Client{Timeout: 30 * time.Second},
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// SearchProduct searches for a single product. Only the first listing is
// requested to keep API usage down.
func (c *Client) SearchProduct(ctx context.Context, query, country string) (*SearchResult, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("product search API key not configured")
	}
	if country == "" {
		country = "US"
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	params.Set("country", strings.ToUpper(country))
	params.Set("limit", "1")

	endpoint := fmt.Sprintf("https://%s/search?%s", c.Host, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.APIKey)
	req.Header.Set("X-RapidAPI-Host", c.Host)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product search returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			Products []Product `json:"products"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	result := &SearchResult{
		Query:    query,
		Country:  strings.ToUpper(country),
		Products: payload.Data.Products,
	}
	for i := range result.Products {
		result.Products[i].Title = c.sanitizer.Sanitize(result.Products[i].Title)
	}
	return result, nil
}
