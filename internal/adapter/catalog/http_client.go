// Package catalog is the order workflow's HTTP client for the catalog service.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

const DefaultTimeout = 10 * time.Second

// HTTPClient fetches products with a single GET per call and no retries.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

type productPayload struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// NewHTTPClient validates baseURL. A nil httpClient gets DefaultTimeout.
func NewHTTPClient(baseURL string, httpClient *http.Client) (*HTTPClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("catalog base URL is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("parse catalog base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPClient{baseURL: baseURL, httpClient: httpClient}, nil
}

func (c *HTTPClient) FetchProduct(ctx context.Context, id string) (domain.Product, error) {
	endpoint := c.baseURL + "/products/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: build request: %w", domain.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: call catalog: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return domain.Product{}, fmt.Errorf("%w: product %s: %w", domain.ErrUpstream, id, domain.ErrNotFound)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Product{}, fmt.Errorf("%w: catalog returned %s: %s",
			domain.ErrUpstream, resp.Status, strings.TrimSpace(string(body)))
	}

	var payload productPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Product{}, fmt.Errorf("%w: decode product: %w", domain.ErrUpstream, err)
	}
	if payload.ID == "" {
		payload.ID = id
	}
	return domain.Product{
		ID:       payload.ID,
		Name:     payload.Name,
		Price:    payload.Price,
		Quantity: payload.Quantity,
	}, nil
}

var _ port.CatalogClient = (*HTTPClient)(nil)
