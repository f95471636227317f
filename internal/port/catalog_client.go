package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

// CatalogClient reads products from the catalog service.
type CatalogClient interface {
	// FetchProduct fails with domain.ErrUpstream, additionally wrapping
	// domain.ErrNotFound when the catalog answered 404
	FetchProduct(ctx context.Context, id string) (domain.Product, error)
}
