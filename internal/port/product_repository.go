package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type ProductRepository interface {
	// SaveProduct writes the product hash and indexes it by creation time
	SaveProduct(ctx context.Context, product domain.Product) error

	// GetProduct returns domain.ErrNotFound when the id is unknown
	GetProduct(ctx context.Context, id string) (domain.Product, error)

	// ListProducts returns every product, oldest first
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// DeleteProduct hard-removes the product, domain.ErrNotFound if absent
	DeleteProduct(ctx context.Context, id string) error
}
