package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// CatalogService owns product records.
type CatalogService struct {
	repo   port.ProductRepository
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func NewCatalogService(repo port.ProductRepository, opts ...Option) *CatalogService {
	o := buildOptions(opts)
	return &CatalogService{
		repo:   repo,
		logger: o.logger,
		now:    o.now,
		newID:  o.newID,
	}
}

func (s *CatalogService) Create(ctx context.Context, name string, price decimal.Decimal, quantity int) (domain.Product, error) {
	product, err := domain.NewProduct(name, price, quantity, s.now())
	if err != nil {
		return domain.Product{}, err
	}
	product.ID = s.newID()

	if err := s.repo.SaveProduct(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to save product", slog.String("product.id", product.ID), slog.String("error", err.Error()))
		return domain.Product{}, fmt.Errorf("save product: %w", err)
	}
	s.logger.InfoContext(ctx, "product created", slog.String("product.id", product.ID), slog.String("name", product.Name))
	return product, nil
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list products", slog.String("error", err.Error()))
		return nil, fmt.Errorf("list products: %w", err)
	}
	s.logger.DebugContext(ctx, "products listed", slog.Int("count", len(products)))
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return product, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "product deleted", slog.String("product.id", id))
	return nil
}
