package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

// ProductCatalog is the catalog use-case surface. service.CatalogService
// implements it.
type ProductCatalog interface {
	Create(ctx context.Context, name string, price decimal.Decimal, quantity int) (domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type CreateProductRequest struct {
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *int             `json:"quantity"`
}

type ProductResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: p.Quantity,
	}
}

type CatalogHandler struct {
	catalog ProductCatalog
}

func NewCatalogHandler(catalog ProductCatalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// NewCatalogRouter serves the product API.
func NewCatalogRouter(catalog ProductCatalog, store Pinger, logger *slog.Logger) *gin.Engine {
	h := NewCatalogHandler(catalog)
	health := NewHealthHandler("product-api", "Product API is healthy", store, logger)

	router := newRouter("catalog", logger)
	router.GET("/", health.HealthCheck)
	router.GET("/products", h.ListProducts)
	router.POST("/products", h.CreateProduct)
	router.GET("/products/:id", h.GetProduct)
	router.DELETE("/products/:id", h.DeleteProduct)
	return router
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondProblem(c, ErrBadRequestProblem.WithDetail("invalid request body"))
		return
	}
	missing := map[string]string{}
	if req.Price == nil {
		missing["price"] = "is required"
	}
	if req.Quantity == nil {
		missing["quantity"] = "is required"
	}
	if len(missing) > 0 {
		respondProblem(c, ErrValidationProblem.WithDetail("missing required fields").WithExtension("fields", missing))
		return
	}

	product, err := h.catalog.Create(c.Request.Context(), req.Name, *req.Price, *req.Quantity)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(product))
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "product "+c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "product "+c.Param("id"))
		return
	}
	c.Status(http.StatusNoContent)
}
