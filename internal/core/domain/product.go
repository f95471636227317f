package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const maxProductNameLength = 200

type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	CreatedAt time.Time
}

// NewProduct trims the name and validates every field. The ID is left for the
// caller to assign.
func NewProduct(name string, price decimal.Decimal, quantity int, now time.Time) (Product, error) {
	p := Product{
		Name:      strings.TrimSpace(name),
		Price:     price,
		Quantity:  quantity,
		CreatedAt: now.UTC(),
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (p Product) Validate() error {
	if p.Name == "" {
		return invalid("name", "must not be empty")
	}
	if utf8.RuneCountInString(p.Name) > maxProductNameLength {
		return invalid("name", "must be at most 200 characters")
	}
	if p.Price.IsNegative() {
		return invalid("price", "must be non-negative")
	}
	if p.Quantity < 0 {
		return invalid("quantity", "must be non-negative")
	}
	return nil
}
