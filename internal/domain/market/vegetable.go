package market

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Vegetable is one catalog entry. Name is the catalog key and is kept
// lower-cased so uniqueness is case-insensitive.
type Vegetable struct {
	Name  string
	Price decimal.Decimal
	Cost  decimal.Decimal
	Stock int
}

// NormalizeName maps user input onto the catalog key.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func NewVegetable(name string, price, cost decimal.Decimal, stock int) (Vegetable, error) {
	key := NormalizeName(name)
	if key == "" {
		return Vegetable{}, ErrInvalidValue
	}
	if price.IsNegative() || cost.IsNegative() || stock < 0 {
		return Vegetable{}, ErrInvalidValue
	}
	return Vegetable{
		Name:  key,
		Price: price,
		Cost:  cost,
		Stock: stock,
	}, nil
}

// InStock reports whether the vegetable can appear on an order right now.
func (v Vegetable) InStock() bool {
	return v.Stock > 0
}
