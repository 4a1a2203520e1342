package market

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateName = errors.New("vegetable name already exists")
	ErrNotFound      = errors.New("vegetable not found")
	ErrInvalidValue  = errors.New("invalid field value")
	ErrCorruptData   = errors.New("persisted data is corrupt")
)

// InsufficientStockError reports which vegetable could not cover the
// requested quantity. It matches errors.Is(err, ErrInsufficientStock).
type InsufficientStockError struct {
	Name      string
	Requested int
	Available int
}

var ErrInsufficientStock = errors.New("insufficient stock")

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
