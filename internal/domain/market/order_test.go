package market

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder_ComputesTotals(t *testing.T) {
	placedAt := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	items := []LineItem{
		{Name: "tomato", Quantity: 3, UnitPrice: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(6)},
		{Name: "onion", Quantity: 2, UnitPrice: decimal.NewFromInt(5), UnitCost: decimal.NewFromInt(2)},
	}

	order, err := NewOrder(NewOrderID(placedAt), placedAt, items)

	require.NoError(t, err)
	assert.True(t, order.TotalRevenue().Equal(decimal.NewFromInt(40)), "revenue = 3*10 + 2*5")
	assert.True(t, order.TotalProfit().Equal(decimal.NewFromInt(18)), "profit = 3*4 + 2*3")
	assert.Equal(t, placedAt, order.PlacedAt())
	assert.Len(t, order.Items(), 2)
}

func TestNewOrder_Invalid(t *testing.T) {
	now := time.Now().UTC()

	_, err := NewOrder("", now, []LineItem{{Name: "tomato", Quantity: 1}})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = NewOrder(NewOrderID(now), now, nil)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = NewOrder(NewOrderID(now), now, []LineItem{{Name: "tomato", Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestOrder_ItemsReturnsCopy(t *testing.T) {
	now := time.Now().UTC()
	order, err := NewOrder(NewOrderID(now), now, []LineItem{
		{Name: "tomato", Quantity: 1, UnitPrice: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(6)},
	})
	require.NoError(t, err)

	items := order.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, order.Items()[0].Quantity)
}

func TestNewOrderID_Unique(t *testing.T) {
	now := time.Now().UTC()
	assert.NotEqual(t, NewOrderID(now), NewOrderID(now))
}

func TestRehydrateOrder_KeepsStoredTotals(t *testing.T) {
	now := time.Now().UTC()
	items := []LineItem{
		{Name: "tomato", Quantity: 3, UnitPrice: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(6)},
	}

	// Stored totals win over recomputation, deliberately mismatched here.
	order := RehydrateOrder("ORD-1", now, items, decimal.NewFromInt(99), decimal.NewFromInt(7))

	assert.True(t, order.TotalRevenue().Equal(decimal.NewFromInt(99)))
	assert.True(t, order.TotalProfit().Equal(decimal.NewFromInt(7)))
}

func TestInsufficientStockError(t *testing.T) {
	err := &InsufficientStockError{Name: "tomato", Requested: 10, Available: 5}

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "tomato")
	assert.Contains(t, err.Error(), "10")
	assert.Contains(t, err.Error(), "5")
}
