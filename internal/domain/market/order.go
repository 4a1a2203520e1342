package market

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one position on an order. UnitPrice and UnitCost are the
// catalog values captured at the moment of placement; later catalog
// changes never alter them.
type LineItem struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	UnitCost  decimal.Decimal
}

func (li LineItem) Revenue() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (li LineItem) Profit() decimal.Decimal {
	return li.UnitPrice.Sub(li.UnitCost).Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order is immutable once constructed: fields are unexported and Items
// returns a copy, so history entries cannot be edited in place.
type Order struct {
	id           string
	placedAt     time.Time
	items        []LineItem
	totalRevenue decimal.Decimal
	totalProfit  decimal.Decimal
}

// NewOrderID derives a sortable key from the placement time, with a uuid
// suffix so two orders in the same second stay distinct.
func NewOrderID(placedAt time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", placedAt.Format("20060102-150405"), uuid.NewString()[:8])
}

// NewOrder builds an order from already validated line items and computes
// the stored totals. Callers validate quantities and stock beforehand.
func NewOrder(id string, placedAt time.Time, items []LineItem) (Order, error) {
	if id == "" {
		return Order{}, ErrInvalidValue
	}
	if len(items) == 0 {
		return Order{}, ErrInvalidValue
	}
	revenue := decimal.Zero
	profit := decimal.Zero
	copied := make([]LineItem, len(items))
	for i, li := range items {
		if li.Quantity <= 0 {
			return Order{}, ErrInvalidValue
		}
		copied[i] = li
		revenue = revenue.Add(li.Revenue())
		profit = profit.Add(li.Profit())
	}
	return Order{
		id:           id,
		placedAt:     placedAt.UTC(),
		items:        copied,
		totalRevenue: revenue,
		totalProfit:  profit,
	}, nil
}

// RehydrateOrder rebuilds a persisted order as-is. Totals come from the
// record, not from recomputation, so history stays stable even if the
// derivation ever changes.
func RehydrateOrder(id string, placedAt time.Time, items []LineItem, revenue, profit decimal.Decimal) Order {
	copied := make([]LineItem, len(items))
	copy(copied, items)
	return Order{
		id:           id,
		placedAt:     placedAt,
		items:        copied,
		totalRevenue: revenue,
		totalProfit:  profit,
	}
}

func (o Order) ID() string          { return o.id }
func (o Order) PlacedAt() time.Time { return o.placedAt }

func (o Order) Items() []LineItem {
	out := make([]LineItem, len(o.items))
	copy(out, o.items)
	return out
}

func (o Order) TotalRevenue() decimal.Decimal { return o.totalRevenue }
func (o Order) TotalProfit() decimal.Decimal  { return o.totalProfit }
