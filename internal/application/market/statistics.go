package market

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"veg_market/internal/store"
)

// VegetableSales is the per-vegetable slice of the sales report.
type VegetableSales struct {
	Name      string          `json:"name"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
	Profit    decimal.Decimal `json:"profit"`
	Orders    int             `json:"orders"`
}

// Statistics aggregates the order history; it holds no state of its own
// and is derived fresh on every call.
type Statistics struct {
	Orders            int              `json:"orders"`
	TotalRevenue      decimal.Decimal  `json:"total_revenue"`
	TotalProfit       decimal.Decimal  `json:"total_profit"`
	AverageOrderValue decimal.Decimal  `json:"average_order_value"`
	ByVegetable       []VegetableSales `json:"by_vegetable"`
}

// SalesStatistics aggregates revenue, profit and per-vegetable units
// sold over the order history. from/to bound the placement time on a
// closed interval; either may be nil.
func (s *Service) SalesStatistics(from, to *time.Time) Statistics {
	stats := Statistics{
		TotalRevenue:      decimal.Zero,
		TotalProfit:       decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}
	perVeg := map[string]*VegetableSales{}

	s.store.View(func(st store.State) {
		for _, o := range st.Orders {
			if !inRange(o.PlacedAt(), from, to) {
				continue
			}
			stats.Orders++
			stats.TotalRevenue = stats.TotalRevenue.Add(o.TotalRevenue())
			stats.TotalProfit = stats.TotalProfit.Add(o.TotalProfit())
			for _, li := range o.Items() {
				vs, ok := perVeg[li.Name]
				if !ok {
					vs = &VegetableSales{
						Name:    li.Name,
						Revenue: decimal.Zero,
						Profit:  decimal.Zero,
					}
					perVeg[li.Name] = vs
				}
				vs.UnitsSold += li.Quantity
				vs.Revenue = vs.Revenue.Add(li.Revenue())
				vs.Profit = vs.Profit.Add(li.Profit())
				vs.Orders++
			}
		}
	})

	if stats.Orders > 0 {
		stats.AverageOrderValue = stats.TotalRevenue.
			Div(decimal.NewFromInt(int64(stats.Orders))).Round(2)
	}

	stats.ByVegetable = make([]VegetableSales, 0, len(perVeg))
	for _, vs := range perVeg {
		stats.ByVegetable = append(stats.ByVegetable, *vs)
	}
	// Highest revenue first, name as tiebreaker.
	sort.Slice(stats.ByVegetable, func(i, j int) bool {
		a, b := stats.ByVegetable[i], stats.ByVegetable[j]
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		return a.Name < b.Name
	})
	return stats
}

func inRange(ts time.Time, from, to *time.Time) bool {
	if from != nil && ts.Before(*from) {
		return false
	}
	if to != nil && ts.After(*to) {
		return false
	}
	return true
}
