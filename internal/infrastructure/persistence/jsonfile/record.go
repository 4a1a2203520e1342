package jsonfile

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"veg_market/internal/domain/market"
	"veg_market/internal/domain/repository"
)

// record is the on-disk document shape: a vegetables map keyed by name
// plus the chronological order log. Backup artifacts additionally carry
// the backup_date stamp.
type record struct {
	Vegetables map[string]vegetableRecord `json:"vegetables"`
	Orders     []orderRecord              `json:"orders"`
	BackupDate *time.Time                 `json:"backup_date,omitempty"`
}

type vegetableRecord struct {
	Price decimal.Decimal `json:"price"`
	Cost  decimal.Decimal `json:"cost"`
	Stock int             `json:"stock"`
}

type orderRecord struct {
	OrderID      string           `json:"order_id"`
	Timestamp    time.Time        `json:"timestamp"`
	Items        []lineItemRecord `json:"items"`
	TotalRevenue decimal.Decimal  `json:"total_revenue"`
	TotalProfit  decimal.Decimal  `json:"total_profit"`
}

type lineItemRecord struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

func emptyRecord() record {
	return record{
		Vegetables: map[string]vegetableRecord{},
		Orders:     []orderRecord{},
	}
}

func recordFromSnapshot(snap repository.Snapshot) record {
	rec := emptyRecord()
	for _, v := range snap.Vegetables {
		rec.Vegetables[v.Name] = vegetableRecord{
			Price: v.Price,
			Cost:  v.Cost,
			Stock: v.Stock,
		}
	}
	for _, o := range snap.Orders {
		items := make([]lineItemRecord, 0, len(o.Items()))
		for _, li := range o.Items() {
			items = append(items, lineItemRecord{
				Name:      li.Name,
				Quantity:  li.Quantity,
				UnitPrice: li.UnitPrice,
				UnitCost:  li.UnitCost,
			})
		}
		rec.Orders = append(rec.Orders, orderRecord{
			OrderID:      o.ID(),
			Timestamp:    o.PlacedAt(),
			Items:        items,
			TotalRevenue: o.TotalRevenue(),
			TotalProfit:  o.TotalProfit(),
		})
	}
	return rec
}

func (rec record) toSnapshot() repository.Snapshot {
	snap := repository.Snapshot{
		Vegetables: make([]market.Vegetable, 0, len(rec.Vegetables)),
		Orders:     make([]market.Order, 0, len(rec.Orders)),
	}
	for name, v := range rec.Vegetables {
		snap.Vegetables = append(snap.Vegetables, market.Vegetable{
			Name:  name,
			Price: v.Price,
			Cost:  v.Cost,
			Stock: v.Stock,
		})
	}
	sort.Slice(snap.Vegetables, func(i, j int) bool {
		return snap.Vegetables[i].Name < snap.Vegetables[j].Name
	})
	for _, o := range rec.Orders {
		items := make([]market.LineItem, 0, len(o.Items))
		for _, li := range o.Items {
			items = append(items, market.LineItem{
				Name:      li.Name,
				Quantity:  li.Quantity,
				UnitPrice: li.UnitPrice,
				UnitCost:  li.UnitCost,
			})
		}
		snap.Orders = append(snap.Orders,
			market.RehydrateOrder(o.OrderID, o.Timestamp, items, o.TotalRevenue, o.TotalProfit))
	}
	return snap
}
