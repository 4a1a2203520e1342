package market

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	domain "veg_market/internal/domain/market"
	"veg_market/internal/store"
)

// Service implements the market operations on top of the Store. It is
// the only writer of catalog and order history besides the Store's own
// load/restore/clear.
type Service struct {
	store *store.Store
	now   func() time.Time
}

func NewService(st *store.Store) *Service {
	return &Service{
		store: st,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type AddVegetableCommand struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Cost  decimal.Decimal `json:"cost"`
	Stock int             `json:"stock"`
}

type UpdateVegetableCommand struct {
	Name  string           `json:"-"`
	Price *decimal.Decimal `json:"price"`
	Cost  *decimal.Decimal `json:"cost"`
	Stock *int             `json:"stock"`
}

type OrderLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type PlaceOrderCommand struct {
	Items []OrderLine `json:"items"`
}

// AddVegetable inserts a new catalog entry and persists.
func (s *Service) AddVegetable(ctx context.Context, cmd AddVegetableCommand) (domain.Vegetable, error) {
	veg, err := domain.NewVegetable(cmd.Name, cmd.Price, cmd.Cost, cmd.Stock)
	if err != nil {
		return domain.Vegetable{}, err
	}
	err = s.store.Mutate(ctx, func(st *store.State) error {
		if _, ok := st.Catalog[veg.Name]; ok {
			return fmt.Errorf("vegetable %q: %w", veg.Name, domain.ErrDuplicateName)
		}
		st.Catalog[veg.Name] = veg
		return nil
	})
	if err != nil {
		return domain.Vegetable{}, err
	}
	return veg, nil
}

// RemoveVegetable deletes a catalog entry. Order history keeps its
// snapshot values, so removal never invalidates past orders.
func (s *Service) RemoveVegetable(ctx context.Context, name string) error {
	key := domain.NormalizeName(name)
	return s.store.Mutate(ctx, func(st *store.State) error {
		if _, ok := st.Catalog[key]; !ok {
			return fmt.Errorf("vegetable %q: %w", key, domain.ErrNotFound)
		}
		delete(st.Catalog, key)
		return nil
	})
}

// UpdateVegetable applies the provided fields only.
func (s *Service) UpdateVegetable(ctx context.Context, cmd UpdateVegetableCommand) (domain.Vegetable, error) {
	key := domain.NormalizeName(cmd.Name)
	if cmd.Price == nil && cmd.Cost == nil && cmd.Stock == nil {
		return domain.Vegetable{}, fmt.Errorf("no fields to update: %w", domain.ErrInvalidValue)
	}
	var updated domain.Vegetable
	err := s.store.Mutate(ctx, func(st *store.State) error {
		veg, ok := st.Catalog[key]
		if !ok {
			return fmt.Errorf("vegetable %q: %w", key, domain.ErrNotFound)
		}
		if cmd.Price != nil {
			if cmd.Price.IsNegative() {
				return fmt.Errorf("price: %w", domain.ErrInvalidValue)
			}
			veg.Price = *cmd.Price
		}
		if cmd.Cost != nil {
			if cmd.Cost.IsNegative() {
				return fmt.Errorf("cost: %w", domain.ErrInvalidValue)
			}
			veg.Cost = *cmd.Cost
		}
		if cmd.Stock != nil {
			if *cmd.Stock < 0 {
				return fmt.Errorf("stock: %w", domain.ErrInvalidValue)
			}
			veg.Stock = *cmd.Stock
		}
		st.Catalog[key] = veg
		updated = veg
		return nil
	})
	if err != nil {
		return domain.Vegetable{}, err
	}
	return updated, nil
}

// PlaceOrder validates every line against the current catalog, then
// atomically decrements stock, snapshots unit prices/costs and appends
// the order. Any validation failure rejects the whole order.
func (s *Service) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.Order, error) {
	if len(cmd.Items) == 0 {
		return domain.Order{}, fmt.Errorf("order has no items: %w", domain.ErrInvalidValue)
	}

	var placed domain.Order
	err := s.store.Mutate(ctx, func(st *store.State) error {
		// Phase 1: validate all lines. Repeated names draw from the
		// same stock, so requirements accumulate per vegetable.
		required := map[string]int{}
		for _, line := range cmd.Items {
			key := domain.NormalizeName(line.Name)
			if line.Quantity <= 0 {
				return fmt.Errorf("quantity for %q: %w", key, domain.ErrInvalidValue)
			}
			veg, ok := st.Catalog[key]
			if !ok {
				return fmt.Errorf("vegetable %q: %w", key, domain.ErrNotFound)
			}
			required[key] += line.Quantity
			if required[key] > veg.Stock {
				return &domain.InsufficientStockError{
					Name:      key,
					Requested: required[key],
					Available: veg.Stock,
				}
			}
		}

		// Phase 2: apply. Snapshot per line, decrement per vegetable.
		items := make([]domain.LineItem, 0, len(cmd.Items))
		for _, line := range cmd.Items {
			key := domain.NormalizeName(line.Name)
			veg := st.Catalog[key]
			items = append(items, domain.LineItem{
				Name:      key,
				Quantity:  line.Quantity,
				UnitPrice: veg.Price,
				UnitCost:  veg.Cost,
			})
		}
		for key, qty := range required {
			veg := st.Catalog[key]
			veg.Stock -= qty
			st.Catalog[key] = veg
		}

		placedAt := s.now()
		order, err := domain.NewOrder(domain.NewOrderID(placedAt), placedAt, items)
		if err != nil {
			return err
		}
		st.Orders = append(st.Orders, order)
		placed = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return placed, nil
}

// AvailableVegetable annotates a catalog entry with its availability.
type AvailableVegetable struct {
	domain.Vegetable
	InStock bool
}

// ListAvailable yields the catalog in name order. The sequence is
// restartable; each iteration sees the catalog as of its own start.
func (s *Service) ListAvailable() iter.Seq[AvailableVegetable] {
	return func(yield func(AvailableVegetable) bool) {
		var vegetables []domain.Vegetable
		s.store.View(func(st store.State) {
			vegetables = make([]domain.Vegetable, 0, len(st.Catalog))
			for _, v := range st.Catalog {
				vegetables = append(vegetables, v)
			}
		})
		sort.Slice(vegetables, func(i, j int) bool {
			return vegetables[i].Name < vegetables[j].Name
		})
		for _, v := range vegetables {
			if !yield(AvailableVegetable{Vegetable: v, InStock: v.InStock()}) {
				return
			}
		}
	}
}

// OrderHistory returns the order log in chronological order.
func (s *Service) OrderHistory() []domain.Order {
	var out []domain.Order
	s.store.View(func(st store.State) {
		out = make([]domain.Order, len(st.Orders))
		copy(out, st.Orders)
	})
	return out
}
