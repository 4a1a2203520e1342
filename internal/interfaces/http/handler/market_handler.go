package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	app "veg_market/internal/application/market"
	domain "veg_market/internal/domain/market"
	"veg_market/internal/infrastructure/metrics"
)

type MarketHandler struct {
	svc *app.Service
	mtx *metrics.Metrics
}

// NewMarketHandler wires the service; mtx may be nil when telemetry is
// disabled.
func NewMarketHandler(svc *app.Service, mtx *metrics.Metrics) *MarketHandler {
	return &MarketHandler{svc: svc, mtx: mtx}
}

type vegetableResponse struct {
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Cost    decimal.Decimal `json:"cost"`
	Stock   int             `json:"stock"`
	InStock bool            `json:"in_stock"`
}

type lineItemResponse struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type orderResponse struct {
	OrderID      string             `json:"order_id"`
	Timestamp    time.Time          `json:"timestamp"`
	Items        []lineItemResponse `json:"items"`
	TotalRevenue decimal.Decimal    `json:"total_revenue"`
	TotalProfit  decimal.Decimal    `json:"total_profit"`
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]lineItemResponse, 0, len(o.Items()))
	for _, li := range o.Items() {
		items = append(items, lineItemResponse{
			Name:      li.Name,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			UnitCost:  li.UnitCost,
		})
	}
	return orderResponse{
		OrderID:      o.ID(),
		Timestamp:    o.PlacedAt(),
		Items:        items,
		TotalRevenue: o.TotalRevenue(),
		TotalProfit:  o.TotalProfit(),
	}
}

func (h *MarketHandler) ListVegetables(c *gin.Context) {
	out := []vegetableResponse{}
	for v := range h.svc.ListAvailable() {
		out = append(out, vegetableResponse{
			Name:    v.Name,
			Price:   v.Price,
			Cost:    v.Cost,
			Stock:   v.Stock,
			InStock: v.InStock,
		})
	}
	c.JSON(http.StatusOK, gin.H{"vegetables": out})
}

func (h *MarketHandler) AddVegetable(c *gin.Context) {
	var cmd app.AddVegetableCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	veg, err := h.svc.AddVegetable(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	h.syncCatalogGauge()

	c.JSON(http.StatusCreated, vegetableResponse{
		Name:    veg.Name,
		Price:   veg.Price,
		Cost:    veg.Cost,
		Stock:   veg.Stock,
		InStock: veg.InStock(),
	})
}

func (h *MarketHandler) UpdateVegetable(c *gin.Context) {
	var cmd app.UpdateVegetableCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.Name = c.Param("name")

	veg, err := h.svc.UpdateVegetable(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, vegetableResponse{
		Name:    veg.Name,
		Price:   veg.Price,
		Cost:    veg.Cost,
		Stock:   veg.Stock,
		InStock: veg.InStock(),
	})
}

func (h *MarketHandler) RemoveVegetable(c *gin.Context) {
	if err := h.svc.RemoveVegetable(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	h.syncCatalogGauge()
	c.Status(http.StatusNoContent)
}

func (h *MarketHandler) PlaceOrder(c *gin.Context) {
	var cmd app.PlaceOrderCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.svc.PlaceOrder(c.Request.Context(), cmd)
	if err != nil {
		if h.mtx != nil {
			h.mtx.ObserveRejection(err)
		}
		respondError(c, err)
		return
	}
	if h.mtx != nil {
		h.mtx.OrdersPlaced.Inc()
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *MarketHandler) ListOrders(c *gin.Context) {
	history := h.svc.OrderHistory()
	out := make([]orderResponse, 0, len(history))
	for _, o := range history {
		out = append(out, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

func (h *MarketHandler) Statistics(c *gin.Context) {
	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp"})
		return
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp"})
		return
	}
	c.JSON(http.StatusOK, h.svc.SalesStatistics(from, to))
}

// parseTimeQuery accepts RFC3339 or a bare date.
func parseTimeQuery(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts, nil
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func (h *MarketHandler) syncCatalogGauge() {
	if h.mtx == nil {
		return
	}
	n := 0
	for range h.svc.ListAvailable() {
		n++
	}
	h.mtx.CatalogSize.Set(float64(n))
}

// respondError maps domain error kinds onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}

	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		body["vegetable"] = stockErr.Name
		body["requested"] = stockErr.Requested
		body["available"] = stockErr.Available
	}

	c.JSON(statusFor(err), body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
