// README: Driver-facing handlers: discovery, bidding, delivery progression.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parcelbid/internal/http/middleware"
	"parcelbid/internal/modules/matching"
	"parcelbid/internal/modules/order"
	"parcelbid/internal/types"
)

type DriverHandler struct {
	orders   *order.Service
	matching *matching.Service
}

func NewDriverHandler(orders *order.Service, matching *matching.Service) *DriverHandler {
	return &DriverHandler{orders: orders, matching: matching}
}

type availableOrderView struct {
	Order      orderView `json:"order"`
	DistanceKm float64   `json:"distance_km"`
}

func (h *DriverHandler) ListAvailable(c *gin.Context) {
	available, err := h.matching.Available(c.Request.Context(), types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	views := make([]availableOrderView, 0, len(available))
	for _, a := range available {
		views = append(views, availableOrderView{Order: viewOrder(a.Order), DistanceKm: a.DistanceKm})
	}
	writeJSON(c, http.StatusOK, gin.H{"orders": views})
}

type placeBidReq struct {
	DriverName            string     `json:"driver_name"`
	Price                 string     `json:"price"`
	EstimatedPickupTime   *time.Time `json:"estimated_pickup_time"`
	EstimatedDeliveryTime *time.Time `json:"estimated_delivery_time"`
	Message               string     `json:"message"`
}

func (h *DriverHandler) PlaceBid(c *gin.Context) {
	var req placeBidReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	price, err := types.ParseMoney(req.Price)
	if err != nil {
		writeError(c, http.StatusBadRequest, "price: "+err.Error())
		return
	}
	bid, err := h.orders.PlaceBid(c.Request.Context(), order.PlaceBidCommand{
		OrderID:               types.ID(c.Param("id")),
		UserID:                types.ID(middleware.CallerUID(c)),
		DriverName:            req.DriverName,
		Price:                 price,
		EstimatedPickupTime:   req.EstimatedPickupTime,
		EstimatedDeliveryTime: req.EstimatedDeliveryTime,
		Message:               req.Message,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, viewBid(bid))
}

func (h *DriverHandler) MyDeliveries(c *gin.Context) {
	orders, err := h.orders.ListByDriver(c.Request.Context(), types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"orders": viewOrders(orders)})
}

func (h *DriverHandler) Pickup(c *gin.Context) {
	h.progress(c, h.orders.MarkPickedUp)
}

func (h *DriverHandler) Transit(c *gin.Context) {
	h.progress(c, h.orders.MarkInTransit)
}

func (h *DriverHandler) Deliver(c *gin.Context) {
	h.progress(c, h.orders.MarkDelivered)
}

func (h *DriverHandler) progress(c *gin.Context, fn func(context.Context, order.ProgressCommand) (*order.Order, error)) {
	o, err := fn(c.Request.Context(), order.ProgressCommand{
		OrderID:  types.ID(c.Param("id")),
		DriverID: types.ID(middleware.CallerUID(c)),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, viewOrder(o))
}
