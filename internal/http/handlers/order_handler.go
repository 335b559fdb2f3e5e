// README: Customer-facing order handlers: create, read, cancel, bid review.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parcelbid/internal/http/middleware"
	"parcelbid/internal/modules/order"
	"parcelbid/internal/types"
)

type OrderHandler struct {
	orders *order.Service
}

func NewOrderHandler(svc *order.Service) *OrderHandler {
	return &OrderHandler{orders: svc}
}

type pointReq struct {
	Address string  `json:"address"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type createOrderReq struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Pickup              pointReq `json:"pickup"`
	Delivery            pointReq `json:"delivery"`
	PackageDescription  string   `json:"package_description"`
	WeightKg            float64  `json:"weight_kg"`
	EstimatedValue      string   `json:"estimated_value"`
	SpecialInstructions string   `json:"special_instructions"`
	Price               string   `json:"price"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	price, err := types.ParseMoney(req.Price)
	if err != nil {
		writeError(c, http.StatusBadRequest, "price: "+err.Error())
		return
	}
	value := types.Money{}
	if req.EstimatedValue != "" {
		value, err = types.ParseMoney(req.EstimatedValue)
		if err != nil {
			writeError(c, http.StatusBadRequest, "estimated_value: "+err.Error())
			return
		}
	}
	o, err := h.orders.Create(c.Request.Context(), order.CreateCommand{
		CustomerID:          types.ID(middleware.CallerUID(c)),
		Title:               req.Title,
		Description:         req.Description,
		PickupAddress:       req.Pickup.Address,
		PickupName:          req.Pickup.Name,
		Pickup:              types.Point{Lat: req.Pickup.Lat, Lng: req.Pickup.Lng},
		DeliveryAddress:     req.Delivery.Address,
		DeliveryName:        req.Delivery.Name,
		Delivery:            types.Point{Lat: req.Delivery.Lat, Lng: req.Delivery.Lng},
		PackageDescription:  req.PackageDescription,
		WeightKg:            req.WeightKg,
		EstimatedValue:      value,
		SpecialInstructions: req.SpecialInstructions,
		Price:               price,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, viewOrder(o))
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	caller := types.ID(middleware.CallerUID(c))
	assigned := o.DriverID != nil && *o.DriverID == caller
	if o.CustomerID != caller && !assigned && o.Status != order.StatusPendingBids {
		writeError(c, http.StatusForbidden, order.ErrForbidden.Error())
		return
	}
	writeJSON(c, http.StatusOK, viewOrder(o))
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	orders, err := h.orders.ListByCustomer(c.Request.Context(), types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"orders": viewOrders(orders)})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	o, err := h.orders.Cancel(c.Request.Context(), order.CancelCommand{
		OrderID:    types.ID(c.Param("id")),
		CustomerID: types.ID(middleware.CallerUID(c)),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, viewOrder(o))
}

func (h *OrderHandler) ListBids(c *gin.Context) {
	bids, err := h.orders.ListBids(c.Request.Context(), types.ID(c.Param("id")), types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	views := make([]bidView, 0, len(bids))
	for _, b := range bids {
		views = append(views, viewBid(b))
	}
	writeJSON(c, http.StatusOK, gin.H{"bids": views})
}

func (h *OrderHandler) AcceptBid(c *gin.Context) {
	o, err := h.orders.AcceptBid(c.Request.Context(), order.AcceptBidCommand{
		OrderID:    types.ID(c.Param("id")),
		CustomerID: types.ID(middleware.CallerUID(c)),
		DriverID:   types.ID(c.Param("driverId")),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, viewOrder(o))
}
