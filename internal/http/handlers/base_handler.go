// README: Base handler utilities (JSON helpers, error mapping, views).
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parcelbid/internal/modules/matching"
	"parcelbid/internal/modules/notification"
	"parcelbid/internal/modules/order"
	"parcelbid/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDomainError maps module sentinel errors onto HTTP statuses.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrValidation), errors.Is(err, types.ErrBadAmount), errors.Is(err, matching.ErrNoPosition):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, order.ErrNotFound), errors.Is(err, order.ErrBidNotFound), errors.Is(err, notification.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrInvalidTransition), errors.Is(err, order.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

type orderView struct {
	ID                  types.ID     `json:"id"`
	Number              string       `json:"number"`
	CustomerID          types.ID     `json:"customer_id"`
	Title               string       `json:"title"`
	Description         string       `json:"description,omitempty"`
	PickupAddress       string       `json:"pickup_address"`
	PickupName          string       `json:"pickup_name,omitempty"`
	Pickup              types.Point  `json:"pickup"`
	DeliveryAddress     string       `json:"delivery_address"`
	DeliveryName        string       `json:"delivery_name,omitempty"`
	Delivery            types.Point  `json:"delivery"`
	PackageDescription  string       `json:"package_description,omitempty"`
	WeightKg            float64      `json:"weight_kg,omitempty"`
	EstimatedValue      types.Money  `json:"estimated_value"`
	SpecialInstructions string       `json:"special_instructions,omitempty"`
	Price               types.Money  `json:"price"`
	Status              order.Status `json:"status"`
	DriverID            *types.ID    `json:"driver_id,omitempty"`
	DriverName          *string      `json:"driver_name,omitempty"`
	DriverPrice         *types.Money `json:"driver_price,omitempty"`
	CurrentLocation     *types.Point `json:"current_location,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	AcceptedAt          *time.Time   `json:"accepted_at,omitempty"`
	PickedUpAt          *time.Time   `json:"picked_up_at,omitempty"`
	InTransitAt         *time.Time   `json:"in_transit_at,omitempty"`
	DeliveredAt         *time.Time   `json:"delivered_at,omitempty"`
	CancelledAt         *time.Time   `json:"cancelled_at,omitempty"`
}

func viewOrder(o *order.Order) orderView {
	return orderView{
		ID:                  o.ID,
		Number:              o.Number,
		CustomerID:          o.CustomerID,
		Title:               o.Title,
		Description:         o.Description,
		PickupAddress:       o.PickupAddress,
		PickupName:          o.PickupName,
		Pickup:              o.Pickup,
		DeliveryAddress:     o.DeliveryAddress,
		DeliveryName:        o.DeliveryName,
		Delivery:            o.Delivery,
		PackageDescription:  o.PackageDescription,
		WeightKg:            o.WeightKg,
		EstimatedValue:      o.EstimatedValue,
		SpecialInstructions: o.SpecialInstructions,
		Price:               o.Price,
		Status:              o.Status,
		DriverID:            o.DriverID,
		DriverName:          o.DriverName,
		DriverPrice:         o.DriverPrice,
		CurrentLocation:     o.CurrentLocation,
		CreatedAt:           o.CreatedAt,
		AcceptedAt:          o.AcceptedAt,
		PickedUpAt:          o.PickedUpAt,
		InTransitAt:         o.InTransitAt,
		DeliveredAt:         o.DeliveredAt,
		CancelledAt:         o.CancelledAt,
	}
}

func viewOrders(orders []*order.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, viewOrder(o))
	}
	return out
}

type bidView struct {
	ID                    int64           `json:"id"`
	OrderID               types.ID        `json:"order_id"`
	DriverID              types.ID        `json:"driver_id"`
	DriverName            string          `json:"driver_name"`
	Price                 types.Money     `json:"price"`
	EstimatedPickupTime   *time.Time      `json:"estimated_pickup_time,omitempty"`
	EstimatedDeliveryTime *time.Time      `json:"estimated_delivery_time,omitempty"`
	Message               string          `json:"message,omitempty"`
	Status                order.BidStatus `json:"status"`
	CreatedAt             time.Time       `json:"created_at"`
}

func viewBid(b *order.Bid) bidView {
	return bidView{
		ID:                    b.ID,
		OrderID:               b.OrderID,
		DriverID:              b.UserID,
		DriverName:            b.DriverName,
		Price:                 b.Price,
		EstimatedPickupTime:   b.EstimatedPickupTime,
		EstimatedDeliveryTime: b.EstimatedDeliveryTime,
		Message:               b.Message,
		Status:                b.Status,
		CreatedAt:             b.CreatedAt,
	}
}
