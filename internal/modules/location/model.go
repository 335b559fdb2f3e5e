// README: Driver position reports and the tracking read model.
package location

import (
	"time"

	"parcelbid/internal/modules/order"
	"parcelbid/internal/types"
)

// Update is one appended driver position report, stamped with the order
// status at report time. Rows are never mutated.
type Update struct {
	ID        int64        `json:"id"`
	OrderID   types.ID     `json:"order_id"`
	DriverID  types.ID     `json:"driver_id"`
	Position  types.Point  `json:"position"`
	Status    order.Status `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// Timeline carries the transition timestamps for the tracking view.
type Timeline struct {
	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`
	InTransitAt *time.Time `json:"in_transit_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// Tracking is the viewer-facing reconstruction of one order's journey.
type Tracking struct {
	OrderID         types.ID     `json:"order_id"`
	Status          order.Status `json:"status"`
	Timeline        Timeline     `json:"timeline"`
	CurrentLocation *types.Point `json:"current_location,omitempty"`
	History         []Update     `json:"history"`
}
