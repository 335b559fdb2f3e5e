// README: Location service: position reports by the assigned driver and the
// tracking view for both parties.
package location

import (
	"context"
	"time"

	"parcelbid/internal/modules/order"
	"parcelbid/internal/types"
)

// Orders is the slice of the order engine the tracker needs.
type Orders interface {
	Get(ctx context.Context, id types.ID) (*order.Order, error)
}

type Service struct {
	store  *Store
	orders Orders
}

func NewService(store *Store, orders Orders) *Service {
	return &Service{store: store, orders: orders}
}

type ReportCommand struct {
	OrderID  types.ID
	DriverID types.ID
	Position types.Point
}

// Report appends a position row for the assigned driver while the order is
// in an active status, and refreshes the driver's GEO entry.
func (s *Service) Report(ctx context.Context, cmd ReportCommand) (*Update, error) {
	o, err := s.orders.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if o.DriverID == nil || *o.DriverID != cmd.DriverID {
		return nil, order.ErrForbidden
	}
	if !o.Status.Active() {
		return nil, order.ErrInvalidTransition
	}

	u := &Update{
		OrderID:   cmd.OrderID,
		DriverID:  cmd.DriverID,
		Position:  cmd.Position,
		Status:    o.Status,
		CreatedAt: time.Now(),
	}
	if err := s.store.Append(ctx, u); err != nil {
		return nil, err
	}
	_ = s.store.SetDriverGeo(ctx, cmd.DriverID, cmd.Position)
	return u, nil
}

// Tracking reconstructs the order's journey for its customer or assigned
// driver; anyone else is refused.
func (s *Service) Tracking(ctx context.Context, orderID, callerID types.ID) (*Tracking, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	assigned := o.DriverID != nil && *o.DriverID == callerID
	if o.CustomerID != callerID && !assigned {
		return nil, order.ErrForbidden
	}

	history, err := s.store.History(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &Tracking{
		OrderID: o.ID,
		Status:  o.Status,
		Timeline: Timeline{
			CreatedAt:   o.CreatedAt,
			AcceptedAt:  o.AcceptedAt,
			PickedUpAt:  o.PickedUpAt,
			InTransitAt: o.InTransitAt,
			DeliveredAt: o.DeliveredAt,
			CancelledAt: o.CancelledAt,
		},
		CurrentLocation: o.CurrentLocation,
		History:         history,
	}, nil
}
