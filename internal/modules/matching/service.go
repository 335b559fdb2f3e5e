// README: Matching service filters pending orders by driver proximity.
package matching

import (
	"context"
	"errors"

	"parcelbid/internal/geo"
	"parcelbid/internal/modules/order"
	"parcelbid/internal/types"
)

// ErrNoPosition means the driver has never reported a location, so there is
// no anchor for proximity filtering.
var ErrNoPosition = errors.New("driver has no known position")

// PendingOrders is the slice of the order engine discovery needs.
type PendingOrders interface {
	ListPending(ctx context.Context) ([]*order.Order, error)
}

// DriverLocator resolves a driver's last-reported position.
type DriverLocator interface {
	DriverGeo(ctx context.Context, driverID types.ID) (types.Point, bool, error)
}

type Service struct {
	orders   PendingOrders
	locator  DriverLocator
	radiusKm float64
}

func NewService(orders PendingOrders, locator DriverLocator, radiusKm float64) *Service {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	return &Service{orders: orders, locator: locator, radiusKm: radiusKm}
}

// Available returns pending orders whose pickup lies within the radius of
// the driver's last position, nearest first. Orders the driver posted as a
// customer are never offered back to them.
func (s *Service) Available(ctx context.Context, driverID types.ID) ([]AvailableOrder, error) {
	pos, ok, err := s.locator.DriverGeo(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoPosition
	}

	pending, err := s.orders.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByProximity(pending, driverID, pos, s.radiusKm), nil
}

// FilterByProximity annotates each pending order with the distance from pos
// to its pickup and keeps those within radiusKm, sorted nearest first.
func FilterByProximity(pending []*order.Order, driverID types.ID, pos types.Point, radiusKm float64) []AvailableOrder {
	out := make([]AvailableOrder, 0, len(pending))
	for _, o := range pending {
		if o.CustomerID == driverID {
			continue
		}
		d := geo.DistanceKm(pos, o.Pickup)
		if d > radiusKm {
			continue
		}
		out = append(out, AvailableOrder{Order: o, DistanceKm: d})
	}
	geo.SortByDistance(out, func(a AvailableOrder) float64 { return a.DistanceKm })
	return out
}
