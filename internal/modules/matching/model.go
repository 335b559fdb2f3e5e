// README: Driver-facing order discovery types.
package matching

import "parcelbid/internal/modules/order"

// AvailableOrder is a pending order annotated with the driver's great-circle
// distance to its pickup point.
type AvailableOrder struct {
	Order      *order.Order
	DistanceKm float64
}

// DefaultRadiusKm bounds how far from a driver a pending order may be and
// still appear in their available list.
const DefaultRadiusKm = 5.0
