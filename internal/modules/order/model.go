// README: Order aggregate, bid records, and status definitions.
package order

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"parcelbid/internal/types"
)

type Status string

const (
	StatusNone        Status = "none"
	StatusPendingBids Status = "pending_bids"
	StatusAccepted    Status = "accepted"
	StatusPickedUp    Status = "picked_up"
	StatusInTransit   Status = "in_transit"
	StatusDelivered   Status = "delivered"
	StatusCancelled   Status = "cancelled"
)

type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

type Order struct {
	ID                  types.ID
	Number              string
	CustomerID          types.ID
	Title               string
	Description         string
	PickupAddress       string
	PickupName          string
	Pickup              types.Point
	DeliveryAddress     string
	DeliveryName        string
	Delivery            types.Point
	PackageDescription  string
	WeightKg            float64
	EstimatedValue      types.Money
	SpecialInstructions string
	Price               types.Money
	Status              Status
	DriverID            *types.ID
	DriverName          *string
	DriverPrice         *types.Money
	CurrentLocation     *types.Point
	CreatedAt           time.Time
	AcceptedAt          *time.Time
	PickedUpAt          *time.Time
	InTransitAt         *time.Time
	DeliveredAt         *time.Time
	CancelledAt         *time.Time
}

// Bid is a driver's counter-offer on a pending order. DriverName is
// denormalized at bid time so historical bids survive later profile edits.
type Bid struct {
	ID                    int64
	OrderID               types.ID
	UserID                types.ID
	DriverName            string
	Price                 types.Money
	EstimatedPickupTime   *time.Time
	EstimatedDeliveryTime *time.Time
	Message               string
	Status                BidStatus
	CreatedAt             time.Time
}

type Event struct {
	ID         int64
	OrderID    types.ID
	FromStatus Status
	ToStatus   Status
	ActorID    *types.ID
	CreatedAt  time.Time
}

// AllowedTransitions represents the order state flow (diagram) as code.
// Repeating an already-applied transition is rejected, never treated as a
// no-op: callers must observe current status before retrying.
var AllowedTransitions = map[Status][]Status{
	StatusPendingBids: {StatusAccepted, StatusCancelled},
	StatusAccepted:    {StatusPickedUp, StatusCancelled},
	StatusPickedUp:    {StatusInTransit, StatusDelivered},
	StatusInTransit:   {StatusDelivered},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Active reports whether the assigned driver is still expected to report
// positions for the order.
func (s Status) Active() bool {
	return s == StatusAccepted || s == StatusPickedUp || s == StatusInTransit
}

// NewOrderNumber builds the human-facing order number: ORD-<epochMillis>-<3digit>.
func NewOrderNumber(now time.Time) string {
	var b [2]byte
	_, _ = rand.Read(b[:])
	suffix := binary.BigEndian.Uint16(b[:]) % 1000
	return fmt.Sprintf("ORD-%d-%03d", now.UnixMilli(), suffix)
}
