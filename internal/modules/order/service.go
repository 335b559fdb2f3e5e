// README: Order & bidding engine: state transitions, exclusive assignment, fan-out.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"parcelbid/internal/types"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrBidNotFound       = errors.New("bid not found")
	ErrForbidden         = errors.New("caller may not perform this operation")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrConflict          = errors.New("order state conflict")
	ErrValidation        = errors.New("invalid request")
)

// Notification type vocabulary. Consumers treat unknown types as informational.
const (
	NotifyNewBid         = "new_bid"
	NotifyBidAccepted    = "bid_accepted"
	NotifyBidRejected    = "bid_rejected"
	NotifyPickedUp       = "picked_up"
	NotifyInTransit      = "in_transit"
	NotifyDelivered      = "delivered"
	NotifyOrderCancelled = "order_cancelled"
)

// Notifier appends a message to a user's mailbox. Called only after the
// owning transition has committed; a failed transition produces no fan-out.
type Notifier interface {
	Notify(ctx context.Context, userID, orderID types.ID, typ, title, message string) error
}

// DriverStats tracks per-driver delivery counters, invoked post-commit on
// delivery.
type DriverStats interface {
	IncrementCompleted(ctx context.Context, driverID types.ID) error
}

// Geocoder resolves a street address to coordinates when the client omits
// them at order creation. Optional.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
}

type Service struct {
	store    *Store
	notifier Notifier
	drivers  DriverStats
	geocoder Geocoder
}

func NewService(store *Store, notifier Notifier, drivers DriverStats, geocoder Geocoder) *Service {
	return &Service{store: store, notifier: notifier, drivers: drivers, geocoder: geocoder}
}

type CreateCommand struct {
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
}

type PlaceBidCommand struct {
	OrderID               types.ID
	UserID                types.ID
	DriverName            string
	Price                 types.Money
	EstimatedPickupTime   *time.Time
	EstimatedDeliveryTime *time.Time
	Message               string
}

type AcceptBidCommand struct {
	OrderID    types.ID
	CustomerID types.ID
	DriverID   types.ID
}

type ProgressCommand struct {
	OrderID  types.ID
	DriverID types.ID
}

type CancelCommand struct {
	OrderID    types.ID
	CustomerID types.ID
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Order, error) {
	if cmd.CustomerID == "" || cmd.Title == "" || cmd.PickupAddress == "" || cmd.DeliveryAddress == "" {
		return nil, fmt.Errorf("%w: missing required field", ErrValidation)
	}
	if !cmd.Price.Positive() {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}

	pickup, delivery := cmd.Pickup, cmd.Delivery
	if s.geocoder != nil {
		if pickup == (types.Point{}) {
			if p, err := s.geocoder.Geocode(ctx, cmd.PickupAddress); err == nil {
				pickup = p
			}
		}
		if delivery == (types.Point{}) {
			if p, err := s.geocoder.Geocode(ctx, cmd.DeliveryAddress); err == nil {
				delivery = p
			}
		}
	}

	now := time.Now()
	o := &Order{
		ID:                  types.ID(uuid.NewString()),
		Number:              NewOrderNumber(now),
		CustomerID:          cmd.CustomerID,
		Title:               cmd.Title,
		Description:         cmd.Description,
		PickupAddress:       cmd.PickupAddress,
		PickupName:          cmd.PickupName,
		Pickup:              pickup,
		DeliveryAddress:     cmd.DeliveryAddress,
		DeliveryName:        cmd.DeliveryName,
		Delivery:            delivery,
		PackageDescription:  cmd.PackageDescription,
		WeightKg:            cmd.WeightKg,
		EstimatedValue:      cmd.EstimatedValue,
		SpecialInstructions: cmd.SpecialInstructions,
		Price:               cmd.Price,
		Status:              StatusPendingBids,
		CreatedAt:           now,
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}
	_ = s.store.AppendEvent(ctx, &Event{
		OrderID:    o.ID,
		FromStatus: StatusNone,
		ToStatus:   StatusPendingBids,
		ActorID:    &cmd.CustomerID,
		CreatedAt:  now,
	})
	return o, nil
}

// PlaceBid records or refreshes a driver's offer on a pending order and
// notifies the customer. A second bid from the same driver updates the
// original row in place.
func (s *Service) PlaceBid(ctx context.Context, cmd PlaceBidCommand) (*Bid, error) {
	if cmd.UserID == "" || cmd.DriverName == "" {
		return nil, fmt.Errorf("%w: missing required field", ErrValidation)
	}
	if !cmd.Price.Positive() {
		return nil, fmt.Errorf("%w: bid price must be positive", ErrValidation)
	}

	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID == cmd.UserID {
		return nil, ErrForbidden
	}
	if o.Status != StatusPendingBids {
		return nil, ErrInvalidTransition
	}

	b := &Bid{
		OrderID:               cmd.OrderID,
		UserID:                cmd.UserID,
		DriverName:            cmd.DriverName,
		Price:                 cmd.Price,
		EstimatedPickupTime:   cmd.EstimatedPickupTime,
		EstimatedDeliveryTime: cmd.EstimatedDeliveryTime,
		Message:               cmd.Message,
		Status:                BidPending,
		CreatedAt:             time.Now(),
	}
	ok, err := s.store.UpsertBid(ctx, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The order left pending_bids between the read above and the insert.
		return nil, ErrInvalidTransition
	}

	s.notify(ctx, o.CustomerID, o.ID, NotifyNewBid,
		"New bid on your order",
		fmt.Sprintf("%s offered %s for %q", cmd.DriverName, cmd.Price, o.Title))
	return b, nil
}

// AcceptBid is the exclusive assignment: the customer's chosen bid wins, the
// order moves to accepted, and every sibling bid is rejected in the same
// atomic unit. Concurrent accepts on one order yield exactly one winner; the
// loser observes ErrConflict.
func (s *Service) AcceptBid(ctx context.Context, cmd AcceptBidCommand) (*Order, error) {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != cmd.CustomerID {
		return nil, ErrForbidden
	}
	if !CanTransition(o.Status, StatusAccepted) {
		return nil, ErrInvalidTransition
	}

	winner, losers, ok, err := s.store.AcceptBid(ctx, cmd.OrderID, cmd.DriverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}

	_ = s.store.AppendEvent(ctx, &Event{
		OrderID:    o.ID,
		FromStatus: StatusPendingBids,
		ToStatus:   StatusAccepted,
		ActorID:    &cmd.CustomerID,
		CreatedAt:  time.Now(),
	})

	s.notify(ctx, winner.UserID, o.ID, NotifyBidAccepted,
		"Bid accepted",
		fmt.Sprintf("Your bid of %s on %q was accepted", winner.Price, o.Title))
	for _, loser := range losers {
		s.notify(ctx, loser, o.ID, NotifyBidRejected,
			"Bid not selected",
			fmt.Sprintf("Another driver was chosen for %q", o.Title))
	}

	return s.store.Get(ctx, cmd.OrderID)
}

func (s *Service) MarkPickedUp(ctx context.Context, cmd ProgressCommand) (*Order, error) {
	return s.progress(ctx, cmd, StatusPickedUp, NotifyPickedUp, "Package picked up")
}

func (s *Service) MarkInTransit(ctx context.Context, cmd ProgressCommand) (*Order, error) {
	return s.progress(ctx, cmd, StatusInTransit, NotifyInTransit, "Package in transit")
}

func (s *Service) MarkDelivered(ctx context.Context, cmd ProgressCommand) (*Order, error) {
	o, err := s.progress(ctx, cmd, StatusDelivered, NotifyDelivered, "Package delivered")
	if err != nil {
		return nil, err
	}
	if s.drivers != nil {
		_ = s.drivers.IncrementCompleted(ctx, cmd.DriverID)
	}
	return o, nil
}

// progress applies one driver-side transition: ownership gate, legality gate,
// then the conditional write. Notification goes out only after the write lands.
func (s *Service) progress(ctx context.Context, cmd ProgressCommand, to Status, notifyType, title string) (*Order, error) {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if o.DriverID == nil || *o.DriverID != cmd.DriverID {
		return nil, ErrForbidden
	}
	if !CanTransition(o.Status, to) {
		return nil, ErrInvalidTransition
	}

	ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}

	_ = s.store.AppendEvent(ctx, &Event{
		OrderID:    o.ID,
		FromStatus: o.Status,
		ToStatus:   to,
		ActorID:    &cmd.DriverID,
		CreatedAt:  time.Now(),
	})
	s.notify(ctx, o.CustomerID, o.ID, notifyType,
		title, fmt.Sprintf("%q is now %s", o.Title, to))

	return s.store.Get(ctx, cmd.OrderID)
}

// Cancel terminates an order while no package is in custody. Only the owning
// customer may cancel, and only from pending_bids or accepted.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*Order, error) {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != cmd.CustomerID {
		return nil, ErrForbidden
	}
	if !CanTransition(o.Status, StatusCancelled) {
		return nil, ErrInvalidTransition
	}

	ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}

	_ = s.store.AppendEvent(ctx, &Event{
		OrderID:    o.ID,
		FromStatus: o.Status,
		ToStatus:   StatusCancelled,
		ActorID:    &cmd.CustomerID,
		CreatedAt:  time.Now(),
	})
	if o.DriverID != nil {
		s.notify(ctx, *o.DriverID, o.ID, NotifyOrderCancelled,
			"Order cancelled",
			fmt.Sprintf("%q was cancelled by the customer", o.Title))
	}

	return s.store.Get(ctx, cmd.OrderID)
}

func (s *Service) notify(ctx context.Context, userID, orderID types.ID, typ, title, message string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Notify(ctx, userID, orderID, typ, title, message)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Order, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID types.ID) ([]*Order, error) {
	return s.store.ListByCustomer(ctx, customerID)
}

func (s *Service) ListByDriver(ctx context.Context, driverID types.ID) ([]*Order, error) {
	return s.store.ListByDriver(ctx, driverID)
}

func (s *Service) ListPending(ctx context.Context) ([]*Order, error) {
	return s.store.ListPending(ctx)
}

// ListBids returns every bid on an order. Only the owning customer sees the
// full set; a driver sees only their own bid.
func (s *Service) ListBids(ctx context.Context, orderID, callerID types.ID) ([]*Bid, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID == callerID {
		return s.store.ListBids(ctx, orderID)
	}
	b, err := s.store.GetBid(ctx, orderID, callerID)
	if err != nil {
		if errors.Is(err, ErrBidNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	return []*Bid{b}, nil
}
