// README: Order and bid store backed by PostgreSQL.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"parcelbid/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const orderColumns = `
	id, number, customer_id, title, description,
	pickup_address, pickup_name, pickup_lat, pickup_lng,
	delivery_address, delivery_name, delivery_lat, delivery_lng,
	package_description, weight_kg, estimated_value_cents, special_instructions,
	price_cents, status, driver_id, driver_name, driver_price_cents,
	current_lat, current_lng,
	created_at, accepted_at, picked_up_at, in_transit_at, delivered_at, cancelled_at`

func (s *Store) Create(ctx context.Context, o *Order) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO orders (
			id, number, customer_id, title, description,
			pickup_address, pickup_name, pickup_lat, pickup_lng,
			delivery_address, delivery_name, delivery_lat, delivery_lng,
			package_description, weight_kg, estimated_value_cents, special_instructions,
			price_cents, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16, $17,
			$18, $19, $20
		)`,
		string(o.ID), o.Number, string(o.CustomerID), o.Title, o.Description,
		o.PickupAddress, o.PickupName, o.Pickup.Lat, o.Pickup.Lng,
		o.DeliveryAddress, o.DeliveryName, o.Delivery.Lat, o.Delivery.Lng,
		o.PackageDescription, o.WeightKg, o.EstimatedValue.Cents, o.SpecialInstructions,
		o.Price.Cents, string(o.Status), o.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, string(id))
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Store) ListByCustomer(ctx context.Context, customerID types.ID) ([]*Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC`, string(customerID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (s *Store) ListByDriver(ctx context.Context, driverID types.ID) ([]*Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE driver_id = $1
		ORDER BY created_at DESC`, string(driverID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (s *Store) ListPending(ctx context.Context) ([]*Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status = 'pending_bids'
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// UpdateStatus performs the conditional transition that serializes all
// mutations of one order: the write only lands when the stored status still
// equals `from`. A false return means the caller lost the race.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET status = $1,
		    accepted_at  = CASE WHEN $1 = 'accepted'   THEN NOW() ELSE accepted_at END,
		    picked_up_at = CASE WHEN $1 = 'picked_up'  THEN NOW() ELSE picked_up_at END,
		    in_transit_at = CASE WHEN $1 = 'in_transit' THEN NOW() ELSE in_transit_at END,
		    delivered_at = CASE WHEN $1 = 'delivered'  THEN NOW() ELSE delivered_at END,
		    cancelled_at = CASE WHEN $1 = 'cancelled'  THEN NOW() ELSE cancelled_at END
		WHERE id = $2 AND status = $3`,
		string(to), string(id), string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpsertBid inserts a driver's bid, or updates the existing row in place when
// the (order, user) pair already holds one. The unique pair constraint is the
// commit gate against duplicate bids. The insert selects from the order row
// under FOR SHARE with the pending_bids predicate, so it serializes against a
// concurrent accept or cancel: once the order leaves pending_bids no bid can
// land. A false return means the order was no longer pending_bids.
func (s *Store) UpsertBid(ctx context.Context, b *Bid) (bool, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO bids (
			order_id, user_id, driver_name, price_cents,
			estimated_pickup_time, estimated_delivery_time, message, status, created_at
		)
		SELECT o.id, $2, $3, $4, $5, $6, $7, 'pending', $8
		FROM orders o
		WHERE o.id = $1 AND o.status = 'pending_bids'
		FOR SHARE
		ON CONFLICT (order_id, user_id) DO UPDATE SET
			driver_name = EXCLUDED.driver_name,
			price_cents = EXCLUDED.price_cents,
			estimated_pickup_time = EXCLUDED.estimated_pickup_time,
			estimated_delivery_time = EXCLUDED.estimated_delivery_time,
			message = EXCLUDED.message
		RETURNING id, status, created_at`,
		string(b.OrderID), string(b.UserID), b.DriverName, b.Price.Cents,
		b.EstimatedPickupTime, b.EstimatedDeliveryTime, b.Message, b.CreatedAt,
	)
	var status string
	if err := row.Scan(&b.ID, &status, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	b.Status = BidStatus(status)
	return true, nil
}

func (s *Store) GetBid(ctx context.Context, orderID, userID types.ID) (*Bid, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, order_id, user_id, driver_name, price_cents,
		       estimated_pickup_time, estimated_delivery_time, message, status, created_at
		FROM bids
		WHERE order_id = $1 AND user_id = $2`,
		string(orderID), string(userID))
	b, err := scanBid(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBidNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) ListBids(ctx context.Context, orderID types.ID) ([]*Bid, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, user_id, driver_name, price_cents,
		       estimated_pickup_time, estimated_delivery_time, message, status, created_at
		FROM bids
		WHERE order_id = $1
		ORDER BY created_at ASC`, string(orderID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// AcceptBid applies the exclusive assignment as one transaction: the order's
// conditional move to accepted, the winning bid's promotion, and the
// rejection of every sibling bid commit together or not at all. ok=false
// means the race was lost: the order left pending_bids, or the bid was
// already resolved by another accept. Runs at default read-committed so a
// blocked loser's UPDATE re-evaluates the predicate and reports zero rows
// instead of failing with a serialization error.
func (s *Store) AcceptBid(ctx context.Context, orderID, winnerID types.ID) (winner *Bid, losers []types.ID, ok bool, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		SELECT id, order_id, user_id, driver_name, price_cents,
		       estimated_pickup_time, estimated_delivery_time, message, status, created_at
		FROM bids
		WHERE order_id = $1 AND user_id = $2`,
		string(orderID), string(winnerID))
	winner, err = scanBid(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, false, ErrBidNotFound
	}
	if err != nil {
		return nil, nil, false, err
	}
	if winner.Status != BidPending {
		return nil, nil, false, nil
	}

	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = 'accepted',
		    driver_id = $1,
		    driver_name = $2,
		    driver_price_cents = $3,
		    accepted_at = NOW()
		WHERE id = $4 AND status = 'pending_bids'`,
		string(winner.UserID), winner.DriverName, winner.Price.Cents, string(orderID),
	)
	if err != nil {
		return nil, nil, false, err
	}
	if tag.RowsAffected() != 1 {
		return nil, nil, false, nil
	}

	if _, err = tx.Exec(ctx,
		`UPDATE bids SET status = 'accepted' WHERE id = $1`, winner.ID); err != nil {
		return nil, nil, false, err
	}

	rows, err := tx.Query(ctx, `
		UPDATE bids SET status = 'rejected'
		WHERE order_id = $1 AND status = 'pending' AND user_id <> $2
		RETURNING user_id`,
		string(orderID), string(winnerID))
	if err != nil {
		return nil, nil, false, err
	}
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			rows.Close()
			return nil, nil, false, err
		}
		losers = append(losers, types.ID(uid))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, nil, false, err
	}
	winner.Status = BidAccepted
	return winner, losers, true, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO order_events (order_id, from_status, to_status, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		string(e.OrderID), string(e.FromStatus), string(e.ToStatus),
		toStringPtr(e.ActorID), e.CreatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	var driverID, driverName *string
	var driverPriceCents *int64
	var currentLat, currentLng *float64
	var acceptedAt, pickedUpAt, inTransitAt, deliveredAt, cancelledAt *time.Time

	err := row.Scan(
		&o.ID, &o.Number, &o.CustomerID, &o.Title, &o.Description,
		&o.PickupAddress, &o.PickupName, &o.Pickup.Lat, &o.Pickup.Lng,
		&o.DeliveryAddress, &o.DeliveryName, &o.Delivery.Lat, &o.Delivery.Lng,
		&o.PackageDescription, &o.WeightKg, &o.EstimatedValue.Cents, &o.SpecialInstructions,
		&o.Price.Cents, &o.Status, &driverID, &driverName, &driverPriceCents,
		&currentLat, &currentLng,
		&o.CreatedAt, &acceptedAt, &pickedUpAt, &inTransitAt, &deliveredAt, &cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	if driverID != nil {
		d := types.ID(*driverID)
		o.DriverID = &d
	}
	o.DriverName = driverName
	if driverPriceCents != nil {
		m := types.Money{Cents: *driverPriceCents}
		o.DriverPrice = &m
	}
	if currentLat != nil && currentLng != nil {
		o.CurrentLocation = &types.Point{Lat: *currentLat, Lng: *currentLng}
	}
	o.AcceptedAt = acceptedAt
	o.PickedUpAt = pickedUpAt
	o.InTransitAt = inTransitAt
	o.DeliveredAt = deliveredAt
	o.CancelledAt = cancelledAt
	return &o, nil
}

func scanOrders(rows pgx.Rows) ([]*Order, error) {
	var out []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanBid(row rowScanner) (*Bid, error) {
	var b Bid
	err := row.Scan(
		&b.ID, &b.OrderID, &b.UserID, &b.DriverName, &b.Price.Cents,
		&b.EstimatedPickupTime, &b.EstimatedDeliveryTime, &b.Message, &b.Status, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
