// README: Location store: Postgres history rows plus Redis GEO for the
// driver's latest position.
package location

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"parcelbid/internal/types"
)

const driverGeoKey = "geo:drivers"

type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewStore(db *pgxpool.Pool, rdb *redis.Client) *Store {
	return &Store{db: db, redis: rdb}
}

// Append writes one history row and overwrites the order's current-location
// projection.
func (s *Store) Append(ctx context.Context, u *Update) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO location_updates (order_id, driver_id, lat, lng, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		string(u.OrderID), string(u.DriverID), u.Position.Lat, u.Position.Lng,
		string(u.Status), u.CreatedAt,
	)
	if err := row.Scan(&u.ID); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
		UPDATE orders SET current_lat = $1, current_lng = $2 WHERE id = $3`,
		u.Position.Lat, u.Position.Lng, string(u.OrderID))
	return err
}

func (s *Store) History(ctx context.Context, orderID types.ID) ([]Update, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, driver_id, lat, lng, status, created_at
		FROM location_updates
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC`, string(orderID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Update
	for rows.Next() {
		var u Update
		if err := rows.Scan(&u.ID, &u.OrderID, &u.DriverID, &u.Position.Lat, &u.Position.Lng, &u.Status, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SetDriverGeo refreshes the driver's entry in the GEO index used by order
// discovery.
func (s *Store) SetDriverGeo(ctx context.Context, driverID types.ID, p types.Point) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      string(driverID),
		Longitude: p.Lng,
		Latitude:  p.Lat,
	}).Err()
}

// DriverGeo returns the driver's last-reported position, if any.
func (s *Store) DriverGeo(ctx context.Context, driverID types.ID) (types.Point, bool, error) {
	if s.redis == nil {
		return types.Point{}, false, nil
	}
	pos, err := s.redis.GeoPos(ctx, driverGeoKey, string(driverID)).Result()
	if err != nil {
		return types.Point{}, false, err
	}
	if len(pos) == 0 || pos[0] == nil {
		return types.Point{}, false, nil
	}
	return types.Point{Lat: pos[0].Latitude, Lng: pos[0].Longitude}, true, nil
}
