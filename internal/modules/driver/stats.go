// README: Per-driver delivery counters, incremented post-commit on delivery.
package driver

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"parcelbid/internal/types"
)

type StatsStore struct {
	db *pgxpool.Pool
}

func NewStatsStore(db *pgxpool.Pool) *StatsStore {
	return &StatsStore{db: db}
}

// IncrementCompleted satisfies the order engine's DriverStats interface.
func (s *StatsStore) IncrementCompleted(ctx context.Context, driverID types.ID) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO driver_stats (driver_id, completed_deliveries)
		VALUES ($1, 1)
		ON CONFLICT (driver_id) DO UPDATE
		SET completed_deliveries = driver_stats.completed_deliveries + 1`,
		string(driverID))
	return err
}

func (s *StatsStore) CompletedDeliveries(ctx context.Context, driverID types.ID) (int, error) {
	row := s.db.QueryRow(ctx, `
		SELECT COALESCE(
			(SELECT completed_deliveries FROM driver_stats WHERE driver_id = $1), 0)`,
		string(driverID))
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
