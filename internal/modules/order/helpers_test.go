// README: Shared fixtures for the DB-backed engine tests.
package order

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"parcelbid/internal/types"
)

// recordingNotifier captures fan-out in memory so tests can assert on it
// without a mailbox table.
type recordingNotifier struct {
	mu    sync.Mutex
	notes []recordedNote
}

type recordedNote struct {
	userID types.ID
	typ    string
}

func (r *recordingNotifier) Notify(_ context.Context, userID, _ types.ID, typ, _, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, recordedNote{userID: userID, typ: typ})
	return nil
}

func (r *recordingNotifier) count(typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, note := range r.notes {
		if note.typ == typ {
			n++
		}
	}
	return n
}

func (r *recordingNotifier) countFor(userID types.ID, typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, note := range r.notes {
		if note.userID == userID && note.typ == typ {
			n++
		}
	}
	return n
}

func (r *recordingNotifier) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

type recordingStats struct {
	mu     sync.Mutex
	counts map[types.ID]int
}

func (r *recordingStats) IncrementCompleted(_ context.Context, driverID types.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[types.ID]int{}
	}
	r.counts[driverID]++
	return nil
}

func (r *recordingStats) completed(driverID types.ID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[driverID]
}

func errorsIsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func mustCreateOrder(t *testing.T, svc *Service, customerID types.ID, price string) *Order {
	t.Helper()
	m, err := types.ParseMoney(price)
	if err != nil {
		t.Fatalf("parse price: %v", err)
	}
	o, err := svc.Create(context.Background(), CreateCommand{
		CustomerID:      customerID,
		Title:           "Vintage record player",
		Description:     "Handle with care",
		PickupAddress:   "350 5th Ave, New York",
		PickupName:      "Midtown",
		Pickup:          types.Point{Lat: 40.7484, Lng: -73.9857},
		DeliveryAddress: "11 Wall St, New York",
		DeliveryName:    "Financial District",
		Delivery:        types.Point{Lat: 40.7069, Lng: -74.0113},
		WeightKg:        6.5,
		Price:           m,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func mustPlaceBid(t *testing.T, svc *Service, orderID, driverID types.ID, driverName, price string) *Bid {
	t.Helper()
	m, err := types.ParseMoney(price)
	if err != nil {
		t.Fatalf("parse price: %v", err)
	}
	b, err := svc.PlaceBid(context.Background(), PlaceBidCommand{
		OrderID:    orderID,
		UserID:     driverID,
		DriverName: driverName,
		Price:      m,
	})
	if err != nil {
		t.Fatalf("place bid: %v", err)
	}
	return b
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("PARCELBID_TEST_DSN")
	if dsn == "" {
		t.Skip("PARCELBID_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Exec(ctx,
		"TRUNCATE TABLE location_updates, order_events, notifications, bids, orders, driver_stats"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	return NewStore(db)
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	path := filepath.Join(root, "migrations", "0001_init.sql")
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cleaned := stripSQLComments(string(content))
	for _, stmt := range splitSQL(cleaned) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
