package notification

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"parcelbid/internal/types"
)

func TestMailboxFlow(t *testing.T) {
	store, _ := setupTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	if err := svc.Notify(ctx, "u1", "", "new_bid", "New bid on your order", "Dana offered 18.00"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := svc.Notify(ctx, "u1", "", "bid_accepted", "Bid accepted", ""); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := svc.Notify(ctx, "u2", "", "bid_rejected", "Bid not selected", ""); err != nil {
		t.Fatalf("notify: %v", err)
	}

	list, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications for u1, got %d", len(list))
	}
	// Newest first.
	if list[0].Type != "bid_accepted" {
		t.Errorf("expected newest first, got %s", list[0].Type)
	}
	for _, n := range list {
		if n.IsRead {
			t.Errorf("expected notification %d unread", n.ID)
		}
	}

	unread, err := svc.UnreadCount(ctx, "u1")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if unread != 2 {
		t.Fatalf("expected 2 unread, got %d", unread)
	}

	if err := svc.MarkRead(ctx, list[0].ID, "u1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if unread, _ = svc.UnreadCount(ctx, "u1"); unread != 1 {
		t.Fatalf("expected 1 unread after mark, got %d", unread)
	}

	// Another user cannot mark someone else's mailbox.
	if err := svc.MarkRead(ctx, list[1].ID, "u2"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign mark-read, got %v", err)
	}
	if err := svc.MarkRead(ctx, 999999, "u1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestCountByOrderAndType(t *testing.T) {
	store, db := setupTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	// Seed the order row the mailbox rows reference.
	if _, err := db.Exec(ctx, `
		INSERT INTO orders (id, number, customer_id, title, pickup_address, delivery_address, price_cents, status)
		VALUES ('o_count', 'ORD-1-001', 'c1', 'Books', '1 Main St', '2 Oak Ave', 2500, 'accepted')
		ON CONFLICT (id) DO NOTHING`); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	for _, uid := range []types.ID{"d1", "d2", "d3"} {
		if err := svc.Notify(ctx, uid, "o_count", "bid_rejected", "Bid not selected", ""); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	if err := svc.Notify(ctx, "d_w", "o_count", "bid_accepted", "Bid accepted", ""); err != nil {
		t.Fatalf("notify: %v", err)
	}

	n, err := store.CountByOrderAndType(ctx, "o_count", "bid_rejected")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 bid_rejected rows for order, got %d", n)
	}
	if n, _ = store.CountByOrderAndType(ctx, "o_count", "bid_accepted"); n != 1 {
		t.Fatalf("expected 1 bid_accepted row for order, got %d", n)
	}
	if n, _ = store.CountByOrderAndType(ctx, "o_other", "bid_rejected"); n != 0 {
		t.Fatalf("expected 0 rows for unrelated order, got %d", n)
	}
}

func setupTestStore(t *testing.T) (*Store, *pgxpool.Pool) {
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
	// order_id references orders; mailbox tests use free-standing rows.
	if _, err := db.Exec(ctx, "TRUNCATE TABLE notifications"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return NewStore(db), db
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	content, err := os.ReadFile(filepath.Join(root, "migrations", "0001_init.sql"))
	if err != nil {
		return err
	}
	for _, stmt := range splitSQL(stripSQLComments(string(content))) {
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
