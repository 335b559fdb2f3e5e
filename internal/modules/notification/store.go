// README: Notification store backed by PostgreSQL.
package notification

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"parcelbid/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, n *Notification) error {
	var orderID *string
	if n.OrderID != nil {
		v := string(*n.OrderID)
		orderID = &v
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO notifications (user_id, order_id, type, title, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
		RETURNING id`,
		string(n.UserID), orderID, n.Type, n.Title, n.Message, n.CreatedAt,
	)
	return row.Scan(&n.ID)
}

func (s *Store) ListByUser(ctx context.Context, userID types.ID, limit int) ([]*Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, order_id, type, title, message, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, string(userID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		var n Notification
		var orderID *string
		if err := rows.Scan(&n.ID, &n.UserID, &orderID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		if orderID != nil {
			v := types.ID(*orderID)
			n.OrderID = &v
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// MarkRead flips is_read for one notification, gated on the recipient so a
// user cannot mark another mailbox's rows.
func (s *Store) MarkRead(ctx context.Context, id int64, userID types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2`, id, string(userID))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) CountUnread(ctx context.Context, userID types.ID) (int, error) {
	row := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND is_read = FALSE`, string(userID))
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) CountByOrderAndType(ctx context.Context, orderID types.ID, typ string) (int, error) {
	row := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE order_id = $1 AND type = $2`, string(orderID), typ)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
