// README: Per-user notification mailbox records.
package notification

import (
	"time"

	"parcelbid/internal/types"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    types.ID  `json:"user_id"`
	OrderID   *types.ID `json:"order_id,omitempty"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
