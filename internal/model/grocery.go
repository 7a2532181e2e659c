package model

import "time"

// List is a named shopping list. A list with Deleted set sits in the trash.
type List struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	Deleted     bool      `json:"deleted"`
	OwnerUserID int64     `json:"owner_user_id"`
}

type Item struct {
	ID        int64    `json:"id"`
	ListID    int64    `json:"list_id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Purchased bool     `json:"purchased"`
	Quantity  int      `json:"quantity"`
	Price     *float64 `json:"price"`
	Notes     *string  `json:"notes"`
	Order     int      `json:"order"`
}
