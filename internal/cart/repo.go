// Package cart is the pre-order basket: one cart per user with advisory
// lines. Stock is never checked here; it is authoritative only at checkout.
package cart

import "context"

type Repository interface {
	// GetByUser fails with apperr.ErrCartNotFound when the user has no cart.
	GetByUser(ctx context.Context, userID int64) (*Cart, error)
	// LockByUser is GetByUser holding the cart row until the transaction
	// ends, so checkouts of one cart run one at a time.
	LockByUser(ctx context.Context, userID int64) (*Cart, error)
	GetByID(ctx context.Context, id int64) (*Cart, error)
	// Create returns the user's cart, inserting it if missing.
	Create(ctx context.Context, userID int64) (*Cart, error)
	Touch(ctx context.Context, id int64) error

	GetItems(ctx context.Context, cartID int64) ([]Item, error)
	GetItem(ctx context.Context, id int64) (*Item, error)
	AddItem(ctx context.Context, it *Item) error
	UpdateItem(ctx context.Context, it *Item) error
	DeleteItem(ctx context.Context, id int64) error
	// ClearItems deletes every line of the cart; the cart row stays.
	ClearItems(ctx context.Context, cartID int64) (int64, error)
}
