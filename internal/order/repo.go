// Package order is the order aggregate: the order header, its items, the
// status machine and the persistence contract. Total recomputation is the
// aggregate's job whenever items change.
package order

import "context"

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	// GetForUpdate is GetByID holding the row until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Order, error)
	// Update writes status, total, shipping and payment method.
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id int64) error

	// AddItem fails with apperr.ErrProductAlreadyInOrder when the order
	// already has a line for the product.
	AddItem(ctx context.Context, it *Item) error
	GetItem(ctx context.Context, id int64) (*Item, error)
	GetItems(ctx context.Context, orderID int64) ([]Item, error)
	ItemsByOrders(ctx context.Context, orderIDs []int64) ([]Item, error)
	FindItemByProduct(ctx context.Context, orderID, productID int64) (*Item, error)
	UpdateItemQuantity(ctx context.Context, id int64, quantity int) error
	DeleteItem(ctx context.Context, id int64) error
	DeleteItems(ctx context.Context, orderID int64) error
}
