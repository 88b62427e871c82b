// Package store groups the repositories the fulfillment core writes through
// into one transactional unit.
package store

import (
	"context"

	"github.com/MikeMC777/fulfillment-ecom/internal/cart"
	"github.com/MikeMC777/fulfillment-ecom/internal/inventory"
	"github.com/MikeMC777/fulfillment-ecom/internal/order"
	"github.com/MikeMC777/fulfillment-ecom/internal/product"
	"github.com/MikeMC777/fulfillment-ecom/internal/user"
)

// Tx exposes repositories bound to one open transaction.
type Tx interface {
	Carts() cart.Repository
	Orders() order.Repository
	Inventory() inventory.Ledger
	Products() product.Getter
	Addresses() user.AddressReader
}

// Store runs fn inside a transaction. The transaction commits when fn returns
// nil and is rolled back on any error, panic or context expiry, leaving no
// partial write behind.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close()
}
