// Package inventory is the single source of truth for product availability.
// Every change of products.stock_quantity goes through a Ledger, and every
// Ledger write is conditional on the quantity present at write time.
package inventory

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is the availability summary of a user's cart. Cart lines are grouped
// per product before counting.
type Quote struct {
	// Total is Σ price*quantity over the available lines only.
	Total          decimal.Decimal
	AvailableItems int64
	TotalItems     int64
}

// Complete reports whether every line of the cart can be served.
func (q Quote) Complete() bool { return q.AvailableItems == q.TotalItems }

type Ledger interface {
	// Quote prices the user's cart against current stock.
	Quote(ctx context.Context, userID int64) (Quote, error)
	// DecrementForCart takes the cart quantities out of stock in a single
	// set based statement, skipping products that no longer have enough
	// units, and returns how many products were updated.
	DecrementForCart(ctx context.Context, userID int64) (int64, error)
	// Adjust adds delta (negative to consume) to a product's stock. It fails
	// with apperr.ErrProductOutOfStock without writing when the result would
	// be negative.
	Adjust(ctx context.Context, productID int64, delta int) error
}
