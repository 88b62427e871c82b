// Package product describes catalog products as seen by the fulfillment core.
// Rows are owned by the catalog; only stock_quantity is changed here, and only
// through the inventory ledger.
package product

import "context"

type Query struct {
	Q      string
	Limit  int
	Offset int
}

// Getter is the read the fulfillment core needs from the catalog.
type Getter interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
}

type Repository interface {
	Getter
	Create(ctx context.Context, p *Product) error
	List(ctx context.Context, q Query) ([]Product, error)
	Update(ctx context.Context, p *Product, updatePrice bool) error
}
