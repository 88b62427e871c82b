package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/inventory"
)

// cartLinesSQL groups the user's cart lines per product.
const cartLinesSQL = `
	SELECT ci.product_id, SUM(ci.quantity) AS quantity
	FROM cart_items ci
	JOIN carts c ON c.id = ci.cart_id
	WHERE c.user_id = $1
	GROUP BY ci.product_id`

type Ledger struct{ db DBTX }

func NewLedger(db DBTX) *Ledger { return &Ledger{db: db} }

func (l *Ledger) Quote(ctx context.Context, userID int64) (inventory.Quote, error) {
	var (
		q     inventory.Quote
		total string
	)
	err := l.db.QueryRow(ctx, `
		WITH cart_lines AS (`+cartLinesSQL+`)
		SELECT
			COALESCE(SUM(p.price * cl.quantity) FILTER (WHERE p.stock_quantity >= cl.quantity), 0)::text,
			COUNT(*) FILTER (WHERE p.stock_quantity >= cl.quantity),
			COUNT(*)
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
	`, userID).Scan(&total, &q.AvailableItems, &q.TotalItems)
	if err != nil {
		return inventory.Quote{}, fmt.Errorf("quote cart: %w", err)
	}
	if q.Total, err = parseMoney(total); err != nil {
		return inventory.Quote{}, err
	}
	return q, nil
}

// DecrementForCart is the serialization point between concurrent checkouts:
// a row whose stock was lowered by another transaction is re-checked against
// the predicate before it is written.
func (l *Ledger) DecrementForCart(ctx context.Context, userID int64) (int64, error) {
	tag, err := l.db.Exec(ctx, `
		UPDATE products p
		SET stock_quantity = p.stock_quantity - cl.quantity,
		    updated_at = NOW()
		FROM (`+cartLinesSQL+`) cl
		WHERE p.id = cl.product_id
		  AND p.stock_quantity >= cl.quantity
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("decrement stock: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (l *Ledger) Adjust(ctx context.Context, productID int64, delta int) error {
	if delta == 0 {
		return nil
	}
	tag, err := l.db.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $2,
		    updated_at = NOW()
		WHERE id = $1 AND stock_quantity + $2 >= 0
	`, productID, delta)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var stock int
	err = l.db.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.ErrProductNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: product %d has %d, change %d", apperr.ErrProductOutOfStock, productID, stock, delta)
}
