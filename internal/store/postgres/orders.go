package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/order"
)

type OrderRepo struct{ db DBTX }

var _ order.Repository = (*OrderRepo)(nil)

const orderColumns = `id, order_number, user_id, address_id, status, total_amount::text,
	shipping_method, payment_method, created_at, updated_at`

func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO orders (order_number, user_id, address_id, status, total_amount,
			shipping_method, payment_method, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
		RETURNING id, created_at, updated_at
	`, o.Number, o.UserID, o.AddressID, string(o.Status), o.TotalAmount.String(),
		o.ShippingMethod, o.PaymentMethod).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id int64) (*order.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id)
}

func (r *OrderRepo) getOne(ctx context.Context, sql string, id int64) (*order.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrOrderNotFound
	}
	return o, err
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]order.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders WHERE user_id=$1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *OrderRepo) Update(ctx context.Context, o *order.Order) error {
	err := r.db.QueryRow(ctx, `
		UPDATE orders
		SET status=$2, total_amount=$3, shipping_method=$4, payment_method=$5, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at
	`, o.ID, string(o.Status), o.TotalAmount.String(), o.ShippingMethod, o.PaymentMethod).Scan(&o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.ErrOrderNotFound
	}
	return err
}

func (r *OrderRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepo) AddItem(ctx context.Context, it *order.Item) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, final_price)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, it.OrderID, it.ProductID, it.Quantity, it.FinalPrice.String()).Scan(&it.ID)
	if isUniqueViolation(err) {
		return apperr.ErrProductAlreadyInOrder
	}
	return err
}

const itemColumns = `id, order_id, product_id, quantity, final_price::text`

func (r *OrderRepo) GetItem(ctx context.Context, id int64) (*order.Item, error) {
	it, err := scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM order_items WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrOrderItemNotFound
	}
	return it, err
}

func (r *OrderRepo) FindItemByProduct(ctx context.Context, orderID, productID int64) (*order.Item, error) {
	it, err := scanItem(r.db.QueryRow(ctx, `
		SELECT `+itemColumns+` FROM order_items WHERE order_id=$1 AND product_id=$2
	`, orderID, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrOrderItemNotFound
	}
	return it, err
}

func (r *OrderRepo) GetItems(ctx context.Context, orderID int64) ([]order.Item, error) {
	return r.queryItems(ctx, `SELECT `+itemColumns+` FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
}

func (r *OrderRepo) ItemsByOrders(ctx context.Context, orderIDs []int64) ([]order.Item, error) {
	if len(orderIDs) == 0 {
		return []order.Item{}, nil
	}
	return r.queryItems(ctx, `
		SELECT `+itemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, id
	`, orderIDs)
}

func (r *OrderRepo) queryItems(ctx context.Context, sql string, args ...any) ([]order.Item, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []order.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *OrderRepo) UpdateItemQuantity(ctx context.Context, id int64, quantity int) error {
	tag, err := r.db.Exec(ctx, `UPDATE order_items SET quantity=$2 WHERE id=$1`, id, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrOrderItemNotFound
	}
	return nil
}

func (r *OrderRepo) DeleteItem(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrOrderItemNotFound
	}
	return nil
}

func (r *OrderRepo) DeleteItems(ctx context.Context, orderID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, orderID)
	return err
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o      order.Order
		status string
		total  string
	)
	if err := row.Scan(&o.ID, &o.Number, &o.UserID, &o.AddressID, &status, &total,
		&o.ShippingMethod, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	amount, err := parseMoney(total)
	if err != nil {
		return nil, err
	}
	o.Status = order.Status(status)
	o.TotalAmount = amount
	return &o, nil
}

func scanItem(row pgx.Row) (*order.Item, error) {
	var (
		it    order.Item
		price string
	)
	if err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &price); err != nil {
		return nil, err
	}
	p, err := parseMoney(price)
	if err != nil {
		return nil, err
	}
	it.FinalPrice = p
	return &it, nil
}
