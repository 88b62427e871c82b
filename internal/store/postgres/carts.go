package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/cart"
)

type CartRepo struct{ db DBTX }

var _ cart.Repository = (*CartRepo)(nil)

func (r *CartRepo) GetByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	return r.getOne(ctx, `
		SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id=$1
	`, userID)
}

func (r *CartRepo) LockByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	return r.getOne(ctx, `
		SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id=$1 FOR UPDATE
	`, userID)
}

func (r *CartRepo) GetByID(ctx context.Context, id int64) (*cart.Cart, error) {
	return r.getOne(ctx, `
		SELECT id, user_id, created_at, updated_at FROM carts WHERE id=$1
	`, id)
}

func (r *CartRepo) getOne(ctx context.Context, sql string, arg int64) (*cart.Cart, error) {
	var c cart.Cart
	err := r.db.QueryRow(ctx, sql, arg).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CartRepo) Create(ctx context.Context, userID int64) (*cart.Cart, error) {
	var c cart.Cart
	// DO UPDATE so RETURNING also yields the existing row
	err := r.db.QueryRow(ctx, `
		INSERT INTO carts (user_id, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, created_at, updated_at
	`, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CartRepo) Touch(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *CartRepo) GetItems(ctx context.Context, cartID int64) ([]cart.Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, cart_id, product_id, quantity, selected_size
		FROM cart_items WHERE cart_id=$1
		ORDER BY id
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []cart.Item{}
	for rows.Next() {
		var it cart.Item
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.SelectedSize); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *CartRepo) GetItem(ctx context.Context, id int64) (*cart.Item, error) {
	var it cart.Item
	err := r.db.QueryRow(ctx, `
		SELECT id, cart_id, product_id, quantity, selected_size
		FROM cart_items WHERE id=$1
	`, id).Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.SelectedSize)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrCartItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *CartRepo) AddItem(ctx context.Context, it *cart.Item) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, selected_size)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, it.CartID, it.ProductID, it.Quantity, it.SelectedSize).Scan(&it.ID)
}

func (r *CartRepo) UpdateItem(ctx context.Context, it *cart.Item) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE cart_items SET quantity = $2, selected_size = $3 WHERE id = $1
	`, it.ID, it.Quantity, it.SelectedSize)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepo) DeleteItem(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepo) ClearItems(ctx context.Context, cartID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
