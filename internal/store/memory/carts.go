package memory

import (
	"context"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/cart"
)

type cartRepo struct{ *txn }

func (r *cartRepo) GetByUser(_ context.Context, userID int64) (*cart.Cart, error) {
	for _, id := range sortedKeys(r.st.carts) {
		if c := r.st.carts[id]; c.UserID == userID {
			return &c, nil
		}
	}
	return nil, apperr.ErrCartNotFound
}

// LockByUser needs no lock: transactions are already serialized.
func (r *cartRepo) LockByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	return r.GetByUser(ctx, userID)
}

func (r *cartRepo) GetByID(_ context.Context, id int64) (*cart.Cart, error) {
	c, ok := r.st.carts[id]
	if !ok {
		return nil, apperr.ErrCartNotFound
	}
	return &c, nil
}

func (r *cartRepo) Create(ctx context.Context, userID int64) (*cart.Cart, error) {
	if c, err := r.GetByUser(ctx, userID); err == nil {
		return c, nil
	}
	r.st.seq.cart++
	now := r.now()
	c := cart.Cart{ID: r.st.seq.cart, UserID: userID, CreatedAt: now, UpdatedAt: now}
	r.st.carts[c.ID] = c
	return &c, nil
}

func (r *cartRepo) Touch(_ context.Context, id int64) error {
	c, ok := r.st.carts[id]
	if !ok {
		return apperr.ErrCartNotFound
	}
	c.UpdatedAt = r.now()
	r.st.carts[id] = c
	return nil
}

func (r *cartRepo) GetItems(_ context.Context, cartID int64) ([]cart.Item, error) {
	items := []cart.Item{}
	for _, id := range sortedKeys(r.st.cartItems) {
		if it := r.st.cartItems[id]; it.CartID == cartID {
			items = append(items, it)
		}
	}
	return items, nil
}

func (r *cartRepo) GetItem(_ context.Context, id int64) (*cart.Item, error) {
	it, ok := r.st.cartItems[id]
	if !ok {
		return nil, apperr.ErrCartItemNotFound
	}
	return &it, nil
}

func (r *cartRepo) AddItem(_ context.Context, it *cart.Item) error {
	if _, ok := r.st.carts[it.CartID]; !ok {
		return apperr.ErrCartNotFound
	}
	if _, ok := r.st.products[it.ProductID]; !ok {
		return apperr.ErrProductNotFound
	}
	r.st.seq.cartItem++
	it.ID = r.st.seq.cartItem
	r.st.cartItems[it.ID] = *it
	return nil
}

func (r *cartRepo) UpdateItem(_ context.Context, it *cart.Item) error {
	cur, ok := r.st.cartItems[it.ID]
	if !ok {
		return apperr.ErrCartItemNotFound
	}
	cur.Quantity = it.Quantity
	cur.SelectedSize = it.SelectedSize
	r.st.cartItems[it.ID] = cur
	return nil
}

func (r *cartRepo) DeleteItem(_ context.Context, id int64) error {
	if _, ok := r.st.cartItems[id]; !ok {
		return apperr.ErrCartItemNotFound
	}
	delete(r.st.cartItems, id)
	return nil
}

func (r *cartRepo) ClearItems(_ context.Context, cartID int64) (int64, error) {
	var n int64
	for id, it := range r.st.cartItems {
		if it.CartID == cartID {
			delete(r.st.cartItems, id)
			n++
		}
	}
	return n, nil
}
