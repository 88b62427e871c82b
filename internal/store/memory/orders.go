package memory

import (
	"context"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/order"
)

type orderRepo struct{ *txn }

func (r *orderRepo) Create(_ context.Context, o *order.Order) error {
	for _, cur := range r.st.orders {
		if cur.Number == o.Number {
			return apperr.ErrInvalidInput
		}
	}
	r.st.seq.order++
	now := r.now()
	o.ID = r.st.seq.order
	o.CreatedAt, o.UpdatedAt = now, now
	r.st.orders[o.ID] = *o
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := r.st.orders[id]
	if !ok {
		return nil, apperr.ErrOrderNotFound
	}
	return &o, nil
}

// GetForUpdate needs no lock: transactions are already serialized.
func (r *orderRepo) GetForUpdate(ctx context.Context, id int64) (*order.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) ListByUser(_ context.Context, userID int64, limit, offset int) ([]order.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	keys := sortedKeys(r.st.orders)
	out := []order.Order{}
	for i := len(keys) - 1; i >= 0; i-- {
		if o := r.st.orders[keys[i]]; o.UserID == userID {
			out = append(out, o)
		}
	}
	if offset >= len(out) {
		return []order.Order{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *orderRepo) Update(_ context.Context, o *order.Order) error {
	cur, ok := r.st.orders[o.ID]
	if !ok {
		return apperr.ErrOrderNotFound
	}
	cur.Status = o.Status
	cur.TotalAmount = o.TotalAmount
	cur.ShippingMethod = o.ShippingMethod
	cur.PaymentMethod = o.PaymentMethod
	cur.UpdatedAt = r.now()
	o.UpdatedAt = cur.UpdatedAt
	r.st.orders[o.ID] = cur
	return nil
}

func (r *orderRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.st.orders[id]; !ok {
		return apperr.ErrOrderNotFound
	}
	delete(r.st.orders, id)
	for itemID, it := range r.st.orderItems {
		if it.OrderID == id {
			delete(r.st.orderItems, itemID)
		}
	}
	return nil
}

func (r *orderRepo) AddItem(_ context.Context, it *order.Item) error {
	if _, ok := r.st.orders[it.OrderID]; !ok {
		return apperr.ErrOrderNotFound
	}
	for _, cur := range r.st.orderItems {
		if cur.OrderID == it.OrderID && cur.ProductID == it.ProductID {
			return apperr.ErrProductAlreadyInOrder
		}
	}
	r.st.seq.orderItem++
	it.ID = r.st.seq.orderItem
	r.st.orderItems[it.ID] = *it
	return nil
}

func (r *orderRepo) GetItem(_ context.Context, id int64) (*order.Item, error) {
	it, ok := r.st.orderItems[id]
	if !ok {
		return nil, apperr.ErrOrderItemNotFound
	}
	return &it, nil
}

func (r *orderRepo) GetItems(_ context.Context, orderID int64) ([]order.Item, error) {
	items := []order.Item{}
	for _, id := range sortedKeys(r.st.orderItems) {
		if it := r.st.orderItems[id]; it.OrderID == orderID {
			items = append(items, it)
		}
	}
	return items, nil
}

func (r *orderRepo) ItemsByOrders(_ context.Context, orderIDs []int64) ([]order.Item, error) {
	want := make(map[int64]bool, len(orderIDs))
	for _, id := range orderIDs {
		want[id] = true
	}
	items := []order.Item{}
	for _, id := range sortedKeys(r.st.orderItems) {
		if it := r.st.orderItems[id]; want[it.OrderID] {
			items = append(items, it)
		}
	}
	return items, nil
}

func (r *orderRepo) FindItemByProduct(_ context.Context, orderID, productID int64) (*order.Item, error) {
	for _, it := range r.st.orderItems {
		if it.OrderID == orderID && it.ProductID == productID {
			return &it, nil
		}
	}
	return nil, apperr.ErrOrderItemNotFound
}

func (r *orderRepo) UpdateItemQuantity(_ context.Context, id int64, quantity int) error {
	it, ok := r.st.orderItems[id]
	if !ok {
		return apperr.ErrOrderItemNotFound
	}
	it.Quantity = quantity
	r.st.orderItems[id] = it
	return nil
}

func (r *orderRepo) DeleteItem(_ context.Context, id int64) error {
	if _, ok := r.st.orderItems[id]; !ok {
		return apperr.ErrOrderItemNotFound
	}
	delete(r.st.orderItems, id)
	return nil
}

func (r *orderRepo) DeleteItems(_ context.Context, orderID int64) error {
	for id, it := range r.st.orderItems {
		if it.OrderID == orderID {
			delete(r.st.orderItems, id)
		}
	}
	return nil
}
