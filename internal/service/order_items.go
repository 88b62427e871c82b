package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/order"
	"github.com/MikeMC777/fulfillment-ecom/internal/store"
)

// AddItems appends products to a pending order, taking their units from
// stock at the current price.
func (s *OrderService) AddItems(ctx context.Context, callerID, orderID int64, reqs []order.AddItemRequest) (*order.AddItemsResult, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no items", apperr.ErrInvalidInput)
	}
	for _, r := range reqs {
		if r.ProductID <= 0 || r.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product_id and a positive quantity are required", apperr.ErrInvalidInput)
		}
	}

	var res *order.AddItemsResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		o, err := s.lockOrder(ctx, tx, callerID, orderID)
		if err != nil {
			return err
		}
		if !o.Status.Editable() {
			return fmt.Errorf("%w: order is %s", apperr.ErrOrderCannotBeModified, o.Status)
		}

		added := make([]order.Item, 0, len(reqs))
		for _, r := range reqs {
			p, err := tx.Products().GetByID(ctx, r.ProductID)
			if err != nil {
				return err
			}
			if !p.Available(r.Quantity) {
				return fmt.Errorf("%w: product %d has %d, wanted %d", apperr.ErrProductOutOfStock, p.ID, p.StockQuantity, r.Quantity)
			}
			if _, err := tx.Orders().FindItemByProduct(ctx, o.ID, p.ID); err == nil {
				return fmt.Errorf("%w: product %d", apperr.ErrProductAlreadyInOrder, p.ID)
			} else if !apperr.IsNotFound(err) {
				return err
			}
			if err := tx.Inventory().Adjust(ctx, p.ID, -r.Quantity); err != nil {
				return err
			}
			it := order.Item{OrderID: o.ID, ProductID: p.ID, Quantity: r.Quantity, FinalPrice: p.Price}
			if err := tx.Orders().AddItem(ctx, &it); err != nil {
				return err
			}
			added = append(added, it)
		}

		if _, err := resum(ctx, tx, o); err != nil {
			return err
		}
		res = &order.AddItemsResult{
			OrderID:    o.ID,
			Added:      added,
			TotalAdded: order.Total(added),
			NewTotal:   o.TotalAmount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *OrderService) GetItem(ctx context.Context, callerID, itemID int64) (*order.Item, error) {
	var out *order.Item
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		it, err := tx.Orders().GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		o, err := tx.Orders().GetByID(ctx, it.OrderID)
		if err != nil {
			return err
		}
		if err := authorize(ctx, s.perms, callerID, o.UserID); err != nil {
			return err
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *OrderService) ListItems(ctx context.Context, callerID, orderID int64) ([]order.Item, error) {
	d, err := s.Get(ctx, callerID, orderID)
	if err != nil {
		return nil, err
	}
	return d.Items, nil
}

// UpdateItem sets the quantity of a line of a pending order. The difference
// goes back to, or is taken from, stock.
func (s *OrderService) UpdateItem(ctx context.Context, callerID, itemID int64, req order.UpdateItemRequest) (*order.Detail, error) {
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", apperr.ErrInvalidInput)
	}

	var out *order.Detail
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		it, o, err := s.lockItem(ctx, tx, callerID, itemID)
		if err != nil {
			return err
		}
		if !o.Status.Editable() {
			return fmt.Errorf("%w: order is %s", apperr.ErrOrderCannotBeModified, o.Status)
		}
		if req.Quantity != nil && *req.Quantity != it.Quantity {
			// positive returns units, negative consumes more
			stockChange := it.Quantity - *req.Quantity
			if err := tx.Inventory().Adjust(ctx, it.ProductID, stockChange); err != nil {
				return err
			}
			if err := tx.Orders().UpdateItemQuantity(ctx, it.ID, *req.Quantity); err != nil {
				return err
			}
		}
		items, err := resum(ctx, tx, o)
		if err != nil {
			return err
		}
		out = &order.Detail{Order: *o, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteItem removes a line of a pending or cancelled order. Units of a
// pending order go back to stock.
func (s *OrderService) DeleteItem(ctx context.Context, callerID, itemID int64) (*order.Order, error) {
	var (
		out      *order.Order
		returned int
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		it, o, err := s.lockItem(ctx, tx, callerID, itemID)
		if err != nil {
			return err
		}
		if !o.Status.Deletable() {
			return fmt.Errorf("%w: order is %s", apperr.ErrOrderCannotBeDeleted, o.Status)
		}
		if o.Status == order.StatusPending {
			if err := tx.Inventory().Adjust(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
			returned = it.Quantity
		}
		if err := tx.Orders().DeleteItem(ctx, it.ID); err != nil {
			return err
		}
		if _, err := resum(ctx, tx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.StockReturned("item_deleted", returned)
	s.log.Info("order item deleted", zap.Int64("order_id", out.ID), zap.Int64("item_id", itemID))
	return out, nil
}

// lockItem loads an order line and locks its order.
func (s *OrderService) lockItem(ctx context.Context, tx store.Tx, callerID, itemID int64) (*order.Item, *order.Order, error) {
	it, err := tx.Orders().GetItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	o, err := s.lockOrder(ctx, tx, callerID, it.OrderID)
	if err != nil {
		return nil, nil, err
	}
	return it, o, nil
}
