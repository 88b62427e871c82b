package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/metrics"
	"github.com/MikeMC777/fulfillment-ecom/internal/notify"
	"github.com/MikeMC777/fulfillment-ecom/internal/order"
	"github.com/MikeMC777/fulfillment-ecom/internal/store"
)

// OrderService changes orders after checkout. Every operation runs in one
// transaction that locks the order row, and every change of items ends with
// the order total recomputed from all of its items.
type OrderService struct {
	store    store.Store
	perms    PermissionChecker
	notifier notify.Dispatcher
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewOrderService(st store.Store, perms PermissionChecker, n notify.Dispatcher, m *metrics.Metrics, log *zap.Logger) *OrderService {
	return &OrderService{store: st, perms: perms, notifier: n, metrics: m, log: log}
}

func (s *OrderService) Get(ctx context.Context, callerID, orderID int64) (*order.Detail, error) {
	var out *order.Detail
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		o, err := tx.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := authorize(ctx, s.perms, callerID, o.UserID); err != nil {
			return err
		}
		items, err := tx.Orders().GetItems(ctx, o.ID)
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

// List returns userID's orders, newest first, with their items.
func (s *OrderService) List(ctx context.Context, callerID, userID int64, limit, offset int) ([]order.Detail, error) {
	if err := authorize(ctx, s.perms, callerID, userID); err != nil {
		return nil, err
	}
	var out []order.Detail
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		orders, err := tx.Orders().ListByUser(ctx, userID, limit, offset)
		if err != nil {
			return err
		}
		ids := make([]int64, len(orders))
		for i, o := range orders {
			ids[i] = o.ID
		}
		items, err := tx.Orders().ItemsByOrders(ctx, ids)
		if err != nil {
			return err
		}
		byOrder := map[int64][]order.Item{}
		for _, it := range items {
			byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
		}
		out = make([]order.Detail, len(orders))
		for i, o := range orders {
			its := byOrder[o.ID]
			if its == nil {
				its = []order.Item{}
			}
			out[i] = order.Detail{Order: o, Items: its}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ChangeStatus moves an order to next. Cancelling returns the order's units
// to stock. Entering paid, shipped or delivered enqueues a notification once
// the change is committed.
func (s *OrderService) ChangeStatus(ctx context.Context, callerID, orderID int64, next order.Status) (*order.StatusChange, error) {
	var (
		change   order.StatusChange
		updated  order.Order
		returned int
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		o, err := s.lockOrder(ctx, tx, callerID, orderID)
		if err != nil {
			return err
		}
		if err := o.Status.CheckTransition(next); err != nil {
			return err
		}
		change = order.StatusChange{OrderID: o.ID, OldStatus: o.Status, NewStatus: next}
		if next == o.Status {
			return nil
		}
		if next == order.StatusCancelled {
			if returned, err = restock(ctx, tx, o.ID); err != nil {
				return err
			}
		}
		o.Status = next
		if err := tx.Orders().Update(ctx, o); err != nil {
			return err
		}
		updated = *o
		return nil
	})
	if err != nil {
		return nil, err
	}
	if change.OldStatus == change.NewStatus {
		return &change, nil
	}

	s.metrics.StockReturned("cancel", returned)
	s.log.Info("order status changed",
		zap.Int64("order_id", orderID),
		zap.String("from", string(change.OldStatus)),
		zap.String("to", string(change.NewStatus)))
	if next.Notifies() {
		s.dispatch(ctx, &updated)
	}
	return &change, nil
}

// Replace sets both header fields of a pending order.
func (s *OrderService) Replace(ctx context.Context, callerID, orderID int64, req order.ReplaceOrderRequest) (*order.Order, error) {
	shipping := strings.TrimSpace(req.ShippingMethod)
	payment := strings.TrimSpace(req.PaymentMethod)
	if shipping == "" || payment == "" {
		return nil, fmt.Errorf("%w: shipping_method and payment_method are required", apperr.ErrInvalidInput)
	}
	return s.editHeader(ctx, callerID, orderID, func(o *order.Order) {
		o.ShippingMethod = shipping
		o.PaymentMethod = payment
	})
}

// Patch sets the header fields present in req.
func (s *OrderService) Patch(ctx context.Context, callerID, orderID int64, req order.PatchOrderRequest) (*order.Order, error) {
	var shipping, payment string
	if req.ShippingMethod != nil {
		if shipping = strings.TrimSpace(*req.ShippingMethod); shipping == "" {
			return nil, fmt.Errorf("%w: shipping_method must not be empty", apperr.ErrInvalidInput)
		}
	}
	if req.PaymentMethod != nil {
		if payment = strings.TrimSpace(*req.PaymentMethod); payment == "" {
			return nil, fmt.Errorf("%w: payment_method must not be empty", apperr.ErrInvalidInput)
		}
	}
	return s.editHeader(ctx, callerID, orderID, func(o *order.Order) {
		if shipping != "" {
			o.ShippingMethod = shipping
		}
		if payment != "" {
			o.PaymentMethod = payment
		}
	})
}

func (s *OrderService) editHeader(ctx context.Context, callerID, orderID int64, apply func(*order.Order)) (*order.Order, error) {
	var out *order.Order
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		o, err := s.lockOrder(ctx, tx, callerID, orderID)
		if err != nil {
			return err
		}
		if err := o.Status.CheckEditable(); err != nil {
			return err
		}
		apply(o)
		// the total is never taken from the request
		if _, err := resum(ctx, tx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a pending or cancelled order with its items. Units of a
// pending order go back to stock; a cancelled order returned them already.
func (s *OrderService) Delete(ctx context.Context, callerID, orderID int64) error {
	var returned int
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		o, err := s.lockOrder(ctx, tx, callerID, orderID)
		if err != nil {
			return err
		}
		if !o.Status.Deletable() {
			return fmt.Errorf("%w: order is %s", apperr.ErrOrderCannotBeDeleted, o.Status)
		}
		if o.Status == order.StatusPending {
			if returned, err = restock(ctx, tx, o.ID); err != nil {
				return err
			}
		}
		if err := tx.Orders().DeleteItems(ctx, o.ID); err != nil {
			return err
		}
		return tx.Orders().Delete(ctx, o.ID)
	})
	if err != nil {
		return err
	}
	s.metrics.StockReturned("order_deleted", returned)
	s.log.Info("order deleted", zap.Int64("order_id", orderID), zap.Int("units_returned", returned))
	return nil
}

// lockOrder loads and locks the order, checking the caller may act on it.
func (s *OrderService) lockOrder(ctx context.Context, tx store.Tx, callerID, orderID int64) (*order.Order, error) {
	o, err := tx.Orders().GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, s.perms, callerID, o.UserID); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) dispatch(ctx context.Context, o *order.Order) {
	if s.notifier == nil {
		return
	}
	ev := notify.StatusChanged(o)
	if err := s.notifier.Enqueue(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn("notification not enqueued",
			zap.Int64("order_id", o.ID), zap.String("status", string(o.Status)), zap.Error(err))
	}
}

// restock returns every unit of the order to stock and reports how many.
func restock(ctx context.Context, tx store.Tx, orderID int64) (int, error) {
	items, err := tx.Orders().GetItems(ctx, orderID)
	if err != nil {
		return 0, err
	}
	units := 0
	for _, it := range items {
		if err := tx.Inventory().Adjust(ctx, it.ProductID, it.Quantity); err != nil {
			return 0, err
		}
		units += it.Quantity
	}
	return units, nil
}

// resum sets the order total to the sum of its current items and saves it.
func resum(ctx context.Context, tx store.Tx, o *order.Order) ([]order.Item, error) {
	items, err := tx.Orders().GetItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.TotalAmount = order.Total(items)
	if err := tx.Orders().Update(ctx, o); err != nil {
		return nil, err
	}
	return items, nil
}
