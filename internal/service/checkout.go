package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/cart"
	"github.com/MikeMC777/fulfillment-ecom/internal/metrics"
	"github.com/MikeMC777/fulfillment-ecom/internal/order"
	"github.com/MikeMC777/fulfillment-ecom/internal/store"
)

// Checkout turns a user's cart into an order in one transaction.
type Checkout struct {
	store   store.Store
	cache   cart.Cache
	metrics *metrics.Metrics
	log     *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewCheckout(st store.Store, cache cart.Cache, m *metrics.Metrics, log *zap.Logger, timeout time.Duration) *Checkout {
	if cache == nil {
		cache = cart.NoopCache{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Checkout{store: st, cache: cache, metrics: m, log: log, timeout: timeout, now: time.Now}
}

// PlaceOrder creates an order from callerID's cart.
//
// The cart is priced and checked against stock first, and any shortfall fails
// the checkout before anything is written. Stock is then taken with one
// conditional update; if fewer products were decremented than the quote found
// available, stock moved in between and everything is rolled back with
// apperr.ErrErrorUpdatingBalances, which the client may retry.
func (s *Checkout) PlaceOrder(ctx context.Context, callerID int64, req order.CreateOrderRequest) (*order.Detail, error) {
	req.ShippingMethod = strings.TrimSpace(req.ShippingMethod)
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if req.AddressID <= 0 || req.ShippingMethod == "" || req.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: address_id, shipping_method and payment_method are required", apperr.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var out *order.Detail
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		d, err := s.placeOrder(ctx, tx, callerID, req)
		out = d
		return err
	})
	if err != nil {
		s.metrics.Checkout(outcome(err))
		s.log.Info("checkout failed", zap.Int64("user_id", callerID), zap.Error(err))
		return nil, err
	}
	s.metrics.Checkout(metrics.OutcomeOK)
	if err := s.cache.Delete(ctx, callerID); err != nil {
		s.log.Warn("cart cache delete", zap.Int64("user_id", callerID), zap.Error(err))
	}
	s.log.Info("order placed",
		zap.Int64("order_id", out.ID), zap.String("order_number", out.Number),
		zap.Int64("user_id", callerID), zap.String("total", out.TotalAmount.String()))
	return out, nil
}

func (s *Checkout) placeOrder(ctx context.Context, tx store.Tx, userID int64, req order.CreateOrderRequest) (*order.Detail, error) {
	// a second checkout of the same cart waits here and then finds it empty
	c, err := tx.Carts().LockByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	quote, err := tx.Inventory().Quote(ctx, userID)
	if err != nil {
		return nil, err
	}
	if quote.TotalItems == 0 {
		return nil, apperr.ErrCartEmpty
	}
	if !quote.Complete() {
		return nil, fmt.Errorf("%w: %d of %d available", apperr.ErrNotAllProductsAvailable, quote.AvailableItems, quote.TotalItems)
	}

	// another user's address reads as missing
	addr, err := tx.Addresses().GetAddress(ctx, req.AddressID)
	if err != nil {
		return nil, err
	}
	if addr.UserID != userID {
		return nil, apperr.ErrAddressNotFound
	}

	lines, err := tx.Carts().GetItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	items := make([]order.Item, 0, len(lines))
	for _, l := range groupLines(lines) {
		p, err := tx.Products().GetByID(ctx, l.productID)
		if err != nil {
			return nil, err
		}
		if !p.Available(l.quantity) {
			return nil, fmt.Errorf("%w: product %d has %d, cart wants %d", apperr.ErrProductOutOfStock, p.ID, p.StockQuantity, l.quantity)
		}
		items = append(items, order.Item{ProductID: p.ID, Quantity: l.quantity, FinalPrice: p.Price})
	}
	// a price edited after the quote would break total == Σ items
	if !order.Total(items).Equal(quote.Total) {
		return nil, fmt.Errorf("%w: prices changed during checkout", apperr.ErrErrorUpdatingBalances)
	}

	o := &order.Order{
		Number:         order.NewNumber(userID, s.now()),
		UserID:         userID,
		AddressID:      addr.ID,
		Status:         order.StatusPending,
		TotalAmount:    quote.Total,
		ShippingMethod: req.ShippingMethod,
		PaymentMethod:  req.PaymentMethod,
	}
	if err := tx.Orders().Create(ctx, o); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].OrderID = o.ID
		if err := tx.Orders().AddItem(ctx, &items[i]); err != nil {
			return nil, err
		}
	}

	n, err := tx.Inventory().DecrementForCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if n != quote.AvailableItems {
		return nil, fmt.Errorf("%w: %d of %d products decremented", apperr.ErrErrorUpdatingBalances, n, quote.AvailableItems)
	}

	if _, err := tx.Carts().ClearItems(ctx, c.ID); err != nil {
		return nil, err
	}
	if err := tx.Carts().Touch(ctx, c.ID); err != nil {
		return nil, err
	}
	return &order.Detail{Order: *o, Items: items}, nil
}

type cartLine struct {
	productID int64
	quantity  int
}

// groupLines sums cart lines per product, keeping first-seen order.
func groupLines(items []cart.Item) []cartLine {
	idx := map[int64]int{}
	var lines []cartLine
	for _, it := range items {
		if i, ok := idx[it.ProductID]; ok {
			lines[i].quantity += it.Quantity
			continue
		}
		idx[it.ProductID] = len(lines)
		lines = append(lines, cartLine{productID: it.ProductID, quantity: it.Quantity})
	}
	return lines
}

func outcome(err error) string {
	switch {
	case errors.Is(err, apperr.ErrErrorUpdatingBalances):
		return metrics.OutcomeRace
	case errors.Is(err, context.DeadlineExceeded), apperr.From(err) == apperr.Internal:
		return metrics.OutcomeError
	default:
		return metrics.OutcomeRejected
	}
}
