package memory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/inventory"
	"github.com/MikeMC777/fulfillment-ecom/internal/product"
	"github.com/MikeMC777/fulfillment-ecom/internal/user"
)

type ledger struct{ *txn }

type cartLine struct {
	productID int64
	quantity  int
}

// cartLines groups the user's cart lines per product, in product id order.
func (l *ledger) cartLines(userID int64) []cartLine {
	var cartID int64
	for _, c := range l.st.carts {
		if c.UserID == userID {
			cartID = c.ID
			break
		}
	}
	if cartID == 0 {
		return nil
	}
	qty := map[int64]int{}
	for _, it := range l.st.cartItems {
		if it.CartID == cartID {
			qty[it.ProductID] += it.Quantity
		}
	}
	lines := make([]cartLine, 0, len(qty))
	for _, pid := range sortedKeys(qty) {
		lines = append(lines, cartLine{productID: pid, quantity: qty[pid]})
	}
	return lines
}

func (l *ledger) Quote(_ context.Context, userID int64) (inventory.Quote, error) {
	q := inventory.Quote{Total: decimal.Zero}
	for _, line := range l.cartLines(userID) {
		p, ok := l.st.products[line.productID]
		if !ok {
			continue
		}
		q.TotalItems++
		if p.Available(line.quantity) {
			q.AvailableItems++
			q.Total = q.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.quantity))))
		}
	}
	return q, nil
}

func (l *ledger) DecrementForCart(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, line := range l.cartLines(userID) {
		p, ok := l.st.products[line.productID]
		if !ok || !p.Available(line.quantity) {
			continue
		}
		p.StockQuantity -= line.quantity
		p.UpdatedAt = l.now()
		l.st.products[p.ID] = p
		n++
	}
	return n, nil
}

func (l *ledger) Adjust(_ context.Context, productID int64, delta int) error {
	if delta == 0 {
		return nil
	}
	p, ok := l.st.products[productID]
	if !ok {
		return apperr.ErrProductNotFound
	}
	if p.StockQuantity+delta < 0 {
		return fmt.Errorf("%w: product %d has %d, change %d", apperr.ErrProductOutOfStock, productID, p.StockQuantity, delta)
	}
	p.StockQuantity += delta
	p.UpdatedAt = l.now()
	l.st.products[productID] = p
	return nil
}

type productRepo struct{ *txn }

func (r *productRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, apperr.ErrProductNotFound
	}
	return &p, nil
}

type addressRepo struct{ *txn }

func (r *addressRepo) GetAddress(_ context.Context, id int64) (*user.Address, error) {
	a, ok := r.st.addresses[id]
	if !ok {
		return nil, apperr.ErrAddressNotFound
	}
	return &a, nil
}
