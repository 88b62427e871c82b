package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID             int64           `json:"id"`
	Number         string          `json:"order_number"`
	UserID         int64           `json:"user_id"`
	AddressID      int64           `json:"address_id"`
	Status         Status          `json:"status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ShippingMethod string          `json:"shipping_method"`
	PaymentMethod  string          `json:"payment_method"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Item struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	// unit price captured when the line was created
	FinalPrice decimal.Decimal `json:"final_price"`
}

// Subtotal is FinalPrice * Quantity.
func (it Item) Subtotal() decimal.Decimal {
	return it.FinalPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Total sums the subtotals of items. An order's TotalAmount must always be
// equal to Total of its current items.
func Total(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}
