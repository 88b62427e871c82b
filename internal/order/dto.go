package order

import "github.com/shopspring/decimal"

// CreateOrderRequest payload of checkout. Items come from the caller's cart.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	AddressID      int64  `json:"address_id"      example:"12"`
	ShippingMethod string `json:"shipping_method" example:"courier"`
	PaymentMethod  string `json:"payment_method"  example:"card"`
}

// AddItemRequest payload of a line added to a pending order.
// swagger:model AddItemRequest
type AddItemRequest struct {
	ProductID int64 `json:"product_id" example:"7"`
	Quantity  int   `json:"quantity"   example:"2"`
}

// UpdateItemRequest payload of order item update. A nil quantity leaves the
// line untouched.
// swagger:model UpdateItemRequest
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" example:"3"`
}

// ReplaceOrderRequest is the full (PUT) update of a pending order. The total
// is not accepted: it is always derived from the order items.
// swagger:model ReplaceOrderRequest
type ReplaceOrderRequest struct {
	ShippingMethod string `json:"shipping_method"`
	PaymentMethod  string `json:"payment_method"`
}

// PatchOrderRequest is the partial (PATCH) update of a pending order.
// swagger:model PatchOrderRequest
type PatchOrderRequest struct {
	ShippingMethod *string `json:"shipping_method"`
	PaymentMethod  *string `json:"payment_method"`
}

// StatusUpdateRequest payload of a status change.
// swagger:model StatusUpdateRequest
type StatusUpdateRequest struct {
	Status Status `json:"status" example:"paid"`
}

// StatusChange is returned after a status update.
// swagger:model StatusChange
type StatusChange struct {
	OrderID   int64  `json:"order_id"`
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}

// AddItemsResult is returned after items were appended to an order.
// swagger:model AddItemsResult
type AddItemsResult struct {
	OrderID    int64           `json:"order_id"`
	Added      []Item          `json:"added"`
	TotalAdded decimal.Decimal `json:"total_added"`
	NewTotal   decimal.Decimal `json:"new_total"`
}

// Detail is an order together with its items.
// swagger:model OrderDetail
type Detail struct {
	Order
	Items []Item `json:"items"`
}
