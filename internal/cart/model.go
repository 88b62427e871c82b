package cart

import "time"

type Cart struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Item struct {
	ID           int64   `json:"id"`
	CartID       int64   `json:"cart_id"`
	ProductID    int64   `json:"product_id"`
	Quantity     int     `json:"quantity"`
	SelectedSize *string `json:"selected_size,omitempty"`
}

// SameVariant reports whether it is the line for productID in the given size.
func (it Item) SameVariant(productID int64, size *string) bool {
	if it.ProductID != productID {
		return false
	}
	if it.SelectedSize == nil || size == nil {
		return it.SelectedSize == nil && size == nil
	}
	return *it.SelectedSize == *size
}

// View is a cart with its lines, as served to clients and cached.
type View struct {
	Cart
	Items []Item `json:"items"`
}

// AddItemRequest payload of add-to-cart.
// swagger:model AddCartItemRequest
type AddItemRequest struct {
	ProductID    int64   `json:"product_id"    example:"7"`
	Quantity     int     `json:"quantity"      example:"1"`
	SelectedSize *string `json:"selected_size" example:"M"`
}

// UpdateItemRequest payload of cart item update; nil fields are left as is
// on PATCH and required on PUT.
// swagger:model UpdateCartItemRequest
type UpdateItemRequest struct {
	Quantity     *int    `json:"quantity"`
	SelectedSize *string `json:"selected_size"`
}
