package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// NUMERIC(12,2) in Postgres
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Available reports whether qty units can be taken right now.
func (p *Product) Available(qty int) bool { return p.StockQuantity >= qty }

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	// search query applied
	Q string `json:"q,omitempty"`
	// limit applied
	Limit int `json:"limit"`
	// offset applied
	Offset int `json:"offset"`
	// items found
	Items []Product `json:"items"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name          string `json:"name"           example:"Linen Shirt"`
	Description   string `json:"description"    example:"Relaxed fit"`
	Price         string `json:"price"          example:"49.90"`
	StockQuantity int    `json:"stock_quantity" example:"10"`
}

// UpdateProductRequest payload of partial update. Stock is not part of it:
// quantities only move through the inventory ledger.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

// RestockRequest adds units to a product.
// swagger:model RestockRequest
type RestockRequest struct {
	Quantity int `json:"quantity" example:"5"`
}
