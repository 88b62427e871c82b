package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/httpx"
	prod "github.com/MikeMC777/fulfillment-ecom/internal/product"
)

// restocker moves stock through the inventory ledger.
type restocker interface {
	Adjust(ctx context.Context, productID int64, delta int) error
}

func registerRoutes(r gin.IRouter, repo prod.Repository, ledger restocker) {
	r.GET("/products", listOnlyHandler(repo))
	r.GET("/products/search", searchHandler(repo))
	r.GET("/products/:id", getProductHandler(repo))
	r.POST("/products", createProductHandler(repo))
	r.PUT("/products/:id", updateProductHandler(repo))
	r.POST("/products/:id/restock", restockHandler(repo, ledger))
}

// parsePrice accepts a positive amount with at most two decimals.
func parsePrice(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() || !d.Equal(d.Round(2)) {
		return decimal.Zero, false
	}
	return d.Round(2), true
}

// /products: pagination only, q is ignored.
func listOnlyHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := httpx.Page(c)
		items, err := repo.List(c.Request.Context(), prod.Query{Limit: limit, Offset: offset})
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, prod.ListResponse{Limit: limit, Offset: offset, Items: items})
	}
}

// /products/search requires q with at least two characters.
func searchHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := strings.TrimSpace(c.Query("q"))
		if len([]rune(q)) < 2 {
			httpx.BadRequest(c, "q must have at least 2 characters")
			return
		}
		limit, offset := httpx.Page(c)
		items, err := repo.List(c.Request.Context(), prod.Query{Q: q, Limit: limit, Offset: offset})
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, prod.ListResponse{Q: q, Limit: limit, Offset: offset, Items: items})
	}
}

func getProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		p, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func createProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prod.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			httpx.BadRequest(c, "name is required")
			return
		}
		price, ok := parsePrice(req.Price)
		if !ok {
			httpx.BadRequest(c, "price must be a positive amount")
			return
		}
		if req.StockQuantity < 0 {
			httpx.BadRequest(c, "stock_quantity must be >= 0")
			return
		}
		p := &prod.Product{
			Name:          req.Name,
			Description:   req.Description,
			Price:         price,
			StockQuantity: req.StockQuantity,
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// PUT /products/:id is partial: empty fields are kept, price only changes
// when sent. Stock is not editable here.
func updateProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req prod.UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		p := &prod.Product{ID: id, Name: strings.TrimSpace(req.Name), Description: req.Description}
		updatePrice := strings.TrimSpace(req.Price) != ""
		if updatePrice {
			price, ok := parsePrice(req.Price)
			if !ok {
				httpx.BadRequest(c, "price must be a positive amount")
				return
			}
			p.Price = price
		}
		if err := repo.Update(c.Request.Context(), p, updatePrice); err != nil {
			httpx.Abort(c, err)
			return
		}
		got, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, got)
	}
}

func restockHandler(repo prod.Repository, ledger restocker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req prod.RestockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		if req.Quantity <= 0 {
			httpx.Abort(c, apperr.ErrInvalidInput)
			return
		}
		if err := ledger.Adjust(c.Request.Context(), id, req.Quantity); err != nil {
			httpx.Abort(c, err)
			return
		}
		p, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
