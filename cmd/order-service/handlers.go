package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/fulfillment-ecom/internal/cart"
	"github.com/MikeMC777/fulfillment-ecom/internal/httpx"
	"github.com/MikeMC777/fulfillment-ecom/internal/order"
	"github.com/MikeMC777/fulfillment-ecom/internal/service"
)

// api groups the services behind the HTTP routes.
type api struct {
	carts    *service.CartService
	checkout *service.Checkout
	orders   *service.OrderService
}

func registerRoutes(r gin.IRouter, a api) {
	g := r.Group("/", httpx.Caller())

	g.GET("/cart", getCartHandler(a.carts))
	g.POST("/cart", openCartHandler(a.carts))
	g.DELETE("/cart", clearCartHandler(a.carts))
	g.POST("/cart/items", addCartItemHandler(a.carts))
	g.GET("/cart/items/:id", getCartItemHandler(a.carts))
	g.PUT("/cart/items/:id", updateCartItemHandler(a.carts, false))
	g.PATCH("/cart/items/:id", updateCartItemHandler(a.carts, true))
	g.DELETE("/cart/items/:id", deleteCartItemHandler(a.carts))

	g.POST("/orders", createOrderHandler(a.checkout))
	g.GET("/orders", listOrdersHandler(a.orders))
	g.GET("/orders/:id", getOrderHandler(a.orders))
	g.PUT("/orders/:id", replaceOrderHandler(a.orders))
	g.PATCH("/orders/:id", patchOrderHandler(a.orders))
	g.PATCH("/orders/:id/status", updateStatusHandler(a.orders))
	g.DELETE("/orders/:id", deleteOrderHandler(a.orders))
	g.POST("/orders/:id/items", addOrderItemsHandler(a.orders))

	g.GET("/order-items", listOrderItemsHandler(a.orders))
	g.GET("/order-items/:id", getOrderItemHandler(a.orders))
	g.PUT("/order-items/:id", updateOrderItemHandler(a.orders))
	g.PATCH("/order-items/:id", updateOrderItemHandler(a.orders))
	g.DELETE("/order-items/:id", deleteOrderItemHandler(a.orders))
}

// targetUser is ?user_id= when present, the caller otherwise.
func targetUser(c *gin.Context) (int64, bool) {
	raw := c.Query("user_id")
	if raw == "" {
		return httpx.CallerID(c), true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		httpx.BadRequest(c, "invalid user_id")
		return 0, false
	}
	return id, true
}

// ===== cart =====

func getCartHandler(svc *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := targetUser(c)
		if !ok {
			return
		}
		v, err := svc.Get(c.Request.Context(), httpx.CallerID(c), userID)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

func openCartHandler(svc *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := targetUser(c)
		if !ok {
			return
		}
		v, err := svc.GetOrCreate(c.Request.Context(), httpx.CallerID(c), userID)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

func clearCartHandler(svc *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := targetUser(c)
		if !ok {
			return
		}
		n, err := svc.Clear(c.Request.Context(), httpx.CallerID(c), userID)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cleared": n})
	}
}

func addCartItemHandler(svc *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := targetUser(c)
		if !ok {
			return
		}
		var req cart.AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		it, err := svc.AddItem(c.Request.Context(), httpx.CallerID(c), userID, req)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, it)
	}
}

func getCartItemHandler(svc *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		it, err := svc.GetItem(c.Request.Context(), httpx.CallerID(c), id)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

func updateCartItemHandler(svc *service.CartService, partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req cart.UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		it, err := svc.UpdateItem(c.Request.Context(), httpx.CallerID(c), id, req, partial)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

func deleteCartItemHandler(svc *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		if err := svc.RemoveItem(c.Request.Context(), httpx.CallerID(c), id); err != nil {
			httpx.Abort(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ===== orders =====

func createOrderHandler(svc *service.Checkout) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		d, err := svc.PlaceOrder(c.Request.Context(), httpx.CallerID(c), req)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, d)
	}
}

func listOrdersHandler(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := targetUser(c)
		if !ok {
			return
		}
		limit, offset := httpx.Page(c)
		list, err := svc.List(c.Request.Context(), httpx.CallerID(c), userID, limit, offset)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"limit": limit, "offset": offset, "items": list})
	}
}

func getOrderHandler(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		d, err := svc.Get(c.Request.Context(), httpx.CallerID(c), id)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

func replaceOrderHandler(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req order.ReplaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		o, err := svc.Replace(c.Request.Context(), httpx.CallerID(c), id, req)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func patchOrderHandler(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req order.PatchOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		o, err := svc.Patch(c.Request.Context(), httpx.CallerID(c), id, req)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func updateStatusHandler(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req order.StatusUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		ch, err := svc.ChangeStatus(c.Request.Context(), httpx.CallerID(c), id, req.Status)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, ch)
	}
}

func deleteOrderHandler(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), httpx.CallerID(c), id); err != nil {
			httpx.Abort(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func addOrderItemsHandler(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var body struct {
			Items []order.AddItemRequest `json:"items"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		res, err := svc.AddItems(c.Request.Context(), httpx.CallerID(c), id, body.Items)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// ===== order items =====

func listOrderItemsHandler(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseInt(c.Query("order_id"), 10, 64)
		if err != nil || orderID <= 0 {
			httpx.BadRequest(c, "order_id is required")
			return
		}
		items, err := svc.ListItems(c.Request.Context(), httpx.CallerID(c), orderID)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order_id": orderID, "items": items})
	}
}

func getOrderItemHandler(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		it, err := svc.GetItem(c.Request.Context(), httpx.CallerID(c), id)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

func updateOrderItemHandler(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req order.UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		d, err := svc.UpdateItem(c.Request.Context(), httpx.CallerID(c), id, req)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

func deleteOrderItemHandler(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		o, err := svc.DeleteItem(c.Request.Context(), httpx.CallerID(c), id)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
