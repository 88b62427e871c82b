// Package docs registers the Swagger documents served by gin-swagger.
package docs

import "github.com/swaggo/swag"

const (
	OrdersInstance   = "orders"
	ProductsInstance = "products"
)

const ordersTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "Caller": {"type": "apiKey", "name": "X-User-ID", "in": "header"}
    },
    "security": [{"Caller": []}],
    "paths": {
        "/cart": {
            "get": {"summary": "Get a cart with its items", "parameters": [{"name": "user_id", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/CartView"}}, "404": {"description": "cart_not_found", "schema": {"$ref": "#/definitions/Error"}}}},
            "post": {"summary": "Get or create a cart", "parameters": [{"name": "user_id", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/CartView"}}}},
            "delete": {"summary": "Remove every item of a cart", "parameters": [{"name": "user_id", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK"}}}
        },
        "/cart/items": {
            "post": {"summary": "Add an item to a cart", "parameters": [{"name": "user_id", "in": "query", "type": "integer"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddCartItemRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/CartItem"}}, "404": {"description": "product_not_found", "schema": {"$ref": "#/definitions/Error"}}}}
        },
        "/cart/items/{id}": {
            "get": {"summary": "Get a cart item", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/CartItem"}}}},
            "put": {"summary": "Replace a cart item", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCartItemRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/CartItem"}}}},
            "patch": {"summary": "Update fields of a cart item", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCartItemRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/CartItem"}}}},
            "delete": {"summary": "Remove a cart item", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/orders": {
            "get": {"summary": "List orders of a user", "parameters": [{"name": "user_id", "in": "query", "type": "integer"}, {"name": "limit", "in": "query", "type": "integer"}, {"name": "offset", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK"}}},
            "post": {"summary": "Check out the caller's cart", "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateOrderRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/OrderDetail"}}, "400": {"description": "cart_empty", "schema": {"$ref": "#/definitions/Error"}}, "409": {"description": "not_all_products_available, product_out_of_stock, error_updating_balances", "schema": {"$ref": "#/definitions/Error"}}}}
        },
        "/orders/{id}": {
            "get": {"summary": "Get an order with its items", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/OrderDetail"}}}},
            "put": {"summary": "Replace shipping and payment method", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceOrderRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Order"}}}},
            "patch": {"summary": "Update shipping or payment method", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceOrderRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Order"}}}},
            "delete": {"summary": "Delete a pending or cancelled order", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/orders/{id}/status": {
            "patch": {"summary": "Change the status of an order", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusUpdateRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/StatusChange"}}}}
        },
        "/orders/{id}/items": {
            "post": {"summary": "Add items to a pending order", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/AddItemsResult"}}}}
        },
        "/order-items": {
            "get": {"summary": "List the items of an order", "parameters": [{"name": "order_id", "in": "query", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}}}
        },
        "/order-items/{id}": {
            "get": {"summary": "Get an order item", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/OrderItem"}}}},
            "put": {"summary": "Change the quantity of an order item", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateItemRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/OrderDetail"}}}},
            "patch": {"summary": "Change the quantity of an order item", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateItemRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/OrderDetail"}}}},
            "delete": {"summary": "Delete an order item", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Order"}}}}
        }
    },
    "definitions": {
        "Error": {"type": "object", "properties": {"error": {"type": "string"}, "message": {"type": "string"}}},
        "CartItem": {"type": "object", "properties": {"id": {"type": "integer"}, "cart_id": {"type": "integer"}, "product_id": {"type": "integer"}, "quantity": {"type": "integer"}, "selected_size": {"type": "string"}}},
        "CartView": {"type": "object", "properties": {"id": {"type": "integer"}, "user_id": {"type": "integer"}, "items": {"type": "array", "items": {"$ref": "#/definitions/CartItem"}}}},
        "AddCartItemRequest": {"type": "object", "properties": {"product_id": {"type": "integer"}, "quantity": {"type": "integer"}, "selected_size": {"type": "string"}}},
        "UpdateCartItemRequest": {"type": "object", "properties": {"quantity": {"type": "integer"}, "selected_size": {"type": "string"}}},
        "CreateOrderRequest": {"type": "object", "properties": {"address_id": {"type": "integer"}, "shipping_method": {"type": "string"}, "payment_method": {"type": "string"}}},
        "ReplaceOrderRequest": {"type": "object", "properties": {"shipping_method": {"type": "string"}, "payment_method": {"type": "string"}}},
        "StatusUpdateRequest": {"type": "object", "properties": {"status": {"type": "string", "enum": ["pending", "paid", "shipped", "delivered", "cancelled"]}}},
        "StatusChange": {"type": "object", "properties": {"order_id": {"type": "integer"}, "old_status": {"type": "string"}, "new_status": {"type": "string"}}},
        "UpdateItemRequest": {"type": "object", "properties": {"quantity": {"type": "integer"}}},
        "Order": {"type": "object", "properties": {"id": {"type": "integer"}, "order_number": {"type": "string"}, "user_id": {"type": "integer"}, "address_id": {"type": "integer"}, "status": {"type": "string"}, "total_amount": {"type": "string"}, "shipping_method": {"type": "string"}, "payment_method": {"type": "string"}}},
        "OrderItem": {"type": "object", "properties": {"id": {"type": "integer"}, "order_id": {"type": "integer"}, "product_id": {"type": "integer"}, "quantity": {"type": "integer"}, "final_price": {"type": "string"}}},
        "OrderDetail": {"allOf": [{"$ref": "#/definitions/Order"}, {"type": "object", "properties": {"items": {"type": "array", "items": {"$ref": "#/definitions/OrderItem"}}}}]},
        "AddItemsResult": {"type": "object", "properties": {"order_id": {"type": "integer"}, "added": {"type": "array", "items": {"$ref": "#/definitions/OrderItem"}}, "total_added": {"type": "string"}, "new_total": {"type": "string"}}}
    }
}`

const productsTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/products": {
            "get": {"summary": "List products", "parameters": [{"name": "limit", "in": "query", "type": "integer"}, {"name": "offset", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ListResponse"}}}},
            "post": {"summary": "Create a product", "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateProductRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Product"}}}}
        },
        "/products/search": {
            "get": {"summary": "Search products by name or description", "parameters": [{"name": "q", "in": "query", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ListResponse"}}}}
        },
        "/products/{id}": {
            "get": {"summary": "Get a product", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Product"}}}},
            "put": {"summary": "Update name, description or price", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProductRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Product"}}}}
        },
        "/products/{id}/restock": {
            "post": {"summary": "Add units to stock", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RestockRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Product"}}}}
        }
    },
    "definitions": {
        "Product": {"type": "object", "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "description": {"type": "string"}, "price": {"type": "string"}, "stock_quantity": {"type": "integer"}}},
        "ListResponse": {"type": "object", "properties": {"q": {"type": "string"}, "limit": {"type": "integer"}, "offset": {"type": "integer"}, "items": {"type": "array", "items": {"$ref": "#/definitions/Product"}}}},
        "CreateProductRequest": {"type": "object", "properties": {"name": {"type": "string"}, "description": {"type": "string"}, "price": {"type": "string"}, "stock_quantity": {"type": "integer"}}},
        "UpdateProductRequest": {"type": "object", "properties": {"name": {"type": "string"}, "description": {"type": "string"}, "price": {"type": "string"}}},
        "RestockRequest": {"type": "object", "properties": {"quantity": {"type": "integer"}}}
    }
}`

// OrdersInfo holds exported Swagger Info of the order service.
var OrdersInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Order service API",
	Description:      "Carts, checkout, orders and order items.",
	InfoInstanceName: OrdersInstance,
	SwaggerTemplate:  ordersTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

// ProductsInfo holds exported Swagger Info of the product service.
var ProductsInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Product service API",
	Description:      "Catalog and restocking.",
	InfoInstanceName: ProductsInstance,
	SwaggerTemplate:  productsTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(OrdersInfo.InstanceName(), OrdersInfo)
	swag.Register(ProductsInfo.InstanceName(), ProductsInfo)
}
