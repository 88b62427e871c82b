// Package apperr holds the error kinds shared by the fulfillment services and
// the HTTP status each one maps to.
package apperr

import (
	"errors"
	"net/http"
)

// Error is a domain error with a stable code. Wrap it with fmt.Errorf("%w: ...")
// to attach details; errors.Is keeps matching the sentinel.
type Error struct {
	Code   string
	Status int
	Msg    string
}

func (e *Error) Error() string { return e.Msg }

func newErr(status int, code, msg string) *Error {
	return &Error{Code: code, Status: status, Msg: msg}
}

var (
	ErrOrderNotFound     = newErr(http.StatusNotFound, "order_not_found", "order not found")
	ErrOrderItemNotFound = newErr(http.StatusNotFound, "order_item_not_found", "order item not found")
	ErrProductNotFound   = newErr(http.StatusNotFound, "product_not_found", "product not found")
	ErrCartNotFound      = newErr(http.StatusNotFound, "cart_not_found", "cart does not exist")
	ErrCartItemNotFound  = newErr(http.StatusNotFound, "cart_item_not_found", "cart item not found")
	ErrAddressNotFound   = newErr(http.StatusNotFound, "address_not_found", "address not found")
	ErrUserNotFound      = newErr(http.StatusNotFound, "user_not_found", "user not found")

	ErrUnauthenticated  = newErr(http.StatusUnauthorized, "unauthenticated", "caller identity missing")
	ErrPermissionDenied = newErr(http.StatusForbidden, "permission_denied", "permission denied")
	ErrRoleNotAssigned  = newErr(http.StatusBadRequest, "role_not_assigned", "user has no role assigned")
	ErrInvalidInput     = newErr(http.StatusBadRequest, "invalid_input", "invalid input")

	ErrCartEmpty               = newErr(http.StatusBadRequest, "cart_empty", "cart is empty")
	ErrProductOutOfStock       = newErr(http.StatusConflict, "product_out_of_stock", "product out of stock")
	ErrNotAllProductsAvailable = newErr(http.StatusConflict, "not_all_products_available", "not all products are available")
	ErrProductAlreadyInOrder   = newErr(http.StatusConflict, "product_already_in_order", "product already in order")

	ErrInvalidStatus         = newErr(http.StatusBadRequest, "invalid_status", "invalid status")
	ErrOrderCancelled        = newErr(http.StatusConflict, "order_cancelled", "cancelled order can only be returned")
	ErrOrderDelivered        = newErr(http.StatusConflict, "order_delivered", "delivered order can only be returned")
	ErrOrderCannotBeModified = newErr(http.StatusConflict, "order_cannot_be_modified", "order cannot be modified in its current status")
	ErrOrderCannotBeDeleted  = newErr(http.StatusConflict, "order_cannot_be_deleted", "order cannot be deleted in its current status")
	ErrErrorUpdatingBalances = newErr(http.StatusConflict, "error_updating_balances", "stock changed during checkout, retry")
)

// Internal is reported for anything that is not an *Error.
var Internal = newErr(http.StatusInternalServerError, "internal", "internal error")

// From returns the *Error in err's chain, or Internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal
}

// IsNotFound reports whether err belongs to the not-found family.
func IsNotFound(err error) bool {
	return From(err).Status == http.StatusNotFound
}
