package user

// Permission tokens granted through roles.
const (
	PermViewProducts   = "view_products"
	PermCreateProducts = "create_products"
	PermEditProducts   = "edit_products"
	PermDeleteProducts = "delete_products"

	PermViewOrders   = "view_orders"
	PermManageOrders = "manage_orders"
	PermCancelOrders = "cancel_orders"

	// PermViewUsers lets the holder act on other users' carts and orders.
	PermViewUsers   = "view_users"
	PermEditUsers   = "edit_users"
	PermDeleteUsers = "delete_users"

	PermManageCart       = "manage_cart"
	PermManageCategories = "manage_categories"
	PermManageBrands     = "manage_brands"
	PermModerateReviews  = "moderate_reviews"
	PermViewAnalytics    = "view_analytics"
)

// RolePermissions is the seed used when the roles table is created.
var RolePermissions = map[string][]string{
	"admin": {
		PermViewProducts, PermCreateProducts, PermEditProducts, PermDeleteProducts,
		PermViewOrders, PermManageOrders,
		PermViewUsers, PermEditUsers, PermDeleteUsers,
		PermManageCategories, PermManageBrands, PermViewAnalytics, PermModerateReviews,
	},
	"manager": {
		PermViewProducts, PermCreateProducts, PermEditProducts,
		PermViewOrders, PermManageOrders,
		PermViewUsers,
		PermManageCategories, PermManageBrands, PermViewAnalytics, PermModerateReviews,
	},
	"user": {
		PermViewProducts, PermViewOrders, PermManageCart,
	},
}

// Has reports whether perm is in perms.
func Has(perms []string, perm string) bool {
	for _, p := range perms {
		if p == perm {
			return true
		}
	}
	return false
}
