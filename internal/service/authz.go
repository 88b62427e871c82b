// Package service holds the fulfillment core: the cart service, the checkout
// orchestrator and the order mutation service. It depends on the leaf
// packages and on store.Store, never the other way around.
package service

import (
	"context"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/user"
)

// PermissionChecker answers which permission tokens a user holds. It must
// fail with apperr.ErrRoleNotAssigned for accounts without a role.
type PermissionChecker interface {
	UserPermissions(ctx context.Context, userID int64) ([]string, error)
}

// authorize lets callerID act on resources of ownerID. Owners never reach
// the permission service.
func authorize(ctx context.Context, perms PermissionChecker, callerID, ownerID int64) error {
	if callerID == ownerID {
		return nil
	}
	return requireElevated(ctx, perms, callerID)
}

func requireElevated(ctx context.Context, perms PermissionChecker, callerID int64) error {
	granted, err := perms.UserPermissions(ctx, callerID)
	if err != nil {
		return err
	}
	if !user.Has(granted, user.PermViewUsers) {
		return apperr.ErrPermissionDenied
	}
	return nil
}

// StaticPermissions resolves permissions from a fixed user → role table. It
// serves the memory store setup and tests.
type StaticPermissions struct {
	Roles map[int64]string
}

func (s StaticPermissions) UserPermissions(_ context.Context, userID int64) ([]string, error) {
	role, ok := s.Roles[userID]
	if !ok {
		return nil, apperr.ErrRoleNotAssigned
	}
	return user.RolePermissions[role], nil
}
