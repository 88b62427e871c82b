package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/cart"
)

func TestCartAddItemMergesSameVariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, l := "M", "L"

	first, err := f.carts.AddItem(ctx, alice, alice, cart.AddItemRequest{ProductID: f.shirt.ID, Quantity: 1, SelectedSize: &m})
	require.NoError(t, err)
	merged, err := f.carts.AddItem(ctx, alice, alice, cart.AddItemRequest{ProductID: f.shirt.ID, Quantity: 2, SelectedSize: &m})
	require.NoError(t, err)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 3, merged.Quantity)

	other, err := f.carts.AddItem(ctx, alice, alice, cart.AddItemRequest{ProductID: f.shirt.ID, Quantity: 1, SelectedSize: &l})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	v, err := f.carts.Get(ctx, alice, alice)
	require.NoError(t, err)
	assert.Len(t, v.Items, 2)
}

func TestCartAddItemDoesNotCheckStock(t *testing.T) {
	f := newFixture(t)
	_, err := f.carts.AddItem(context.Background(), alice, alice, cart.AddItemRequest{ProductID: f.socks.ID, Quantity: 50})
	assert.NoError(t, err)
	assert.Equal(t, 1, f.stock(t, f.socks.ID))
}

func TestCartAddItemErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, alice, alice, cart.AddItemRequest{ProductID: 404, Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrProductNotFound)
	_, err = f.carts.AddItem(ctx, alice, alice, cart.AddItemRequest{ProductID: f.shirt.ID})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = f.carts.AddItem(ctx, bob, alice, cart.AddItemRequest{ProductID: f.shirt.ID, Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	// a failed add leaves no cart behind
	_, err = f.carts.Get(ctx, alice, alice)
	assert.ErrorIs(t, err, apperr.ErrCartNotFound)

	_, err = f.carts.AddItem(ctx, admin, alice, cart.AddItemRequest{ProductID: f.shirt.ID, Quantity: 1})
	assert.NoError(t, err)
}

func TestCartUpdateItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := "M"
	it, err := f.carts.AddItem(ctx, alice, alice, cart.AddItemRequest{ProductID: f.shirt.ID, Quantity: 1, SelectedSize: &m})
	require.NoError(t, err)

	three := 3
	got, err := f.carts.UpdateItem(ctx, alice, it.ID, cart.UpdateItemRequest{Quantity: &three}, true)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
	require.NotNil(t, got.SelectedSize)
	assert.Equal(t, "M", *got.SelectedSize)

	// PUT replaces: the size is cleared, quantity is mandatory
	got, err = f.carts.UpdateItem(ctx, alice, it.ID, cart.UpdateItemRequest{Quantity: &three}, false)
	require.NoError(t, err)
	assert.Nil(t, got.SelectedSize)
	_, err = f.carts.UpdateItem(ctx, alice, it.ID, cart.UpdateItemRequest{SelectedSize: &m}, false)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	zero := 0
	_, err = f.carts.UpdateItem(ctx, alice, it.ID, cart.UpdateItemRequest{Quantity: &zero}, true)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = f.carts.UpdateItem(ctx, bob, it.ID, cart.UpdateItemRequest{Quantity: &three}, true)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	_, err = f.carts.UpdateItem(ctx, alice, 404, cart.UpdateItemRequest{Quantity: &three}, true)
	assert.ErrorIs(t, err, apperr.ErrCartItemNotFound)
}

func TestCartRemoveAndClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addToCart(t, alice, f.shirt.ID, 1)
	f.addToCart(t, alice, f.hat.ID, 1)
	v, err := f.carts.Get(ctx, alice, alice)
	require.NoError(t, err)
	require.Len(t, v.Items, 2)

	assert.ErrorIs(t, f.carts.RemoveItem(ctx, bob, v.Items[0].ID), apperr.ErrPermissionDenied)
	require.NoError(t, f.carts.RemoveItem(ctx, alice, v.Items[0].ID))
	_, err = f.carts.GetItem(ctx, alice, v.Items[0].ID)
	assert.ErrorIs(t, err, apperr.ErrCartItemNotFound)

	n, err := f.carts.Clear(ctx, alice, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	v, err = f.carts.Get(ctx, alice, alice)
	require.NoError(t, err)
	assert.Equal(t, alice, v.UserID)
	assert.Empty(t, v.Items)
}

func TestCartCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addToCart(t, alice, f.shirt.ID, 1)

	_, err := f.carts.Get(ctx, alice, alice)
	require.NoError(t, err)
	cached, err := f.cache.Get(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, cached.Items, 1)

	// writes invalidate
	f.addToCart(t, alice, f.hat.ID, 1)
	_, err = f.cache.Get(ctx, alice)
	assert.ErrorIs(t, err, cart.ErrCacheMiss)

	v, err := f.carts.Get(ctx, alice, alice)
	require.NoError(t, err)
	assert.Len(t, v.Items, 2)

	// checkout empties the cart and the cache entry with it
	f.placeOrder(t, alice, f.aliceAddr.ID)
	v, err = f.carts.Get(ctx, alice, alice)
	require.NoError(t, err)
	assert.Empty(t, v.Items)
}

func TestAuthorize(t *testing.T) {
	perms := StaticPermissions{Roles: map[int64]string{alice: "user", admin: "manager"}}
	ctx := context.Background()

	assert.NoError(t, authorize(ctx, perms, noRole, noRole))
	assert.NoError(t, authorize(ctx, perms, admin, alice))
	assert.ErrorIs(t, authorize(ctx, perms, alice, admin), apperr.ErrPermissionDenied)
	assert.ErrorIs(t, authorize(ctx, perms, noRole, alice), apperr.ErrRoleNotAssigned)
}
