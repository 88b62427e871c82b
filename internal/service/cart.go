package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/cart"
	"github.com/MikeMC777/fulfillment-ecom/internal/store"
)

// CartService edits carts. Stock is not looked at here.
type CartService struct {
	store store.Store
	perms PermissionChecker
	cache cart.Cache
	log   *zap.Logger
}

func NewCartService(st store.Store, perms PermissionChecker, cache cart.Cache, log *zap.Logger) *CartService {
	if cache == nil {
		cache = cart.NoopCache{}
	}
	return &CartService{store: st, perms: perms, cache: cache, log: log}
}

// GetOrCreate returns userID's cart, creating an empty one if needed.
func (s *CartService) GetOrCreate(ctx context.Context, callerID, userID int64) (*cart.View, error) {
	if err := authorize(ctx, s.perms, callerID, userID); err != nil {
		return nil, err
	}
	var v *cart.View
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		c, err := tx.Carts().Create(ctx, userID)
		if err != nil {
			return err
		}
		v, err = loadView(ctx, tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Get returns userID's cart with its lines, from the cache when possible.
func (s *CartService) Get(ctx context.Context, callerID, userID int64) (*cart.View, error) {
	if err := authorize(ctx, s.perms, callerID, userID); err != nil {
		return nil, err
	}
	v, err := s.cache.Get(ctx, userID)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, cart.ErrCacheMiss) {
		s.log.Warn("cart cache get", zap.Int64("user_id", userID), zap.Error(err))
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		c, err := tx.Carts().GetByUser(ctx, userID)
		if err != nil {
			return err
		}
		v, err = loadView(ctx, tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, userID, v); err != nil {
		s.log.Warn("cart cache set", zap.Int64("user_id", userID), zap.Error(err))
	}
	return v, nil
}

// AddItem adds a line to userID's cart, creating the cart if needed. A line
// with the same product and size gets the quantity added instead.
func (s *CartService) AddItem(ctx context.Context, callerID, userID int64, req cart.AddItemRequest) (*cart.Item, error) {
	if req.ProductID <= 0 || req.Quantity <= 0 {
		return nil, apperr.ErrInvalidInput
	}
	if err := authorize(ctx, s.perms, callerID, userID); err != nil {
		return nil, err
	}

	var out *cart.Item
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.Products().GetByID(ctx, req.ProductID); err != nil {
			return err
		}
		carts := tx.Carts()
		c, err := carts.Create(ctx, userID)
		if err != nil {
			return err
		}
		items, err := carts.GetItems(ctx, c.ID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if it.SameVariant(req.ProductID, req.SelectedSize) {
				it.Quantity += req.Quantity
				if err := carts.UpdateItem(ctx, &it); err != nil {
					return err
				}
				out = &it
				return carts.Touch(ctx, c.ID)
			}
		}
		out = &cart.Item{CartID: c.ID, ProductID: req.ProductID, Quantity: req.Quantity, SelectedSize: req.SelectedSize}
		if err := carts.AddItem(ctx, out); err != nil {
			return err
		}
		return carts.Touch(ctx, c.ID)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return out, nil
}

func (s *CartService) GetItem(ctx context.Context, callerID, itemID int64) (*cart.Item, error) {
	var out *cart.Item
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		it, _, err := s.ownedItem(ctx, tx, callerID, itemID)
		out = it
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateItem changes a cart line. With partial set, nil fields are kept;
// otherwise quantity is required and a nil size clears the size.
func (s *CartService) UpdateItem(ctx context.Context, callerID, itemID int64, req cart.UpdateItemRequest, partial bool) (*cart.Item, error) {
	if !partial && req.Quantity == nil {
		return nil, apperr.ErrInvalidInput
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		return nil, apperr.ErrInvalidInput
	}

	var (
		out   *cart.Item
		owner int64
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		it, c, err := s.ownedItem(ctx, tx, callerID, itemID)
		if err != nil {
			return err
		}
		owner = c.UserID
		if req.Quantity != nil {
			it.Quantity = *req.Quantity
		}
		if !partial || req.SelectedSize != nil {
			it.SelectedSize = req.SelectedSize
		}
		if err := tx.Carts().UpdateItem(ctx, it); err != nil {
			return err
		}
		out = it
		return tx.Carts().Touch(ctx, c.ID)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, owner)
	return out, nil
}

func (s *CartService) RemoveItem(ctx context.Context, callerID, itemID int64) error {
	var owner int64
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, c, err := s.ownedItem(ctx, tx, callerID, itemID)
		if err != nil {
			return err
		}
		owner = c.UserID
		if err := tx.Carts().DeleteItem(ctx, itemID); err != nil {
			return err
		}
		return tx.Carts().Touch(ctx, c.ID)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, owner)
	return nil
}

// Clear deletes every line of userID's cart and returns how many there were.
// The cart itself is kept.
func (s *CartService) Clear(ctx context.Context, callerID, userID int64) (int64, error) {
	if err := authorize(ctx, s.perms, callerID, userID); err != nil {
		return 0, err
	}
	var n int64
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		c, err := tx.Carts().GetByUser(ctx, userID)
		if err != nil {
			return err
		}
		if n, err = tx.Carts().ClearItems(ctx, c.ID); err != nil {
			return err
		}
		return tx.Carts().Touch(ctx, c.ID)
	})
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, userID)
	return n, nil
}

// ownedItem loads a cart line and its cart, checking the caller may touch it.
func (s *CartService) ownedItem(ctx context.Context, tx store.Tx, callerID, itemID int64) (*cart.Item, *cart.Cart, error) {
	it, err := tx.Carts().GetItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	c, err := tx.Carts().GetByID(ctx, it.CartID)
	if err != nil {
		return nil, nil, err
	}
	if err := authorize(ctx, s.perms, callerID, c.UserID); err != nil {
		return nil, nil, err
	}
	return it, c, nil
}

func (s *CartService) invalidate(ctx context.Context, userID int64) {
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.Warn("cart cache delete", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func loadView(ctx context.Context, tx store.Tx, c *cart.Cart) (*cart.View, error) {
	items, err := tx.Carts().GetItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &cart.View{Cart: *c, Items: items}, nil
}
