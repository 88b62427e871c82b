package cart

import (
	"context"
	"errors"
)

// Cache keeps rendered cart views keyed by owner.
type Cache interface {
	Get(ctx context.Context, userID int64) (*View, error)
	Set(ctx context.Context, userID int64, v *View) error
	Delete(ctx context.Context, userID int64) error
}

var ErrCacheMiss = errors.New("cache miss")

// NoopCache always misses.
type NoopCache struct{}

func (NoopCache) Get(context.Context, int64) (*View, error) { return nil, ErrCacheMiss }
func (NoopCache) Set(context.Context, int64, *View) error   { return nil }
func (NoopCache) Delete(context.Context, int64) error       { return nil }
