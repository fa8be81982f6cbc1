package cache

import (
	"context"
	"errors"
)

// ProductCache stores catalog answers as JSON under caller-chosen keys.
type ProductCache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, v any) error
	// Purge drops every catalog entry.
	Purge(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache never hits.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) error { return ErrCacheMiss }
func (NopCache) Set(context.Context, string, any) error { return nil }
func (NopCache) Purge(context.Context) error            { return nil }
