package storage

import (
	"context"
	"errors"
)

// Storage is the durable key/value area a client session persists into.
// Implementations must treat Delete of an absent key as success.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("storage key not found")

// Fixed keys shared by every session.
const (
	KeyCartItems       = "cartItems"
	KeyShippingAddress = "shippingAddress"
	KeyPaymentMethod   = "paymentMethod"
	KeyUserInfo        = "userInfo"
	KeyMockOrders      = "mockOrders"
)

type namespaced struct {
	prefix string
	next   Storage
}

// Namespace scopes every key of s under prefix.
func Namespace(s Storage, prefix string) Storage {
	return &namespaced{prefix: prefix + ":", next: s}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.next.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.next.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.next.Delete(ctx, n.prefix+key)
}
