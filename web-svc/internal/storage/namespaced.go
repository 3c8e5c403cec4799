package storage

import "context"

type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Namespaced scopes every key of an underlying store to one client id.
type Namespaced struct {
	inner     KeyValueStore
	namespace string
}

func NewNamespaced(inner KeyValueStore, clientID string) *Namespaced {
	return &Namespaced{inner: inner, namespace: "client:" + clientID + ":"}
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.inner.Get(ctx, n.namespace+key)
}

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.namespace+key, value)
}

func (n *Namespaced) Remove(ctx context.Context, key string) error {
	return n.inner.Remove(ctx, n.namespace+key)
}
