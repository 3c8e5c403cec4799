package httpapi

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"noah-food/web-svc/internal/service"
	"noah-food/web-svc/internal/storage"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const ClientIDHeader = "X-Client-ID"

type clientIDKey struct{}

const (
	DefaultRegistrySize    = 10000
	DefaultRegistryIdleTTL = 30 * time.Minute
)

// WorkspaceFactory builds the services of a client over its scoped storage.
type WorkspaceFactory func(store service.Storage) *service.Workspace

// Registry hands out one workspace per client id. Workspaces live in a
// bounded LRU and are dropped after sitting idle for the TTL. Persisted
// client state is not affected by eviction.
type Registry struct {
	mu         sync.Mutex
	store      storage.KeyValueStore
	factory    WorkspaceFactory
	workspaces *expirable.LRU[string, *service.Workspace]
}

// NewRegistry builds a registry holding at most size workspaces. Non-positive
// values fall back to the defaults.
func NewRegistry(store storage.KeyValueStore, factory WorkspaceFactory, size int, idleTTL time.Duration) *Registry {
	if size <= 0 {
		size = DefaultRegistrySize
	}
	if idleTTL <= 0 {
		idleTTL = DefaultRegistryIdleTTL
	}
	return &Registry{
		store:      store,
		factory:    factory,
		workspaces: expirable.NewLRU[string, *service.Workspace](size, nil, idleTTL),
	}
}

func (r *Registry) Get(clientID string) *service.Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.workspaces.Get(clientID); ok {
		return ws
	}
	ws := r.factory(storage.NewNamespaced(r.store, clientID))
	r.workspaces.Add(clientID, ws)
	return ws
}

// Len reports how many workspaces are currently held.
func (r *Registry) Len() int {
	return r.workspaces.Len()
}

// withClientID resolves the caller from the header or the client_id query
// parameter and issues a new id when neither is present.
func withClientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := strings.TrimSpace(r.Header.Get(ClientIDHeader))
		if clientID == "" {
			clientID = strings.TrimSpace(r.URL.Query().Get("client_id"))
		}
		if clientID == "" {
			clientID = uuid.NewString()
		}
		w.Header().Set(ClientIDHeader, clientID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientIDKey{}, clientID)))
	})
}

func clientIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}
