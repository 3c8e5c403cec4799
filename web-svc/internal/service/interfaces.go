package service

import (
	"context"

	"noah-food/web-svc/internal/domain"
	"noah-food/web-svc/internal/upstream"
)

type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type MenuAPI interface {
	ListCategories(ctx context.Context, cfg upstream.Config) ([]domain.MenuCategory, error)
	ListMenuItems(ctx context.Context, cfg upstream.Config) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, cfg upstream.Config, id int) (*domain.MenuItem, error)
}

type OrderAPI interface {
	CreateOrder(ctx context.Context, cfg upstream.Config, req domain.OrderCreationRequest) (*domain.Order, error)
	ListOrders(ctx context.Context, cfg upstream.Config) ([]domain.Order, error)
	GetOrder(ctx context.Context, cfg upstream.Config, ref string) (*domain.Order, error)
}

type AuthAPI interface {
	Login(ctx context.Context, cfg upstream.Config, username, password string) (*domain.AuthResult, error)
	Register(ctx context.Context, cfg upstream.Config, req domain.RegisterRequest) (*domain.AuthResult, error)
	Me(ctx context.Context, cfg upstream.Config) (*domain.AuthUser, error)
	Logout(ctx context.Context, cfg upstream.Config) error
}

type MenuCache interface {
	MenuKey(baseURL, kind string) string
	Load(ctx context.Context, key string, dst any) (bool, error)
	Store(ctx context.Context, key string, value any) error
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}

type CartServiceInterface interface {
	Read(ctx context.Context) (domain.Cart, error)
	Add(ctx context.Context, item domain.MenuItem, qty int) (AddResult, error)
	Confirm(ctx context.Context, pending PendingChange) (domain.Cart, error)
	SetQuantity(ctx context.Context, id, qty int) (domain.Cart, error)
	Increment(ctx context.Context, id int) (domain.Cart, error)
	Decrement(ctx context.Context, id int) (domain.Cart, error)
	Remove(ctx context.Context, id int) (domain.Cart, error)
	Count(ctx context.Context) (int, error)
	Subtotal(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}

type MenuServiceInterface interface {
	ListCategories(ctx context.Context) ([]domain.MenuCategory, error)
	ListMenuItems(ctx context.Context) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, id int) (*domain.MenuItem, error)
	ViewItem(ctx context.Context, id int) (*domain.MenuItem, error)
	Snapshot(ctx context.Context) (*MenuSnapshot, error)
	Browse(ctx context.Context, filter MenuFilter) (*MenuSnapshot, error)
}

type CheckoutServiceInterface interface {
	Submit(ctx context.Context, input CheckoutInput) (*Handoff, error)
	State() CheckoutState
}

type StatusServiceInterface interface {
	Resolve(ctx context.Context, ref string) (*StatusView, error)
}

type SessionServiceInterface interface {
	Login(ctx context.Context, username, password string) (*Profile, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*Profile, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*Profile, error)
}

var (
	_ CartServiceInterface     = (*CartStore)(nil)
	_ MenuServiceInterface     = (*MenuService)(nil)
	_ CheckoutServiceInterface = (*CheckoutService)(nil)
	_ StatusServiceInterface   = (*StatusService)(nil)
	_ SessionServiceInterface  = (*SessionService)(nil)
)
