package mocks

import (
	"context"

	"noah-food/web-svc/internal/domain"
	"noah-food/web-svc/internal/upstream"

	"github.com/stretchr/testify/mock"
)

// UpstreamAPI is a mock of service.UpstreamAPI.
type UpstreamAPI struct {
	mock.Mock
}

func NewUpstreamAPI(t testingT) *UpstreamAPI {
	m := &UpstreamAPI{}
	register(&m.Mock, t)
	return m
}

func (_m *UpstreamAPI) ListCategories(ctx context.Context, cfg upstream.Config) ([]domain.MenuCategory, error) {
	ret := _m.Called(ctx, cfg)
	var r0 []domain.MenuCategory
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.MenuCategory)
	}
	return r0, ret.Error(1)
}

func (_m *UpstreamAPI) ListMenuItems(ctx context.Context, cfg upstream.Config) ([]domain.MenuItem, error) {
	ret := _m.Called(ctx, cfg)
	var r0 []domain.MenuItem
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.MenuItem)
	}
	return r0, ret.Error(1)
}

func (_m *UpstreamAPI) GetMenuItem(ctx context.Context, cfg upstream.Config, id int) (*domain.MenuItem, error) {
	ret := _m.Called(ctx, cfg, id)
	var r0 *domain.MenuItem
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.MenuItem)
	}
	return r0, ret.Error(1)
}

func (_m *UpstreamAPI) CreateOrder(ctx context.Context, cfg upstream.Config, req domain.OrderCreationRequest) (*domain.Order, error) {
	ret := _m.Called(ctx, cfg, req)
	var r0 *domain.Order
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.Order)
	}
	return r0, ret.Error(1)
}

func (_m *UpstreamAPI) ListOrders(ctx context.Context, cfg upstream.Config) ([]domain.Order, error) {
	ret := _m.Called(ctx, cfg)
	var r0 []domain.Order
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.Order)
	}
	return r0, ret.Error(1)
}

func (_m *UpstreamAPI) GetOrder(ctx context.Context, cfg upstream.Config, ref string) (*domain.Order, error) {
	ret := _m.Called(ctx, cfg, ref)
	var r0 *domain.Order
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.Order)
	}
	return r0, ret.Error(1)
}

func (_m *UpstreamAPI) Login(ctx context.Context, cfg upstream.Config, username, password string) (*domain.AuthResult, error) {
	ret := _m.Called(ctx, cfg, username, password)
	var r0 *domain.AuthResult
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.AuthResult)
	}
	return r0, ret.Error(1)
}

func (_m *UpstreamAPI) Register(ctx context.Context, cfg upstream.Config, req domain.RegisterRequest) (*domain.AuthResult, error) {
	ret := _m.Called(ctx, cfg, req)
	var r0 *domain.AuthResult
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.AuthResult)
	}
	return r0, ret.Error(1)
}

func (_m *UpstreamAPI) Me(ctx context.Context, cfg upstream.Config) (*domain.AuthUser, error) {
	ret := _m.Called(ctx, cfg)
	var r0 *domain.AuthUser
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.AuthUser)
	}
	return r0, ret.Error(1)
}

func (_m *UpstreamAPI) Logout(ctx context.Context, cfg upstream.Config) error {
	ret := _m.Called(ctx, cfg)
	return ret.Error(0)
}
