package mocks

import (
	"context"

	"noah-food/web-svc/internal/service"

	"github.com/stretchr/testify/mock"
)

// StatusServiceInterface is a mock of service.StatusServiceInterface.
type StatusServiceInterface struct {
	mock.Mock
}

func NewStatusServiceInterface(t testingT) *StatusServiceInterface {
	m := &StatusServiceInterface{}
	register(&m.Mock, t)
	return m
}

func (_m *StatusServiceInterface) Resolve(ctx context.Context, ref string) (*service.StatusView, error) {
	ret := _m.Called(ctx, ref)
	var r0 *service.StatusView
	if v := ret.Get(0); v != nil {
		r0 = v.(*service.StatusView)
	}
	return r0, ret.Error(1)
}
