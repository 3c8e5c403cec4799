package mocks

import (
	"context"

	"noah-food/web-svc/internal/service"

	"github.com/stretchr/testify/mock"
)

// CheckoutServiceInterface is a mock of service.CheckoutServiceInterface.
type CheckoutServiceInterface struct {
	mock.Mock
}

func NewCheckoutServiceInterface(t testingT) *CheckoutServiceInterface {
	m := &CheckoutServiceInterface{}
	register(&m.Mock, t)
	return m
}

func (_m *CheckoutServiceInterface) Submit(ctx context.Context, input service.CheckoutInput) (*service.Handoff, error) {
	ret := _m.Called(ctx, input)
	var r0 *service.Handoff
	if v := ret.Get(0); v != nil {
		r0 = v.(*service.Handoff)
	}
	return r0, ret.Error(1)
}

func (_m *CheckoutServiceInterface) State() service.CheckoutState {
	ret := _m.Called()
	return ret.Get(0).(service.CheckoutState)
}
