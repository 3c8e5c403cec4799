package mocks

import (
	"context"

	"noah-food/web-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

// EventPublisher is a mock of service.EventPublisher.
type EventPublisher struct {
	mock.Mock
}

func NewEventPublisher(t testingT) *EventPublisher {
	m := &EventPublisher{}
	register(&m.Mock, t)
	return m
}

func (_m *EventPublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	ret := _m.Called(ctx, event)
	return ret.Error(0)
}
