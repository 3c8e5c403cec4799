package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Storage is a mock of service.Storage.
type Storage struct {
	mock.Mock
}

func NewStorage(t testingT) *Storage {
	m := &Storage{}
	register(&m.Mock, t)
	return m
}

func (_m *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	ret := _m.Called(ctx, key)
	return ret.String(0), ret.Bool(1), ret.Error(2)
}

func (_m *Storage) Set(ctx context.Context, key, value string) error {
	ret := _m.Called(ctx, key, value)
	return ret.Error(0)
}

func (_m *Storage) Remove(ctx context.Context, key string) error {
	ret := _m.Called(ctx, key)
	return ret.Error(0)
}
