package mocks

import (
	"context"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
)

// MessageWriter is a mock of storage.MessageWriter.
type MessageWriter struct {
	mock.Mock
}

func NewMessageWriter(t testingT) *MessageWriter {
	m := &MessageWriter{}
	register(&m.Mock, t)
	return m
}

func (_m *MessageWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := []interface{}{ctx}
	for _, msg := range msgs {
		args = append(args, msg)
	}
	ret := _m.Called(args...)
	return ret.Error(0)
}
