package libcdp

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

var _ Client = (*mockClient)(nil)

type mockClient struct {
	mock.Mock

	tapOpen func()
}

func (m *mockClient) Open(ctx context.Context) error {
	if m.tapOpen != nil {
		m.tapOpen()
	}
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockClient) Execute(ctx context.Context, method string, params any) (json.RawMessage, error) {
	args := m.Called(ctx, method, params)
	res, _ := args.Get(0).(json.RawMessage)
	return res, args.Error(1)
}

func (m *mockClient) Subscribe(method string) (*Subscription, error) {
	args := m.Called(method)
	sub, _ := args.Get(0).(*Subscription)
	return sub, args.Error(1)
}

func (m *mockClient) SubscribeCustom(method string, decode EventDecoder) (*Subscription, error) {
	args := m.Called(method, decode)
	sub, _ := args.Get(0).(*Subscription)
	return sub, args.Error(1)
}

func (m *mockClient) Close() {
	m.Called()
}

func (m *mockClient) CloseChan() CloseChan {
	args := m.Called()
	ch, _ := args.Get(0).(CloseChan)
	return ch
}
