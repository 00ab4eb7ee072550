package libcdp

import "context"

var _ Connection = (*mockConnection)(nil)

// mockConnection implements Connection with pluggable behavior, following the
// func-field style of the other test doubles.
type mockConnection struct {
	SendFunc      func(m *Message) error
	OpenFunc      func(ctx context.Context) error
	CloseFunc     func()
	CloseErrFunc  func() error
	CloseChanFunc func() CloseChan
}

func (m *mockConnection) Send(msg *Message) error {
	if m.SendFunc != nil {
		return m.SendFunc(msg)
	}
	return nil
}

func (m *mockConnection) Open(ctx context.Context) error {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx)
	}
	return nil
}

func (m *mockConnection) Close() {
	if m.CloseFunc != nil {
		m.CloseFunc()
	}
}

func (m *mockConnection) CloseErr() error {
	if m.CloseErrFunc != nil {
		return m.CloseErrFunc()
	}
	return nil
}

func (m *mockConnection) CloseChan() CloseChan {
	if m.CloseChanFunc != nil {
		return m.CloseChanFunc()
	}
	return nil
}
