package libcdp

import (
	"context"
	"sync"
)

// noopConnection is a Connection that accepts everything and delivers
// nothing. Useful as a stand-in while wiring a client.
type noopConnection struct {
	closeChan CloseChan
	closeOnce sync.Once
}

func NewNoopConnection() Connection {
	return &noopConnection{closeChan: make(CloseChan)}
}

func NewNoopConnectionFactory() ConnectionFactory {
	return func(ctx context.Context, recvChan chan<- *Message) Connection {
		return NewNoopConnection()
	}
}

func (n *noopConnection) Send(m *Message) error { return nil }

func (n *noopConnection) Open(context.Context) error { return nil }

func (n *noopConnection) Close() {
	n.closeOnce.Do(func() {
		close(n.closeChan)
	})
}

func (n *noopConnection) CloseErr() error { return nil }

func (n *noopConnection) CloseChan() CloseChan { return n.closeChan }
