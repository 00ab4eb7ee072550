package libcdp

import (
	"context"
	"encoding/json"
)

const recvBufferSize = 64

type (
	// Client is the interface that defines the behavior of a debugging
	// client: opening and closing the connection, executing commands and
	// subscribing to server-pushed events.
	Client interface {
		// Open establishes the connection and starts the handler loop.
		Open(ctx context.Context) error
		// Execute sends a command and waits for its response.
		Execute(ctx context.Context, method string, params any) (json.RawMessage, error)
		// Subscribe registers a listener for the native events of a method key.
		Subscribe(method string) (*Subscription, error)
		// SubscribeCustom registers a listener for an application-defined
		// event type decoded by the supplied decoder.
		SubscribeCustom(method string, decode EventDecoder) (*Subscription, error)
		// Close closes the connection.
		Close()
		// CloseChan returns a channel that signals when the client is closed.
		CloseChan() CloseChan
	}

	ClientFactory func() Client
)

// basicClient is a client implementation with a single connection socket.
// All inbound traffic flows through one Handler goroutine, which owns the
// subscription registry.
type basicClient struct {
	logger logger

	connectionFactory ConnectionFactory
	connection        Connection

	handler *Handler

	eventBufSize int
	onError      ErrorHandler
}

func (b *basicClient) Open(ctx context.Context) error {
	recv := make(chan *Message, recvBufferSize)

	b.connection = b.connectionFactory(ctx, recv)
	if err := b.connection.Open(ctx); err != nil {
		return err
	}

	b.handler = NewHandler(b.logger, b.connection, recv, b.onError, b.eventBufSize)
	go b.handler.Run(ctx)

	return nil
}

func (b *basicClient) Execute(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return b.handler.Execute(ctx, method, params)
}

func (b *basicClient) Subscribe(method string) (*Subscription, error) {
	return b.handler.Subscribe(method)
}

func (b *basicClient) SubscribeCustom(method string, decode EventDecoder) (*Subscription, error) {
	return b.handler.SubscribeCustom(method, decode)
}

func (b *basicClient) Close() {
	if b.handler != nil {
		b.handler.Close()
	}
	if b.connection != nil {
		b.connection.Close()
	}
}

func (b *basicClient) CloseChan() CloseChan {
	return b.handler.CloseChan()
}

func newBasicClient(
	logger logger,
	connectionFactory ConnectionFactory,
	onError ErrorHandler,
) *basicClient {
	return &basicClient{
		logger:            logger,
		connectionFactory: connectionFactory,
		onError:           onError,
		eventBufSize:      DefaultEventBufferSize,
	}
}

func NewBasicClientFactory(
	logger logger,
	connectionFactory ConnectionFactory,
	onError ErrorHandler,
) ClientFactory {
	return func() Client {
		return newBasicClient(logger, connectionFactory, onError)
	}
}

// NewClient builds a client over a single websocket connection to the given
// endpoint. onError may be nil.
func NewClient(logger logger, connectionFactory ConnectionFactory, onError ErrorHandler) Client {
	return newBasicClient(logger, connectionFactory, onError)
}
