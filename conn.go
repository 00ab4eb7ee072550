package libcdp

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/pkg/errors"
)

type (
	CloseChan chan struct{}

	// Connection owns the physical socket to the debugging endpoint. It
	// decodes inbound frames onto the recv channel handed to its factory and
	// writes outgoing frames from Send.
	Connection interface {
		// Send queues a frame to be written over the wire.
		Send(m *Message) error
		// Open establishes the connection and starts the read/write pumps.
		Open(ctx context.Context) error
		// Close terminates the connection.
		Close()
		// CloseErr explains why the connection closed, nil on a clean close.
		CloseErr() error
		// CloseChan returns a channel closed when the connection is closed.
		CloseChan() CloseChan
	}

	ConnectionFactory func(ctx context.Context, recvChan chan<- *Message) Connection

	// DialParams describe one debugging endpoint. PingInterval > 0 makes the
	// write pump emit periodic websocket pings so idle debugging sessions
	// survive proxies with aggressive timeouts.
	DialParams struct {
		URL          url.URL
		Header       http.Header
		PingInterval time.Duration
	}
)

const writeDeadline = time.Second

// wsConnection implements Connection over a websocket. Inbound text frames
// are decoded into Messages and pushed to recv; malformed frames are logged
// and skipped.
type wsConnection struct {
	logger          logger
	dialer          *websocket.Dialer
	params          DialParams
	conn            *websocket.Conn
	closeChan       CloseChan
	closeOnce       sync.Once
	closeReason     error
	closeReasonOnce sync.Once
	recv            chan<- *Message
	send            chan []byte
}

func NewWebsocketConnection(
	dialer *websocket.Dialer,
	params DialParams,
	logger logger,
	recvChan chan<- *Message,
) *wsConnection {
	return &wsConnection{
		logger:    logger.WithField("net", "ws_connection"),
		dialer:    dialer,
		params:    params,
		recv:      recvChan,
		send:      make(chan []byte),
		closeChan: make(CloseChan),
	}
}

func NewWebsocketFactory(
	logger logger,
	dialer *websocket.Dialer,
	params DialParams,
) ConnectionFactory {
	return func(ctx context.Context, recvChan chan<- *Message) Connection {
		return NewWebsocketConnection(dialer, params, logger, recvChan)
	}
}

// Send encodes the frame and queues it for the write pump.
func (w *wsConnection) Send(m *Message) error {
	bts, err := EncodeMessage(m)
	if err != nil {
		return err
	}
	select {
	case w.send <- bts:
		return nil
	case <-w.closeChan:
		return ErrConnectionClosed
	}
}

func (w *wsConnection) Close() {
	w.safeClose()
}

func (w *wsConnection) Open(ctx context.Context) error {
	return w.start(ctx)
}

func (w *wsConnection) CloseChan() CloseChan {
	return w.closeChan
}

func (w *wsConnection) CloseErr() error {
	return w.closeReason
}

func (w *wsConnection) start(ctx context.Context) error {
	conn, resp, err := w.dialer.Dial(w.params.URL.String(), w.params.Header)
	if err = w.handleDialError(resp, err); err != nil {
		w.logger.Errorf("connection err to %s: %s", w.params.URL.String(), err)
		return err
	}

	w.logger.Debugf("success opening connection to %s", w.params.URL.String())

	w.conn = conn

	// The default ping handler already answers with a pong at the frame
	// layer; the protocol itself never uses control frames.

	go w.read(ctx)
	go w.write(ctx)

	return nil
}

func (w *wsConnection) read(ctx context.Context) {
	defer w.safeClose()

	for {
		select {
		case <-w.closeChan:
			w.setCloseReason(ErrTerminated)
			return
		case <-ctx.Done():
			w.setCloseReason(ErrTerminated)
			return
		default:
			_, bts, err := w.conn.ReadMessage()
			if err != nil {
				w.logger.Errorf("error occurred on websocket read: %s", err)

				w.setCloseReason(errors.Wrap(
					ErrConnectionClosed,
					"error occurred on websocket read: "+err.Error(),
				))
				return
			}

			msg, err := DecodeMessage(bts)
			if err != nil {
				w.logger.Warnf("skipping malformed frame: %s", err)
				continue
			}

			w.logger.Debugf("<= %s", msg)

			select {
			case w.recv <- msg:
			case <-w.closeChan:
				w.setCloseReason(ErrTerminated)
				return
			case <-ctx.Done():
				w.setCloseReason(ErrTerminated)
				return
			}
		}
	}
}

func (w *wsConnection) write(ctx context.Context) {
	defer w.safeClose()

	var ping <-chan time.Time
	if w.params.PingInterval > 0 {
		ticker := time.NewTicker(w.params.PingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case <-w.closeChan:
			w.setCloseReason(ErrTerminated)
			return
		case <-ctx.Done():
			w.setCloseReason(ErrTerminated)
			return
		case <-ping:
			deadline := time.Now().Add(writeDeadline)
			if err := w.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				w.logger.Warnf("keep-alive ping failed: %s", err)
			}
		case bts := <-w.send:
			w.logger.Debugf("=> %s", bts)

			_ = w.conn.SetWriteDeadline(time.Now().Add(writeDeadline))

			if err := w.conn.WriteMessage(websocket.TextMessage, bts); err != nil {
				if websocket.IsCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					w.setCloseReason(ErrConnectionClosed)
				} else {
					w.setCloseReason(errors.Wrap(ErrConnectionClosed, err.Error()))
				}
				return
			}
		}
	}
}

func (w *wsConnection) safeClose() {
	w.closeOnce.Do(w.close)
}

func (w *wsConnection) close() {
	if w.conn != nil {
		_ = w.conn.Close()
	}
	close(w.closeChan)
}

func (w *wsConnection) setCloseReason(err error) {
	w.closeReasonOnce.Do(func() {
		w.closeReason = err
	})
}

func (w *wsConnection) handleDialError(resp *http.Response, err error) error {
	if err == nil {
		return nil
	}

	var msg string
	if resp != nil && resp.Body != nil {
		if bts, rerr := io.ReadAll(resp.Body); rerr == nil {
			msg = string(bts)
		}
	}
	if msg != "" {
		return errors.Wrapf(ErrCannotConnect, "%s: %s", err, msg)
	}
	return errors.Wrap(ErrCannotConnect, err.Error())
}
