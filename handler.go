package libcdp

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// drainRetryInterval bounds how long a blocked subscription waits for its
// next flush attempt when no inbound traffic would trigger one.
const drainRetryInterval = 5 * time.Millisecond

type (
	commandResult struct {
		result json.RawMessage
		err    error
	}

	command struct {
		msg   *Message
		reply chan commandResult
	}

	// ErrorHandler receives failures the handler loop cannot hand back to
	// any caller, e.g. a rejected custom event payload.
	ErrorHandler func(error)

	// Handler drives one connection: it correlates command responses by id,
	// dispatches server-pushed events into the subscription registry and
	// drains it after every inbound batch. The registry is owned by the run
	// goroutine alone; commands and subscription requests reach it over
	// channels.
	Handler struct {
		logger logger
		conn   Connection

		recv      chan *Message
		commands  chan command
		listeners chan SubscriptionRequest

		subs    *Subscriptions
		pending map[int64]chan commandResult
		nextID  int64

		eventBufSize int
		onError      ErrorHandler

		closeChan CloseChan
		closeOnce sync.Once
	}
)

func NewHandler(
	logger logger,
	conn Connection,
	recv chan *Message,
	onError ErrorHandler,
	eventBufSize int,
) *Handler {
	if onError == nil {
		onError = func(error) {}
	}
	return &Handler{
		logger:       logger.WithField("component", "handler"),
		conn:         conn,
		recv:         recv,
		commands:     make(chan command),
		listeners:    make(chan SubscriptionRequest),
		subs:         NewSubscriptions(logger),
		pending:      make(map[int64]chan commandResult),
		eventBufSize: eventBufSize,
		onError:      onError,
		closeChan:    make(CloseChan),
	}
}

// Run processes the connection until ctx ends, Close is called or the
// connection dies. It must be started exactly once, on its own goroutine.
func (h *Handler) Run(ctx context.Context) {
	defer h.shutdown()

	backlog := 0
	for {
		// While consumers still owe us room, schedule a retry so blocked
		// subscriptions get flushed even if the wire goes quiet.
		var retry <-chan time.Time
		if backlog > 0 {
			retry = time.After(drainRetryInterval)
		}

		select {
		case <-ctx.Done():
			return
		case <-h.closeChan:
			return
		case <-h.conn.CloseChan():
			return
		case msg := <-h.recv:
			h.handleMessage(msg)
			h.consumeBatch()
			backlog = h.subs.Drain()
		case cmd := <-h.commands:
			h.sendCommand(cmd)
		case req := <-h.listeners:
			h.subs.AddListener(req)
		case <-retry:
			backlog = h.subs.Drain()
		}
	}
}

// consumeBatch handles whatever else already sits in the recv channel, so a
// burst of frames is dispatched as one batch followed by a single drain.
func (h *Handler) consumeBatch() {
	for {
		select {
		case msg := <-h.recv:
			h.handleMessage(msg)
		default:
			return
		}
	}
}

func (h *Handler) handleMessage(msg *Message) {
	if msg.IsResponse() {
		reply, found := h.pending[msg.ID]
		if !found {
			h.logger.Debugf("response for unknown command id %d", msg.ID)
			return
		}
		delete(h.pending, msg.ID)
		if msg.Error != nil {
			reply <- commandResult{err: msg.Error}
		} else {
			reply <- commandResult{result: msg.Result}
		}
		return
	}

	if !msg.IsEvent() {
		h.logger.Debugf("discarding frame that is neither response nor event: %s", msg)
		return
	}

	if decode, found := nativeEventDecoder(msg.Method); found {
		ev, err := decode(msg.Params)
		if err != nil {
			h.onError(WrapErrDecodeEvent(err, msg.Method))
			return
		}
		h.subs.DispatchNative(msg.Method, ev)
		return
	}

	if err := h.subs.DispatchCustom(msg.Method, msg.Params); err != nil {
		h.onError(err)
	}
}

func (h *Handler) sendCommand(cmd command) {
	h.nextID++
	cmd.msg.ID = h.nextID
	h.pending[cmd.msg.ID] = cmd.reply

	if err := h.conn.Send(cmd.msg); err != nil {
		delete(h.pending, cmd.msg.ID)
		cmd.reply <- commandResult{err: err}
	}
}

// Execute sends one command and waits for the matching response. The result
// is the raw result object; a protocol-level failure comes back as a
// *ResponseError.
func (h *Handler) Execute(ctx context.Context, method string, params any) (json.RawMessage, error) {
	var raw json.RawMessage
	if params != nil {
		bts, err := jsonCodec.Marshal(params)
		if err != nil {
			return nil, err
		}
		raw = bts
	}

	reply := make(chan commandResult, 1)
	cmd := command{
		msg:   &Message{Method: method, Params: raw},
		reply: reply,
	}

	select {
	case h.commands <- cmd:
	case <-h.closeChan:
		return nil, ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.result, res.err
	case <-h.closeChan:
		return nil, ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Subscribe registers a listener for the native events of a method key.
func (h *Handler) Subscribe(method string) (*Subscription, error) {
	return h.subscribe(method, NativeEventKind())
}

// SubscribeCustom registers a listener for an application-defined event type
// under a free-form method key, decoded by the supplied decoder.
func (h *Handler) SubscribeCustom(method string, decode EventDecoder) (*Subscription, error) {
	return h.subscribe(method, CustomEventKind(decode))
}

func (h *Handler) subscribe(method string, kind EventKind) (*Subscription, error) {
	sub, req := newSubscription(method, kind, h.eventBufSize)
	select {
	case h.listeners <- req:
		return sub, nil
	case <-h.closeChan:
		return nil, ErrConnectionClosed
	}
}

// Close stops the handler loop. Pending commands fail with the connection's
// close reason and every subscription stream ends.
func (h *Handler) Close() {
	h.closeOnce.Do(func() {
		close(h.closeChan)
	})
}

func (h *Handler) CloseChan() CloseChan {
	return h.closeChan
}

func (h *Handler) shutdown() {
	h.Close()

	err := h.conn.CloseErr()
	if err == nil {
		err = ErrConnectionClosed
	}
	for id, reply := range h.pending {
		delete(h.pending, id)
		reply <- commandResult{err: err}
	}

	h.subs.CloseAll()
	h.conn.Close()
}
