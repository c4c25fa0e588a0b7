package viser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// incomingBuffer bounds the FIFO between the transport reader and the
// dispatch loop. Delivery order is strictly the connection's order.
const incomingBuffer = 256

// ErrDisconnected is returned by Send while the live transport has no
// usable connection (e.g. mid-reconnect).
var ErrDisconnected = errors.New("transport disconnected")

// Transport abstracts the bidirectional message channel: a live websocket
// connection or a pre-recorded session replay. The two are mutually
// exclusive, selected once at startup (see ParseConfig).
//
// Incoming is closed when no further messages will ever arrive. Sends have
// no built-in backpressure beyond the channel's own buffering; callers
// needing rate limiting throttle before calling Send.
type Transport interface {
	Incoming() <-chan Message
	Send(m Message) error
	Close() error
}

// WebSocketTransport is the live transport. On connection loss it retries
// with exponential backoff until closed; dispatch simply pauses while the
// channel is down and resumes once messages flow again, leaving in-flight
// drag and render-request state untouched.
type WebSocketTransport struct {
	url string
	log *zap.Logger

	in     chan Message
	connMu sync.Mutex
	conn   *websocket.Conn

	ctx    context.Context
	cancel context.CancelFunc
	closed sync.Once
}

// Dial connects to a websocket server and starts the read pump.
func Dial(ctx context.Context, url string, log *zap.Logger) (*WebSocketTransport, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	tctx, cancel := context.WithCancel(ctx)
	t := &WebSocketTransport{
		url:    url,
		log:    log.With(zap.String("url", url)),
		in:     make(chan Message, incomingBuffer),
		conn:   conn,
		ctx:    tctx,
		cancel: cancel,
	}
	go t.readPump()
	return t, nil
}

// Incoming returns the ordered inbound message stream.
func (t *WebSocketTransport) Incoming() <-chan Message { return t.in }

// Send serializes and writes a message on the connection.
func (t *WebSocketTransport) Send(m Message) error {
	data, err := EncodeMessage(m)
	if err != nil {
		return err
	}
	t.connMu.Lock()
	defer t.connMu.Unlock()
	if t.conn == nil {
		return ErrDisconnected
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write %s: %w", m.MessageType(), err)
	}
	return nil
}

// Close shuts the transport down and closes the incoming channel.
func (t *WebSocketTransport) Close() error {
	var err error
	t.closed.Do(func() {
		t.cancel()
		t.connMu.Lock()
		if t.conn != nil {
			err = t.conn.Close()
			t.conn = nil
		}
		t.connMu.Unlock()
	})
	return err
}

// readPump reads messages in connection order into the incoming channel,
// reconnecting with backoff after errors. Returns only when the transport
// is closed.
func (t *WebSocketTransport) readPump() {
	defer close(t.in)

	for {
		t.connMu.Lock()
		conn := t.conn
		t.connMu.Unlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if t.ctx.Err() != nil {
				return
			}
			t.log.Warn("connection lost", zap.Error(err))
			if !t.reconnect() {
				return
			}
			continue
		}

		msg, err := DecodeMessage(data)
		if err != nil {
			t.log.Debug("skipping undecodable message", zap.Error(err))
			continue
		}

		select {
		case t.in <- msg:
		case <-t.ctx.Done():
			return
		}
	}
}

// reconnect re-dials with exponential backoff. Reports false when the
// transport was closed before a connection could be established.
func (t *WebSocketTransport) reconnect() bool {
	t.connMu.Lock()
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}
	t.connMu.Unlock()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxInterval = 10 * time.Second
	policy.MaxElapsedTime = 0 // retry until closed

	conn, err := backoff.RetryWithData(func() (*websocket.Conn, error) {
		if t.ctx.Err() != nil {
			return nil, backoff.Permanent(t.ctx.Err())
		}
		c, _, err := websocket.DefaultDialer.DialContext(t.ctx, t.url, nil)
		if err != nil {
			t.log.Info("reconnect attempt failed", zap.Error(err))
			return nil, err
		}
		return c, nil
	}, backoff.WithContext(policy, t.ctx))
	if err != nil {
		return false
	}

	t.connMu.Lock()
	t.conn = conn
	t.connMu.Unlock()
	t.log.Info("reconnected")
	return true
}
