package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/quantro/pkg/log"
	"github.com/cbodonnell/quantro/pkg/messages"
	"github.com/cbodonnell/quantro/pkg/queue"
	"nhooyr.io/websocket"
)

// Sender is anything a message can be sent through.
type Sender interface {
	Send(ctx context.Context, msg *messages.Message) error
}

// Conn is a websocket connection carrying serialized messages, one per
// binary frame.
type Conn struct {
	ws *websocket.Conn
}

func newConn(ws *websocket.Conn) *Conn {
	ws.SetReadLimit(messages.MessageBufferSize)
	return &Conn{ws: ws}
}

// Dial connects to a relay websocket endpoint.
func Dial(ctx context.Context, url string) (*Conn, error) {
	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %v", url, err)
	}
	return newConn(ws), nil
}

type AcceptOptions struct {
	// OriginPatterns lists the hosts allowed to connect from a browser
	OriginPatterns []string
}

// Accept upgrades an HTTP request to a Conn.
func Accept(w http.ResponseWriter, r *http.Request, opts AcceptOptions) (*Conn, error) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: opts.OriginPatterns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to accept websocket: %v", err)
	}
	return newConn(ws), nil
}

// ReadMessage blocks until a message arrives or ctx is done.
func (c *Conn) ReadMessage(ctx context.Context) (*messages.Message, error) {
	typ, b, err := c.ws.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ != websocket.MessageBinary {
		return nil, fmt.Errorf("unexpected %v frame", typ)
	}

	msg, err := messages.DeserializeMessage(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}
	return msg, nil
}

func (c *Conn) WriteMessage(ctx context.Context, msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	if err := c.ws.Write(ctx, websocket.MessageBinary, b); err != nil {
		return fmt.Errorf("failed to write message to websocket: %v", err)
	}
	return nil
}

// Send implements Sender.
func (c *Conn) Send(ctx context.Context, msg *messages.Message) error {
	return c.WriteMessage(ctx, msg)
}

// ReadInto enqueues every message read from c into inbox until the
// connection closes or ctx is done. A normal closure returns nil.
func (c *Conn) ReadInto(ctx context.Context, inbox queue.Queue[*messages.Message]) error {
	for {
		msg, err := c.ReadMessage(ctx)
		if err != nil {
			if IsNormalClosure(err) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := inbox.Enqueue(msg); err != nil {
			log.Error("Failed to enqueue %s message from client %d: %v", msg.Type, msg.ClientID, err)
		}
	}
}

func (c *Conn) Close(reason string) error {
	return c.ws.Close(websocket.StatusNormalClosure, reason)
}

// IsNormalClosure reports whether err is the peer closing the connection
// cleanly.
func IsNormalClosure(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
