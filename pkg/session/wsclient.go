package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/quantro/pkg/log"
	"github.com/cbodonnell/quantro/pkg/messages"
	"github.com/cbodonnell/quantro/pkg/queue"
	"github.com/gorilla/websocket"
)

// WSClient is the client end of a relay connection.
type WSClient struct {
	serverAddr   string
	messageQueue queue.Queue[*messages.Message]
	welcomeChan  chan<- *messages.Message
	conn         *websocket.Conn
	writeLock    sync.Mutex
}

// NewWSClient creates a new WebSocket client. Welcome messages are delivered
// on welcomeChan; everything else is queued on messageQueue.
func NewWSClient(serverAddr string, messageQueue queue.Queue[*messages.Message], welcomeChan chan<- *messages.Message) *WSClient {
	return &WSClient{
		serverAddr:   serverAddr,
		messageQueue: messageQueue,
		welcomeChan:  welcomeChan,
	}
}

// Connect establishes a connection to the WebSocket server.
func (c *WSClient) Connect(ctx context.Context) error {
	log.Info("Connecting to relay at %s", c.serverAddr)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.serverAddr, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %v", err)
	}
	conn.SetReadLimit(messages.MessageBufferSize)
	c.conn = conn
	return nil
}

// HandleMessages reads from the server until the connection fails or ctx is
// done.
func (c *WSClient) HandleMessages(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("failed to read message: %v", err)
		}
		if messageType != websocket.BinaryMessage {
			log.Warn("Ignoring non-binary message from %s", c.serverAddr)
			continue
		}

		msg, err := messages.DeserializeMessage(data)
		if err != nil {
			log.Error("Failed to deserialize message: %v", err)
			continue
		}

		if msg.Type == messages.MessageTypeWelcome {
			select {
			case c.welcomeChan <- msg:
			default:
				log.Warn("Ignoring unexpected welcome message")
			}
			continue
		}

		if err := c.messageQueue.Enqueue(msg); err != nil {
			log.Error("Failed to enqueue %s message: %v", msg.Type, err)
		}
	}
}

// Send writes msg to the server. It is safe for concurrent use.
func (c *WSClient) Send(ctx context.Context, msg *messages.Message) error {
	data, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("failed to write message: %v", err)
	}
	return nil
}

// Close sends a close frame and closes the connection.
func (c *WSClient) Close() error {
	if c.conn == nil {
		return nil
	}
	c.writeLock.Lock()
	err := c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	c.writeLock.Unlock()
	if err != nil {
		log.Debug("Failed to send close message: %v", err)
	}
	return c.conn.Close()
}
