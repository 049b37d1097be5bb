package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/quantro/pkg/adapter"
	"github.com/cbodonnell/quantro/pkg/bridge"
	"github.com/cbodonnell/quantro/pkg/log"
	"github.com/cbodonnell/quantro/pkg/messages"
	"github.com/cbodonnell/quantro/pkg/queue"
	"github.com/cbodonnell/quantro/pkg/workers"
)

const (
	DefaultFlushInterval = 10 * time.Millisecond
	DefaultDrainInterval = 10 * time.Millisecond
	DefaultPingInterval  = 5 * time.Second
	// WelcomeTimeout bounds the wait for the relay to accept a hello
	WelcomeTimeout = 5 * time.Second
)

// Session is one player's membership in a relayed match: a locally
// controlled adapter published to the relay, and one echo adapter per
// other player fed from it.
type Session struct {
	client     *WSClient
	welcome    messages.Welcome
	local      *adapter.Adapter
	registry   *bridge.Registry
	dispatcher *bridge.Dispatcher
	publisher  *bridge.Publisher
	inbound    *workers.InboundWorker

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	errChan chan error

	pingLock sync.Mutex
	rtts     rttTracker
}

type NewSessionOptions struct {
	// URL is the websocket endpoint of the match
	URL  string
	Name string
	Rows int
	Cols int
	// Listener observes the local adapter
	Listener adapter.Listener
	// PeerListener, if set, supplies the listener of each echo adapter
	PeerListener  func(clientID uint32) adapter.Listener
	FlushInterval time.Duration
	DrainInterval time.Duration
	PingInterval  time.Duration
}

// Join connects to a match and starts exchanging messages. The caller is
// responsible for calling Close.
func Join(ctx context.Context, opts NewSessionOptions) (*Session, error) {
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	if opts.DrainInterval <= 0 {
		opts.DrainInterval = DefaultDrainInterval
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}

	inbox := queue.NewInMemoryQueue[*messages.Message](queue.NewInMemoryQueueOptions{})
	welcomeChan := make(chan *messages.Message, 1)
	client := NewWSClient(opts.URL, inbox, welcomeChan)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		client:   client,
		registry: bridge.NewRegistry(),
		cancel:   cancel,
		errChan:  make(chan error, 1),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := client.HandleMessages(runCtx)
		if err == nil && runCtx.Err() == nil {
			err = fmt.Errorf("connection closed by server")
		}
		if err != nil {
			s.fail(err)
		}
	}()

	if err := s.handshake(ctx, opts, welcomeChan); err != nil {
		s.Close()
		return nil, err
	}

	s.local = adapter.NewAdapter(adapter.NewAdapterOptions{
		Rows:                   s.welcome.Rows,
		Cols:                   s.welcome.Cols,
		DequeueActionsDiscards: true,
		Listener:               opts.Listener,
	})
	s.registry.Register(s.welcome.ClientID, s.local)
	s.dispatcher = bridge.NewDispatcher(bridge.NewDispatcherOptions{
		Registry:      s.registry,
		LocalClientID: s.welcome.ClientID,
		Factory: func(clientID uint32) *adapter.Adapter {
			var listener adapter.Listener
			if opts.PeerListener != nil {
				listener = opts.PeerListener(clientID)
			}
			return adapter.NewAdapter(adapter.NewAdapterOptions{
				Rows:     s.welcome.Rows,
				Cols:     s.welcome.Cols,
				Listener: listener,
			})
		},
	})
	s.publisher = bridge.NewPublisher(bridge.NewPublisherOptions{
		ClientID: s.welcome.ClientID,
		Adapter:  s.local,
		Sender:   client,
	})
	s.inbound = workers.NewInboundWorker(workers.NewInboundWorkerOptions{
		Inbox:    inbox,
		Handler:  s,
		Interval: opts.DrainInterval,
	})
	outbound := workers.NewOutboundWorker(workers.NewOutboundWorkerOptions{
		Flusher:  s.publisher,
		Interval: opts.FlushInterval,
	})

	s.start(runCtx, s.inbound.Start)
	s.start(runCtx, outbound.Start)
	s.start(runCtx, func(ctx context.Context) { s.pingLoop(ctx, opts.PingInterval) })

	log.Info("Joined match %s as client %d", s.welcome.MatchID, s.welcome.ClientID)
	return s, nil
}

func (s *Session) handshake(ctx context.Context, opts NewSessionOptions, welcomeChan <-chan *messages.Message) error {
	hello, err := messages.NewJSONMessage(0, messages.MessageTypeHello, messages.Hello{
		Name: opts.Name,
		Rows: opts.Rows,
		Cols: opts.Cols,
	})
	if err != nil {
		return err
	}
	if err := s.client.Send(ctx, hello); err != nil {
		return fmt.Errorf("failed to send hello: %v", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-s.errChan:
		return fmt.Errorf("connection failed before welcome: %v", err)
	case <-time.After(WelcomeTimeout):
		return fmt.Errorf("timed out waiting for welcome message")
	case msg := <-welcomeChan:
		if err := messages.DecodeJSON(msg, messages.MessageTypeWelcome, &s.welcome); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) start(ctx context.Context, fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(ctx)
	}()
}

func (s *Session) fail(err error) {
	select {
	case s.errChan <- err:
	default:
	}
}

// Handle consumes a message drained from the inbox.
func (s *Session) Handle(msg *messages.Message) error {
	if msg.Type == messages.MessageTypePong {
		return s.handlePong(msg)
	}
	return s.dispatcher.Handle(msg)
}

func (s *Session) pingLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msg, err := messages.NewJSONMessage(s.welcome.ClientID, messages.MessageTypePing, messages.Ping{
				Timestamp: time.Now().UnixMilli(),
			})
			if err != nil {
				log.Error("Failed to create ping message: %v", err)
				continue
			}
			if err := s.client.Send(ctx, msg); err != nil {
				log.Error("Failed to send ping: %v", err)
			}
		}
	}
}

func (s *Session) handlePong(msg *messages.Message) error {
	var ping messages.Ping
	if err := json.Unmarshal(msg.Payload, &ping); err != nil {
		return fmt.Errorf("failed to unmarshal pong payload: %v", err)
	}
	rtt := time.Now().UnixMilli() - ping.Timestamp
	s.pingLock.Lock()
	defer s.pingLock.Unlock()
	s.rtts.add(rtt)
	log.Trace("Ping: %d ms", rtt)
	return nil
}

// Ping returns the average round trip to the relay in milliseconds.
func (s *Session) Ping() float64 {
	s.pingLock.Lock()
	defer s.pingLock.Unlock()
	return s.rtts.average()
}

func (s *Session) ClientID() uint32 {
	return s.welcome.ClientID
}

func (s *Session) MatchID() string {
	return s.welcome.MatchID
}

// Roster returns the clients in the match when this session joined.
func (s *Session) Roster() []uint32 {
	return s.welcome.Roster
}

// Local returns the adapter of the locally controlled simulation.
func (s *Session) Local() *adapter.Adapter {
	return s.local
}

// Peer returns the echo adapter of another client once anything has been
// received for it.
func (s *Session) Peer(clientID uint32) (*adapter.Adapter, bool) {
	p, ok := s.registry.Get(clientID)
	if !ok || clientID == s.welcome.ClientID {
		return nil, false
	}
	return p.Adapter, true
}

func (s *Session) Publisher() *bridge.Publisher {
	return s.publisher
}

// SetControls applies continuous input to the local simulation and
// publishes it.
func (s *Session) SetControls(ctx context.Context, c messages.Controls) error {
	s.local.ControlsSlide(adapter.Left, c.SlideLeft)
	s.local.ControlsSlide(adapter.Right, c.SlideRight)
	s.local.ControlsFastFall(c.FastFall, c.Autolock)
	return s.publisher.PublishControls(ctx, c)
}

// Err delivers the error that ended the connection, if any.
func (s *Session) Err() <-chan error {
	return s.errChan
}

// Close stops the session's workers and closes the connection.
func (s *Session) Close() error {
	s.cancel()
	err := s.client.Close()
	s.wg.Wait()
	log.Info("Session closed")
	return err
}
