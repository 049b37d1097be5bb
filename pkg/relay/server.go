package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cbodonnell/quantro/pkg/attack"
	"github.com/cbodonnell/quantro/pkg/cyclestate"
	"github.com/cbodonnell/quantro/pkg/log"
	"github.com/cbodonnell/quantro/pkg/messages"
	"github.com/cbodonnell/quantro/pkg/network"
	"github.com/cbodonnell/quantro/pkg/repositories"
	"github.com/cbodonnell/quantro/pkg/repositories/models"
	"github.com/cbodonnell/quantro/pkg/workers"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	DefaultRows = 24
	DefaultCols = 10
	// HelloTimeout bounds the wait for a new connection's hello message
	HelloTimeout = 10 * time.Second
)

type Server struct {
	server     *http.Server
	router     *mux.Router
	repository repositories.Repository
	snapshots  chan<- workers.SnapshotEvent
	accept     network.AcceptOptions
	rows       int
	cols       int
	interval   int
	logger     *log.Logger

	lock    sync.RWMutex
	matches map[string]*Match
}

type NewServerOptions struct {
	Port int
	// Rows and Cols are the default dimensions of new matches
	Rows int
	Cols int
	// Repository is optional; with it matches unknown to the server are
	// restored from their persisted full syncs.
	Repository repositories.Repository
	// SnapshotChan is optional; client states and ended matches are sent to
	// it for persistence.
	SnapshotChan chan<- workers.SnapshotEvent
	// SnapshotInterval is the number of cycle updates from one client
	// between persisted snapshots of its state. Full syncs are always
	// persisted.
	SnapshotInterval int
	OriginPatterns   []string
}

// NewServer creates a new match relay server
func NewServer(opts NewServerOptions) *Server {
	rows, cols := opts.Rows, opts.Cols
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	s := &Server{
		router:     mux.NewRouter(),
		repository: opts.Repository,
		snapshots:  opts.SnapshotChan,
		accept:     network.AcceptOptions{OriginPatterns: opts.OriginPatterns},
		rows:       rows,
		cols:       cols,
		interval:   opts.SnapshotInterval,
		logger:     log.Component("relay"),
		matches:    make(map[string]*Match),
	}
	s.router.HandleFunc("/matches", s.handleCreateMatch).Methods(http.MethodPost)
	s.router.HandleFunc("/matches/{matchID}", s.handleGetMatch).Methods(http.MethodGet)
	s.router.HandleFunc("/matches/{matchID}/ws", s.handleConnect).Methods(http.MethodGet)
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: s.router,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the Server
func (s *Server) Start() {
	s.logger.Info("Relay server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			s.logger.Info("Relay server closed")
			return
		}
		s.logger.Error("Relay server error: %v", err)
	}
}

// Stop stops the Server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Match returns the match with the given ID, restoring it from the
// repository when the server does not know it.
func (s *Server) Match(ctx context.Context, id string) (*Match, error) {
	s.lock.RLock()
	m, ok := s.matches[id]
	s.lock.RUnlock()
	if ok {
		return m, nil
	}
	if s.repository == nil {
		return nil, &repositories.ErrNotFound{MatchID: id}
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, &repositories.ErrNotFound{MatchID: id}
	}

	syncs, err := s.repository.LoadFullSyncs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load full syncs: %v", err)
	}
	if len(syncs) == 0 {
		return nil, &repositories.ErrNotFound{MatchID: id}
	}

	u := cyclestate.NewUpdate(1, 1)
	if _, err := u.Read(syncs[0].Payload, 0); err != nil {
		return nil, fmt.Errorf("failed to decode persisted full sync: %v", err)
	}
	restored := newMatch(id, u.Rows(), u.Cols(), s.interval)
	if err := restored.restore(syncs); err != nil {
		return nil, fmt.Errorf("failed to restore match: %v", err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if m, ok := s.matches[id]; ok {
		return m, nil
	}
	s.matches[id] = restored
	s.logger.Info("Restored match %s with %d full syncs", id, len(syncs))
	return restored, nil
}

func (s *Server) createMatch(rows, cols int) *Match {
	m := newMatch(uuid.New().String(), rows, cols, s.interval)
	s.lock.Lock()
	defer s.lock.Unlock()
	s.matches[m.ID] = m
	return m
}

func (s *Server) endMatch(m *Match) {
	s.lock.Lock()
	if m.Len() > 0 {
		s.lock.Unlock()
		return
	}
	delete(s.matches, m.ID)
	s.lock.Unlock()

	s.logger.Info("Match %s ended", m.ID)
	s.persist(workers.SnapshotEvent{
		Type:    workers.SnapshotEventTypeDelete,
		MatchID: m.ID,
	})
}

func (s *Server) persist(event workers.SnapshotEvent) {
	if s.snapshots == nil {
		return
	}
	select {
	case s.snapshots <- event:
	default:
		s.logger.Warn("Snapshot channel is full, dropping %s event for match %s", event.Type, event.MatchID)
	}
}

type createMatchRequest struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	req := createMatchRequest{Rows: s.rows, Cols: s.cols}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid match request", http.StatusBadRequest)
			return
		}
	}
	if req.Rows <= 0 || req.Rows > 255 || req.Cols <= 0 || req.Cols > 255 {
		http.Error(w, "Rows and cols must be between 1 and 255", http.StatusBadRequest)
		return
	}

	m := s.createMatch(req.Rows, req.Cols)
	s.logger.Info("Created %dx%d match %s", m.Rows, m.Cols, m.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(m.Info()); err != nil {
		s.logger.Error("failed to encode match: %v", err)
	}
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m.Info()); err != nil {
		s.logger.Error("failed to encode match: %v", err)
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*Match, bool) {
	id := mux.Vars(r)["matchID"]
	m, err := s.Match(r.Context(), id)
	if err != nil {
		if repositories.IsNotFound(err) {
			http.Error(w, "Match not found", http.StatusNotFound)
			return nil, false
		}
		s.logger.Error("failed to get match %s: %v", id, err)
		http.Error(w, "Failed to get match", http.StatusInternalServerError)
		return nil, false
	}
	return m, true
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(w, r)
	if !ok {
		return
	}
	conn, err := network.Accept(w, r, s.accept)
	if err != nil {
		s.logger.Error("Failed to accept connection: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hello, err := s.readHello(ctx, conn, m)
	if err != nil {
		s.logger.Warn("Rejecting connection to match %s: %v", m.ID, err)
		conn.Close(err.Error())
		return
	}

	mem, err := m.join(hello.Name, cancel)
	if err != nil {
		s.logger.Error("Failed to join match %s: %v", m.ID, err)
		conn.Close("join failed")
		return
	}
	s.logger.Info("Client %d (%s) joined match %s", mem.clientID, hello.Name, m.ID)
	defer s.disconnect(m, mem, conn)

	go mem.write(ctx, conn)

	for {
		msg, err := conn.ReadMessage(ctx)
		if err != nil {
			if !network.IsNormalClosure(err) && ctx.Err() == nil {
				s.logger.Debug("Failed to read from client %d: %v", mem.clientID, err)
			}
			return
		}
		// Senders are identified by their connection, never by the message.
		msg.ClientID = mem.clientID
		s.route(m, msg)
	}
}

func (s *Server) readHello(ctx context.Context, conn *network.Conn, m *Match) (*messages.Hello, error) {
	helloCtx, cancel := context.WithTimeout(ctx, HelloTimeout)
	defer cancel()
	msg, err := conn.ReadMessage(helloCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to read hello: %v", err)
	}
	hello := &messages.Hello{}
	if err := messages.DecodeJSON(msg, messages.MessageTypeHello, hello); err != nil {
		return nil, err
	}
	if (hello.Rows != 0 && hello.Rows != m.Rows) || (hello.Cols != 0 && hello.Cols != m.Cols) {
		return nil, fmt.Errorf("client is %dx%d, match is %dx%d", hello.Rows, hello.Cols, m.Rows, m.Cols)
	}
	return hello, nil
}

func (s *Server) disconnect(m *Match, mem *member, conn *network.Conn) {
	mem.cancel()
	conn.Close("bye")
	remaining := m.leave(mem.clientID)
	s.logger.Info("Client %d left match %s", mem.clientID, m.ID)

	leave, err := messages.NewJSONMessage(mem.clientID, messages.MessageTypeLeave, messages.Leave{
		ClientID: mem.clientID,
	})
	if err != nil {
		s.logger.Error("Failed to create leave message: %v", err)
	} else {
		m.broadcast(leave, mem.clientID)
	}
	if remaining == 0 {
		s.endMatch(m)
	}
}

// route delivers a message received from one member of m.
func (s *Server) route(m *Match, msg *messages.Message) {
	switch msg.Type {
	case messages.MessageTypeActions, messages.MessageTypeControls:
		m.broadcast(msg, msg.ClientID)
	case messages.MessageTypeCycleUpdate, messages.MessageTypeFullSync:
		snapshot, err := m.relayCycleUpdate(msg)
		if err != nil {
			s.logger.Warn("Dropping %s from client %d: %v", msg.Type, msg.ClientID, err)
			return
		}
		if snapshot == nil {
			return
		}
		s.persist(workers.SnapshotEvent{
			Type:    workers.SnapshotEventTypeSave,
			MatchID: m.ID,
			FullSync: &models.FullSync{
				MatchID:   m.ID,
				ClientID:  snapshot.ClientID,
				Cycle:     snapshot.Cycle,
				Payload:   snapshot.Payload,
				Timestamp: time.Now().UnixMilli(),
			},
		})
	case messages.MessageTypeAttack:
		s.routeAttack(m, msg)
	case messages.MessageTypePing:
		m.sendTo(msg.ClientID, &messages.Message{
			ClientID: msg.ClientID,
			Type:     messages.MessageTypePong,
			Cycle:    msg.Cycle,
			Payload:  msg.Payload,
		})
	default:
		s.logger.Warn("Ignoring %s message from client %d", msg.Type, msg.ClientID)
	}
}

// routeAttack resolves the target of an attack and delivers one copy per
// recipient to every member, addressed to the recipient.
func (s *Server) routeAttack(m *Match, msg *messages.Message) {
	d := attack.New(m.Rows, m.Cols)
	if _, err := d.Read(msg.Payload, 0); err != nil {
		s.logger.Warn("Dropping malformed attack from client %d: %v", msg.ClientID, err)
		return
	}

	recipients := Recipients(d.Target, m.Roster(), msg.ClientID)
	if len(recipients) == 0 {
		s.logger.Debug("Attack from client %d targeting %s has no recipients", msg.ClientID, d.Target)
		return
	}
	if d.Target.Divided() {
		if !d.CanDivide() {
			s.logger.Warn("Dropping indivisible attack from client %d targeting %s", msg.ClientID, d.Target)
			return
		}
		d.DivideAmong(len(recipients))
	}
	d.Target = attack.TargetIncoming

	payload := make([]byte, d.WriteLength())
	if _, err := d.Write(payload, 0, len(payload)); err != nil {
		s.logger.Error("Failed to encode attack: %v", err)
		return
	}
	for _, id := range recipients {
		m.broadcast(&messages.Message{
			ClientID: id,
			Type:     messages.MessageTypeAttack,
			Cycle:    msg.Cycle,
			Payload:  payload,
		}, 0)
	}
}
