package relay

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cbodonnell/quantro/pkg/cyclestate"
	"github.com/cbodonnell/quantro/pkg/log"
	"github.com/cbodonnell/quantro/pkg/messages"
	"github.com/cbodonnell/quantro/pkg/network"
	"github.com/cbodonnell/quantro/pkg/repositories/models"
)

const (
	// MemberBufferSize is the number of messages queued for a member before
	// it is disconnected as too slow.
	MemberBufferSize = 1024
	// DefaultSnapshotInterval is the number of cycle updates from one client
	// between persisted snapshots of its state.
	DefaultSnapshotInterval = 64
)

// MatchInfo is the JSON description of a match.
type MatchInfo struct {
	ID     string   `json:"id"`
	Rows   int      `json:"rows"`
	Cols   int      `json:"cols"`
	Roster []uint32 `json:"roster"`
}

type member struct {
	clientID uint32
	name     string
	outbox   chan *messages.Message
	cancel   context.CancelFunc
}

// send queues msg for the member and disconnects it when its outbox is full.
func (m *member) send(msg *messages.Message) {
	select {
	case m.outbox <- msg:
	default:
		log.Error("Outbox of client %d is full, disconnecting", m.clientID)
		m.cancel()
	}
}

// write forwards queued messages to conn until ctx is done.
func (m *member) write(ctx context.Context, conn *network.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-m.outbox:
			if err := conn.WriteMessage(ctx, msg); err != nil {
				log.Debug("Failed to write to client %d: %v", m.clientID, err)
				m.cancel()
				return
			}
		}
	}
}

// clientState is the relay's copy of one client's latest cycle state, kept
// current by applying every update the client sends.
type clientState struct {
	base   *cyclestate.Descriptor
	update *cyclestate.Update
	cycle  uint32
	valid  bool
	// relayed counts updates since the state was last persisted
	relayed int
}

func newClientState(rows, cols int) *clientState {
	return &clientState{
		base:   cyclestate.New(rows, cols),
		update: cyclestate.NewUpdate(rows, cols),
	}
}

// fullSync encodes the state as a full sync from clientID.
func (cs *clientState) fullSync(clientID uint32) (*messages.Message, error) {
	cs.update.Set(nil, cs.base)
	payload, err := cs.update.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to encode full sync for client %d: %v", clientID, err)
	}
	return &messages.Message{
		ClientID: clientID,
		Type:     messages.MessageTypeFullSync,
		Cycle:    cs.cycle,
		Payload:  payload,
	}, nil
}

// Match is one relayed game. Members are kept in join order, which is the
// cycle order attacks are resolved against.
type Match struct {
	ID   string
	Rows int
	Cols int

	lock             sync.RWMutex
	members          []*member
	nextClientID     uint32
	snapshotInterval int
	// states holds the latest cycle state of every client that has sent one,
	// including clients restored from a snapshot.
	states map[uint32]*clientState
}

func newMatch(id string, rows, cols, snapshotInterval int) *Match {
	if snapshotInterval <= 0 {
		snapshotInterval = DefaultSnapshotInterval
	}
	return &Match{
		ID:               id,
		Rows:             rows,
		Cols:             cols,
		nextClientID:     1,
		snapshotInterval: snapshotInterval,
		states:           make(map[uint32]*clientState),
	}
}

func (m *Match) Info() MatchInfo {
	return MatchInfo{
		ID:     m.ID,
		Rows:   m.Rows,
		Cols:   m.Cols,
		Roster: m.Roster(),
	}
}

// Roster returns the client IDs of the members in cycle order.
func (m *Match) Roster() []uint32 {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.roster()
}

func (m *Match) roster() []uint32 {
	roster := make([]uint32, len(m.members))
	for i, mem := range m.members {
		roster[i] = mem.clientID
	}
	return roster
}

func (m *Match) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.members)
}

// join adds a member and queues its welcome, then a full sync of the current
// state of every other client, then announces the member to the others.
// Every cycle update relayed after join returns applies on top of the states
// the member was sent.
func (m *Match) join(name string, cancel context.CancelFunc) (*member, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	mem := &member{
		clientID: m.nextClientID,
		name:     name,
		outbox:   make(chan *messages.Message, MemberBufferSize),
		cancel:   cancel,
	}

	welcome, err := messages.NewJSONMessage(mem.clientID, messages.MessageTypeWelcome, messages.Welcome{
		ClientID: mem.clientID,
		MatchID:  m.ID,
		Rows:     m.Rows,
		Cols:     m.Cols,
		Roster:   append(m.roster(), mem.clientID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create welcome message: %v", err)
	}
	joined, err := messages.NewJSONMessage(mem.clientID, messages.MessageTypeHello, messages.Hello{
		Name: name,
		Rows: m.Rows,
		Cols: m.Cols,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create hello message: %v", err)
	}
	syncs, err := m.fullSyncs()
	if err != nil {
		return nil, err
	}

	m.nextClientID++
	m.members = append(m.members, mem)
	mem.send(welcome)
	for _, msg := range syncs {
		mem.send(msg)
	}
	for _, other := range m.members {
		if other != mem {
			other.send(joined)
		}
	}
	return mem, nil
}

// fullSyncs encodes the current state of every client, ordered by client ID.
func (m *Match) fullSyncs() ([]*messages.Message, error) {
	ids := make([]uint32, 0, len(m.states))
	for id, cs := range m.states {
		if cs.valid {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	syncs := make([]*messages.Message, 0, len(ids))
	for _, id := range ids {
		msg, err := m.states[id].fullSync(id)
		if err != nil {
			return nil, err
		}
		syncs = append(syncs, msg)
	}
	return syncs, nil
}

// leave removes the member and its state and reports how many remain.
func (m *Match) leave(clientID uint32) int {
	m.lock.Lock()
	defer m.lock.Unlock()
	for i, mem := range m.members {
		if mem.clientID == clientID {
			m.members = append(m.members[:i], m.members[i+1:]...)
			break
		}
	}
	delete(m.states, clientID)
	return len(m.members)
}

// broadcast sends msg to every member except the one with ID except. Zero
// excludes nobody.
func (m *Match) broadcast(msg *messages.Message, except uint32) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	for _, mem := range m.members {
		if mem.clientID != except {
			mem.send(msg)
		}
	}
}

func (m *Match) sendTo(clientID uint32, msg *messages.Message) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	for _, mem := range m.members {
		if mem.clientID == clientID {
			mem.send(msg)
			return
		}
	}
}

// relayCycleUpdate applies a cycle update or full sync to the state of its
// sender and forwards it. Cycle updates go to every member and full syncs to
// every member but the sender. It returns the sender's state as a full sync
// when the state is due to be persisted, and nil otherwise.
func (m *Match) relayCycleUpdate(msg *messages.Message) (*messages.Message, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	cs, ok := m.states[msg.ClientID]
	if !ok {
		cs = newClientState(m.Rows, m.Cols)
	}
	if _, err := cs.update.Read(msg.Payload, 0); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %v", msg.Type, err)
	}
	if cs.update.Rows() != m.Rows || cs.update.Cols() != m.Cols {
		return nil, fmt.Errorf("%s is %dx%d, match is %dx%d", msg.Type, cs.update.Rows(), cs.update.Cols(), m.Rows, m.Cols)
	}
	resync := msg.Type == messages.MessageTypeFullSync
	full := cs.update.IsFullUpdate()
	if resync && !full {
		return nil, fmt.Errorf("full sync is not a full update")
	}
	if !full && !cs.valid {
		return nil, fmt.Errorf("delta cycle update without a base state")
	}

	if full {
		cs.base.Reset()
	}
	cs.update.Apply(cs.base)
	cs.valid = true
	cs.cycle = msg.Cycle
	cs.relayed++
	m.states[msg.ClientID] = cs

	for _, mem := range m.members {
		if !resync || mem.clientID != msg.ClientID {
			mem.send(msg)
		}
	}

	if !resync && cs.relayed < m.snapshotInterval {
		return nil, nil
	}
	cs.relayed = 0
	return cs.fullSync(msg.ClientID)
}

// restore seeds client states from persisted full syncs. Client IDs are
// never reused.
func (m *Match) restore(syncs []*models.FullSync) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, fs := range syncs {
		cs := newClientState(m.Rows, m.Cols)
		if _, err := cs.update.Read(fs.Payload, 0); err != nil {
			return fmt.Errorf("failed to decode full sync for client %d: %v", fs.ClientID, err)
		}
		if !cs.update.IsFullUpdate() || cs.update.Rows() != m.Rows || cs.update.Cols() != m.Cols {
			return fmt.Errorf("persisted state of client %d is not a %dx%d full sync", fs.ClientID, m.Rows, m.Cols)
		}
		cs.update.Apply(cs.base)
		cs.valid = true
		cs.cycle = fs.Cycle
		m.states[fs.ClientID] = cs
		if fs.ClientID >= m.nextClientID {
			m.nextClientID = fs.ClientID + 1
		}
	}
	return nil
}
