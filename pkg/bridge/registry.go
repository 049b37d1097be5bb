package bridge

import (
	"sync"

	"github.com/cbodonnell/quantro/pkg/adapter"
	"github.com/cbodonnell/quantro/pkg/attack"
	"github.com/cbodonnell/quantro/pkg/cyclestate"
)

// Peer is one simulation known to the bridge, local or echoed, together
// with the state needed to decode what is sent for it.
type Peer struct {
	ClientID uint32
	Adapter  *adapter.Adapter

	// base is the last cycle state installed for the peer; cycle updates
	// are deltas against it.
	base    *cyclestate.Descriptor
	hasBase bool
	update  *cyclestate.Update
	attack  *attack.Descriptor
}

// Registry maps client IDs to peers.
type Registry struct {
	lock  sync.RWMutex
	peers map[uint32]*Peer
}

func NewRegistry() *Registry {
	return &Registry{
		peers: make(map[uint32]*Peer),
	}
}

// Register adds or replaces the peer for clientID.
func (r *Registry) Register(clientID uint32, a *adapter.Adapter) *Peer {
	p := &Peer{
		ClientID: clientID,
		Adapter:  a,
		base:     cyclestate.New(a.Rows(), a.Cols()),
		update:   cyclestate.NewUpdate(a.Rows(), a.Cols()),
		attack:   attack.New(a.Rows(), a.Cols()),
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.peers[clientID] = p
	return p
}

func (r *Registry) Unregister(clientID uint32) {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.peers, clientID)
}

func (r *Registry) Get(clientID uint32) (*Peer, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	p, ok := r.peers[clientID]
	return p, ok
}

func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.peers)
}
