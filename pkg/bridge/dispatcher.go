package bridge

import (
	"fmt"

	"github.com/cbodonnell/quantro/pkg/adapter"
	"github.com/cbodonnell/quantro/pkg/log"
	"github.com/cbodonnell/quantro/pkg/messages"
)

// PeerFactory creates the adapter for a client seen for the first time.
// Returning nil leaves the client unknown.
type PeerFactory func(clientID uint32) *adapter.Adapter

// Dispatcher hands received messages to the adapters in a Registry. Handle
// must be called from a single goroutine.
type Dispatcher struct {
	registry *Registry
	factory  PeerFactory
	local    uint32
	logger   *log.Logger
}

type NewDispatcherOptions struct {
	Registry *Registry
	// Factory is optional; without it messages for unknown clients are
	// rejected.
	Factory PeerFactory
	// LocalClientID names the locally controlled client, whose own full
	// syncs are ignored. Zero means none.
	LocalClientID uint32
}

func NewDispatcher(opts NewDispatcherOptions) *Dispatcher {
	return &Dispatcher{
		registry: opts.Registry,
		factory:  opts.Factory,
		local:    opts.LocalClientID,
		logger:   log.Component("bridge"),
	}
}

func (d *Dispatcher) peer(clientID uint32) (*Peer, error) {
	if p, ok := d.registry.Get(clientID); ok {
		return p, nil
	}
	if d.factory != nil {
		if a := d.factory(clientID); a != nil {
			d.logger.Debug("Registered peer for client %d", clientID)
			return d.registry.Register(clientID, a), nil
		}
	}
	return nil, fmt.Errorf("unknown client %d", clientID)
}

// Handle applies msg to the adapter of the client it names.
func (d *Dispatcher) Handle(msg *messages.Message) error {
	switch msg.Type {
	case messages.MessageTypePing, messages.MessageTypePong, messages.MessageTypeWelcome, messages.MessageTypeHello:
		return nil
	case messages.MessageTypeLeave:
		d.registry.Unregister(msg.ClientID)
		return nil
	}

	p, err := d.peer(msg.ClientID)
	if err != nil {
		return fmt.Errorf("failed to handle %s message: %v", msg.Type, err)
	}

	switch msg.Type {
	case messages.MessageTypeActions:
		if !p.Adapter.CommunicationsEnqueueActions(msg.Payload) {
			return fmt.Errorf("failed to enqueue %d actions for client %d", len(msg.Payload), p.ClientID)
		}
	case messages.MessageTypeControls:
		c, err := messages.DecodeControls(msg)
		if err != nil {
			return fmt.Errorf("failed to decode controls: %v", err)
		}
		p.Adapter.CommunicationsSlide(adapter.Left, c.SlideLeft)
		p.Adapter.CommunicationsSlide(adapter.Right, c.SlideRight)
		p.Adapter.CommunicationsFastFall(c.FastFall, c.Autolock)
	case messages.MessageTypeCycleUpdate:
		return d.handleCycleUpdate(p, msg, false)
	case messages.MessageTypeFullSync:
		if d.local != 0 && msg.ClientID == d.local {
			d.logger.Debug("Ignoring full sync of local client %d", msg.ClientID)
			return nil
		}
		return d.handleCycleUpdate(p, msg, true)
	case messages.MessageTypeAttack:
		if _, err := p.attack.Read(msg.Payload, 0); err != nil {
			return fmt.Errorf("failed to decode attack for client %d: %v", p.ClientID, err)
		}
		p.Adapter.CommunicationsAddPendingAttacks(p.attack)
	default:
		return fmt.Errorf("unhandled message type %s", msg.Type)
	}
	return nil
}

func (d *Dispatcher) handleCycleUpdate(p *Peer, msg *messages.Message, resync bool) error {
	if _, err := p.update.Read(msg.Payload, 0); err != nil {
		return fmt.Errorf("failed to decode cycle update for client %d: %v", p.ClientID, err)
	}
	if p.update.Rows() != p.Adapter.Rows() || p.update.Cols() != p.Adapter.Cols() {
		return fmt.Errorf("cycle update for client %d is %dx%d, expected %dx%d",
			p.ClientID, p.update.Rows(), p.update.Cols(), p.Adapter.Rows(), p.Adapter.Cols())
	}

	full := p.update.IsFullUpdate()
	if resync && !full {
		return fmt.Errorf("full sync for client %d is not a full update", p.ClientID)
	}
	if !full && !p.hasBase {
		return fmt.Errorf("delta cycle update for client %d without a base state", p.ClientID)
	}

	if resync {
		p.Adapter.CommunicationsClearForSynchronization()
		d.logger.Info("Resynchronized client %d at cycle %d", p.ClientID, msg.Cycle)
	}
	if full {
		p.base.Reset()
	}
	p.update.Apply(p.base)
	p.hasBase = true
	p.Adapter.CommunicationsSetNextActionCycle(p.base)
	return nil
}
