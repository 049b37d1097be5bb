package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/cbodonnell/quantro/pkg/adapter"
	"github.com/cbodonnell/quantro/pkg/attack"
	"github.com/cbodonnell/quantro/pkg/cyclestate"
	"github.com/cbodonnell/quantro/pkg/messages"
	"github.com/cbodonnell/quantro/pkg/network"
)

const (
	// MaxActionsPerMessage bounds the action codes carried by one message
	MaxActionsPerMessage = 256
)

// Publisher sends what a local adapter produces: reported actions, outgoing
// attacks and captured cycle states.
type Publisher struct {
	lock     sync.Mutex
	clientID uint32
	adapter  *adapter.Adapter
	sender   network.Sender

	cycle   uint32
	actions []byte
	attack  *attack.Descriptor
	update  *cyclestate.Update
	// sent is the state receivers hold after the last published update;
	// the next delta from the adapter applies to it.
	sent     *cyclestate.Descriptor
	hasSent  bool
	controls messages.Controls
}

type NewPublisherOptions struct {
	ClientID uint32
	Adapter  *adapter.Adapter
	Sender   network.Sender
}

func NewPublisher(opts NewPublisherOptions) *Publisher {
	a := opts.Adapter
	return &Publisher{
		clientID: opts.ClientID,
		adapter:  a,
		sender:   opts.Sender,
		actions:  make([]byte, MaxActionsPerMessage),
		attack:   attack.New(a.Rows(), a.Cols()),
		update:   cyclestate.NewUpdate(a.Rows(), a.Cols()),
		sent:     cyclestate.New(a.Rows(), a.Cols()),
	}
}

// Cycle returns the number of cycle updates published.
func (p *Publisher) Cycle() uint32 {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.cycle
}

func (p *Publisher) send(ctx context.Context, t messages.MessageType, payload []byte) error {
	msg := &messages.Message{
		ClientID: p.clientID,
		Type:     t,
		Cycle:    p.cycle,
		Payload:  payload,
	}
	if err := p.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %s message: %v", t, err)
	}
	return nil
}

// Flush sends everything the adapter has produced since the last flush:
// actions first, then attacks, then the cycle update.
func (p *Publisher) Flush(ctx context.Context) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.flush(ctx)
}

func (p *Publisher) flush(ctx context.Context) error {
	for {
		n := p.adapter.CommunicationsCopyOutgoingActions(p.actions)
		if n == 0 {
			break
		}
		payload := append([]byte(nil), p.actions[:n]...)
		if err := p.send(ctx, messages.MessageTypeActions, payload); err != nil {
			return err
		}
	}

	for p.adapter.CommunicationsNextOutgoingAttack(p.attack) {
		payload := make([]byte, p.attack.WriteLength())
		if _, err := p.attack.Write(payload, 0, len(payload)); err != nil {
			return fmt.Errorf("failed to encode attack: %v", err)
		}
		if err := p.send(ctx, messages.MessageTypeAttack, payload); err != nil {
			return err
		}
	}

	if p.adapter.CommunicationsDrainOutgoingUpdate(p.update) {
		if p.update.IsFullUpdate() {
			p.sent.Reset()
		}
		p.update.Apply(p.sent)
		p.hasSent = true
		p.cycle++
		payload, err := p.update.Marshal()
		if err != nil {
			return fmt.Errorf("failed to encode cycle update: %v", err)
		}
		if err := p.send(ctx, messages.MessageTypeCycleUpdate, payload); err != nil {
			return err
		}
	}
	return nil
}

// PublishFullSync flushes, then sends the state of the last published cycle
// update as a full sync, so later deltas apply to it. It reports false when
// no cycle update has been published yet.
func (p *Publisher) PublishFullSync(ctx context.Context) (bool, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if err := p.flush(ctx); err != nil {
		return false, err
	}
	if !p.hasSent {
		return false, nil
	}
	p.update.Set(nil, p.sent)
	payload, err := p.update.Marshal()
	if err != nil {
		return false, fmt.Errorf("failed to encode full sync: %v", err)
	}
	return true, p.send(ctx, messages.MessageTypeFullSync, payload)
}

// PublishControls sends c if it differs from what was last sent.
func (p *Publisher) PublishControls(ctx context.Context, c messages.Controls) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if c == p.controls {
		return nil
	}
	msg := messages.NewControlsMessage(p.clientID, c)
	msg.Cycle = p.cycle
	if err := p.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send controls message: %v", err)
	}
	p.controls = c
	return nil
}
