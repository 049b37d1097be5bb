package messages

import "fmt"

const (
	// MessageBufferSize is the largest serialized message a peer reads
	MessageBufferSize = 64 * 1024
)

// MessageType identifies the payload of a Message.
type MessageType byte

const (
	MessageTypeInvalid MessageType = iota
	// MessageTypeHello is the first message a client sends after connecting
	MessageTypeHello
	// MessageTypeWelcome answers a hello with the client's ID and the roster
	MessageTypeWelcome
	// MessageTypeActions carries wire-encoded action codes reported by a
	// simulation
	MessageTypeActions
	// MessageTypeControls carries the continuous slide and fast-fall state
	MessageTypeControls
	// MessageTypeCycleUpdate carries an encoded cycle state update
	MessageTypeCycleUpdate
	// MessageTypeFullSync carries a full cycle state update that supersedes
	// everything queued for the client
	MessageTypeFullSync
	// MessageTypeAttack carries one encoded attack descriptor
	MessageTypeAttack
	MessageTypePing
	MessageTypePong
	// MessageTypeLeave announces that a client left the match
	MessageTypeLeave
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeHello:
		return "hello"
	case MessageTypeWelcome:
		return "welcome"
	case MessageTypeActions:
		return "actions"
	case MessageTypeControls:
		return "controls"
	case MessageTypeCycleUpdate:
		return "cycle-update"
	case MessageTypeFullSync:
		return "full-sync"
	case MessageTypeAttack:
		return "attack"
	case MessageTypePing:
		return "ping"
	case MessageTypePong:
		return "pong"
	case MessageTypeLeave:
		return "leave"
	default:
		return fmt.Sprintf("message-type(%d)", byte(t))
	}
}

// Message is the envelope exchanged between clients and the relay.
// ClientID names the simulation the payload belongs to. Cycle is the
// sender's cycle number, or zero when not meaningful.
type Message struct {
	ClientID uint32
	Type     MessageType
	Cycle    uint32
	Payload  []byte
}
