package messages

import (
	"encoding/json"
	"fmt"
)

// Hello is sent by a client when it joins a match.
type Hello struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

// Welcome answers a Hello. Roster lists every client in the match in cycle
// order, the new client included.
type Welcome struct {
	ClientID uint32   `json:"clientID"`
	MatchID  string   `json:"matchID"`
	Rows     int      `json:"rows"`
	Cols     int      `json:"cols"`
	Roster   []uint32 `json:"roster"`
}

// Leave announces that a client has gone.
type Leave struct {
	ClientID uint32 `json:"clientID"`
	Reason   string `json:"reason,omitempty"`
}

// Ping carries the sender's clock; the relay echoes it back in a pong.
type Ping struct {
	Timestamp int64 `json:"timestamp"`
}

// NewJSONMessage builds a message whose payload is v encoded as JSON.
func NewJSONMessage(clientID uint32, t MessageType, v interface{}) (*Message, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %v", t, err)
	}
	return &Message{
		ClientID: clientID,
		Type:     t,
		Payload:  payload,
	}, nil
}

// DecodeJSON unmarshals the payload of m into v after checking its type.
func DecodeJSON(m *Message, t MessageType, v interface{}) error {
	if m.Type != t {
		return fmt.Errorf("expected %s message, got %s", t, m.Type)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %v", t, err)
	}
	return nil
}

const (
	controlSlideLeft byte = 1 << iota
	controlSlideRight
	controlFastFall
	controlAutolock
)

// Controls is the continuous input state of a simulation.
type Controls struct {
	SlideLeft  bool
	SlideRight bool
	FastFall   bool
	Autolock   bool
}

// Byte packs c into the one-byte controls payload.
func (c Controls) Byte() byte {
	var b byte
	if c.SlideLeft {
		b |= controlSlideLeft
	}
	if c.SlideRight {
		b |= controlSlideRight
	}
	if c.FastFall {
		b |= controlFastFall
	}
	if c.Autolock {
		b |= controlAutolock
	}
	return b
}

func NewControlsMessage(clientID uint32, c Controls) *Message {
	return &Message{
		ClientID: clientID,
		Type:     MessageTypeControls,
		Payload:  []byte{c.Byte()},
	}
}

func DecodeControls(m *Message) (Controls, error) {
	if m.Type != MessageTypeControls {
		return Controls{}, fmt.Errorf("expected %s message, got %s", MessageTypeControls, m.Type)
	}
	if len(m.Payload) != 1 || m.Payload[0]&^(controlSlideLeft|controlSlideRight|controlFastFall|controlAutolock) != 0 {
		return Controls{}, fmt.Errorf("malformed controls payload %x", m.Payload)
	}
	b := m.Payload[0]
	return Controls{
		SlideLeft:  b&controlSlideLeft != 0,
		SlideRight: b&controlSlideRight != 0,
		FastFall:   b&controlFastFall != 0,
		Autolock:   b&controlAutolock != 0,
	}, nil
}
