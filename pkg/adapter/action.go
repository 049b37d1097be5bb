package adapter

import "fmt"

// Kind is a primitive action a simulation can apply or report.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindMoveLeft
	KindMoveRight
	// KindSlideLeft and KindSlideRight move as far as possible in one go
	KindSlideLeft
	KindSlideRight
	KindTurnCW
	KindTurnCCW
	KindTurnCW180
	KindTurnCCW180
	KindFlip
	KindUseReserve
	KindFall
	KindDrop
	KindLock
	KindAutolock
	// KindFallOrAutolock falls when possible and autolocks otherwise
	KindFallOrAutolock
	// KindEndCycle marks the end of a simulation cycle. Dequeuing never
	// passes it; it is consumed when the next cycle begins.
	KindEndCycle
	// KindAdvance is a pacing marker consumed once the simulation's timing
	// allows it.
	KindAdvance

	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindMoveLeft:
		return "move-left"
	case KindMoveRight:
		return "move-right"
	case KindSlideLeft:
		return "slide-left"
	case KindSlideRight:
		return "slide-right"
	case KindTurnCW:
		return "turn-cw"
	case KindTurnCCW:
		return "turn-ccw"
	case KindTurnCW180:
		return "turn-cw-180"
	case KindTurnCCW180:
		return "turn-ccw-180"
	case KindFlip:
		return "flip"
	case KindUseReserve:
		return "use-reserve"
	case KindFall:
		return "fall"
	case KindDrop:
		return "drop"
	case KindLock:
		return "lock"
	case KindAutolock:
		return "autolock"
	case KindFallOrAutolock:
		return "fall-or-autolock"
	case KindEndCycle:
		return "end-cycle"
	case KindAdvance:
		return "advance"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Leans reports whether actions of kind k carry a lean.
func (k Kind) Leans() bool {
	switch k {
	case KindTurnCW, KindTurnCCW, KindTurnCW180, KindTurnCCW180, KindFlip, KindUseReserve:
		return true
	default:
		return false
	}
}

// Lean is a directional hint used when a rotation, flip or reserve swap has
// more than one way to resolve.
type Lean uint8

const (
	LeanNone Lean = iota
	LeanLeft
	LeanRight
	LeanDown

	numLeans
)

func (l Lean) String() string {
	switch l {
	case LeanNone:
		return "none"
	case LeanLeft:
		return "left"
	case LeanRight:
		return "right"
	case LeanDown:
		return "down"
	default:
		return fmt.Sprintf("lean(%d)", uint8(l))
	}
}

// Direction selects a side for sliding.
type Direction uint8

const (
	Left Direction = iota
	Right
)

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// Action is one queued instruction. On the wire it is a single byte with the
// kind in the upper six bits and the lean in the lower two.
type Action struct {
	Kind Kind
	Lean Lean
}

func (a Action) Byte() byte {
	return byte(a.Kind)<<2 | byte(a.Lean&3)
}

// ActionFromByte unpacks a wire byte. The result may be invalid.
func ActionFromByte(b byte) Action {
	return Action{Kind: Kind(b >> 2), Lean: Lean(b & 3)}
}

// Valid reports whether a is an action the adapter can queue: a known kind,
// and no lean on kinds that do not take one.
func (a Action) Valid() bool {
	if a.Kind == KindInvalid || a.Kind >= numKinds || a.Lean >= numLeans {
		return false
	}
	return a.Kind.Leans() || a.Lean == LeanNone
}

func (a Action) String() string {
	if a.Kind.Leans() {
		return fmt.Sprintf("%s(%s)", a.Kind, a.Lean)
	}
	return a.Kind.String()
}

func moveKind(dir Direction) Kind {
	if dir == Left {
		return KindMoveLeft
	}
	return KindMoveRight
}

func slideKind(dir Direction) Kind {
	if dir == Left {
		return KindSlideLeft
	}
	return KindSlideRight
}
