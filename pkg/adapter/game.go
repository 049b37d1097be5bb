package adapter

import (
	"github.com/cbodonnell/quantro/pkg/attack"
	"github.com/cbodonnell/quantro/pkg/cyclestate"
)

// Game is the simulation driven by an Adapter. The adapter never holds its
// own lock while calling into a Game, so implementations may report back
// through the adapter's GameDid methods from inside any of these calls.
type Game interface {
	// StateOK reports whether an action of kind k is legal in the current
	// state of the simulation.
	StateOK(k Kind) bool
	// TimingOK reports whether enough time has passed to apply an action of
	// kind k.
	TimingOK(k Kind) bool

	MoveLeftOnce()
	MoveRightOnce()
	TurnCW(lean Lean)
	TurnCCW(lean Lean)
	TurnCW180(lean Lean)
	TurnCCW180(lean Lean)
	Flip(lean Lean)
	UseReserve(lean Lean)
	Fall()
	Drop()
	LockPiece()
	Autolock()

	// CopyStateIntoCycleState writes the state needed to begin the next
	// cycle into d.
	CopyStateIntoCycleState(d *cyclestate.Descriptor)
	// SetStateFromCycleState replaces the simulation state with d. d is only
	// valid for the duration of the call.
	SetStateFromCycleState(d *cyclestate.Descriptor)
	// AggregateAndClearOutgoingAttacks aggregates the attacks produced this
	// cycle into queue, clears them from the simulation and returns the
	// extended queue.
	AggregateAndClearOutgoingAttacks(queue []*attack.Descriptor) []*attack.Descriptor
}

// Listener observes an Adapter. All callbacks run synchronously on the
// goroutine that triggered them, outside the adapter's lock.
type Listener interface {
	Initialized()
	// Dequeued fires after a dequeue pass that applied at least one action.
	Dequeued()
	BeforeCycleBegin()
	AfterCycleBegin()
	// EnqueuedAction fires when the simulation reports an action. terminal
	// is set for the action that ends a cycle.
	EnqueuedAction(a Action, terminal bool)
	Collision()
	LevelUpPending()
	LevelUp()
	OutOfSequenceAttack(d *attack.Descriptor)
	// DisplacementCrossed fires when accumulated displacement reaches a new
	// whole number of rows.
	DisplacementCrossed(rows int)
}

// NopListener ignores every callback. Embed it to implement part of
// Listener.
type NopListener struct{}

func (NopListener) Initialized() {}
func (NopListener) Dequeued() {}
func (NopListener) BeforeCycleBegin() {}
func (NopListener) AfterCycleBegin() {}
func (NopListener) EnqueuedAction(a Action, terminal bool) {}
func (NopListener) Collision() {}
func (NopListener) LevelUpPending() {}
func (NopListener) LevelUp() {}
func (NopListener) OutOfSequenceAttack(d *attack.Descriptor) {}
func (NopListener) DisplacementCrossed(rows int) {}
