package adapter

import (
	"fmt"
	"math"
	"sync"

	"github.com/cbodonnell/quantro/pkg/attack"
	"github.com/cbodonnell/quantro/pkg/cyclestate"
	"github.com/cbodonnell/quantro/pkg/log"
	"github.com/cbodonnell/quantro/pkg/queue"
)

const (
	// DefaultQueueSize is the default capacity of each action queue
	DefaultQueueSize = 1024
)

// CycleState is the position of an adapter in the two-phase handshake that
// gates the start of every simulation cycle.
type CycleState uint8

const (
	// CycleIdle: neither the outgoing state has been captured nor an incoming
	// state installed since the last cycle began.
	CycleIdle CycleState = iota
	// CycleOutgoingCaptured: the simulation has finished its cycle and its
	// state has been captured; waiting for the incoming state.
	CycleOutgoingCaptured
	// CycleIncomingInstalled: the next cycle's starting state has arrived
	// before the simulation finished its cycle.
	CycleIncomingInstalled
	// CycleBothReady: both halves are present and the next call to
	// GameBeginActionCycle starts the cycle.
	CycleBothReady
)

func (s CycleState) String() string {
	switch s {
	case CycleIdle:
		return "idle"
	case CycleOutgoingCaptured:
		return "outgoing-captured"
	case CycleIncomingInstalled:
		return "incoming-installed"
	case CycleBothReady:
		return "both-ready"
	default:
		return fmt.Sprintf("cycle-state(%d)", uint8(s))
	}
}

func (s CycleState) outgoingCaptured() bool {
	return s == CycleOutgoingCaptured || s == CycleBothReady
}

func (s CycleState) incomingInstalled() bool {
	return s == CycleIncomingInstalled || s == CycleBothReady
}

// Adapter coordinates one simulation with its input sources and with the
// communications layer. It is safe for concurrent use by a controls source,
// the simulation loop and a communications receiver.
type Adapter struct {
	lock   sync.Mutex
	rows   int
	cols   int
	logger *log.Logger

	listener Listener
	discards bool

	// generation is bumped by CommunicationsClearForSynchronization so that a
	// dequeue pass in flight does not act on entries from before the reset.
	generation uint64
	cycle      CycleState

	incoming *queue.ByteQueue
	outgoing *queue.ByteQueue

	slideLeft      bool
	slideRight     bool
	fastFall       bool
	fastFallLocks  bool
	displacedRows  int
	attacksThis    []*attack.Descriptor
	attacksNext    []*attack.Descriptor
	attacksOut     []*attack.Descriptor
	incomingState  *cyclestate.Descriptor
	outgoingState  *cyclestate.Descriptor
	outgoingUnsent bool
	outgoingAny    bool
	lastSent       *cyclestate.Descriptor
	lastSentValid  bool

	// Touched only by the simulation goroutine.
	captureState   *cyclestate.Descriptor
	captureAttacks []*attack.Descriptor
	applyState     *cyclestate.Descriptor
	scratchAttack  *attack.Descriptor
}

type NewAdapterOptions struct {
	Rows int
	Cols int
	// DequeueActionsDiscards drops actions that are illegal in the current
	// state instead of keeping them queued. Set it for locally controlled
	// simulations; leave it unset for simulations echoing a remote peer.
	DequeueActionsDiscards bool
	// QueueSize defaults to DefaultQueueSize
	QueueSize int
	// Listener defaults to NopListener
	Listener Listener
	// Logger defaults to the "adapter" component of the default logger
	Logger *log.Logger
}

func NewAdapter(opts NewAdapterOptions) *Adapter {
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	listener := opts.Listener
	if listener == nil {
		listener = NopListener{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Component("adapter")
	}

	a := &Adapter{
		rows:          opts.Rows,
		cols:          opts.Cols,
		logger:        logger,
		listener:      listener,
		discards:      opts.DequeueActionsDiscards,
		incoming:      queue.NewByteQueue(queueSize),
		outgoing:      queue.NewByteQueue(queueSize),
		incomingState: cyclestate.New(opts.Rows, opts.Cols),
		outgoingState: cyclestate.New(opts.Rows, opts.Cols),
		lastSent:      cyclestate.New(opts.Rows, opts.Cols),
		captureState:  cyclestate.New(opts.Rows, opts.Cols),
		applyState:    cyclestate.New(opts.Rows, opts.Cols),
		scratchAttack: attack.New(opts.Rows, opts.Cols),
	}
	a.listener.Initialized()
	return a
}

func (a *Adapter) Rows() int {
	return a.rows
}

func (a *Adapter) Cols() int {
	return a.cols
}

// DequeueActionsDiscards reports the adapter's dequeue policy.
func (a *Adapter) DequeueActionsDiscards() bool {
	return a.discards
}

func (a *Adapter) CycleState() CycleState {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.cycle
}

// IncomingLen returns the number of queued incoming actions.
func (a *Adapter) IncomingLen() int {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.incoming.Len()
}

// OutgoingLen returns the number of reported actions not yet copied out.
func (a *Adapter) OutgoingLen() int {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.outgoing.Len()
}

func (a *Adapter) enqueueIncoming(actions ...Action) bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	if len(actions) > a.incoming.Free() {
		a.logger.Error("Incoming action queue full, dropping %d actions", len(actions))
		return false
	}
	for _, action := range actions {
		a.incoming.Push(action.Byte())
	}
	return true
}

// Controls-origin calls. None of them check legality; that happens when the
// simulation dequeues.

func (a *Adapter) ControlsMove(dir Direction) bool {
	return a.enqueueIncoming(Action{Kind: moveKind(dir)})
}

func (a *Adapter) ControlsTurnCW(lean Lean) bool {
	return a.enqueueIncoming(Action{Kind: KindTurnCW, Lean: lean})
}

func (a *Adapter) ControlsTurnCCW(lean Lean) bool {
	return a.enqueueIncoming(Action{Kind: KindTurnCCW, Lean: lean})
}

func (a *Adapter) ControlsTurnCW180(lean Lean) bool {
	return a.enqueueIncoming(Action{Kind: KindTurnCW180, Lean: lean})
}

func (a *Adapter) ControlsTurnCCW180(lean Lean) bool {
	return a.enqueueIncoming(Action{Kind: KindTurnCCW180, Lean: lean})
}

func (a *Adapter) ControlsFlip(lean Lean) bool {
	return a.enqueueIncoming(Action{Kind: KindFlip, Lean: lean})
}

func (a *Adapter) ControlsUseReserve(lean Lean) bool {
	return a.enqueueIncoming(Action{Kind: KindUseReserve, Lean: lean})
}

func (a *Adapter) ControlsFall() bool {
	return a.enqueueIncoming(Action{Kind: KindFall})
}

func (a *Adapter) ControlsDrop() bool {
	return a.enqueueIncoming(Action{Kind: KindDrop})
}

func (a *Adapter) ControlsAutolock() bool {
	return a.enqueueIncoming(Action{Kind: KindAutolock})
}

func (a *Adapter) ControlsFallOrAutolock() bool {
	return a.enqueueIncoming(Action{Kind: KindFallOrAutolock})
}

// ControlsSlideOnce queues a single slide as far as possible towards dir.
func (a *Adapter) ControlsSlideOnce(dir Direction) bool {
	return a.enqueueIncoming(Action{Kind: slideKind(dir)})
}

// ControlsSlide turns continuous sliding towards dir on or off.
func (a *Adapter) ControlsSlide(dir Direction, on bool) {
	a.setSlide(dir, on)
}

// ControlsFastFall turns continuous falling on or off. With autolock set the
// piece locks as soon as it can fall no further.
func (a *Adapter) ControlsFastFall(on, autolock bool) {
	a.setFastFall(on, autolock)
}

func (a *Adapter) setSlide(dir Direction, on bool) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if dir == Left {
		a.slideLeft = on
	} else {
		a.slideRight = on
	}
}

func (a *Adapter) setFastFall(on, autolock bool) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.fastFall = on
	a.fastFallLocks = on && autolock
}

// Communications-origin calls.

// CommunicationsEnqueueActions queues wire-encoded actions received from a
// peer. The batch is rejected whole if any byte is not a valid action or the
// queue cannot hold it.
func (a *Adapter) CommunicationsEnqueueActions(codes []byte) bool {
	actions := make([]Action, len(codes))
	for i, b := range codes {
		actions[i] = ActionFromByte(b)
		if !actions[i].Valid() {
			a.logger.Warn("Rejecting action batch with invalid code %#x at %d", b, i)
			return false
		}
	}
	return a.enqueueIncoming(actions...)
}

func (a *Adapter) CommunicationsSlide(dir Direction, on bool) {
	a.setSlide(dir, on)
}

func (a *Adapter) CommunicationsFastFall(on, autolock bool) {
	a.setFastFall(on, autolock)
}

// CommunicationsSetNextActionCycle installs the state the next cycle begins
// from. d is copied; the caller keeps ownership.
func (a *Adapter) CommunicationsSetNextActionCycle(d *cyclestate.Descriptor) {
	a.mustMatch(d)
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.cycle.incomingInstalled() {
		a.logger.Warn("Incoming cycle state replaced before it was applied")
	}
	a.incomingState.TakeVals(d)
	switch a.cycle {
	case CycleIdle:
		a.cycle = CycleIncomingInstalled
	case CycleOutgoingCaptured:
		a.cycle = CycleBothReady
	}
	a.logger.Trace("Installed incoming cycle state, now %s", a.cycle)
}

// CommunicationsAddPendingAttacks queues a copy of d against this
// simulation. Attacks that arrive after the next cycle's state has been
// installed wait for that cycle.
func (a *Adapter) CommunicationsAddPendingAttacks(d *attack.Descriptor) {
	if d.IsEmpty() {
		return
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.cycle.incomingInstalled() {
		a.attacksNext = appendAttack(a.attacksNext, d)
	} else {
		a.attacksThis = appendAttack(a.attacksThis, d)
	}
}

// CommunicationsClearForSynchronization discards everything queued in either
// direction. Call it when a full state resync supersedes queued data.
func (a *Adapter) CommunicationsClearForSynchronization() {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.generation++
	a.incoming.Clear()
	a.outgoing.Clear()
	a.attacksThis = a.attacksThis[:0]
	a.attacksNext = a.attacksNext[:0]
	a.attacksOut = a.attacksOut[:0]
	a.cycle = CycleIdle
	a.outgoingUnsent = false
	a.lastSentValid = false
	a.logger.Debug("Cleared for synchronization")
}

// Communications-destination calls.

// CommunicationsNextOutgoingAttack moves the oldest outgoing attack into dst.
func (a *Adapter) CommunicationsNextOutgoingAttack(dst *attack.Descriptor) bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	if len(a.attacksOut) == 0 {
		return false
	}
	dst.CopyValsFrom(a.attacksOut[0])
	a.attacksOut = shiftAttacks(a.attacksOut)
	return true
}

// CommunicationsDrainOutgoingCycleState copies the captured cycle state into
// dst once per captured cycle.
func (a *Adapter) CommunicationsDrainOutgoingCycleState(dst *cyclestate.Descriptor) bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	if !a.outgoingUnsent {
		return false
	}
	dst.TakeVals(a.outgoingState)
	a.markSent()
	return true
}

// CommunicationsDrainOutgoingUpdate sets dst to the patch from the last
// drained cycle state to the captured one, once per captured cycle. The
// first update after construction or a synchronization is a full update.
func (a *Adapter) CommunicationsDrainOutgoingUpdate(dst *cyclestate.Update) bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	if !a.outgoingUnsent {
		return false
	}
	if a.lastSentValid {
		dst.Set(a.lastSent, a.outgoingState)
	} else {
		dst.Set(nil, a.outgoingState)
	}
	a.markSent()
	return true
}

func (a *Adapter) markSent() {
	a.lastSent.TakeVals(a.outgoingState)
	a.lastSentValid = true
	a.outgoingUnsent = false
}

// CommunicationsPeekOutgoingCycleState copies the most recently captured
// cycle state into dst without draining it.
func (a *Adapter) CommunicationsPeekOutgoingCycleState(dst *cyclestate.Descriptor) bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	if !a.outgoingAny {
		return false
	}
	dst.TakeVals(a.outgoingState)
	return true
}

// CommunicationsCopyOutgoingActions moves up to len(dst) reported action
// codes into dst and returns how many were moved.
func (a *Adapter) CommunicationsCopyOutgoingActions(dst []byte) int {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.outgoing.CopyOut(dst)
}

// Simulation-origin calls.

// GameDid records an action the simulation has applied.
func (a *Adapter) GameDid(action Action) bool {
	return a.reportAction(action, false)
}

// GameDidEndActionCycle records the end of the simulation's cycle.
func (a *Adapter) GameDidEndActionCycle() bool {
	return a.reportAction(Action{Kind: KindEndCycle}, true)
}

func (a *Adapter) reportAction(action Action, terminal bool) bool {
	if !action.Valid() {
		panic(fmt.Sprintf("adapter: reporting invalid action %v", action))
	}
	a.lock.Lock()
	ok := a.outgoing.Push(action.Byte())
	a.lock.Unlock()
	if !ok {
		a.logger.Error("Outgoing action queue full, dropping %s", action)
		return false
	}
	a.listener.EnqueuedAction(action, terminal)
	return true
}

func (a *Adapter) GameDidCollide() {
	a.listener.Collision()
}

func (a *Adapter) GameDidLevelUpPending() {
	a.listener.LevelUpPending()
}

func (a *Adapter) GameDidLevelUp() {
	a.listener.LevelUp()
}

// GameDidIssueOutOfSequenceAttack queues an attack produced outside the
// normal end-of-cycle capture for immediate sending.
func (a *Adapter) GameDidIssueOutOfSequenceAttack(d *attack.Descriptor) {
	if d.IsEmpty() {
		return
	}
	a.lock.Lock()
	a.attacksOut = appendAttack(a.attacksOut, d)
	a.lock.Unlock()
	a.listener.OutOfSequenceAttack(d)
}

// GameDidDisplace reports the simulation's accumulated displacement in rows.
func (a *Adapter) GameDidDisplace(total float64) {
	rows := int(math.Floor(total))
	a.lock.Lock()
	crossed := rows != a.displacedRows
	a.displacedRows = rows
	a.lock.Unlock()
	if crossed {
		a.listener.DisplacementCrossed(rows)
	}
}

// GameDequeueIncomingAttack moves the oldest attack pending against this
// cycle into dst.
func (a *Adapter) GameDequeueIncomingAttack(dst *attack.Descriptor) bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	if len(a.attacksThis) == 0 {
		return false
	}
	dst.CopyValsFrom(a.attacksThis[0])
	a.attacksThis = shiftAttacks(a.attacksThis)
	return true
}

func (a *Adapter) mustMatch(d *cyclestate.Descriptor) {
	if d.Rows() != a.rows || d.Cols() != a.cols {
		panic(fmt.Sprintf("adapter: %dx%d cycle state for a %dx%d adapter", d.Rows(), d.Cols(), a.rows, a.cols))
	}
}

func appendAttack(list []*attack.Descriptor, d *attack.Descriptor) []*attack.Descriptor {
	n := len(list)
	if n < cap(list) && list[n] != nil && list[n].SameSize(d) {
		list = list[:n+1]
	} else {
		list = append(list[:n], attack.New(d.Rows(), d.Cols()))
	}
	list[n].CopyValsFrom(d)
	return list
}

// shiftAttacks drops the first attack and parks its slot past len for reuse.
func shiftAttacks(list []*attack.Descriptor) []*attack.Descriptor {
	first := list[0]
	copy(list, list[1:])
	list[len(list)-1] = first
	return list[:len(list)-1]
}
