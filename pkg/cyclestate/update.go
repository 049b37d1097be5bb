package cyclestate

import (
	"fmt"

	"github.com/cbodonnell/quantro/pkg/attack"
)

// GridStrategy is how an Update carries one blockfield.
type GridStrategy uint8

const (
	// GridNoChange leaves the target blockfield untouched
	GridNoChange GridStrategy = iota
	// GridChangedRows lists the rows that differ from the base
	GridChangedRows
	// GridNonEmptyRows lists every non-empty row; all other rows are empty.
	// It does not depend on the base.
	GridNonEmptyRows

	numGridStrategies
)

func (s GridStrategy) String() string {
	switch s {
	case GridNoChange:
		return "no-change"
	case GridChangedRows:
		return "changed-rows"
	case GridNonEmptyRows:
		return "non-empty-rows"
	default:
		return fmt.Sprintf("grid-strategy(%d)", uint8(s))
	}
}

// AttackQueueStrategy is how an Update carries the pending attack list.
type AttackQueueStrategy uint8

const (
	AttackQueueNoChange AttackQueueStrategy = iota
	// AttackQueueReplace replaces the whole list
	AttackQueueReplace
	// AttackQueueDequeueAndAppend drops attacks from the front of the list
	// and appends new ones. Set never produces it.
	AttackQueueDequeueAndAppend

	numAttackQueueStrategies
)

func (s AttackQueueStrategy) String() string {
	switch s {
	case AttackQueueNoChange:
		return "no-change"
	case AttackQueueReplace:
		return "replace"
	case AttackQueueDequeueAndAppend:
		return "dequeue-and-append"
	default:
		return fmt.Sprintf("attack-queue-strategy(%d)", uint8(s))
	}
}

type gridUpdate struct {
	strategy GridStrategy
	// listed holds the row indices carried by the update; their contents are
	// in field.
	listed []int
	field  Blockfield
}

func newGridUpdate(rows, cols int) gridUpdate {
	return gridUpdate{
		listed: make([]int, 0, rows),
		field:  NewBlockfield(rows, cols),
	}
}

func (g *gridUpdate) list(to *Blockfield, r int) {
	g.listed = append(g.listed, r)
	g.field.CopyRow(to, r)
}

// set chooses the cheaper of listing changed rows and listing non-empty
// rows; ties go to non-empty rows, which do not depend on from.
func (g *gridUpdate) set(from, to *Blockfield) {
	g.listed = g.listed[:0]
	rows := to.Rows()

	nonEmpty := 0
	for r := 0; r < rows; r++ {
		if !to.RowEmpty(r) {
			nonEmpty++
		}
	}

	if from != nil {
		changed := 0
		for r := 0; r < rows; r++ {
			if !to.RowEqual(from, r) {
				changed++
			}
		}
		if changed == 0 {
			g.strategy = GridNoChange
			return
		}
		if changed < nonEmpty {
			g.strategy = GridChangedRows
			for r := 0; r < rows; r++ {
				if !to.RowEqual(from, r) {
					g.list(to, r)
				}
			}
			return
		}
	}

	g.strategy = GridNonEmptyRows
	for r := 0; r < rows; r++ {
		if !to.RowEmpty(r) {
			g.list(to, r)
		}
	}
}

func (g *gridUpdate) apply(b *Blockfield) {
	switch g.strategy {
	case GridNoChange:
	case GridChangedRows:
		for _, r := range g.listed {
			b.CopyRow(&g.field, r)
		}
	case GridNonEmptyRows:
		b.Clear()
		for _, r := range g.listed {
			b.CopyRow(&g.field, r)
		}
	}
}

func (g *gridUpdate) copyFrom(other *gridUpdate) {
	g.strategy = other.strategy
	g.listed = append(g.listed[:0], other.listed...)
	for _, r := range other.listed {
		g.field.CopyRow(&other.field, r)
	}
}

// Update is a patch transforming one Descriptor into another. An Update
// derived without a base is a full update and can be applied to any
// descriptor of the right size.
type Update struct {
	rows int
	cols int

	board        gridUpdate
	displacement gridUpdate

	nextChanged     bool
	next            [NextLength]int32
	nextRotation    [NextLength]byte
	reserveChanged  bool
	reserve         [ReserveLength]int32
	reserveRotation [ReserveLength]byte

	counters Counters

	attackStrategy AttackQueueStrategy
	attackDequeue  int
	attacks        []*attack.Descriptor

	dequeueAttack  bool
	rowsToTransfer byte
}

func NewUpdate(rows, cols int) *Update {
	u := &Update{}
	u.resize(rows, cols)
	return u
}

func (u *Update) resize(rows, cols int) {
	u.rows = rows
	u.cols = cols
	u.board = newGridUpdate(rows, cols)
	u.displacement = newGridUpdate(rows, cols)
}

func (u *Update) Rows() int {
	return u.rows
}

func (u *Update) Cols() int {
	return u.cols
}

// Set derives u as the patch from from to to. A nil from yields a full
// update.
func (u *Update) Set(from, to *Descriptor) {
	if from != nil && !from.SameSize(to) {
		panic(fmt.Sprintf("cyclestate: update from %dx%d to %dx%d", from.rows, from.cols, to.rows, to.cols))
	}
	if u.rows != to.rows || u.cols != to.cols {
		u.resize(to.rows, to.cols)
	}

	if from == nil {
		u.board.set(nil, &to.Board)
		u.displacement.set(nil, &to.Displacement)
		u.nextChanged = true
		u.reserveChanged = true
	} else {
		u.board.set(&from.Board, &to.Board)
		u.displacement.set(&from.Displacement, &to.Displacement)
		u.nextChanged = from.Next != to.Next || from.NextRotation != to.NextRotation
		u.reserveChanged = from.Reserve != to.Reserve || from.ReserveRotation != to.ReserveRotation
	}
	u.next = to.Next
	u.nextRotation = to.NextRotation
	u.reserve = to.Reserve
	u.reserveRotation = to.ReserveRotation

	u.counters = to.Counters

	u.attackStrategy = AttackQueueReplace
	u.attackDequeue = 0
	u.attacks = copyAttacks(u.attacks, to.Attacks, u.rows, u.cols)

	u.dequeueAttack = to.DequeueAttack
	u.rowsToTransfer = to.RowsToTransfer
}

// SetAttackQueueDequeueAndAppend switches the attack list of u to drop n
// attacks from the front of the target's list and append appended, which
// must have the update's dimensions.
func (u *Update) SetAttackQueueDequeueAndAppend(n int, appended []*attack.Descriptor) {
	u.attackStrategy = AttackQueueDequeueAndAppend
	u.attackDequeue = n
	u.attacks = copyAttacks(u.attacks, appended, u.rows, u.cols)
}

// Apply patches d. d must have the update's dimensions.
func (u *Update) Apply(d *Descriptor) {
	if d.rows != u.rows || d.cols != u.cols {
		panic(fmt.Sprintf("cyclestate: applying %dx%d update to %dx%d descriptor", u.rows, u.cols, d.rows, d.cols))
	}

	u.board.apply(&d.Board)
	u.displacement.apply(&d.Displacement)

	if u.nextChanged {
		d.Next = u.next
		d.NextRotation = u.nextRotation
	}
	if u.reserveChanged {
		d.Reserve = u.reserve
		d.ReserveRotation = u.reserveRotation
	}

	d.Counters = u.counters

	switch u.attackStrategy {
	case AttackQueueNoChange:
	case AttackQueueReplace:
		d.Attacks = copyAttacks(d.Attacks, u.attacks, d.rows, d.cols)
	case AttackQueueDequeueAndAppend:
		d.Attacks = dequeueAttacks(d.Attacks, u.attackDequeue)
		for _, a := range u.attacks {
			d.AppendAttack(a)
		}
	}

	d.DequeueAttack = u.dequeueAttack
	d.RowsToTransfer = u.rowsToTransfer
}

// IsFullUpdate reports whether every field of u uses its self-describing
// strategy, which is what makes applying u to a fresh descriptor safe.
func (u *Update) IsFullUpdate() bool {
	return u.board.strategy == GridNonEmptyRows &&
		u.displacement.strategy == GridNonEmptyRows &&
		u.nextChanged &&
		u.reserveChanged &&
		u.attackStrategy == AttackQueueReplace
}

func (u *Update) BoardStrategy() GridStrategy {
	return u.board.strategy
}

func (u *Update) DisplacementStrategy() GridStrategy {
	return u.displacement.strategy
}

func (u *Update) AttackQueueStrategy() AttackQueueStrategy {
	return u.attackStrategy
}

// CopyFrom overwrites u with other.
func (u *Update) CopyFrom(other *Update) {
	if u.rows != other.rows || u.cols != other.cols {
		u.resize(other.rows, other.cols)
	}
	u.board.copyFrom(&other.board)
	u.displacement.copyFrom(&other.displacement)
	u.nextChanged = other.nextChanged
	u.next = other.next
	u.nextRotation = other.nextRotation
	u.reserveChanged = other.reserveChanged
	u.reserve = other.reserve
	u.reserveRotation = other.reserveRotation
	u.counters = other.counters
	u.attackStrategy = other.attackStrategy
	u.attackDequeue = other.attackDequeue
	u.attacks = copyAttacks(u.attacks, other.attacks, u.rows, u.cols)
	u.dequeueAttack = other.dequeueAttack
	u.rowsToTransfer = other.rowsToTransfer
}
