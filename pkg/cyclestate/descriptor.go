package cyclestate

import (
	"fmt"
	"slices"

	"github.com/cbodonnell/quantro/pkg/attack"
)

const (
	// NextLength is the number of upcoming pieces carried in a descriptor
	NextLength = 5
	// ReserveLength is the number of reserve slots carried in a descriptor
	ReserveLength = 2
	// NoPiece marks an empty next or reserve slot
	NoPiece int32 = -1
	// MaxAttacks bounds the pending attack list of a descriptor
	MaxAttacks = 255
)

// ClearCounts tallies row clears by kind.
type ClearCounts struct {
	Clears       int32
	Rows         int32
	Pane0Rows    int32
	Pane1Rows    int32
	BothPaneRows int32
	Cascades     int32
}

// Counters is the aggregate game information carried with every cycle.
type Counters struct {
	Level         int32
	StartingLevel int32
	LevelRows     int32
	Score         int64
	Clears        ClearCounts
	PiecesPlaced  int32
	ReserveUses   int32
	// Displacement is the accumulated displacement in rows, fractional part
	// included.
	Displacement    float64
	Milliseconds    int64
	GarbageReceived int32
	GarbageSent     int32
}

// Descriptor is everything needed to begin a simulation cycle. Descriptors
// are long-lived: one instance represents the current outgoing or incoming
// state and is overwritten with TakeVals each cycle.
type Descriptor struct {
	rows int
	cols int

	Board        Blockfield
	Displacement Blockfield

	Next            [NextLength]int32
	NextRotation    [NextLength]byte
	Reserve         [ReserveLength]int32
	ReserveRotation [ReserveLength]byte

	Counters Counters

	// Attacks are pending against this player; all share the descriptor's
	// dimensions.
	Attacks []*attack.Descriptor
	// DequeueAttack is set when one attack is to be taken from Attacks this
	// cycle.
	DequeueAttack bool
	// RowsToTransfer is the number of displacement rows to move onto the
	// board this cycle.
	RowsToTransfer byte
}

func New(rows, cols int) *Descriptor {
	if rows <= 0 || cols <= 0 || rows > 255 || cols > 255 {
		panic(fmt.Sprintf("cyclestate: invalid dimensions %dx%d", rows, cols))
	}
	d := &Descriptor{
		rows:         rows,
		cols:         cols,
		Board:        NewBlockfield(rows, cols),
		Displacement: NewBlockfield(rows, cols),
	}
	d.Reset()
	return d
}

func (d *Descriptor) Rows() int {
	return d.rows
}

func (d *Descriptor) Cols() int {
	return d.cols
}

func (d *Descriptor) SameSize(other *Descriptor) bool {
	return d.rows == other.rows && d.cols == other.cols
}

// Reset returns d to the empty state: empty grids, no pieces, zero counters
// and no pending attacks.
func (d *Descriptor) Reset() {
	d.Board.Clear()
	d.Displacement.Clear()
	for i := range d.Next {
		d.Next[i] = NoPiece
		d.NextRotation[i] = 0
	}
	for i := range d.Reserve {
		d.Reserve[i] = NoPiece
		d.ReserveRotation[i] = 0
	}
	d.Counters = Counters{}
	d.Attacks = d.Attacks[:0]
	d.DequeueAttack = false
	d.RowsToTransfer = 0
}

// TakeVals overwrites d with a deep copy of other. The grids are
// reallocated only when the dimensions differ.
func (d *Descriptor) TakeVals(other *Descriptor) {
	if !d.SameSize(other) {
		d.rows = other.rows
		d.cols = other.cols
		d.Board = NewBlockfield(other.rows, other.cols)
		d.Displacement = NewBlockfield(other.rows, other.cols)
	}
	d.Board.CopyFrom(&other.Board)
	d.Displacement.CopyFrom(&other.Displacement)
	d.Next = other.Next
	d.NextRotation = other.NextRotation
	d.Reserve = other.Reserve
	d.ReserveRotation = other.ReserveRotation
	d.Counters = other.Counters
	d.Attacks = copyAttacks(d.Attacks, other.Attacks, d.rows, d.cols)
	d.DequeueAttack = other.DequeueAttack
	d.RowsToTransfer = other.RowsToTransfer
}

// AppendAttack appends a copy of a to the pending attacks, reusing a spare
// slot when one is available. a must have the descriptor's dimensions.
func (d *Descriptor) AppendAttack(a *attack.Descriptor) {
	d.Attacks = appendAttack(d.Attacks, a, d.rows, d.cols)
}

// copyAttacks overwrites dst with copies of src, reusing dst's slots. Every
// attack in src must be rows by cols.
func copyAttacks(dst, src []*attack.Descriptor, rows, cols int) []*attack.Descriptor {
	dst = dst[:0]
	for _, a := range src {
		dst = appendAttack(dst, a, rows, cols)
	}
	return dst
}

func appendAttack(dst []*attack.Descriptor, a *attack.Descriptor, rows, cols int) []*attack.Descriptor {
	if a.Rows() != rows || a.Cols() != cols {
		panic(fmt.Sprintf("cyclestate: %dx%d attack in %dx%d cycle state", a.Rows(), a.Cols(), rows, cols))
	}
	n := len(dst)
	if n < cap(dst) {
		dst = dst[:n+1]
		if dst[n] == nil || !dst[n].SameSize(a) {
			dst[n] = attack.New(rows, cols)
		}
	} else {
		dst = append(dst, attack.New(rows, cols))
	}
	dst[n].CopyValsFrom(a)
	return dst
}

// dequeueAttacks drops the first n attacks, keeping the dropped slots
// available past len for reuse.
func dequeueAttacks(attacks []*attack.Descriptor, n int) []*attack.Descriptor {
	if n > len(attacks) {
		n = len(attacks)
	}
	if n == 0 {
		return attacks
	}
	// rotate left by n
	slices.Reverse(attacks[:n])
	slices.Reverse(attacks[n:])
	slices.Reverse(attacks)
	return attacks[:len(attacks)-n]
}

func (d *Descriptor) Equal(other *Descriptor) bool {
	if !d.SameSize(other) ||
		!d.Board.Equal(&other.Board) ||
		!d.Displacement.Equal(&other.Displacement) ||
		d.Next != other.Next ||
		d.NextRotation != other.NextRotation ||
		d.Reserve != other.Reserve ||
		d.ReserveRotation != other.ReserveRotation ||
		d.Counters != other.Counters ||
		d.DequeueAttack != other.DequeueAttack ||
		d.RowsToTransfer != other.RowsToTransfer ||
		len(d.Attacks) != len(other.Attacks) {
		return false
	}
	for i := range d.Attacks {
		if !d.Attacks[i].Equal(other.Attacks[i]) {
			return false
		}
	}
	return true
}
