package attack

import "fmt"

// Target selects which players receive an attack.
type Target uint8

const (
	TargetUnset Target = iota
	// TargetIncoming marks an attack received by this player
	TargetIncoming
	// TargetCycleNext is the next player in cycle order
	TargetCycleNext
	// TargetCyclePrevious is the previous player in cycle order
	TargetCyclePrevious
	TargetAll
	TargetAllButSelf
	// TargetAllDivided splits the attack among all players
	TargetAllDivided
	// TargetAllButSelfDivided splits the attack among all opponents
	TargetAllButSelfDivided

	numTargets
)

func (t Target) String() string {
	switch t {
	case TargetUnset:
		return "unset"
	case TargetIncoming:
		return "incoming"
	case TargetCycleNext:
		return "cycle-next"
	case TargetCyclePrevious:
		return "cycle-previous"
	case TargetAll:
		return "all"
	case TargetAllButSelf:
		return "all-but-self"
	case TargetAllDivided:
		return "all-divided"
	case TargetAllButSelfDivided:
		return "all-but-self-divided"
	default:
		return fmt.Sprintf("target(%d)", uint8(t))
	}
}

// Divided reports whether the target splits an attack among its recipients.
func (t Target) Divided() bool {
	return t == TargetAllDivided || t == TargetAllButSelfDivided
}

// GarbageRows is a list of explicit rows, each a row of block codes.
// Only the first NumRows entries of Rows are meaningful.
type GarbageRows struct {
	NumRows int
	Rows    [][]byte
}

// PieceInfo describes the piece whose placement produced cleared rows.
type PieceInfo struct {
	Type     int32
	Rotation byte
	Column   byte
}

// ClearedRows are garbage rows sent as a result of clearing rows.
type ClearedRows struct {
	GarbageRows
	// Preferred holds, per row, the block code the receiver should favor
	// when converting the row into garbage.
	Preferred []byte
	Piece     PieceInfo
}

// Push describes rows pushed out of the bottom of the receiver's board
// and explicit rows pushed in.
type Push struct {
	RowsOut int
	In      GarbageRows
}

// SyncLevelUp forces a level change on the receiver.
type SyncLevelUp struct {
	Set   bool
	Level int32
	Delta int32
}

// DropBlocks counts blocks dropped onto the receiver by placement category.
type DropBlocks struct {
	Valleys   int
	Junctions int
	Peaks     int
	Corners   int
	Troll     int
}

func (d DropBlocks) IsZero() bool {
	return d == DropBlocks{}
}

// Descriptor describes zero or more simultaneous hostile effects sent to
// one or more targets. Descriptors are reused across cycles: allocate once
// with New and reset with MakeEmpty.
type Descriptor struct {
	rows int
	cols int

	Target Target

	ClearedAndSent ClearedRows
	LevelUp        GarbageRows
	PenaltyRows    int
	Push           Push
	// AccelerateRows accelerates the receiver's displacement; the only
	// effect that may be divided among recipients.
	AccelerateRows float64
	SyncLevelUp    SyncLevelUp
	DropBlocks     DropBlocks
}

// New allocates an empty descriptor whose garbage rows are cols wide and
// whose row lists hold at most rows entries.
func New(rows, cols int) *Descriptor {
	if rows <= 0 || cols <= 0 || rows > 255 || cols > 255 {
		panic(fmt.Sprintf("attack: invalid dimensions %dx%d", rows, cols))
	}
	return &Descriptor{
		rows: rows,
		cols: cols,
		ClearedAndSent: ClearedRows{
			GarbageRows: newGarbageRows(rows, cols),
			Preferred:   make([]byte, rows),
		},
		LevelUp: newGarbageRows(rows, cols),
		Push: Push{
			In: newGarbageRows(rows, cols),
		},
	}
}

func newGarbageRows(rows, cols int) GarbageRows {
	g := GarbageRows{Rows: make([][]byte, rows)}
	for i := range g.Rows {
		g.Rows[i] = make([]byte, cols)
	}
	return g
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

func (d *Descriptor) mustMatch(other *Descriptor) {
	if !d.SameSize(other) {
		panic(fmt.Sprintf("attack: size mismatch %dx%d vs %dx%d", d.rows, d.cols, other.rows, other.cols))
	}
}

func (d *Descriptor) HasGarbage() bool {
	return d.ClearedAndSent.NumRows > 0 || d.LevelUp.NumRows > 0
}

func (d *Descriptor) HasPush() bool {
	return d.Push.RowsOut > 0 || d.Push.In.NumRows > 0
}

// IsEmpty reports whether no effect family is populated.
func (d *Descriptor) IsEmpty() bool {
	return !d.HasGarbage() &&
		d.PenaltyRows == 0 &&
		!d.HasPush() &&
		d.AccelerateRows == 0 &&
		!d.SyncLevelUp.Set &&
		d.DropBlocks.IsZero()
}

// MakeEmpty clears every effect and the target, keeping allocated buffers.
func (d *Descriptor) MakeEmpty() {
	d.Target = TargetUnset
	d.ClearedAndSent.NumRows = 0
	d.ClearedAndSent.Piece = PieceInfo{}
	d.LevelUp.NumRows = 0
	d.PenaltyRows = 0
	d.Push.RowsOut = 0
	d.Push.In.NumRows = 0
	d.AccelerateRows = 0
	d.SyncLevelUp = SyncLevelUp{}
	d.DropBlocks = DropBlocks{}
}

// CopyValsFrom overwrites d with the contents of other.
func (d *Descriptor) CopyValsFrom(other *Descriptor) {
	d.mustMatch(other)
	d.Target = other.Target
	copyGarbage(&d.ClearedAndSent.GarbageRows, &other.ClearedAndSent.GarbageRows)
	copy(d.ClearedAndSent.Preferred, other.ClearedAndSent.Preferred[:other.ClearedAndSent.NumRows])
	d.ClearedAndSent.Piece = other.ClearedAndSent.Piece
	copyGarbage(&d.LevelUp, &other.LevelUp)
	d.PenaltyRows = other.PenaltyRows
	d.Push.RowsOut = other.Push.RowsOut
	copyGarbage(&d.Push.In, &other.Push.In)
	d.AccelerateRows = other.AccelerateRows
	d.SyncLevelUp = other.SyncLevelUp
	d.DropBlocks = other.DropBlocks
}

func copyGarbage(dst, src *GarbageRows) {
	dst.NumRows = src.NumRows
	for i := 0; i < src.NumRows; i++ {
		copy(dst.Rows[i], src.Rows[i])
	}
}

func garbageEqual(a, b *GarbageRows) bool {
	if a.NumRows != b.NumRows {
		return false
	}
	for i := 0; i < a.NumRows; i++ {
		if string(a.Rows[i]) != string(b.Rows[i]) {
			return false
		}
	}
	return true
}

// Equal compares the meaningful contents of two descriptors.
func (d *Descriptor) Equal(other *Descriptor) bool {
	if !d.SameSize(other) || d.Target != other.Target {
		return false
	}
	n := d.ClearedAndSent.NumRows
	return garbageEqual(&d.ClearedAndSent.GarbageRows, &other.ClearedAndSent.GarbageRows) &&
		string(d.ClearedAndSent.Preferred[:n]) == string(other.ClearedAndSent.Preferred[:n]) &&
		(n == 0 || d.ClearedAndSent.Piece == other.ClearedAndSent.Piece) &&
		garbageEqual(&d.LevelUp, &other.LevelUp) &&
		d.PenaltyRows == other.PenaltyRows &&
		d.Push.RowsOut == other.Push.RowsOut &&
		garbageEqual(&d.Push.In, &other.Push.In) &&
		d.AccelerateRows == other.AccelerateRows &&
		d.SyncLevelUp == other.SyncLevelUp &&
		d.DropBlocks == other.DropBlocks
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("attack{target=%s cleared=%d levelUp=%d penalty=%d pushOut=%d pushIn=%d accel=%g sync=%v drop=%+v}",
		d.Target, d.ClearedAndSent.NumRows, d.LevelUp.NumRows, d.PenaltyRows,
		d.Push.RowsOut, d.Push.In.NumRows, d.AccelerateRows, d.SyncLevelUp.Set, d.DropBlocks)
}
