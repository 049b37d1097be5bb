package cyclestate

// Panes is the number of planes in a blockfield.
const Panes = 2

// Blockfield is a two-plane grid of block codes indexed [pane][row][col].
// Zero is the empty block.
type Blockfield [Panes][][]byte

func NewBlockfield(rows, cols int) Blockfield {
	var b Blockfield
	for p := range b {
		b[p] = make([][]byte, rows)
		for r := range b[p] {
			b[p][r] = make([]byte, cols)
		}
	}
	return b
}

func (b *Blockfield) Rows() int {
	return len(b[0])
}

func (b *Blockfield) Cols() int {
	if len(b[0]) == 0 {
		return 0
	}
	return len(b[0][0])
}

func (b *Blockfield) SameSize(other *Blockfield) bool {
	return b.Rows() == other.Rows() && b.Cols() == other.Cols()
}

// RowEmpty reports whether row r is empty in both panes.
func (b *Blockfield) RowEmpty(r int) bool {
	for p := range b {
		for _, v := range b[p][r] {
			if v != 0 {
				return false
			}
		}
	}
	return true
}

func (b *Blockfield) RowEqual(other *Blockfield, r int) bool {
	for p := range b {
		if string(b[p][r]) != string(other[p][r]) {
			return false
		}
	}
	return true
}

func (b *Blockfield) CopyRow(other *Blockfield, r int) {
	for p := range b {
		copy(b[p][r], other[p][r])
	}
}

func (b *Blockfield) ClearRow(r int) {
	for p := range b {
		clear(b[p][r])
	}
}

func (b *Blockfield) Clear() {
	for r := 0; r < b.Rows(); r++ {
		b.ClearRow(r)
	}
}

// CopyFrom copies other into b; both must have the same size.
func (b *Blockfield) CopyFrom(other *Blockfield) {
	for r := 0; r < b.Rows(); r++ {
		b.CopyRow(other, r)
	}
}

func (b *Blockfield) Equal(other *Blockfield) bool {
	if !b.SameSize(other) {
		return false
	}
	for r := 0; r < b.Rows(); r++ {
		if !b.RowEqual(other, r) {
			return false
		}
	}
	return true
}
