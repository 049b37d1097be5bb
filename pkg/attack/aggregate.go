package attack

import "fmt"

// AggregateFrom moves effects from other into d wherever d does not already
// hold a conflicting effect. Moved effects are cleared on other.
//
// Penalty rows, pushes and displacement acceleration always merge
// additively. Cleared-and-sent and level-up garbage are mutually exclusive
// and are taken only when d holds neither. Synchronized level-ups and block
// drops are taken only when d holds none.
//
// Targets must agree: an empty d with no target adopts other's target, and a
// d whose target differs from other's is left untouched. Aggregating a
// non-empty descriptor with no target panics, as does a size mismatch.
func (d *Descriptor) AggregateFrom(other *Descriptor) bool {
	d.mustMatch(other)
	if other.IsEmpty() {
		return false
	}
	if other.Target == TargetUnset {
		panic(fmt.Sprintf("attack: aggregating untargeted descriptor %s", other))
	}
	switch {
	case d.Target == TargetUnset:
		if !d.IsEmpty() {
			panic(fmt.Sprintf("attack: aggregating into untargeted descriptor %s", d))
		}
		d.Target = other.Target
	case d.Target != other.Target:
		return false
	}

	changed := false

	if other.HasGarbage() && !d.HasGarbage() {
		if other.ClearedAndSent.NumRows > 0 {
			copyGarbage(&d.ClearedAndSent.GarbageRows, &other.ClearedAndSent.GarbageRows)
			copy(d.ClearedAndSent.Preferred, other.ClearedAndSent.Preferred[:other.ClearedAndSent.NumRows])
			d.ClearedAndSent.Piece = other.ClearedAndSent.Piece
			other.ClearedAndSent.NumRows = 0
			other.ClearedAndSent.Piece = PieceInfo{}
		}
		if other.LevelUp.NumRows > 0 {
			copyGarbage(&d.LevelUp, &other.LevelUp)
			other.LevelUp.NumRows = 0
		}
		changed = true
	}

	if other.PenaltyRows > 0 {
		d.PenaltyRows += other.PenaltyRows
		other.PenaltyRows = 0
		changed = true
	}

	if other.Push.RowsOut > 0 {
		d.Push.RowsOut += other.Push.RowsOut
		other.Push.RowsOut = 0
		changed = true
	}
	if appendGarbage(&d.Push.In, &other.Push.In) > 0 {
		changed = true
	}

	if other.AccelerateRows != 0 {
		d.AccelerateRows += other.AccelerateRows
		other.AccelerateRows = 0
		changed = true
	}

	if other.SyncLevelUp.Set && !d.SyncLevelUp.Set {
		d.SyncLevelUp = other.SyncLevelUp
		other.SyncLevelUp = SyncLevelUp{}
		changed = true
	}

	if !other.DropBlocks.IsZero() && d.DropBlocks.IsZero() {
		d.DropBlocks = other.DropBlocks
		other.DropBlocks = DropBlocks{}
		changed = true
	}

	return changed
}

// appendGarbage moves as many rows from src to the end of dst as dst can
// hold, shifting whatever remains in src to its front.
func appendGarbage(dst, src *GarbageRows) int {
	moved := 0
	for moved < src.NumRows && dst.NumRows < len(dst.Rows) {
		copy(dst.Rows[dst.NumRows], src.Rows[moved])
		dst.NumRows++
		moved++
	}
	if moved == 0 {
		return 0
	}
	remaining := src.NumRows - moved
	for i := 0; i < remaining; i++ {
		copy(src.Rows[i], src.Rows[i+moved])
	}
	src.NumRows = remaining
	return moved
}

// AggregateIntoQueue aggregates d into the members of queue in order. Any
// part of d that no member absorbs is copied into a new slot at the end of
// queue; a slot between len and cap is reused when it holds a descriptor of
// the right size. d is always left empty, so a loop of the form
//
//	for !d.IsEmpty() { queue = AggregateIntoQueue(queue, d) }
//
// terminates after one pass. Aggregating an empty d returns queue unchanged.
func AggregateIntoQueue(queue []*Descriptor, d *Descriptor) []*Descriptor {
	if d.IsEmpty() {
		return queue
	}
	for _, member := range queue {
		member.AggregateFrom(d)
		if d.IsEmpty() {
			d.MakeEmpty()
			return queue
		}
	}

	n := len(queue)
	if n < cap(queue) {
		queue = queue[:n+1]
		if queue[n] == nil || !queue[n].SameSize(d) {
			queue[n] = New(d.rows, d.cols)
		}
	} else {
		queue = append(queue, New(d.rows, d.cols))
	}
	queue[n].CopyValsFrom(d)
	d.MakeEmpty()
	return queue
}

// CanDivide reports whether d may be split among several recipients: its
// target must be one of the divided targets and it may carry nothing but
// displacement acceleration.
func (d *Descriptor) CanDivide() bool {
	return d.Target.Divided() &&
		!d.HasGarbage() &&
		d.PenaltyRows == 0 &&
		!d.HasPush() &&
		!d.SyncLevelUp.Set &&
		d.DropBlocks.IsZero()
}

// DivideAmong scales d to the share of one of n recipients. It panics when
// d cannot be divided.
func (d *Descriptor) DivideAmong(n int) {
	if n < 1 {
		panic(fmt.Sprintf("attack: cannot divide among %d recipients", n))
	}
	if !d.CanDivide() {
		panic(fmt.Sprintf("attack: indivisible descriptor %s", d))
	}
	d.AccelerateRows /= float64(n)
}
