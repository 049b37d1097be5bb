package cyclestate

import (
	"fmt"

	"github.com/cbodonnell/quantro/pkg/attack"
	"github.com/cbodonnell/quantro/pkg/wire"
)

// UpdateVersion is the update record format written by this package.
const UpdateVersion uint32 = 1

// Write encodes u into b[offset:limit] and returns the number of bytes
// written. With a nil b nothing is written and the returned length is the
// exact size of the record.
func (u *Update) Write(b []byte, offset, limit int) (int, error) {
	w := wire.NewWriter(b, offset, limit)
	u.Encode(w)
	if err := w.Err(); err != nil {
		return 0, fmt.Errorf("failed to write cycle state update: %w", err)
	}
	return w.Len(), nil
}

// WriteLength returns the encoded size of u.
func (u *Update) WriteLength() int {
	w := wire.NewWriter(nil, 0, 0)
	u.Encode(w)
	return w.Len()
}

// Marshal encodes u into a newly allocated slice of exactly the right size.
func (u *Update) Marshal() ([]byte, error) {
	b := make([]byte, u.WriteLength())
	if _, err := u.Write(b, 0, len(b)); err != nil {
		return nil, err
	}
	return b, nil
}

// Read decodes a record from b at offset into u and returns the number of
// bytes consumed. u takes the dimensions of the record.
func (u *Update) Read(b []byte, offset int) (int, error) {
	r := wire.NewReader(b, offset)
	u.Decode(r)
	if err := r.Err(); err != nil {
		return 0, fmt.Errorf("failed to read cycle state update: %w", err)
	}
	return r.Len(), nil
}

func (u *Update) Encode(w *wire.Writer) {
	w.PutHeader(UpdateVersion, u.rows, u.cols)

	encodeGrid(w, &u.board)
	encodeGrid(w, &u.displacement)

	w.PutBool(u.nextChanged)
	if u.nextChanged {
		for i := range u.next {
			w.PutInt32(u.next[i])
			w.PutByte(u.nextRotation[i])
		}
	}
	w.PutBool(u.reserveChanged)
	if u.reserveChanged {
		for i := range u.reserve {
			w.PutInt32(u.reserve[i])
			w.PutByte(u.reserveRotation[i])
		}
	}

	encodeCounters(w, &u.counters)

	w.PutByte(byte(u.attackStrategy))
	if u.attackStrategy == AttackQueueDequeueAndAppend {
		w.PutByte(byte(u.attackDequeue))
	}
	if u.attackStrategy != AttackQueueNoChange {
		if len(u.attacks) > MaxAttacks {
			w.Fail(fmt.Errorf("%d pending attacks exceed %d", len(u.attacks), MaxAttacks))
			return
		}
		w.PutByte(byte(len(u.attacks)))
		for _, a := range u.attacks {
			a.Encode(w)
		}
	}

	w.PutBool(u.dequeueAttack)
	w.PutByte(u.rowsToTransfer)
}

func encodeGrid(w *wire.Writer, g *gridUpdate) {
	w.PutByte(byte(g.strategy))
	if g.strategy == GridNoChange {
		return
	}
	w.PutByte(byte(len(g.listed)))
	for _, r := range g.listed {
		w.PutByte(byte(r))
		for p := range g.field {
			w.PutBytes(g.field[p][r])
		}
	}
}

func encodeCounters(w *wire.Writer, c *Counters) {
	w.PutInt32(c.Level)
	w.PutInt32(c.StartingLevel)
	w.PutInt32(c.LevelRows)
	w.PutInt64(c.Score)
	w.PutInt32(c.Clears.Clears)
	w.PutInt32(c.Clears.Rows)
	w.PutInt32(c.Clears.Pane0Rows)
	w.PutInt32(c.Clears.Pane1Rows)
	w.PutInt32(c.Clears.BothPaneRows)
	w.PutInt32(c.Clears.Cascades)
	w.PutInt32(c.PiecesPlaced)
	w.PutInt32(c.ReserveUses)
	w.PutFloat64(c.Displacement)
	w.PutInt64(c.Milliseconds)
	w.PutInt32(c.GarbageReceived)
	w.PutInt32(c.GarbageSent)
}

func (u *Update) Decode(r *wire.Reader) {
	_, rows, cols := r.Header(UpdateVersion)
	if r.Err() != nil {
		return
	}
	if rows == 0 || cols == 0 {
		r.Fail(fmt.Errorf("invalid update dimensions %dx%d", rows, cols))
		return
	}
	if rows != u.rows || cols != u.cols {
		u.resize(rows, cols)
	}

	decodeGrid(r, &u.board)
	decodeGrid(r, &u.displacement)

	u.nextChanged = r.Bool()
	if u.nextChanged {
		for i := range u.next {
			u.next[i] = r.Int32()
			u.nextRotation[i] = r.Byte()
		}
	}
	u.reserveChanged = r.Bool()
	if u.reserveChanged {
		for i := range u.reserve {
			u.reserve[i] = r.Int32()
			u.reserveRotation[i] = r.Byte()
		}
	}

	decodeCounters(r, &u.counters)

	u.attackStrategy = AttackQueueStrategy(r.Byte())
	if u.attackStrategy >= numAttackQueueStrategies {
		r.Fail(fmt.Errorf("invalid attack queue strategy %d", u.attackStrategy))
		return
	}
	u.attackDequeue = 0
	if u.attackStrategy == AttackQueueDequeueAndAppend {
		u.attackDequeue = int(r.Byte())
	}
	spare := u.attacks[:cap(u.attacks)]
	u.attacks = u.attacks[:0]
	if u.attackStrategy != AttackQueueNoChange {
		n := int(r.Byte())
		for i := 0; i < n && r.Err() == nil; i++ {
			var a *attack.Descriptor
			if i < len(spare) && spare[i] != nil && spare[i].Rows() == rows && spare[i].Cols() == cols {
				a = spare[i]
			} else {
				a = attack.New(rows, cols)
			}
			a.Decode(r)
			u.attacks = append(u.attacks, a)
		}
	}

	u.dequeueAttack = r.Bool()
	u.rowsToTransfer = r.Byte()
}

func decodeGrid(r *wire.Reader, g *gridUpdate) {
	g.strategy = GridStrategy(r.Byte())
	g.listed = g.listed[:0]
	if g.strategy >= numGridStrategies {
		r.Fail(fmt.Errorf("invalid grid strategy %d", g.strategy))
		return
	}
	if g.strategy == GridNoChange {
		return
	}
	rows := g.field.Rows()
	n := int(r.Byte())
	if n > rows {
		r.Fail(fmt.Errorf("listed row count %d exceeds %d", n, rows))
		return
	}
	for i := 0; i < n && r.Err() == nil; i++ {
		row := int(r.Byte())
		if row >= rows {
			r.Fail(fmt.Errorf("row index %d out of range", row))
			return
		}
		for p := range g.field {
			r.Bytes(g.field[p][row])
		}
		g.listed = append(g.listed, row)
	}
}

func decodeCounters(r *wire.Reader, c *Counters) {
	c.Level = r.Int32()
	c.StartingLevel = r.Int32()
	c.LevelRows = r.Int32()
	c.Score = r.Int64()
	c.Clears.Clears = r.Int32()
	c.Clears.Rows = r.Int32()
	c.Clears.Pane0Rows = r.Int32()
	c.Clears.Pane1Rows = r.Int32()
	c.Clears.BothPaneRows = r.Int32()
	c.Clears.Cascades = r.Int32()
	c.PiecesPlaced = r.Int32()
	c.ReserveUses = r.Int32()
	c.Displacement = r.Float64()
	c.Milliseconds = r.Int64()
	c.GarbageReceived = r.Int32()
	c.GarbageSent = r.Int32()
}
