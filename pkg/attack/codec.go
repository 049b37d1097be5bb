package attack

import (
	"fmt"

	"github.com/cbodonnell/quantro/pkg/wire"
)

// Version is the attack record format written by this package.
const Version uint32 = 1

// Write encodes d into b[offset:limit] and returns the number of bytes
// written. With a nil b nothing is written and the returned length is the
// exact size of the record.
func (d *Descriptor) Write(b []byte, offset, limit int) (int, error) {
	w := wire.NewWriter(b, offset, limit)
	d.Encode(w)
	if err := w.Err(); err != nil {
		return 0, fmt.Errorf("failed to write attack descriptor: %w", err)
	}
	return w.Len(), nil
}

// WriteLength returns the encoded size of d.
func (d *Descriptor) WriteLength() int {
	w := wire.NewWriter(nil, 0, 0)
	d.Encode(w)
	return w.Len()
}

// Read decodes a record from b at offset into d and returns the number of
// bytes consumed.
func (d *Descriptor) Read(b []byte, offset int) (int, error) {
	r := wire.NewReader(b, offset)
	d.Decode(r)
	if err := r.Err(); err != nil {
		return 0, fmt.Errorf("failed to read attack descriptor: %w", err)
	}
	return r.Len(), nil
}

// Encode writes d as a self-contained versioned record.
func (d *Descriptor) Encode(w *wire.Writer) {
	w.PutHeader(Version, d.rows, d.cols)
	w.PutByte(byte(d.Target))

	cleared := &d.ClearedAndSent
	encodeGarbage(w, &cleared.GarbageRows)
	if cleared.NumRows > 0 {
		w.PutBytes(cleared.Preferred[:cleared.NumRows])
		w.PutInt32(cleared.Piece.Type)
		w.PutByte(cleared.Piece.Rotation)
		w.PutByte(cleared.Piece.Column)
	}

	encodeGarbage(w, &d.LevelUp)
	w.PutInt32(int32(d.PenaltyRows))
	w.PutInt32(int32(d.Push.RowsOut))
	encodeGarbage(w, &d.Push.In)
	w.PutFloat64(d.AccelerateRows)

	w.PutBool(d.SyncLevelUp.Set)
	if d.SyncLevelUp.Set {
		w.PutInt32(d.SyncLevelUp.Level)
		w.PutInt32(d.SyncLevelUp.Delta)
	}

	w.PutInt32(int32(d.DropBlocks.Valleys))
	w.PutInt32(int32(d.DropBlocks.Junctions))
	w.PutInt32(int32(d.DropBlocks.Peaks))
	w.PutInt32(int32(d.DropBlocks.Corners))
	w.PutInt32(int32(d.DropBlocks.Troll))
}

func encodeGarbage(w *wire.Writer, g *GarbageRows) {
	w.PutByte(byte(g.NumRows))
	for i := 0; i < g.NumRows; i++ {
		w.PutBytes(g.Rows[i])
	}
}

// Decode overwrites d with a record read from r. A record whose dimensions
// differ from d's is rejected.
func (d *Descriptor) Decode(r *wire.Reader) {
	_, rows, cols := r.Header(Version)
	if r.Err() != nil {
		return
	}
	if rows != d.rows || cols != d.cols {
		r.Fail(fmt.Errorf("attack record is %dx%d, descriptor is %dx%d", rows, cols, d.rows, d.cols))
		return
	}

	target := Target(r.Byte())
	if target >= numTargets {
		r.Fail(fmt.Errorf("invalid attack target %d", target))
		return
	}
	d.MakeEmpty()
	d.Target = target

	cleared := &d.ClearedAndSent
	d.decodeGarbage(r, &cleared.GarbageRows)
	if cleared.NumRows > 0 {
		r.Bytes(cleared.Preferred[:cleared.NumRows])
		cleared.Piece.Type = r.Int32()
		cleared.Piece.Rotation = r.Byte()
		cleared.Piece.Column = r.Byte()
	}

	d.decodeGarbage(r, &d.LevelUp)
	d.PenaltyRows = int(r.Int32())
	d.Push.RowsOut = int(r.Int32())
	d.decodeGarbage(r, &d.Push.In)
	d.AccelerateRows = r.Float64()

	if r.Bool() {
		d.SyncLevelUp.Set = true
		d.SyncLevelUp.Level = r.Int32()
		d.SyncLevelUp.Delta = r.Int32()
	}

	d.DropBlocks.Valleys = int(r.Int32())
	d.DropBlocks.Junctions = int(r.Int32())
	d.DropBlocks.Peaks = int(r.Int32())
	d.DropBlocks.Corners = int(r.Int32())
	d.DropBlocks.Troll = int(r.Int32())

	if r.Err() != nil {
		d.MakeEmpty()
	}
}

func (d *Descriptor) decodeGarbage(r *wire.Reader, g *GarbageRows) {
	n := int(r.Byte())
	if n > len(g.Rows) {
		r.Fail(fmt.Errorf("garbage row count %d exceeds %d", n, len(g.Rows)))
		return
	}
	for i := 0; i < n; i++ {
		r.Bytes(g.Rows[i])
	}
	g.NumRows = n
}
