package attack

import (
	"testing"

	"github.com/cbodonnell/quantro/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRows = 20
	testCols = 10
)

func row(values ...byte) []byte {
	r := make([]byte, testCols)
	copy(r, values)
	return r
}

func clearedAttack(target Target, rows ...[]byte) *Descriptor {
	d := New(testRows, testCols)
	d.Target = target
	for i, r := range rows {
		copy(d.ClearedAndSent.Rows[i], r)
		d.ClearedAndSent.Preferred[i] = byte(i + 1)
	}
	d.ClearedAndSent.NumRows = len(rows)
	d.ClearedAndSent.Piece = PieceInfo{Type: 3, Rotation: 1, Column: 4}
	return d
}

func TestDescriptor_IsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		setup func(d *Descriptor)
		want  bool
	}{
		{
			name:  "fresh",
			setup: func(d *Descriptor) {},
			want:  true,
		},
		{
			name:  "target only",
			setup: func(d *Descriptor) { d.Target = TargetAll },
			want:  true,
		},
		{
			name:  "penalty",
			setup: func(d *Descriptor) { d.PenaltyRows = 1 },
			want:  false,
		},
		{
			name:  "level up rows",
			setup: func(d *Descriptor) { d.LevelUp.NumRows = 2 },
			want:  false,
		},
		{
			name:  "push out",
			setup: func(d *Descriptor) { d.Push.RowsOut = 1 },
			want:  false,
		},
		{
			name:  "acceleration",
			setup: func(d *Descriptor) { d.AccelerateRows = -0.5 },
			want:  false,
		},
		{
			name:  "sync level up",
			setup: func(d *Descriptor) { d.SyncLevelUp = SyncLevelUp{Set: true, Level: 4, Delta: 1} },
			want:  false,
		},
		{
			name:  "troll drop",
			setup: func(d *Descriptor) { d.DropBlocks.Troll = 2 },
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(testRows, testCols)
			tt.setup(d)
			assert.Equal(t, tt.want, d.IsEmpty())
			d.MakeEmpty()
			assert.True(t, d.IsEmpty())
			assert.Equal(t, TargetUnset, d.Target)
		})
	}
}

func TestDescriptor_AggregateFrom(t *testing.T) {
	t.Run("empty receiver adopts target", func(t *testing.T) {
		d := New(testRows, testCols)
		other := clearedAttack(TargetCycleNext, row(1, 1), row(2, 2))

		assert.True(t, d.AggregateFrom(other))
		assert.Equal(t, TargetCycleNext, d.Target)
		assert.Equal(t, 2, d.ClearedAndSent.NumRows)
		assert.Equal(t, row(2, 2), d.ClearedAndSent.Rows[1])
		assert.Equal(t, PieceInfo{Type: 3, Rotation: 1, Column: 4}, d.ClearedAndSent.Piece)
		assert.True(t, other.IsEmpty())
	})

	t.Run("garbage is exclusive", func(t *testing.T) {
		d := clearedAttack(TargetAll, row(1))
		other := New(testRows, testCols)
		other.Target = TargetAll
		other.LevelUp.NumRows = 1
		copy(other.LevelUp.Rows[0], row(5))
		other.PenaltyRows = 2

		assert.True(t, d.AggregateFrom(other))
		assert.Equal(t, 0, d.LevelUp.NumRows)
		assert.Equal(t, 1, other.LevelUp.NumRows)
		assert.Equal(t, 2, d.PenaltyRows)
		assert.Equal(t, 0, other.PenaltyRows)
		assert.False(t, other.IsEmpty())
	})

	t.Run("additive families merge", func(t *testing.T) {
		d := New(testRows, testCols)
		d.Target = TargetAllButSelf
		d.PenaltyRows = 1
		d.AccelerateRows = 1.5
		d.Push.RowsOut = 1
		d.Push.In.NumRows = 1
		copy(d.Push.In.Rows[0], row(7))

		other := New(testRows, testCols)
		other.Target = TargetAllButSelf
		other.PenaltyRows = 3
		other.AccelerateRows = 2
		other.Push.RowsOut = 2
		other.Push.In.NumRows = 1
		copy(other.Push.In.Rows[0], row(8))

		assert.True(t, d.AggregateFrom(other))
		assert.Equal(t, 4, d.PenaltyRows)
		assert.Equal(t, 3.5, d.AccelerateRows)
		assert.Equal(t, 3, d.Push.RowsOut)
		assert.Equal(t, 2, d.Push.In.NumRows)
		assert.Equal(t, row(8), d.Push.In.Rows[1])
		assert.True(t, other.IsEmpty())
	})

	t.Run("push rows beyond capacity stay behind", func(t *testing.T) {
		d := New(testRows, testCols)
		d.Target = TargetAll
		d.Push.In.NumRows = testRows - 1

		other := New(testRows, testCols)
		other.Target = TargetAll
		other.Push.In.NumRows = 3
		copy(other.Push.In.Rows[0], row(1))
		copy(other.Push.In.Rows[1], row(2))
		copy(other.Push.In.Rows[2], row(3))

		assert.True(t, d.AggregateFrom(other))
		assert.Equal(t, testRows, d.Push.In.NumRows)
		assert.Equal(t, row(1), d.Push.In.Rows[testRows-1])
		assert.Equal(t, 2, other.Push.In.NumRows)
		assert.Equal(t, row(2), other.Push.In.Rows[0])
		assert.Equal(t, row(3), other.Push.In.Rows[1])
	})

	t.Run("sync level up and drops are exclusive", func(t *testing.T) {
		d := New(testRows, testCols)
		d.Target = TargetAll
		d.SyncLevelUp = SyncLevelUp{Set: true, Level: 3, Delta: 1}

		other := New(testRows, testCols)
		other.Target = TargetAll
		other.SyncLevelUp = SyncLevelUp{Set: true, Level: 5, Delta: 2}
		other.DropBlocks = DropBlocks{Peaks: 2}

		assert.True(t, d.AggregateFrom(other))
		assert.Equal(t, int32(3), d.SyncLevelUp.Level)
		assert.Equal(t, DropBlocks{Peaks: 2}, d.DropBlocks)
		assert.True(t, other.SyncLevelUp.Set)
		assert.True(t, other.DropBlocks.IsZero())
	})

	t.Run("mismatched targets refuse", func(t *testing.T) {
		d := New(testRows, testCols)
		d.Target = TargetAll
		d.PenaltyRows = 1
		other := New(testRows, testCols)
		other.Target = TargetCyclePrevious
		other.PenaltyRows = 1

		assert.False(t, d.AggregateFrom(other))
		assert.Equal(t, TargetAll, d.Target)
		assert.Equal(t, 1, d.PenaltyRows)
		assert.Equal(t, 1, other.PenaltyRows)
	})

	t.Run("empty other is a no-op", func(t *testing.T) {
		d := New(testRows, testCols)
		d.Target = TargetAll
		assert.False(t, d.AggregateFrom(New(testRows, testCols)))
	})

	t.Run("untargeted other panics", func(t *testing.T) {
		d := New(testRows, testCols)
		other := New(testRows, testCols)
		other.PenaltyRows = 1
		assert.Panics(t, func() { d.AggregateFrom(other) })
	})

	t.Run("size mismatch panics", func(t *testing.T) {
		d := New(testRows, testCols)
		other := New(testRows, testCols+1)
		assert.Panics(t, func() { d.AggregateFrom(other) })
	})
}

func TestAggregateIntoQueue(t *testing.T) {
	queue := make([]*Descriptor, 0, 4)

	first := clearedAttack(TargetAll, row(1))
	queue = AggregateIntoQueue(queue, first)
	require.Len(t, queue, 1)
	assert.True(t, first.IsEmpty())
	assert.Equal(t, 1, queue[0].ClearedAndSent.NumRows)

	// penalty merges into the existing member, garbage needs a new slot
	second := clearedAttack(TargetAll, row(2), row(3))
	second.PenaltyRows = 2
	for !second.IsEmpty() {
		queue = AggregateIntoQueue(queue, second)
	}
	require.Len(t, queue, 2)
	assert.Equal(t, 2, queue[0].PenaltyRows)
	assert.Equal(t, 2, queue[1].ClearedAndSent.NumRows)
	assert.Equal(t, 0, queue[1].PenaltyRows)

	// draining again is a no-op
	before := len(queue)
	queue = AggregateIntoQueue(queue, second)
	assert.Len(t, queue, before)
	assert.Equal(t, 2, queue[0].PenaltyRows)

	// a different target goes to its own slot
	third := New(testRows, testCols)
	third.Target = TargetCycleNext
	third.AccelerateRows = 1
	queue = AggregateIntoQueue(queue, third)
	require.Len(t, queue, 3)
	assert.Equal(t, TargetCycleNext, queue[2].Target)
}

func TestAggregateIntoQueue_ReusesSlots(t *testing.T) {
	spare := New(testRows, testCols)
	spare.PenaltyRows = 9
	backing := []*Descriptor{spare}
	queue := backing[:0]

	d := New(testRows, testCols)
	d.Target = TargetAll
	d.AccelerateRows = 2
	queue = AggregateIntoQueue(queue, d)

	require.Len(t, queue, 1)
	assert.Same(t, spare, queue[0])
	assert.Equal(t, 0, queue[0].PenaltyRows)
	assert.Equal(t, 2.0, queue[0].AccelerateRows)
}

func TestDescriptor_DivideAmong(t *testing.T) {
	d := New(testRows, testCols)
	d.Target = TargetAllDivided
	d.AccelerateRows = 9.0
	require.True(t, d.CanDivide())
	d.DivideAmong(3)
	assert.Equal(t, 3.0, d.AccelerateRows)

	d.AccelerateRows = 9.0
	d.ClearedAndSent.NumRows = 1
	assert.False(t, d.CanDivide())
	assert.Panics(t, func() { d.DivideAmong(3) })

	undivided := New(testRows, testCols)
	undivided.Target = TargetAll
	undivided.AccelerateRows = 1
	assert.False(t, undivided.CanDivide())

	penalty := New(testRows, testCols)
	penalty.Target = TargetAllButSelfDivided
	penalty.PenaltyRows = 1
	assert.False(t, penalty.CanDivide())

	divisible := New(testRows, testCols)
	divisible.Target = TargetAllButSelfDivided
	divisible.AccelerateRows = 1
	assert.Panics(t, func() { divisible.DivideAmong(0) })
}

func fullAttack() *Descriptor {
	d := clearedAttack(TargetAllButSelf, row(1, 2, 3), row(0, 0, 4))
	d.LevelUp.NumRows = 1
	copy(d.LevelUp.Rows[0], row(9, 9))
	d.PenaltyRows = 3
	d.Push.RowsOut = 2
	d.Push.In.NumRows = 1
	copy(d.Push.In.Rows[0], row(6))
	d.AccelerateRows = -1.25
	d.SyncLevelUp = SyncLevelUp{Set: true, Level: 7, Delta: 2}
	d.DropBlocks = DropBlocks{Valleys: 1, Junctions: 2, Peaks: 3, Corners: 4, Troll: 5}
	return d
}

func TestDescriptor_Codec(t *testing.T) {
	tests := []struct {
		name string
		d    *Descriptor
	}{
		{name: "empty", d: New(testRows, testCols)},
		{name: "cleared only", d: clearedAttack(TargetCycleNext, row(1))},
		{name: "everything", d: fullAttack()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			length, err := tt.d.Write(nil, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.d.WriteLength(), length)

			b := make([]byte, length+3)
			n, err := tt.d.Write(b, 3, len(b))
			require.NoError(t, err)
			assert.Equal(t, length, n)

			got := New(testRows, testCols)
			got.PenaltyRows = 42
			read, err := got.Read(b, 3)
			require.NoError(t, err)
			assert.Equal(t, length, read)
			assert.True(t, got.Equal(tt.d), "got %s want %s", got, tt.d)
		})
	}
}

func TestDescriptor_CodecErrors(t *testing.T) {
	d := fullAttack()

	t.Run("out of range", func(t *testing.T) {
		b := make([]byte, d.WriteLength()-1)
		_, err := d.Write(b, 0, len(b))
		assert.True(t, wire.IsRangeError(err))
	})

	t.Run("unknown version", func(t *testing.T) {
		b := make([]byte, d.WriteLength())
		_, err := d.Write(b, 0, len(b))
		require.NoError(t, err)
		b[3] = 0xEE
		_, err = New(testRows, testCols).Read(b, 0)
		assert.True(t, wire.IsUnknownVersion(err))
	})

	t.Run("size mismatch", func(t *testing.T) {
		b := make([]byte, d.WriteLength())
		_, err := d.Write(b, 0, len(b))
		require.NoError(t, err)
		_, err = New(testRows+1, testCols).Read(b, 0)
		assert.Error(t, err)
	})

	t.Run("truncated", func(t *testing.T) {
		b := make([]byte, d.WriteLength())
		_, err := d.Write(b, 0, len(b))
		require.NoError(t, err)
		got := New(testRows, testCols)
		_, err = got.Read(b[:len(b)-4], 0)
		assert.ErrorIs(t, err, wire.ErrShortBuffer)
		assert.True(t, got.IsEmpty())
	})
}

func TestPool(t *testing.T) {
	p := NewPool()
	d := p.Get(testRows, testCols)
	require.NotNil(t, d)
	assert.Equal(t, testRows, d.Rows())
	d.PenaltyRows = 3
	p.Put(d)

	again := p.Get(testRows, testCols)
	assert.True(t, again.IsEmpty())

	other := p.Get(4, 4)
	assert.Equal(t, 4, other.Cols())
}
