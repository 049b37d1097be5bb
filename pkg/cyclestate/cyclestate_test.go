package cyclestate

import (
	"math/rand"
	"testing"

	"github.com/cbodonnell/quantro/pkg/attack"
	"github.com/cbodonnell/quantro/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRows = 20
	testCols = 8
)

// stackedDescriptor returns a descriptor whose bottom height rows hold
// blocks drawn from rng.
func stackedDescriptor(rng *rand.Rand, height int) *Descriptor {
	d := New(testRows, testCols)
	for r := 0; r < height; r++ {
		for c := 0; c < testCols; c++ {
			if rng.Intn(4) > 0 {
				d.Board[rng.Intn(Panes)][r][c] = byte(1 + rng.Intn(6))
			}
		}
	}
	d.Displacement[0][0][rng.Intn(testCols)] = 2
	for i := range d.Next {
		d.Next[i] = int32(rng.Intn(7))
		d.NextRotation[i] = byte(rng.Intn(4))
	}
	d.Reserve[0] = int32(rng.Intn(7))
	d.Counters = Counters{
		Level:        3,
		Score:        int64(rng.Intn(100000)),
		Clears:       ClearCounts{Clears: 4, Rows: 9, Pane0Rows: 5, Pane1Rows: 4},
		PiecesPlaced: 31,
		Displacement: 1.75,
		Milliseconds: 90210,
	}
	a := attack.New(testRows, testCols)
	a.Target = attack.TargetIncoming
	a.PenaltyRows = 1 + rng.Intn(3)
	d.AppendAttack(a)
	d.RowsToTransfer = byte(rng.Intn(3))
	d.DequeueAttack = rng.Intn(2) == 0
	return d
}

func TestUpdate_FullRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, height := range []int{0, 1, 5, testRows} {
		d := stackedDescriptor(rng, height)

		u := NewUpdate(testRows, testCols)
		u.Set(nil, d)
		require.True(t, u.IsFullUpdate())
		assert.Equal(t, GridNonEmptyRows, u.BoardStrategy())

		got := New(testRows, testCols)
		u.Apply(got)
		assert.True(t, got.Equal(d), "height %d", height)

		// the same through the wire
		b, err := u.Marshal()
		require.NoError(t, err)
		decoded := NewUpdate(1, 1)
		n, err := decoded.Read(b, 0)
		require.NoError(t, err)
		assert.Equal(t, len(b), n)
		assert.True(t, decoded.IsFullUpdate())

		fromWire := New(testRows, testCols)
		decoded.Apply(fromWire)
		assert.True(t, fromWire.Equal(d), "height %d over the wire", height)
	}
}

func TestUpdate_Delta(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	tests := []struct {
		name   string
		mutate func(d *Descriptor)
		board  GridStrategy
	}{
		{
			name:   "no change",
			mutate: func(d *Descriptor) {},
			board:  GridNoChange,
		},
		{
			name: "one row changes",
			mutate: func(d *Descriptor) {
				d.Board[1][2][3] = 9
			},
			board: GridChangedRows,
		},
		{
			name: "board cleared",
			mutate: func(d *Descriptor) {
				d.Board.Clear()
			},
			board: GridNonEmptyRows,
		},
		{
			name: "every row shifts",
			mutate: func(d *Descriptor) {
				for r := testRows - 1; r > 0; r-- {
					for p := range d.Board {
						copy(d.Board[p][r], d.Board[p][r-1])
					}
				}
				d.Board.ClearRow(0)
				d.Next[0], d.Next[1] = d.Next[1], d.Next[0]
				d.Counters.PiecesPlaced++
				d.Attacks = d.Attacks[:0]
			},
			board: GridNonEmptyRows,
		},
		{
			name: "reserve and counters only",
			mutate: func(d *Descriptor) {
				d.Reserve[1] = 4
				d.Counters.Score += 100
			},
			board: GridNoChange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from := stackedDescriptor(rng, 12)
			to := New(testRows, testCols)
			to.TakeVals(from)
			tt.mutate(to)

			u := NewUpdate(testRows, testCols)
			u.Set(from, to)
			assert.Equal(t, tt.board, u.BoardStrategy())
			assert.Equal(t, AttackQueueReplace, u.AttackQueueStrategy())

			b, err := u.Marshal()
			require.NoError(t, err)
			decoded := NewUpdate(testRows, testCols)
			_, err = decoded.Read(b, 0)
			require.NoError(t, err)

			got := New(testRows, testCols)
			got.TakeVals(from)
			decoded.Apply(got)
			assert.True(t, got.Equal(to))
		})
	}
}

func TestUpdate_DeltaIsSmallerThanFull(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	from := stackedDescriptor(rng, 15)
	to := New(testRows, testCols)
	to.TakeVals(from)
	to.Board[0][14][0] = 3

	full := NewUpdate(testRows, testCols)
	full.Set(nil, to)
	delta := NewUpdate(testRows, testCols)
	delta.Set(from, to)

	assert.False(t, delta.IsFullUpdate())
	assert.Less(t, delta.WriteLength(), full.WriteLength())
}

func TestUpdate_DequeueAndAppend(t *testing.T) {
	d := New(testRows, testCols)
	for i := 0; i < 3; i++ {
		a := attack.New(testRows, testCols)
		a.Target = attack.TargetIncoming
		a.PenaltyRows = i + 1
		d.AppendAttack(a)
	}

	u := NewUpdate(testRows, testCols)
	u.Set(d, d)
	appended := attack.New(testRows, testCols)
	appended.Target = attack.TargetIncoming
	appended.AccelerateRows = 0.5
	u.SetAttackQueueDequeueAndAppend(2, []*attack.Descriptor{appended})
	assert.False(t, u.IsFullUpdate())

	b, err := u.Marshal()
	require.NoError(t, err)
	decoded := NewUpdate(testRows, testCols)
	_, err = decoded.Read(b, 0)
	require.NoError(t, err)
	assert.Equal(t, AttackQueueDequeueAndAppend, decoded.AttackQueueStrategy())

	decoded.Apply(d)
	require.Len(t, d.Attacks, 2)
	assert.Equal(t, 3, d.Attacks[0].PenaltyRows)
	assert.Equal(t, 0.5, d.Attacks[1].AccelerateRows)
}

func TestUpdate_WriteErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	u := NewUpdate(testRows, testCols)
	u.Set(nil, stackedDescriptor(rng, 6))

	t.Run("dry run", func(t *testing.T) {
		n, err := u.Write(nil, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, u.WriteLength(), n)
	})

	t.Run("out of range", func(t *testing.T) {
		b := make([]byte, u.WriteLength())
		_, err := u.Write(b, 1, len(b))
		require.Error(t, err)
		assert.True(t, wire.IsRangeError(err))
	})

	t.Run("unknown version", func(t *testing.T) {
		b, err := u.Marshal()
		require.NoError(t, err)
		b[0] = 0x7F
		_, err = NewUpdate(testRows, testCols).Read(b, 0)
		assert.True(t, wire.IsUnknownVersion(err))
	})

	t.Run("bad strategy", func(t *testing.T) {
		b, err := u.Marshal()
		require.NoError(t, err)
		b[6] = 0xFF
		_, err = NewUpdate(testRows, testCols).Read(b, 0)
		assert.Error(t, err)
	})
}

func TestUpdate_ApplySizeMismatchPanics(t *testing.T) {
	u := NewUpdate(testRows, testCols)
	u.Set(nil, New(testRows, testCols))
	assert.Panics(t, func() { u.Apply(New(testRows+1, testCols)) })
	assert.Panics(t, func() { u.Set(New(testRows, testCols), New(testRows, testCols+1)) })
}

func TestDescriptor_AttackSizeMismatchPanics(t *testing.T) {
	d := New(testRows, testCols)
	wrong := attack.New(testRows+1, testCols)
	wrong.Target = attack.TargetIncoming
	wrong.PenaltyRows = 1

	assert.Panics(t, func() { d.AppendAttack(wrong) })
	assert.Empty(t, d.Attacks)

	u := NewUpdate(testRows, testCols)
	assert.Panics(t, func() { u.SetAttackQueueDequeueAndAppend(0, []*attack.Descriptor{wrong}) })

	d.Attacks = append(d.Attacks, wrong)
	assert.Panics(t, func() { u.Set(nil, d) })
}

func TestDescriptor_TakeVals(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	src := stackedDescriptor(rng, 4)

	same := New(testRows, testCols)
	board := same.Board[0][0]
	same.TakeVals(src)
	assert.True(t, same.Equal(src))
	assert.Same(t, &board[0], &same.Board[0][0][0], "grid reallocated for equal dimensions")

	// deep copy
	src.Board[0][0][0] = 42
	src.Attacks[0].PenaltyRows = 99
	assert.NotEqual(t, byte(42), same.Board[0][0][0])
	assert.NotEqual(t, 99, same.Attacks[0].PenaltyRows)

	other := New(4, 4)
	other.TakeVals(src)
	assert.Equal(t, testRows, other.Rows())
	assert.Equal(t, testCols, other.Cols())
	assert.True(t, other.Equal(src))
}

func TestDescriptor_Reset(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	d := stackedDescriptor(rng, 10)
	d.Reset()
	assert.True(t, d.Equal(New(testRows, testCols)))
	assert.Equal(t, NoPiece, d.Next[0])
}

func TestBlockfieldText(t *testing.T) {
	empty := NewBlockfield(testRows, testCols)

	sparse := NewBlockfield(testRows, testCols)
	sparse[0][19][0] = 1
	sparse[1][19][1] = 2

	dense := NewBlockfield(testRows, testCols)
	for p := range dense {
		for r := range dense[p] {
			for c := range dense[p][r] {
				dense[p][r][c] = byte((p + r + c) % 5)
			}
		}
	}

	nearDense := NewBlockfield(testRows, testCols)
	nearDense.CopyFrom(&dense)
	nearDense[0][0][0] = 4

	tests := []struct {
		name     string
		b        *Blockfield
		template *Blockfield
		mode     string
	}{
		{name: "empty", b: &empty, mode: textSparse},
		{name: "sparse", b: &sparse, mode: textSparse},
		{name: "dense", b: &dense, mode: textFull},
		{name: "dense with template", b: &nearDense, template: &dense, mode: textDiff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := EncodeBlockfieldText(tt.b, tt.template)
			assert.Equal(t, "[ "+tt.mode+" ", s[:4])

			got := NewBlockfield(testRows, testCols)
			got[0][0][0] = 77
			require.NoError(t, DecodeBlockfieldText(s, &got, tt.template))
			assert.True(t, got.Equal(tt.b))
		})
	}
}

func TestBlockfieldText_Errors(t *testing.T) {
	b := NewBlockfield(2, 2)
	tests := []struct {
		name string
		s    string
	}{
		{name: "no brackets", s: "F 2 2 0 0 0 0 0 0 0 0"},
		{name: "wrong size", s: "[ F 3 2 0 0 0 0 0 0 0 0 0 0 0 0 ]"},
		{name: "short full", s: "[ F 2 2 0 0 ]"},
		{name: "bad token", s: "[ S 2 2 0 1 x 1 ]"},
		{name: "index out of range", s: "[ S 2 2 0 1 8 1 ]"},
		{name: "diff without template", s: "[ D 2 2 0 ]"},
		{name: "unknown mode", s: "[ Q 2 2 0 ]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, DecodeBlockfieldText(tt.s, &b, nil))
		})
	}
}

func TestPool(t *testing.T) {
	p := NewPool()
	d := p.Get(testRows, testCols)
	d.Counters.Level = 9
	p.Put(d)

	again := p.Get(testRows, testCols)
	assert.Equal(t, int32(0), again.Counters.Level)
	assert.Equal(t, testCols, again.Cols())
}
