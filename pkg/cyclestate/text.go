package cyclestate

import (
	"fmt"
	"strconv"
	"strings"
)

// Text encodings of a blockfield, all bracket delimited:
//
//	[ F rows cols v... ]              every cell, pane by pane, row by row
//	[ S rows cols common n (i v)... ] cells that differ from the most common value
//	[ D rows cols n (i v)... ]        cells that differ from a template
//
// i is the flat cell index pane*rows*cols + row*cols + col.
const (
	textFull   = "F"
	textSparse = "S"
	textDiff   = "D"
)

// EncodeBlockfieldText encodes b with whichever text strategy produces the
// fewest tokens. template may be nil; when set it must have b's size.
func EncodeBlockfieldText(b *Blockfield, template *Blockfield) string {
	rows, cols := b.Rows(), b.Cols()
	cells := Panes * rows * cols

	var counts [256]int
	for p := range b {
		for r := range b[p] {
			for _, v := range b[p][r] {
				counts[v]++
			}
		}
	}
	common := 0
	for v := range counts {
		if counts[v] > counts[common] {
			common = v
		}
	}

	fullTokens := 5 + cells
	sparseTokens := 7 + 2*(cells-counts[common])
	diffTokens := -1
	diffCount := 0
	if template != nil && template.SameSize(b) {
		diffCount = countDiff(b, template)
		diffTokens = 6 + 2*diffCount
	}

	var sb strings.Builder
	sb.WriteString("[ ")
	switch {
	case diffTokens >= 0 && diffTokens < fullTokens && diffTokens < sparseTokens:
		fmt.Fprintf(&sb, "%s %d %d %d", textDiff, rows, cols, diffCount)
		eachCell(b, func(i int, v byte, p, r, c int) {
			if template[p][r][c] != v {
				fmt.Fprintf(&sb, " %d %d", i, v)
			}
		})
	case sparseTokens < fullTokens:
		fmt.Fprintf(&sb, "%s %d %d %d %d", textSparse, rows, cols, common, cells-counts[common])
		eachCell(b, func(i int, v byte, p, r, c int) {
			if int(v) != common {
				fmt.Fprintf(&sb, " %d %d", i, v)
			}
		})
	default:
		fmt.Fprintf(&sb, "%s %d %d", textFull, rows, cols)
		eachCell(b, func(i int, v byte, p, r, c int) {
			fmt.Fprintf(&sb, " %d", v)
		})
	}
	sb.WriteString(" ]")
	return sb.String()
}

func countDiff(b, template *Blockfield) int {
	n := 0
	eachCell(b, func(i int, v byte, p, r, c int) {
		if template[p][r][c] != v {
			n++
		}
	})
	return n
}

func eachCell(b *Blockfield, fn func(i int, v byte, p, r, c int)) {
	i := 0
	for p := range b {
		for r := range b[p] {
			for c, v := range b[p][r] {
				fn(i, v, p, r, c)
				i++
			}
		}
	}
}

// DecodeBlockfieldText decodes s into b. b's size must match the encoded
// size; template is required for the diff encoding.
func DecodeBlockfieldText(s string, b *Blockfield, template *Blockfield) error {
	tokens := strings.Fields(s)
	if len(tokens) < 5 || tokens[0] != "[" || tokens[len(tokens)-1] != "]" {
		return fmt.Errorf("blockfield text is not bracket delimited")
	}
	tokens = tokens[1 : len(tokens)-1]
	mode := tokens[0]

	ints, err := parseInts(tokens[1:])
	if err != nil {
		return err
	}
	if ints[0] != b.Rows() || ints[1] != b.Cols() {
		return fmt.Errorf("blockfield text is %dx%d, blockfield is %dx%d", ints[0], ints[1], b.Rows(), b.Cols())
	}
	ints = ints[2:]
	cells := Panes * b.Rows() * b.Cols()

	switch mode {
	case textFull:
		if len(ints) != cells {
			return fmt.Errorf("full blockfield text has %d cells, want %d", len(ints), cells)
		}
		return setCells(b, ints, func(i int) (int, int) { return i, ints[i] })
	case textSparse:
		if len(ints) < 2 {
			return fmt.Errorf("sparse blockfield text is truncated")
		}
		if err := fillCells(b, ints[0]); err != nil {
			return err
		}
		return setPairs(b, ints[1:])
	case textDiff:
		if template == nil || !template.SameSize(b) {
			return fmt.Errorf("diff blockfield text requires a matching template")
		}
		b.CopyFrom(template)
		return setPairs(b, ints)
	default:
		return fmt.Errorf("unknown blockfield text mode %q", mode)
	}
}

func parseInts(tokens []string) ([]int, error) {
	ints := make([]int, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("failed to parse blockfield token %q: %v", tok, err)
		}
		ints[i] = v
	}
	return ints, nil
}

func fillCells(b *Blockfield, v int) error {
	if v < 0 || v > 255 {
		return fmt.Errorf("block value %d out of range", v)
	}
	for p := range b {
		for r := range b[p] {
			for c := range b[p][r] {
				b[p][r][c] = byte(v)
			}
		}
	}
	return nil
}

func setPairs(b *Blockfield, ints []int) error {
	if len(ints) < 1 || len(ints) != 1+2*ints[0] {
		return fmt.Errorf("blockfield text has a malformed cell list")
	}
	pairs := ints[1:]
	return setCells(b, make([]int, ints[0]), func(i int) (int, int) { return pairs[2*i], pairs[2*i+1] })
}

// setCells assigns len(idx) cells, reading (index, value) pairs from at.
func setCells(b *Blockfield, idx []int, at func(i int) (int, int)) error {
	rows, cols := b.Rows(), b.Cols()
	cells := Panes * rows * cols
	for i := range idx {
		cell, v := at(i)
		if cell < 0 || cell >= cells {
			return fmt.Errorf("cell index %d out of range", cell)
		}
		if v < 0 || v > 255 {
			return fmt.Errorf("block value %d out of range", v)
		}
		p := cell / (rows * cols)
		r := (cell % (rows * cols)) / cols
		c := cell % cols
		b[p][r][c] = byte(v)
	}
	return nil
}
