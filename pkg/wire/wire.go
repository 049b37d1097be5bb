// Package wire implements the bounded big-endian record primitives shared by
// the attack and cycle state codecs.
//
// A Writer created over a nil buffer runs dry: it advances its position
// without writing so callers can size a buffer before encoding into it.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortBuffer is returned by a Reader asked to read past the end of its data.
var ErrShortBuffer = errors.New("wire: short buffer")

// RangeError reports a write that would cross the caller supplied limit.
type RangeError struct {
	Start int
	End   int
	Limit int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("wire: write of [%d, %d) exceeds limit %d", e.Start, e.End, e.Limit)
}

func IsRangeError(err error) bool {
	var rangeErr *RangeError
	return errors.As(err, &rangeErr)
}

// UnknownVersionError reports a record written with a format version this
// build does not understand.
type UnknownVersionError struct {
	Version uint32
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("wire: unknown format version %d", e.Version)
}

func IsUnknownVersion(err error) bool {
	var versionErr *UnknownVersionError
	return errors.As(err, &versionErr)
}

// Writer appends big-endian values to a bounded region of a byte slice.
// The first failed write is sticky: later writes are ignored and Err
// returns it.
type Writer struct {
	buf   []byte
	start int
	pos   int
	limit int
	err   error
}

// NewWriter returns a writer over b[offset:limit]. A nil b produces a dry run
// writer whose limit is ignored.
func NewWriter(b []byte, offset, limit int) *Writer {
	if b != nil && limit > len(b) {
		limit = len(b)
	}
	return &Writer{
		buf:   b,
		start: offset,
		pos:   offset,
		limit: limit,
	}
}

// DryRun reports whether the writer only measures.
func (w *Writer) DryRun() bool {
	return w.buf == nil
}

// Len returns the number of bytes written (or measured) so far.
func (w *Writer) Len() int {
	return w.pos - w.start
}

func (w *Writer) Err() error {
	return w.err
}

// Fail records err unless an earlier error is already recorded.
func (w *Writer) Fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) reserve(n int) (int, bool) {
	if w.err != nil {
		return 0, false
	}
	at := w.pos
	if w.buf != nil && at+n > w.limit {
		w.err = &RangeError{Start: at, End: at + n, Limit: w.limit}
		return 0, false
	}
	w.pos += n
	return at, w.buf != nil
}

func (w *Writer) PutByte(v byte) {
	if at, ok := w.reserve(1); ok {
		w.buf[at] = v
	}
}

func (w *Writer) PutBool(v bool) {
	if v {
		w.PutByte(1)
	} else {
		w.PutByte(0)
	}
}

func (w *Writer) PutUint32(v uint32) {
	if at, ok := w.reserve(4); ok {
		binary.BigEndian.PutUint32(w.buf[at:], v)
	}
}

func (w *Writer) PutInt32(v int32) {
	w.PutUint32(uint32(v))
}

func (w *Writer) PutInt64(v int64) {
	if at, ok := w.reserve(8); ok {
		binary.BigEndian.PutUint64(w.buf[at:], uint64(v))
	}
}

func (w *Writer) PutFloat64(v float64) {
	if at, ok := w.reserve(8); ok {
		binary.BigEndian.PutUint64(w.buf[at:], math.Float64bits(v))
	}
}

func (w *Writer) PutBytes(p []byte) {
	if at, ok := w.reserve(len(p)); ok {
		copy(w.buf[at:], p)
	}
}

// PutHeader writes the common record header: version, rows and columns.
func (w *Writer) PutHeader(version uint32, rows, cols int) {
	w.PutUint32(version)
	w.PutByte(byte(rows))
	w.PutByte(byte(cols))
}

// Reader consumes big-endian values from a byte slice. Like Writer its
// first error is sticky.
type Reader struct {
	buf   []byte
	start int
	pos   int
	err   error
}

func NewReader(b []byte, offset int) *Reader {
	return &Reader{buf: b, start: offset, pos: offset}
}

// Len returns the number of bytes consumed so far.
func (r *Reader) Len() int {
	return r.pos - r.start
}

func (r *Reader) Err() error {
	return r.err
}

// Fail records err unless an earlier error is already recorded.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) take(n int) ([]byte, bool) {
	if r.err != nil {
		return nil, false
	}
	if r.pos+n > len(r.buf) {
		r.err = fmt.Errorf("failed to read %d bytes at %d of %d: %w", n, r.pos, len(r.buf), ErrShortBuffer)
		return nil, false
	}
	p := r.buf[r.pos : r.pos+n]
	r.pos += n
	return p, true
}

func (r *Reader) Byte() byte {
	if p, ok := r.take(1); ok {
		return p[0]
	}
	return 0
}

func (r *Reader) Bool() bool {
	return r.Byte() != 0
}

func (r *Reader) Uint32() uint32 {
	if p, ok := r.take(4); ok {
		return binary.BigEndian.Uint32(p)
	}
	return 0
}

func (r *Reader) Int32() int32 {
	return int32(r.Uint32())
}

func (r *Reader) Int64() int64 {
	if p, ok := r.take(8); ok {
		return int64(binary.BigEndian.Uint64(p))
	}
	return 0
}

func (r *Reader) Float64() float64 {
	if p, ok := r.take(8); ok {
		return math.Float64frombits(binary.BigEndian.Uint64(p))
	}
	return 0
}

// Bytes copies len(dst) bytes into dst.
func (r *Reader) Bytes(dst []byte) {
	if p, ok := r.take(len(dst)); ok {
		copy(dst, p)
	}
}

// Header reads the common record header and rejects any version that is
// not supported.
func (r *Reader) Header(supported ...uint32) (version uint32, rows, cols int) {
	version = r.Uint32()
	rows = int(r.Byte())
	cols = int(r.Byte())
	if r.err != nil {
		return version, rows, cols
	}
	for _, v := range supported {
		if v == version {
			return version, rows, cols
		}
	}
	r.err = &UnknownVersionError{Version: version}
	return version, rows, cols
}
