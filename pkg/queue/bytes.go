package queue

// ByteQueue is a fixed-capacity ring of byte codes. It is not safe for
// concurrent use; callers hold their own lock.
type ByteQueue struct {
	buf  []byte
	head int
	n    int
}

func NewByteQueue(capacity int) *ByteQueue {
	return &ByteQueue{buf: make([]byte, capacity)}
}

func (q *ByteQueue) Len() int {
	return q.n
}

func (q *ByteQueue) Cap() int {
	return len(q.buf)
}

func (q *ByteQueue) Free() int {
	return len(q.buf) - q.n
}

// Push appends b and reports whether there was room.
func (q *ByteQueue) Push(b byte) bool {
	if q.n == len(q.buf) {
		return false
	}
	q.buf[(q.head+q.n)%len(q.buf)] = b
	q.n++
	return true
}

// PushAll appends all of bs, or none of them when they do not fit.
func (q *ByteQueue) PushAll(bs []byte) bool {
	if len(bs) > q.Free() {
		return false
	}
	for _, b := range bs {
		q.Push(b)
	}
	return true
}

// At returns the i'th byte from the front.
func (q *ByteQueue) At(i int) byte {
	if i < 0 || i >= q.n {
		panic("queue: index out of range")
	}
	return q.buf[(q.head+i)%len(q.buf)]
}

func (q *ByteQueue) Peek() (byte, bool) {
	if q.n == 0 {
		return 0, false
	}
	return q.buf[q.head], true
}

func (q *ByteQueue) Pop() (byte, bool) {
	b, ok := q.Peek()
	if ok {
		q.Discard(1)
	}
	return b, ok
}

// Discard drops up to n bytes from the front.
func (q *ByteQueue) Discard(n int) {
	if n > q.n {
		n = q.n
	}
	if n <= 0 {
		return
	}
	q.head = (q.head + n) % len(q.buf)
	q.n -= n
	if q.n == 0 {
		q.head = 0
	}
}

// CopyOut moves up to len(dst) bytes from the front of the queue into dst
// and returns the number moved.
func (q *ByteQueue) CopyOut(dst []byte) int {
	n := min(len(dst), q.n)
	for i := 0; i < n; i++ {
		dst[i] = q.At(i)
	}
	q.Discard(n)
	return n
}

func (q *ByteQueue) Clear() {
	q.head = 0
	q.n = 0
}
