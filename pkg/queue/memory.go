package queue

const (
	// QueueBufferSize is the default capacity of an InMemoryQueue
	QueueBufferSize = 1024
)

// InMemoryQueue is a bounded channel-backed queue. None of its operations
// block.
type InMemoryQueue[T any] struct {
	ch chan T
}

type NewInMemoryQueueOptions struct {
	// Size defaults to QueueBufferSize
	Size int
}

func NewInMemoryQueue[T any](opts NewInMemoryQueueOptions) *InMemoryQueue[T] {
	size := opts.Size
	if size <= 0 {
		size = QueueBufferSize
	}
	return &InMemoryQueue[T]{
		ch: make(chan T, size),
	}
}

// Enqueue adds an item to the end of the queue, or returns ErrQueueFull.
func (q *InMemoryQueue[T]) Enqueue(item T) error {
	select {
	case q.ch <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue removes and returns the item at the front of the queue. ok is false
// when the queue is empty.
func (q *InMemoryQueue[T]) Dequeue() (item T, ok bool) {
	select {
	case item = <-q.ch:
		return item, true
	default:
		return item, false
	}
}

// Size returns the current size of the queue.
func (q *InMemoryQueue[T]) Size() int {
	return len(q.ch)
}

// ReadAll dequeues every item currently in the queue.
func (q *InMemoryQueue[T]) ReadAll() []T {
	var items []T
	for {
		item, ok := q.Dequeue()
		if !ok {
			return items
		}
		items = append(items, item)
	}
}

// Clear drops all items from the queue.
func (q *InMemoryQueue[T]) Clear() {
	for {
		if _, ok := q.Dequeue(); !ok {
			return
		}
	}
}
