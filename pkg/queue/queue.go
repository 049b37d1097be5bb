package queue

import "errors"

// ErrQueueFull is returned by Enqueue when a bounded queue has no room.
var ErrQueueFull = errors.New("queue is full")

// Queue is a FIFO of items shared between goroutines.
type Queue[T any] interface {
	Enqueue(item T) error
	Dequeue() (T, bool)
	Size() int
	ReadAll() []T
	Clear()
}
