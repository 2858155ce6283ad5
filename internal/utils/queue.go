package utils

import (
	"errors"
	"sync"
)

var ErrQueueEmpty = errors.New("queue is empty")

// Queue is a thread-safe FIFO. Once closed, blocking readers drain the
// remaining items and then get ok == false.
type Queue[T any] struct {
	items  []T
	closed bool
	mutex  sync.Mutex
	cond   *sync.Cond
}

func NewQueue[T any](items ...T) *Queue[T] {
	q := &Queue[T]{items: append([]T(nil), items...)}
	q.cond = sync.NewCond(&q.mutex)
	return q
}

// Enqueue adds an item to the end of the queue. Items added after Close are
// dropped.
func (q *Queue[T]) Enqueue(item T) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, item)
	q.cond.Signal()
}

// Dequeue removes the front item without blocking.
func (q *Queue[T]) Dequeue() (T, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	var zero T
	if len(q.items) == 0 {
		return zero, ErrQueueEmpty
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, nil
}

// DequeueBlocking waits for an item. It returns false once the queue is
// closed and empty.
func (q *Queue[T]) DequeueBlocking() (T, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

func (q *Queue[T]) Close() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

func (q *Queue[T]) Size() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.items)
}
