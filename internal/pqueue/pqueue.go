// Package pqueue implements a binary max-heap keyed by a float64 priority.
//
// The queue knows nothing about what it stores. Elements with equal priority
// are returned in an unspecified order that depends on insertion sequence and
// swap history; callers that need a stable tie-break must fold a secondary key
// into the priority itself.
package pqueue

// Item pairs a stored value with the priority it was enqueued under.
type Item[T any] struct {
	Value    T
	Priority float64
}

// Queue is a max-heap over a dense zero-indexed slice: the children of i live
// at 2i+1 and 2i+2, its parent at (i-1)/2. It is not safe for concurrent use.
type Queue[T any] struct {
	items []Item[T]
}

// New returns an empty queue with room for capacity elements.
func New[T any](capacity int) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue[T]{items: make([]Item[T], 0, capacity)}
}

// Enqueue inserts v with the given priority in O(log n).
func (q *Queue[T]) Enqueue(v T, priority float64) {
	q.items = append(q.items, Item[T]{Value: v, Priority: priority})
	q.siftUp(len(q.items) - 1)
}

// Dequeue removes and returns the element with the highest priority.
// The boolean is false when the queue is empty.
func (q *Queue[T]) Dequeue() (Item[T], bool) {
	n := len(q.items)
	if n == 0 {
		return Item[T]{}, false
	}
	top := q.items[0]
	last := n - 1
	q.items[0] = q.items[last]
	// drop the reference so the backing array does not pin the value
	q.items[last] = Item[T]{}
	q.items = q.items[:last]
	if last > 0 {
		q.siftDown(0)
	}
	return top, true
}

// Peek returns the highest-priority element without removing it.
func (q *Queue[T]) Peek() (Item[T], bool) {
	if len(q.items) == 0 {
		return Item[T]{}, false
	}
	return q.items[0], true
}

// Len returns the number of stored elements.
func (q *Queue[T]) Len() int { return len(q.items) }

// IsEmpty reports whether the queue holds no elements.
func (q *Queue[T]) IsEmpty() bool { return len(q.items) == 0 }

func (q *Queue[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if q.items[i].Priority <= q.items[parent].Priority {
			return
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *Queue[T]) siftDown(i int) {
	n := len(q.items)
	for {
		largest := i
		left, right := 2*i+1, 2*i+2
		if left < n && q.items[left].Priority > q.items[largest].Priority {
			largest = left
		}
		if right < n && q.items[right].Priority > q.items[largest].Priority {
			largest = right
		}
		if largest == i {
			return
		}
		q.swap(i, largest)
		i = largest
	}
}

func (q *Queue[T]) swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }
