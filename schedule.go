package taskq

import (
	"time"

	"github.com/UniQw/taskq/internal/pqueue"
)

// Schedule returns tasks ordered by non-increasing Score at now.
// Each call builds and drains its own heap. Tasks with identical scores come
// out in no particular order. Schedule does not filter; callers pass only the
// tasks they want ordered (typically an owner's pending tasks).
func Schedule(tasks []Task, now time.Time) []Task {
	q := pqueue.New[Task](len(tasks))
	for _, t := range tasks {
		q.Enqueue(t, Score(t.Priority, t.CreatedAt, now))
	}
	out := make([]Task, 0, len(tasks))
	for {
		it, ok := q.Dequeue()
		if !ok {
			break
		}
		out = append(out, it.Value)
	}
	return out
}
