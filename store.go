package taskq

import "context"

// TaskStore supplies an owner's tasks. It is the only read path of the core.
// Implementations must treat ownerID as a hard scope and apply the filter.
type TaskStore interface {
	FindTasks(ctx context.Context, ownerID string, f Filter) ([]Task, error)
}

// TaskWriter is implemented by task stores that also accept mutations.
// Update and delete are scoped to the owner and return ErrTaskNotFound when
// no row matches.
type TaskWriter interface {
	GetTask(ctx context.Context, ownerID, id string) (Task, error)
	CreateTask(ctx context.Context, t *Task) error
	UpdateTask(ctx context.Context, t *Task) error
	DeleteTask(ctx context.Context, ownerID, id string) error
}
