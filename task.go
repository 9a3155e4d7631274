package taskq

import "time"

// Task is a unit of personal work owned by a single user.
// The scheduling and caching core never mutates it; it is ordered and
// serialized as an opaque payload.
type Task struct {
	// ID is the unique identifier for the task.
	ID string `json:"id"`
	// OwnerID identifies the user the task belongs to.
	OwnerID string `json:"owner_id"`
	Title   string `json:"title"`
	// Description is free-form text.
	Description string `json:"description,omitempty"`
	// Priority is the task's priority class.
	Priority Priority `json:"priority"`
	// Status is the lifecycle state.
	Status Status `json:"status"`
	// CreatedAt is the timestamp (ms) when the task was created.
	CreatedAt int64 `json:"created_at"`
	// UpdatedAt is the timestamp (ms) of the last write.
	UpdatedAt int64 `json:"updated_at,omitempty"`
}

// Created returns CreatedAt as a time.Time.
func (t Task) Created() time.Time { return time.UnixMilli(t.CreatedAt) }

// ListResult is one page of an owner's tasks. It is the payload stored in the cache.
type ListResult struct {
	Tasks       []Task `json:"tasks"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
	TotalTasks  int    `json:"totalTasks"`
}
