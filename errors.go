package taskq

import (
	"errors"
	"fmt"
)

// ErrCacheMiss is returned by a CacheStore when the key is absent or expired.
var ErrCacheMiss = errors.New("taskq: cache miss")

// ErrCacheUnavailable wraps failures of the cache store (connection errors,
// timeouts, an open circuit breaker).
var ErrCacheUnavailable = errors.New("taskq: cache unavailable")

// ErrInvalidQuery is returned when list filters or pagination are malformed.
// The query is rejected before the cache or the task store is consulted.
var ErrInvalidQuery = errors.New("taskq: invalid query")

// ErrUnknownPriority is returned when an invalid priority class is used.
var ErrUnknownPriority = errors.New("taskq: unknown priority")

// ErrUnknownStatus is returned when an invalid task status is used.
var ErrUnknownStatus = errors.New("taskq: unknown status")

// ErrInvalidTask is returned when a task to be written lacks an owner.
var ErrInvalidTask = errors.New("taskq: invalid task")

// ErrTaskNotFound is returned when a task with the specified ID does not exist for the owner.
var ErrTaskNotFound = errors.New("taskq: task not found")

// ErrReadOnlyStore is returned by mutating Service calls when the task store
// does not implement TaskWriter.
var ErrReadOnlyStore = errors.New("taskq: task store is read-only")

// StoreError reports a failed task store operation.
type StoreError struct {
	Op      string // find, get, create, update, delete
	OwnerID string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("taskq: store %s owner=%s: %v", e.Op, e.OwnerID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op, owner string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, OwnerID: owner, Err: err}
}
