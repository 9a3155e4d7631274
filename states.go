package taskq

// Priority is a task's priority class. Use the exported constants instead of
// raw strings to avoid typos.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// AllPriorities lists every valid priority in ascending order.
var AllPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// String returns the raw string value of the priority.
func (p Priority) String() string { return string(p) }

// Rank orders priority classes: high > medium > low > anything unknown.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ParsePriority converts a string into a Priority, returning an error for unknown values.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case string(PriorityLow):
		return PriorityLow, nil
	case string(PriorityMedium):
		return PriorityMedium, nil
	case string(PriorityHigh):
		return PriorityHigh, nil
	default:
		return "", ErrUnknownPriority
	}
}

// Status is a task's lifecycle state.
type Status string

const (
	// StatusPending marks work not yet started. Only pending tasks are scheduled.
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// AllStatuses lists every valid status in a stable order.
var AllStatuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// String returns the raw string value of the status.
func (s Status) String() string { return string(s) }

// ParseStatus converts a string into a Status, returning an error for unknown values.
func ParseStatus(s string) (Status, error) {
	switch s {
	case string(StatusPending):
		return StatusPending, nil
	case string(StatusInProgress):
		return StatusInProgress, nil
	case string(StatusCompleted):
		return StatusCompleted, nil
	default:
		return "", ErrUnknownStatus
	}
}
