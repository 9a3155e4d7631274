package taskq

import "time"

// Base weights per priority class. The gap between classes is large enough
// that class dominates ordering for any task younger than about two days.
const (
	WeightHigh   = 100.0
	WeightMedium = 50.0
	WeightLow    = 10.0
)

// Weight returns the base score of the priority class; unknown classes weigh 0.
func (p Priority) Weight() float64 {
	switch p {
	case PriorityHigh:
		return WeightHigh
	case PriorityMedium:
		return WeightMedium
	case PriorityLow:
		return WeightLow
	default:
		return 0
	}
}

// Score ranks a task for scheduling: the class weight minus one point per hour
// of age at now. The decay is linear and unbounded. Score is pure; a task
// created after now gets a small bonus rather than being clamped.
func Score(p Priority, createdAtMs int64, now time.Time) float64 {
	age := now.Sub(time.UnixMilli(createdAtMs)).Hours()
	return p.Weight() - age
}
