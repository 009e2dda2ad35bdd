package core

import "fmt"

// OptimizationErrorKind classifies why a layout optimization was rejected.
type OptimizationErrorKind string

const (
	ErrInvalidArea       OptimizationErrorKind = "invalid_area"
	ErrInvalidZones      OptimizationErrorKind = "invalid_zones"
	ErrInsufficientSpace OptimizationErrorKind = "insufficient_space"
	ErrBelowTarget       OptimizationErrorKind = "below_target"
	ErrIncompatible      OptimizationErrorKind = "incompatible_plants"
)

// OptimizationError is returned by the optimizer when a garden cannot be
// laid out. All variants are user-input-driven and recoverable: the host is
// expected to surface them, never retry them.
type OptimizationError struct {
	Kind OptimizationErrorKind
	// ZoneID names the offending zone for zone-specific failures.
	ZoneID string
	// Utilization carries the computed value for below-target failures.
	Utilization float64
	Detail      string
}

func (e *OptimizationError) Error() string {
	switch e.Kind {
	case ErrInvalidArea:
		return fmt.Sprintf("invalid garden area: %s", e.Detail)
	case ErrInvalidZones:
		if e.ZoneID != "" {
			return fmt.Sprintf("invalid zone %s: %s", e.ZoneID, e.Detail)
		}
		return fmt.Sprintf("invalid zones: %s", e.Detail)
	case ErrInsufficientSpace:
		return fmt.Sprintf("insufficient space: %s", e.Detail)
	case ErrBelowTarget:
		return fmt.Sprintf("space utilization %.1f%% is below target: %s", e.Utilization, e.Detail)
	case ErrIncompatible:
		return fmt.Sprintf("incompatible plants in zone %s: %s", e.ZoneID, e.Detail)
	default:
		return e.Detail
	}
}

// ScheduleErrorKind classifies schedule-generator failures.
type ScheduleErrorKind string

const (
	ErrInvalidPlant     ScheduleErrorKind = "invalid_plant"
	ErrAlreadyCompleted ScheduleErrorKind = "already_completed"
	ErrPastDate         ScheduleErrorKind = "past_date"
)

// ScheduleError is returned by the schedule generator for invalid inputs or
// transitions.
type ScheduleError struct {
	Kind   ScheduleErrorKind
	Detail string
}

func (e *ScheduleError) Error() string {
	switch e.Kind {
	case ErrInvalidPlant:
		return fmt.Sprintf("invalid plant: %s", e.Detail)
	case ErrAlreadyCompleted:
		return fmt.Sprintf("task already completed: %s", e.Detail)
	case ErrPastDate:
		return fmt.Sprintf("date is in the past: %s", e.Detail)
	default:
		return e.Detail
	}
}
