package sla

import (
	"time"

	"github.com/spec-kit/service-desk/internal/domain"
)

// warningThreshold marks the remaining-time fraction below which a ticket is
// flagged as warning.
const warningThreshold = 0.25

// Check is the live evaluation of a node deadline. RemainingHours and
// RemainingPercent are clamped to zero for display; Status classification
// uses the unclamped sign.
type Check struct {
	Status           domain.SlaStatus
	RemainingHours   *float64
	RemainingPercent *float64
}

// DueAt computes the deadline for entering a node, or nil when the node
// carries no milestone.
func DueAt(priority domain.TicketPriority, node domain.Node, enteredAt time.Time) *time.Time {
	milestone := MilestoneFor(node)
	if milestone == MilestoneNone {
		return nil
	}
	duration := DurationFor(priority, milestone)
	due := enteredAt.Add(duration)
	return &due
}

// Evaluate classifies the deadline state at the given instant. The result is
// a pure function of its inputs.
func Evaluate(dueAt *time.Time, enteredAt, now time.Time) Check {
	if dueAt == nil {
		return Check{Status: domain.SlaStatusNormal}
	}

	totalMs := dueAt.Sub(enteredAt)
	remaining := dueAt.Sub(now)
	remainingHours := remaining.Hours()

	status := domain.SlaStatusNormal
	switch {
	case remaining <= 0:
		// Covers clock skew (enteredAt past dueAt) and zero-duration
		// milestones once now has reached the deadline.
		status = domain.SlaStatusBreached
	case totalMs > 0 && float64(remaining)/float64(totalMs) <= warningThreshold:
		status = domain.SlaStatusWarning
	}

	hours := clampZero(remainingHours)
	var percent float64
	if totalMs > 0 {
		percent = clampZero(float64(remaining) / float64(totalMs))
	}
	return Check{Status: status, RemainingHours: &hours, RemainingPercent: &percent}
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
