package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-desk/internal/domain"
)

func TestDurationMatrix(t *testing.T) {
	for _, tt := range []struct {
		priority  domain.TicketPriority
		milestone Milestone
		want      time.Duration
	}{
		{domain.TicketPriorityP0, MilestoneFirstResponse, 2 * time.Hour},
		{domain.TicketPriorityP0, MilestoneSolution, 4 * time.Hour},
		{domain.TicketPriorityP0, MilestoneQuote, 24 * time.Hour},
		{domain.TicketPriorityP0, MilestoneClose, 36 * time.Hour},
		{domain.TicketPriorityP1, MilestoneFirstResponse, 8 * time.Hour},
		{domain.TicketPriorityP1, MilestoneSolution, 24 * time.Hour},
		{domain.TicketPriorityP1, MilestoneQuote, 48 * time.Hour},
		{domain.TicketPriorityP1, MilestoneClose, 72 * time.Hour},
		{domain.TicketPriorityP2, MilestoneFirstResponse, 24 * time.Hour},
		{domain.TicketPriorityP2, MilestoneSolution, 48 * time.Hour},
		{domain.TicketPriorityP2, MilestoneQuote, 120 * time.Hour},
		{domain.TicketPriorityP2, MilestoneClose, 168 * time.Hour},
	} {
		assert.Equal(t, tt.want, DurationFor(tt.priority, tt.milestone),
			"%s/%s", tt.priority, tt.milestone)
	}
}

func TestUnknownPriorityFallsBackToP2(t *testing.T) {
	assert.Equal(t, 24*time.Hour, DurationFor(domain.TicketPriority("P9"), MilestoneFirstResponse))
}

func TestMilestoneForNodes(t *testing.T) {
	assert.Equal(t, MilestoneFirstResponse, MilestoneFor(domain.NodeSubmitted))
	assert.Equal(t, MilestoneSolution, MilestoneFor(domain.NodeOpDiagnosing))
	assert.Equal(t, MilestoneClose, MilestoneFor(domain.NodeGeClosing))
	// Terminals and parking nodes carry no deadline.
	assert.Equal(t, MilestoneNone, MilestoneFor(domain.NodeClosed))
	assert.Equal(t, MilestoneNone, MilestoneFor(domain.NodeWaitingCustomer))
	assert.Equal(t, MilestoneNone, MilestoneFor(domain.Node("mystery")))
}

func TestDueAt(t *testing.T) {
	entered := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	due := DueAt(domain.TicketPriorityP1, domain.NodeSubmitted, entered)
	require.NotNil(t, due)
	assert.Equal(t, entered.Add(8*time.Hour), *due)

	assert.Nil(t, DueAt(domain.TicketPriorityP1, domain.NodeClosed, entered))
}

func TestEvaluateNormal(t *testing.T) {
	entered := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	due := entered.Add(8 * time.Hour)

	check := Evaluate(&due, entered, entered.Add(1*time.Hour))
	assert.Equal(t, domain.SlaStatusNormal, check.Status)
	require.NotNil(t, check.RemainingHours)
	assert.InDelta(t, 7.0, *check.RemainingHours, 0.001)
	require.NotNil(t, check.RemainingPercent)
	assert.InDelta(t, 0.875, *check.RemainingPercent, 0.001)
}

func TestEvaluateWarningBoundary(t *testing.T) {
	entered := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	due := entered.Add(8 * time.Hour)

	// Exactly 25% remaining flips to warning.
	check := Evaluate(&due, entered, entered.Add(6*time.Hour))
	assert.Equal(t, domain.SlaStatusWarning, check.Status)

	// Just above the threshold stays normal.
	check = Evaluate(&due, entered, entered.Add(6*time.Hour-time.Second))
	assert.Equal(t, domain.SlaStatusNormal, check.Status)
}

func TestEvaluateBreach(t *testing.T) {
	entered := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	due := entered.Add(8 * time.Hour)

	// At the deadline the ticket is breached, not warning.
	check := Evaluate(&due, entered, due)
	assert.Equal(t, domain.SlaStatusBreached, check.Status)

	check = Evaluate(&due, entered, due.Add(3*time.Hour))
	assert.Equal(t, domain.SlaStatusBreached, check.Status)
	require.NotNil(t, check.RemainingHours)
	assert.Zero(t, *check.RemainingHours, "display values clamp at zero")
	assert.Zero(t, *check.RemainingPercent)
}

func TestEvaluateNilDeadline(t *testing.T) {
	now := time.Now()
	check := Evaluate(nil, now, now)
	assert.Equal(t, domain.SlaStatusNormal, check.Status)
	assert.Nil(t, check.RemainingHours)
	assert.Nil(t, check.RemainingPercent)
}

func TestEvaluateClockSkew(t *testing.T) {
	// A due date recorded before the entry time (clock skew between
	// writers) classifies as breached instead of dividing by a negative
	// total.
	entered := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	due := entered.Add(-1 * time.Hour)
	check := Evaluate(&due, entered, entered)
	assert.Equal(t, domain.SlaStatusBreached, check.Status)
}

func TestEvaluateZeroDuration(t *testing.T) {
	entered := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	due := entered
	check := Evaluate(&due, entered, entered)
	assert.Equal(t, domain.SlaStatusBreached, check.Status)
}
