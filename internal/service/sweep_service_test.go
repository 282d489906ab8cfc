package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/observability"
)

type sweepFixture struct {
	sweep      *SweepService
	tickets    *fakeTicketRepo
	dispatcher *capturingDispatcher
	clock      *time.Time
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := &start

	tickets := newFakeTicketRepo()
	dispatcher := &capturingDispatcher{}
	sweep := NewSweepService(tickets, dispatcher, observability.NewSweepMetrics(nil), zap.NewNop()).
		WithClock(func() time.Time { return *clock })

	return &sweepFixture{sweep: sweep, tickets: tickets, dispatcher: dispatcher, clock: clock}
}

func (f *sweepFixture) seed(t *testing.T, ticket *domain.Ticket) *domain.Ticket {
	t.Helper()
	require.NoError(t, f.tickets.Create(context.Background(), ticket))
	return ticket
}

func openTicket(number string, enteredAt time.Time, window time.Duration) *domain.Ticket {
	due := enteredAt.Add(window)
	return &domain.Ticket{
		TicketNumber:  number,
		TicketType:    domain.TicketTypeRMA,
		CurrentNode:   domain.NodeSubmitted,
		Status:        domain.TicketStatusOpen,
		Priority:      domain.TicketPriorityP1,
		NodeEnteredAt: enteredAt,
		SlaDueAt:      &due,
		SlaStatus:     domain.SlaStatusNormal,
		SubmittedBy:   "user-1",
		Participants:  []string{},
	}
}

func TestSweepFlagsWarningAndBreach(t *testing.T) {
	f := newSweepFixture(t)
	start := *f.clock

	healthy := f.seed(t, openTicket("RMA-C-2603-0001", start, 8*time.Hour))
	warning := f.seed(t, openTicket("RMA-C-2603-0002", start.Add(-7*time.Hour), 8*time.Hour))
	breached := f.seed(t, openTicket("RMA-C-2603-0003", start.Add(-20*time.Hour), 8*time.Hour))

	result, err := f.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Checked)
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 1, result.Warnings)
	assert.Equal(t, 1, result.Breaches)

	assert.Equal(t, domain.SlaStatusNormal, f.tickets.stored(healthy.ID).SlaStatus)
	assert.Equal(t, domain.SlaStatusWarning, f.tickets.stored(warning.ID).SlaStatus)
	assert.Equal(t, domain.SlaStatusBreached, f.tickets.stored(breached.ID).SlaStatus)

	require.Len(t, f.dispatcher.ofType(events.EventSlaWarning), 1)
	require.Len(t, f.dispatcher.ofType(events.EventSlaBreached), 1)

	payload := f.dispatcher.ofType(events.EventSlaBreached)[0].Payload.(events.SlaStatePayload)
	assert.Equal(t, "RMA-C-2603-0003", payload.TicketNumber)
	assert.Equal(t, domain.NodeSubmitted, payload.Node)
}

func TestSweepOnlyTouchesSlaStatus(t *testing.T) {
	f := newSweepFixture(t)
	start := *f.clock
	ticket := f.seed(t, openTicket("RMA-C-2603-0001", start.Add(-20*time.Hour), 8*time.Hour))
	before := f.tickets.stored(ticket.ID)

	_, err := f.sweep.Run(context.Background())
	require.NoError(t, err)

	after := f.tickets.stored(ticket.ID)
	assert.Equal(t, domain.SlaStatusBreached, after.SlaStatus)
	assert.Equal(t, before.CurrentNode, after.CurrentNode)
	assert.Equal(t, before.NodeEnteredAt, after.NodeEnteredAt)
	assert.Equal(t, before.SlaDueAt, after.SlaDueAt)
	assert.Equal(t, before.BreachCounter, after.BreachCounter, "the sweep never touches the counter")
	assert.Zero(t, f.tickets.updateCalls, "no full-row writes from the sweep")
}

func TestSweepIsIdempotentPerState(t *testing.T) {
	f := newSweepFixture(t)
	start := *f.clock
	f.seed(t, openTicket("RMA-C-2603-0001", start.Add(-7*time.Hour), 8*time.Hour))

	_, err := f.sweep.Run(context.Background())
	require.NoError(t, err)
	writes := f.tickets.slaStatusWrites
	require.Len(t, f.dispatcher.ofType(events.EventSlaWarning), 1)

	// Nothing changed, nothing written, nothing emitted.
	result, err := f.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Updated)
	assert.Equal(t, writes, f.tickets.slaStatusWrites)
	assert.Len(t, f.dispatcher.ofType(events.EventSlaWarning), 1)

	// The warning ticket crosses into breach and emits exactly once more.
	*f.clock = f.clock.Add(2 * time.Hour)
	result, err = f.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Breaches)
	assert.Len(t, f.dispatcher.ofType(events.EventSlaBreached), 1)
}

func TestSweepSkipsTicketsWithoutDeadline(t *testing.T) {
	f := newSweepFixture(t)
	start := *f.clock

	waiting := openTicket("K2603-0001", start.Add(-100*time.Hour), 8*time.Hour)
	waiting.SlaDueAt = nil
	waiting.CurrentNode = domain.NodeWaitingCustomer
	waiting.Status = domain.TicketStatusWaiting
	f.seed(t, waiting)

	closed := openTicket("RMA-C-2603-0002", start.Add(-100*time.Hour), 8*time.Hour)
	closed.Status = domain.TicketStatusClosed
	closed.CurrentNode = domain.NodeClosed
	f.seed(t, closed)

	result, err := f.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Checked)
	assert.Zero(t, f.tickets.slaStatusWrites)
}

func TestSweepRecordsHeartbeat(t *testing.T) {
	f := newSweepFixture(t)
	assert.True(t, f.sweep.LastRun().IsZero(), "no heartbeat before the first pass")

	_, err := f.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, *f.clock, f.sweep.LastRun())

	*f.clock = f.clock.Add(10 * time.Minute)
	_, err = f.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, *f.clock, f.sweep.LastRun())
}
