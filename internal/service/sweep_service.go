package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/observability"
	"github.com/spec-kit/service-desk/internal/repository"
	"github.com/spec-kit/service-desk/internal/sla"
)

// SweepService reclassifies the sla_status of every open ticket carrying a
// deadline. It only ever writes sla_status and updated_at: node, counter and
// deadline fields belong to the lifecycle engine.
type SweepService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	metrics    *observability.SweepMetrics
	logger     *zap.Logger
	now        func() time.Time

	mu      sync.Mutex
	lastRun time.Time
}

// SweepResult summarizes one sweep pass.
type SweepResult struct {
	Checked  int
	Updated  int
	Warnings int
	Breaches int
}

// NewSweepService wires the sweep.
func NewSweepService(
	tickets repository.TicketRepository,
	dispatcher events.Dispatcher,
	metrics *observability.SweepMetrics,
	logger *zap.Logger,
) *SweepService {
	return &SweepService{
		tickets:    tickets,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the sweep clock. Test helper.
func (s *SweepService) WithClock(now func() time.Time) *SweepService {
	s.now = now
	return s
}

// LastRun reports when the sweep last completed a pass. Zero until the first
// pass finishes; the readiness probe uses it as the worker heartbeat.
func (s *SweepService) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// Run evaluates every candidate ticket once. Status rows are updated only on
// change, and warning/breach events fire only on the transition into that
// state, so repeated sweeps over an unchanged ticket are silent.
func (s *SweepService) Run(ctx context.Context) (SweepResult, error) {
	now := s.now().UTC()
	tickets, err := s.tickets.ListOpenWithSlaDue(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Checked: len(tickets)}
	statusCounts := map[domain.SlaStatus]int{}

	for i := range tickets {
		ticket := &tickets[i]
		check := sla.Evaluate(ticket.SlaDueAt, ticket.NodeEnteredAt, now)
		statusCounts[check.Status]++

		if check.Status == ticket.SlaStatus {
			continue
		}

		if err := s.tickets.UpdateSlaStatus(ctx, ticket.ID, check.Status, now); err != nil {
			s.logger.Warn("sla status update failed",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err),
			)
			continue
		}
		result.Updated++

		payload := events.SlaStatePayload{
			TicketNumber:     ticket.TicketNumber,
			Node:             ticket.CurrentNode,
			AssignedTo:       ticket.AssignedTo,
			RemainingPercent: check.RemainingPercent,
		}
		switch check.Status {
		case domain.SlaStatusWarning:
			result.Warnings++
			if s.metrics != nil {
				s.metrics.WarningsTotal.Inc()
			}
			s.emit(ctx, events.EventSlaWarning, ticket.ID, payload)
		case domain.SlaStatusBreached:
			result.Breaches++
			if s.metrics != nil {
				s.metrics.BreachesTotal.WithLabelValues(string(ticket.Priority)).Inc()
			}
			s.emit(ctx, events.EventSlaBreached, ticket.ID, payload)
		}
	}

	if s.metrics != nil {
		s.metrics.TicketsChecked.Set(float64(result.Checked))
		for _, status := range []domain.SlaStatus{domain.SlaStatusNormal, domain.SlaStatusWarning, domain.SlaStatusBreached} {
			s.metrics.StatusCount.WithLabelValues(string(status)).Set(float64(statusCounts[status]))
		}
	}

	s.mu.Lock()
	s.lastRun = now
	s.mu.Unlock()

	s.logger.Info("sla sweep completed",
		zap.Int("checked", result.Checked),
		zap.Int("updated", result.Updated),
		zap.Int("warnings", result.Warnings),
		zap.Int("breaches", result.Breaches),
	)
	return result, nil
}

func (s *SweepService) emit(ctx context.Context, eventType events.EventType, ticketID string, payload events.SlaStatePayload) {
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     events.Actor{UserID: "system", Role: domain.RoleAdmin},
		Timestamp: s.now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("sweep event publish failed",
			zap.String("event", string(eventType)),
			zap.String("ticket_id", ticketID),
			zap.Error(err),
		)
	}
}
