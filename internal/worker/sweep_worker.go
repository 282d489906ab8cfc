package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/service"
)

// StartSweepWorker runs the SLA sweep on a fixed cadence until the context is
// cancelled. The first pass runs immediately so a restart does not leave
// stale sla_status rows for a full interval.
func StartSweepWorker(ctx context.Context, sweep *service.SweepService, interval time.Duration, logger *zap.Logger) {
	if sweep == nil || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		runOnce(ctx, sweep, logger)
		for {
			select {
			case <-ctx.Done():
				logger.Info("sla sweep worker stopped")
				return
			case <-ticker.C:
				runOnce(ctx, sweep, logger)
			}
		}
	}()
}

func runOnce(ctx context.Context, sweep *service.SweepService, logger *zap.Logger) {
	if _, err := sweep.Run(ctx); err != nil {
		logger.Error("sla sweep failed", zap.Error(err))
	}
}

// StartAutoCloseWorker periodically moves resolved tickets that have sat past
// the configured window to auto_closed. A zero window disables the worker.
func StartAutoCloseWorker(ctx context.Context, tickets *service.TicketService, olderThan, interval time.Duration, logger *zap.Logger) {
	if tickets == nil || olderThan <= 0 || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("auto-close worker stopped")
				return
			case <-ticker.C:
				if _, err := tickets.AutoCloseResolved(ctx, olderThan); err != nil {
					logger.Error("auto-close pass failed", zap.Error(err))
				}
			}
		}
	}()
}

// StartNotificationWorker subscribes the notification relay to the event bus.
func StartNotificationWorker(notifications *service.NotificationService, dispatcher events.Dispatcher) {
	if notifications == nil {
		return
	}
	notifications.Register(dispatcher)
}
