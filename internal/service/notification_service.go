package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/events"
)

// NotificationService relays engine events onto a Redis stream so downstream
// consumers (mail, IM bridges) can pick them up without coupling to the
// engine.
type NotificationService struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewNotificationService creates the relay.
func NewNotificationService(client *redis.Client, stream string, logger *zap.Logger) *NotificationService {
	return &NotificationService{client: client, stream: stream, logger: logger}
}

// Register subscribes the relay to every event type it forwards.
func (n *NotificationService) Register(dispatcher events.Dispatcher) {
	for _, t := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketTransitioned,
		events.EventTicketAssigned,
		events.EventTicketPriorityChanged,
		events.EventSlaWarning,
		events.EventSlaBreached,
	} {
		dispatcher.Subscribe(t, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("notification marshal failed",
			zap.String("event", string(event.Type)),
			zap.Error(err),
		)
		return err
	}

	err = n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]interface{}{
			"type":      string(event.Type),
			"ticket_id": event.TicketID,
			"payload":   payload,
		},
	}).Err()
	if err != nil {
		n.logger.Warn("notification publish failed",
			zap.String("event", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
