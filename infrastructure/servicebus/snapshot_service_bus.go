package servicebus

import (
	"context"
	"encoding/json"
	"fmt"

	"yt-analytics/domain/dto"
	"yt-analytics/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

type messageSender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

// SnapshotServiceBus sends snapshot events to one Service Bus queue
type SnapshotServiceBus struct {
	queue     string
	newSender func(queue string) (messageSender, error)
}

func NewSnapshotServiceBus(azServiceBusClient *azservicebus.Client, queue string) *SnapshotServiceBus {
	return &SnapshotServiceBus{
		queue: queue,
		newSender: func(queue string) (messageSender, error) {
			return azServiceBusClient.NewSender(queue, nil)
		},
	}
}

func (s *SnapshotServiceBus) Name() string { return "servicebus" }

// Notify sends the event as a JSON message whose id is the run id
func (s *SnapshotServiceBus) Notify(ctx context.Context, event dto.SnapshotEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal snapshot event: %w", err)
	}

	sender, err := s.newSender(s.queue)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	defer func(sender messageSender, ctx context.Context) {
		if err := sender.Close(ctx); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}(sender, context.Background())

	contentType := "application/json"
	messageID := event.RunID
	sbMessage := &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		MessageID:   &messageID,
		ApplicationProperties: map[string]interface{}{
			"platform": event.Platform,
			"date":     event.Date,
		},
	}
	if err := sender.SendMessage(ctx, sbMessage, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}
	logger.GetLogger().WithField("queue", s.queue).Info("Snapshot event sent to Service Bus")
	return nil
}
