package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"yt-analytics/domain/dto"
	"yt-analytics/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// SnapshotPubSub publishes snapshot events to one Pub/Sub topic
type SnapshotPubSub struct {
	PubSubClient *pubsub.Client
	topicName    string
}

func NewSnapshotPubSub(pubSubClient *pubsub.Client, topicName string) *SnapshotPubSub {
	return &SnapshotPubSub{
		PubSubClient: pubSubClient,
		topicName:    topicName,
	}
}

func (p *SnapshotPubSub) Name() string { return "pubsub" }

// Notify publishes the event as JSON with run and platform attributes
func (p *SnapshotPubSub) Notify(ctx context.Context, event dto.SnapshotEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal snapshot event: %w", err)
	}
	_, err = p.Publish(ctx, p.topicName, payload, map[string]string{
		"run_id":   event.RunID,
		"platform": event.Platform,
		"date":     event.Date,
	})
	return err
}

// Publish sends payload to topicName, creating the topic when it does not exist
func (p *SnapshotPubSub) Publish(
	ctx context.Context,
	topicName string,
	payload []byte,
	attributes map[string]string,
) (string, error) {
	msg := &pubsub.Message{
		Data:       payload,
		Attributes: attributes,
	}

	topic := p.PubSubClient.Topic(topicName)
	defer topic.Stop()

	exists, err := topic.Exists(ctx)
	if err != nil {
		return "", err
	}
	if !exists {
		logger.GetLogger().WithField("topic", topicName).Info("Topic doesn't exist - creating it")
		if _, err = p.PubSubClient.CreateTopic(ctx, topicName); err != nil {
			return "", err
		}
	}

	serverID, err := topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while publishing message")
		return "", err
	}

	logger.GetLogger().WithField("server ID", serverID).Info("Message published")
	return serverID, nil
}
