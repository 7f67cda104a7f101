package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/domain/repository"
	"alfreds-toolbox/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// NewPubSub creates a Pub/Sub client for the project.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("pubsub project id is empty")
	}
	return pubsub.NewClient(ctx, projectID)
}

type preloadMessage struct {
	Range model.RangeName `json:"range"`
}

// PreloadPubSub carries analytics warm-up jobs over a Pub/Sub topic so any
// replica can run them.
type PreloadPubSub struct {
	client         *pubsub.Client
	topicID        string
	subscriptionID string
}

func NewPreloadPubSub(client *pubsub.Client, topicID, subscriptionID string) *PreloadPubSub {
	return &PreloadPubSub{client: client, topicID: topicID, subscriptionID: subscriptionID}
}

var _ repository.IPreloadQueue = (*PreloadPubSub)(nil)

func (p *PreloadPubSub) topic(ctx context.Context) (*pubsub.Topic, error) {
	topic := p.client.Topic(p.topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicID).Info("Topic doesn't exist - creating it")
		if topic, err = p.client.CreateTopic(ctx, p.topicID); err != nil {
			return nil, err
		}
	}
	return topic, nil
}

func (p *PreloadPubSub) Enqueue(ctx context.Context, rangeName model.RangeName) error {
	topic, err := p.topic(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(preloadMessage{Range: rangeName})
	if err != nil {
		return err
	}
	serverID, err := topic.Publish(ctx, &pubsub.Message{Data: payload, Attributes: map[string]string{"type": "load_analytics_range"}}).Get(ctx)
	if err != nil {
		return err
	}
	logger.GetLogger().WithField("server ID", serverID).WithField("range", rangeName).Info("Preload job published")
	return nil
}

// Run receives preload jobs until ctx is cancelled. Malformed messages are acked and dropped.
func (p *PreloadPubSub) Run(ctx context.Context, handle func(context.Context, model.RangeName)) error {
	topic, err := p.topic(ctx)
	if err != nil {
		return err
	}
	sub := p.client.Subscription(p.subscriptionID)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		sub, err = p.client.CreateSubscription(ctx, p.subscriptionID, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 60 * time.Second,
		})
		if err != nil {
			return err
		}
	}
	logger.GetLogger().WithField("subID", p.subscriptionID).Info("PubSub starting...")

	return sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		var msg preloadMessage
		if err := json.Unmarshal(m.Data, &msg); err != nil || msg.Range == "" {
			logger.GetLogger().WithField("data", string(m.Data)).Warn("Dropping malformed preload message")
			m.Ack()
			return
		}
		handle(ctx, model.ParseRangeName(string(msg.Range)))
		m.Ack()
	})
}
