package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/correction-service/internal/events"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventConfig holds configuration for event publishing and the correction queue
type EventConfig struct {
	Enabled           bool
	Publisher         string // kafka or mock
	KafkaBrokers      string
	NotificationTopic string
	CorrectionTopic   string
	ConsumerGroup     string
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	brokers := strings.Split(c.KafkaBrokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}
	return brokers
}

func (c *EventConfig) useKafka() bool {
	return c.Enabled && c.Publisher == "kafka"
}

// CreateEventPublisher creates an event publisher based on configuration
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using mock publisher")
		return events.NewMockEventPublisher(logger), nil
	}

	switch c.Publisher {
	case "kafka":
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"topic", c.NotificationTopic)

		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.NotificationTopic,
			Logger:       logger,
		})
	case "mock":
		logger.Info("Using mock event publisher")
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, falling back to mock", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}

// CreateCorrectionPubSub returns the transport for correction requests: Kafka with a
// consumer group when Kafka is configured, an in-process channel otherwise.
func (c *EventConfig) CreateCorrectionPubSub(logger *slog.Logger) (message.Publisher, message.Subscriber, error) {
	if !c.useKafka() {
		logger.Info("Using in-process correction queue")
		pubSub := events.NewInProcessPubSub(logger)
		return pubSub, pubSub, nil
	}

	logger.Info("Creating Kafka correction queue",
		"brokers", c.KafkaBrokers,
		"topic", c.CorrectionTopic,
		"consumer_group", c.ConsumerGroup)

	publisher, err := events.NewKafkaPublisher(c.GetKafkaBrokers(), logger)
	if err != nil {
		return nil, nil, err
	}
	subscriber, err := events.NewKafkaSubscriber(c.GetKafkaBrokers(), c.ConsumerGroup, logger)
	if err != nil {
		publisher.Close()
		return nil, nil, fmt.Errorf("failed to create correction subscriber: %w", err)
	}
	return publisher, subscriber, nil
}
