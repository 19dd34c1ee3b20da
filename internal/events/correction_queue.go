package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/SAP-F-2025/correction-service/internal/models"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const correctionHandlerName = "correction-worker"

// CorrectionQueue places correction work items on a topic.
type CorrectionQueue struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

func NewCorrectionQueue(publisher message.Publisher, topic string, logger *slog.Logger) *CorrectionQueue {
	return &CorrectionQueue{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

func (q *CorrectionQueue) Enqueue(ctx context.Context, req *models.CorrectionRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal correction request: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("result_id", strconv.FormatUint(uint64(req.ResultID), 10))
	msg.SetContext(ctx)

	if err := q.publisher.Publish(q.topic, msg); err != nil {
		return fmt.Errorf("failed to enqueue correction for result %d: %w", req.ResultID, err)
	}

	q.logger.Info("Correction enqueued",
		"result_id", req.ResultID,
		"answers", len(req.Answers),
		"message_id", msg.UUID)
	return nil
}

// CorrectionHandler processes one work item. A returned error nacks the message so it
// is delivered again; work that can never succeed should be logged and return nil.
type CorrectionHandler func(ctx context.Context, req *models.CorrectionRequest) error

type RouterConfig struct {
	Topic           string
	MaxRetries      int
	InitialInterval time.Duration
}

// NewCorrectionRouter subscribes handle to the correction topic. Undecodable payloads
// are dropped; handler errors are retried in place before the message is nacked.
func NewCorrectionRouter(subscriber message.Subscriber, cfg RouterConfig, handle CorrectionHandler, logger *slog.Logger) (*message.Router, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      cfg.MaxRetries,
			InitialInterval: cfg.InitialInterval,
			Logger:          wmLogger,
		}.Middleware,
	)

	router.AddNoPublisherHandler(correctionHandlerName, cfg.Topic, subscriber, func(msg *message.Message) error {
		var req models.CorrectionRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			logger.Error("Dropping undecodable correction request",
				"message_id", msg.UUID,
				"error", err)
			return nil
		}
		return handle(msg.Context(), &req)
	})

	return router, nil
}

// NewKafkaSubscriber builds a consumer-group subscriber for the correction topic.
func NewKafkaSubscriber(brokers []string, consumerGroup string, logger *slog.Logger) (message.Subscriber, error) {
	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:       brokers,
		Unmarshaler:   kafka.DefaultMarshaler{},
		ConsumerGroup: consumerGroup,
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka subscriber: %w", err)
	}
	return subscriber, nil
}

// NewInProcessPubSub is a single-instance queue used when Kafka is not configured.
func NewInProcessPubSub(logger *slog.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
		Persistent:          true,
	}, watermill.NewSlogLogger(logger))
}
