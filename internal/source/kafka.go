package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-features/internal/config"
)

// ErrKafkaFetchFailed wraps unrecoverable reader errors.
var ErrKafkaFetchFailed = errors.New("failed to fetch message from kafka")

type kafkaZapLogger struct {
	log *zap.Logger
}

func (l kafkaZapLogger) Printf(msg string, args ...interface{}) {
	l.log.Info(fmt.Sprintf(msg, args...))
}

type kafkaZapErrorLogger struct {
	log *zap.Logger
}

func (l kafkaZapErrorLogger) Printf(msg string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(msg, args...))
}

// samplePayload is the expected JSON message body. The timestamp is optional;
// messages without one fall back to the Kafka message time.
type samplePayload struct {
	Value float64    `json:"value"`
	TS    *time.Time `json:"ts"`
}

// KafkaSource consumes scalar samples from a Kafka topic.
type KafkaSource struct {
	reader *kafka.Reader
	logger *zap.Logger
}

// NewKafkaSource creates a consumer for the configured brokers/topic/group.
func NewKafkaSource(cfg config.KafkaConfig, logger *zap.Logger) *KafkaSource {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		Logger:      kafkaZapLogger{logger.Named("kafka-reader").WithOptions(zap.AddCallerSkip(1))},
		ErrorLogger: kafkaZapErrorLogger{logger.Named("kafka-reader-error").WithOptions(zap.AddCallerSkip(1))},
	})

	logger.Info("Kafka source created",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
		zap.String("group_id", cfg.GroupID),
	)

	return &KafkaSource{reader: reader, logger: logger}
}

// Run fetches messages until the context is cancelled. Messages that fail to
// parse are logged and skipped; they never abort the stream.
func (s *KafkaSource) Run(ctx context.Context, out chan<- Sample) error {
	defer func() {
		if err := s.reader.Close(); err != nil {
			s.logger.Error("Failed to close Kafka reader cleanly", zap.Error(err))
		}
	}()

	for {
		m, err := s.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return context.Canceled
			}
			s.logger.Error("Error fetching message from Kafka", zap.Error(err))
			return fmt.Errorf("%w: %w", ErrKafkaFetchFailed, err)
		}

		var payload samplePayload
		if err := json.Unmarshal(m.Value, &payload); err != nil {
			s.logger.Warn("Skipping unparsable message",
				zap.Error(err),
				zap.Int64("offset", m.Offset),
			)
			continue
		}

		ts := m.Time
		if payload.TS != nil {
			ts = *payload.TS
		}

		select {
		case out <- Sample{Value: payload.Value, Time: ts}:
		case <-ctx.Done():
			return context.Canceled
		}
	}
}
