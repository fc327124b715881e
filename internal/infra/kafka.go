package infra

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer wraps a kafka-go writer for publishing messages.
type KafkaProducer struct {
	writer      *kafka.Writer
	logger      *slog.Logger
	enabled     bool
	topicPrefix string
}

// NewKafkaProducer creates a Kafka producer from the KAFKA_* settings. If
// brokers is empty or the feed is disabled, writes are no-ops. A topic prefix
// lets staging and production calendars share one cluster.
func NewKafkaProducer(cfg *Config, logger *slog.Logger) *KafkaProducer {
	brokers := strings.TrimSpace(cfg.KafkaBrokers)
	if !cfg.KafkaEnabled || brokers == "" {
		logger.Info("kafka producer disabled")
		return &KafkaProducer{enabled: false, logger: logger, topicPrefix: cfg.KafkaTopicPrefix}
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	logger.Info("kafka producer initialized", "brokers", brokers, "topic_prefix", cfg.KafkaTopicPrefix)
	return &KafkaProducer{writer: w, logger: logger, enabled: true, topicPrefix: cfg.KafkaTopicPrefix}
}

// Publish sends a calendar change to its topic. No-op if disabled.
// Keys are aggregate ids so changes to one event stay ordered.
func (p *KafkaProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	if !p.enabled {
		return nil
	}
	return p.writer.WriteMessages(ctx, p.message(topic, key, value))
}

func (p *KafkaProducer) message(topic string, key, value []byte) kafka.Message {
	return kafka.Message{
		Topic: p.topicPrefix + topic,
		Key:   key,
		Value: value,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "change-type", Value: []byte(topic)},
		},
	}
}

// Close shuts down the Kafka writer.
func (p *KafkaProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
