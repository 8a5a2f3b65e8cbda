package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/sportsbook-explorer/internal/models"
)

// ResultMessage is the Kafka payload published for every explored category
type ResultMessage struct {
	BatchID   string            `json:"batch_id"`
	Shape     models.Shape      `json:"shape"`
	Result    *models.ResultSet `json:"result"`
	Timestamp time.Time         `json:"timestamp"`
}

// messageWriter is the subset of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes parsed result sets to Kafka
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger zerolog.Logger
}

// KafkaPublisherConfig holds Kafka publisher configuration
type KafkaPublisherConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "sportsbook_markets"
}

// NewKafkaPublisher creates a new Kafka publisher
func NewKafkaPublisher(config KafkaPublisherConfig, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}

	return newKafkaPublisher(writer, config.Topic, logger)
}

func newKafkaPublisher(writer messageWriter, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
		topic:  topic,
		logger: logger.With().Str("component", "kafka_publisher").Logger(),
	}
}

// BuildMessage encodes a result set as a Kafka message keyed by its query
func BuildMessage(rs *models.ResultSet) (kafka.Message, error) {
	payload := ResultMessage{
		BatchID:   rs.ID.String(),
		Shape:     rs.Shape(),
		Result:    rs,
		Timestamp: time.Now().UTC(),
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal result message: %w", err)
	}

	key := fmt.Sprintf("%d:%d:%d", rs.Query.LeagueID, rs.Query.CategoryID, rs.Query.SubcategoryID)
	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "batch_id", Value: []byte(payload.BatchID)},
		},
	}, nil
}

// Publish writes one message for the result set
func (p *KafkaPublisher) Publish(ctx context.Context, rs *models.ResultSet) error {
	msg, err := BuildMessage(rs)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	p.logger.Info().
		Str("topic", p.topic).
		Str("batch_id", rs.ID.String()).
		Int("rows", len(rs.Rows)).
		Msg("published result set")

	return nil
}

// Close closes the Kafka writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
