package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/couchcryptid/beach-bulletin-etl/internal/config"
	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces one message per beach record of a snapshot.
// It implements pipeline.Publisher.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured snapshot topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSnapshotTopic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, topic: cfg.KafkaSnapshotTopic, logger: logger}
}

// Publish serializes the snapshot and writes it in a single WriteMessages call.
func (p *Publisher) Publish(ctx context.Context, records []domain.BeachRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return errors.Wrapf(err, "publish snapshot to %s", p.topic)
	}
	p.logger.Debug("snapshot published", "topic", p.topic, "records", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a BeachRecord into a Kafka message keyed by its ID.
func serializeToMessage(record domain.BeachRecord) (kafkago.Message, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return kafkago.Message{}, errors.Wrap(err, "serialize beach record")
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(record.ID)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "bulletin_number", Value: []byte(record.BulletinNumber)},
			{Key: "extracted_on", Value: []byte(record.ExtractedOn.Format(domain.DateLayout))},
		},
	}, nil
}
