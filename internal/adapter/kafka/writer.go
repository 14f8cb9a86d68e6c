package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

const (
	maxAttempts    = 4
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher sends run summaries to a Kafka topic.
// It implements pipeline.Publisher.
type Publisher struct {
	writer  messageWriter
	logger  *slog.Logger
	backoff time.Duration
}

// NewPublisher creates a Kafka producer for the run notification topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger, backoff: initialBackoff}
}

// Publish serializes s and writes it keyed by run id. Transient write
// failures are retried with exponential backoff until ctx is done.
func (p *Publisher) Publish(ctx context.Context, s domain.RunSummary) error {
	msg, err := serializeToMessage(s)
	if err != nil {
		return err
	}

	backoff := p.backoff
	for attempt := 1; ; attempt++ {
		err = p.writer.WriteMessages(ctx, msg)
		if err == nil {
			p.logger.Info("run summary published", "run_id", s.RunID, "attempt", attempt)
			return nil
		}
		if attempt == maxAttempts || ctx.Err() != nil {
			return fmt.Errorf("publish run summary after %d attempts: %w", attempt, err)
		}
		p.logger.Warn("publish run summary failed, retrying", "error", err, "attempt", attempt, "backoff", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			return fmt.Errorf("publish run summary: %w", ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a RunSummary into a Kafka message.
func serializeToMessage(s domain.RunSummary) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize run summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(s.RunID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "mission", Value: []byte(s.Mission)},
			{Key: "output_records", Value: []byte(strconv.Itoa(s.OutputRecords))},
			{Key: "finished_at", Value: []byte(s.FinishedAt.Format(time.RFC3339))},
		},
	}, nil
}
