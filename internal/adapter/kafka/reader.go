package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/zzfadi/deeptime-anomaly-engine/internal/config"
	"github.com/zzfadi/deeptime-anomaly-engine/internal/survey"
)

// Reader consumes scan messages from the source Kafka topic.
// It implements pipeline.BatchExtractor.
type Reader struct {
	reader        *kafkago.Reader
	flushInterval time.Duration
	logger        *slog.Logger
}

// NewReader creates a Kafka consumer for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaSourceTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Reader{
		reader:        r,
		flushInterval: cfg.BatchFlushInterval,
		logger:        logger,
	}
}

// ExtractBatch reads up to batchSize scan messages, returning whatever was
// collected when the flush interval elapses so a slow trickle of scans does
// not stall the pipeline waiting for a full batch.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]survey.RawEvent, error) {
	if batchSize <= 0 {
		batchSize = 1
	}

	batchCtx, cancel := context.WithTimeout(ctx, r.flushInterval)
	defer cancel()

	events := make([]survey.RawEvent, 0, batchSize)
	for len(events) < batchSize {
		msg, err := r.reader.FetchMessage(batchCtx)
		if err != nil {
			// The flush interval elapsing is not an error: return the
			// partial (possibly empty) batch and let the caller loop.
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return events, nil
			}
			return nil, err
		}

		event := mapMessageToRawEvent(msg)
		event.Commit = func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		}
		events = append(events, event)
	}
	return events, nil
}

// Close shuts down the underlying Kafka reader.
func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToRawEvent converts a Kafka message into the domain envelope.
// The Commit callback is attached by ExtractBatch.
func mapMessageToRawEvent(msg kafkago.Message) survey.RawEvent {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return survey.RawEvent{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
