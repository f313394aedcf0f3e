// Package events publishes committed ledger entries to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=kafka.go -destination=mock_kafka_test.go -package=events

const (
	defaultPublishTimeout = 5 * time.Second
	// Publish runs on the request path.
	defaultBatchTimeout = 10 * time.Millisecond
)

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// NewKafkaWriter returns a writer for topic, or nil when no brokers are configured.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           defaultBatchTimeout,
		AllowAutoTopicCreation: true,
	}
}

// TransactionPublisher sends ledger entries to Kafka keyed by transaction id.
// Publishing is best effort: failures are logged and swallowed.
type TransactionPublisher struct {
	writer  KafkaWriter
	timeout time.Duration
}

// NewTransactionPublisher creates a publisher. A nil writer disables publishing.
func NewTransactionPublisher(writer KafkaWriter) *TransactionPublisher {
	return &TransactionPublisher{writer: writer, timeout: defaultPublishTimeout}
}

// Publish sends records. It outlives the caller's cancellation so that a
// client hanging up after commit does not drop the event.
func (p *TransactionPublisher) Publish(ctx context.Context, records ...models.TransactionDB) {
	if len(records) == 0 {
		return
	}
	if p.writer == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "transaction_id", records[0].TransactionID)
		return
	}

	msgs := make([]kafka.Message, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			logger.Log.Errorw("Failed to marshal transaction for Kafka", "transaction_id", rec.TransactionID, "error", err)
			continue
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(rec.TransactionID.String()),
			Value: data,
		})
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		logger.Log.Errorw("Failed to publish transactions to Kafka", "count", len(msgs), "error", err)
		return
	}
	for _, rec := range records {
		logger.Log.Infow("Transaction published to Kafka", "transaction_id", rec.TransactionID, "amount", rec.Amount)
	}
}

// Close closes the underlying writer.
func (p *TransactionPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
